// Package dom is the document tree that macros rewrite: elements, text and
// fragments, plus the structural operations the macro engine relies on.
package dom

import "strings"

// Kind discriminates the three node variants.
type Kind uint8

const (
	ElementNode Kind = iota
	TextNode
	FragmentNode
)

func (k Kind) String() string {
	switch k {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case FragmentNode:
		return "fragment"
	default:
		return "unknown"
	}
}

// Node is an element, a text leaf or a fragment.
//
// A fragment is a transparent grouping with no rendered wrapper. Macros return
// one so that a single node can be replaced by zero or many nodes; Normalize
// splices fragments into their parent.
type Node struct {
	Kind     Kind
	Tag      string
	Attrs    Attributes
	Style    *Styling
	Children []*Node
	Data     string
}

// NewElement builds an element node.
func NewElement(tag string, attrs Attributes, children ...*Node) *Node {
	return &Node{Kind: ElementNode, Tag: tag, Attrs: attrs, Children: children}
}

// NewText builds a text leaf.
func NewText(s string) *Node {
	return &Node{Kind: TextNode, Data: s}
}

// NewFragment builds a fragment holding children.
func NewFragment(children ...*Node) *Node {
	return &Node{Kind: FragmentNode, Children: children}
}

// IsElement reports whether n is an element.
func (n *Node) IsElement() bool { return n != nil && n.Kind == ElementNode }

// IsText reports whether n is a text leaf.
func (n *Node) IsText() bool { return n != nil && n.Kind == TextNode }

// IsFragment reports whether n is a fragment.
func (n *Node) IsFragment() bool { return n != nil && n.Kind == FragmentNode }

// TagName returns the element tag; ok is false for text and fragments.
func (n *Node) TagName() (string, bool) {
	if !n.IsElement() {
		return "", false
	}
	return n.Tag, true
}

// IsTag reports whether n is an element with the given tag.
func (n *Node) IsTag(tag string) bool {
	return n.IsElement() && n.Tag == tag
}

// SetTag renames an element. No-op on other kinds.
func (n *Node) SetTag(tag string) {
	if n.IsElement() {
		n.Tag = tag
	}
}

// Attr returns an attribute value of an element.
func (n *Node) Attr(key string) (string, bool) {
	if !n.IsElement() {
		return "", false
	}
	return n.Attrs.Get(key)
}

// HasAttr reports whether an element carries key.
func (n *Node) HasAttr(key string) bool {
	_, ok := n.Attr(key)
	return ok
}

// SetAttr sets an attribute on an element. No-op on other kinds.
func (n *Node) SetAttr(key, val string) {
	if n.IsElement() {
		n.Attrs.Set(key, val)
	}
}

// DeleteAttr removes an attribute from an element.
func (n *Node) DeleteAttr(key string) {
	if n.IsElement() {
		n.Attrs.Delete(key)
	}
}

// ReplaceChildren swaps the children of an element. No-op on other kinds.
func (n *Node) ReplaceChildren(children []*Node) {
	if n.IsElement() {
		n.Children = children
	}
}

// AppendChildren appends to an element's children. No-op on other kinds.
func (n *Node) AppendChildren(children ...*Node) {
	if n.IsElement() {
		n.Children = append(n.Children, children...)
	}
}

// Replace overwrites n in place with other, so that parents holding n see
// the replacement.
func (n *Node) Replace(other *Node) {
	if n == nil || other == nil || n == other {
		return
	}
	*n = *other
}

// UnwrapContents returns the children of a fragment, or of an element tagged
// expected. Any other node is returned alone.
func (n *Node) UnwrapContents(expected string) []*Node {
	switch {
	case n == nil:
		return nil
	case n.Kind == FragmentNode:
		return n.Children
	case n.IsTag(expected):
		return n.Children
	default:
		return []*Node{n}
	}
}

// Normalize splices nested fragments into their parents, bottom-up. Afterwards
// no fragment is the direct child of anything; n itself may stay a fragment.
func (n *Node) Normalize() {
	if n == nil || n.Kind == TextNode {
		return
	}
	n.Children = flatten(n.Children, nil)
}

func flatten(children, out []*Node) []*Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.Kind == FragmentNode {
			out = flatten(c.Children, out)
			continue
		}
		c.Normalize()
		out = append(out, c)
	}
	return out
}

// ChildrenText collects every text leaf below n in depth-first order.
func (n *Node) ChildrenText() []string {
	var out []string
	n.collectText(&out)
	return out
}

func (n *Node) collectText(out *[]string) {
	if n == nil {
		return
	}
	if n.Kind == TextNode {
		*out = append(*out, n.Data)
		return
	}
	for _, c := range n.Children {
		c.collectText(out)
	}
}

// TextContents joins ChildrenText with newlines; ok is false when there is no text.
func (n *Node) TextContents() (string, bool) {
	txt := n.ChildrenText()
	if len(txt) == 0 {
		return "", false
	}
	return strings.Join(txt, "\n"), true
}

// IsInline classifies n for rendering layout. A `block` attribute always wins.
func (n *Node) IsInline() bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case TextNode:
		return true
	case FragmentNode:
		for _, c := range n.Children {
			if !c.IsInline() {
				return false
			}
		}
		return true
	default:
		if n.Attrs.Has("block") {
			return false
		}
		return IsInlineTag(n.Tag) || n.Tag == "tex"
	}
}

// Eval visits every node in strict post-order: children left to right, then
// the node itself. Text is visited but has nothing to recurse into. The
// visitor may rewrite the node in place; the rewritten subtree is not visited
// again in this pass.
func (n *Node) Eval(visit func(*Node)) {
	if n == nil {
		return
	}
	if n.Kind != TextNode {
		for _, c := range n.Children {
			c.Eval(visit)
		}
	}
	visit(n)
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{
		Kind:  n.Kind,
		Tag:   n.Tag,
		Attrs: n.Attrs.Clone(),
		Style: n.Style.Clone(),
		Data:  n.Data,
	}
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return cp
}

// CloneAll deep-copies a node list.
func CloneAll(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Clone())
	}
	return out
}

// Find returns every element with the given tag below and including n, in
// document order.
func (n *Node) Find(tag string) []*Node {
	var out []*Node
	n.walkPre(func(x *Node) {
		if x.IsTag(tag) {
			out = append(out, x)
		}
	})
	return out
}

func (n *Node) walkPre(f func(*Node)) {
	if n == nil {
		return
	}
	f(n)
	for _, c := range n.Children {
		c.walkPre(f)
	}
}
