package macro

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"git.home.luguber.info/inful/subscript/internal/dom"
)

const tocIgnoreAttr = "toc-ignore"

// BuildTOC gives every h1-h6 without an id a numeric one, then replaces each
// <toc> with a flat list of links to the headings in document order. It
// returns the number of entries. Headings marked toc-ignore get an id but no
// entry.
//
// Ids hash the heading text and its position, so rebuilding an unchanged
// document yields the same anchors.
func BuildTOC(tree *dom.Node) int {
	ordinal := 0
	tree.Eval(func(n *dom.Node) {
		tag, ok := n.TagName()
		if !ok || !dom.IsHeaderTag(tag) {
			return
		}
		ordinal++
		if !n.HasAttr("id") {
			n.SetAttr("id", headingID(n, ordinal))
		}
	})

	entries := collectHeadings(tree, nil)

	tree.Eval(func(n *dom.Node) {
		if !n.IsTag("toc") {
			return
		}
		attrs := n.Attrs.Clone()
		attrs.Set("macro", "toc")
		n.Replace(dom.NewElement("ul", attrs, dom.CloneAll(entries)...))
	})
	return len(entries)
}

func headingID(n *dom.Node, ordinal int) string {
	key := strings.Join(n.ChildrenText(), " ") + "\x00" + strconv.Itoa(ordinal)
	return strconv.FormatUint(xxhash.Sum64String(key), 10)
}

// collectHeadings does not descend into headings.
func collectHeadings(n *dom.Node, out []*dom.Node) []*dom.Node {
	if n == nil || n.IsText() {
		return out
	}
	if tag, ok := n.TagName(); ok && dom.IsHeaderTag(tag) {
		if n.HasAttr(tocIgnoreAttr) {
			return out
		}
		id, _ := n.Attr("id")
		entry := dom.NewElement("li", dom.Attrs("for", tag),
			dom.NewElement("a", dom.Attrs("href", "#"+id),
				dom.NewText(strings.Join(n.ChildrenText(), " ")),
			),
		)
		return append(out, entry)
	}
	for _, c := range n.Children {
		out = collectHeadings(c, out)
	}
	return out
}
