package dom

import "encoding/json"

type elementJSON struct {
	Tag      string            `json:"tag"`
	Attrs    map[string]string `json:"attrs"`
	Children []*Node           `json:"children"`
}

// MarshalJSON encodes text as a string, a fragment as a list and an element
// as an object with tag, attrs and children. It is used for diagnostics.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	switch n.Kind {
	case TextNode:
		return json.Marshal(n.Data)
	case FragmentNode:
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		return json.Marshal(children)
	default:
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		return json.Marshal(elementJSON{Tag: n.Tag, Attrs: n.Attrs.Map(), Children: children})
	}
}
