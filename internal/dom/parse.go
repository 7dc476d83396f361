package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads HTML text into a fragment. Input that starts with a doctype or
// an <html> tag is parsed as a whole document; anything else is parsed as
// body content, so custom macro tags survive unchanged.
//
// Comments and doctypes are dropped, as is whitespace-only text containing a
// line break outside preformatted elements; the renderer re-indents.
func Parse(text string) *Node {
	if isDocument(text) {
		doc, err := html.Parse(strings.NewReader(text))
		if err != nil {
			return NewFragment(NewText(text))
		}
		return NewFragment(convertChildren(doc, false)...)
	}

	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(text), context)
	if err != nil {
		return NewFragment(NewText(text))
	}
	out := make([]*Node, 0, len(nodes))
	for _, h := range nodes {
		if n := convert(h, false); n != nil {
			out = append(out, n)
		}
	}
	return NewFragment(out...)
}

func isDocument(text string) bool {
	head := strings.ToLower(strings.TrimSpace(text))
	if len(head) > 16 {
		head = head[:16]
	}
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}

func convert(h *html.Node, preserve bool) *Node {
	switch h.Type {
	case html.TextNode:
		if !preserve && strings.TrimSpace(h.Data) == "" && strings.ContainsRune(h.Data, '\n') {
			return nil
		}
		return NewText(h.Data)
	case html.ElementNode:
		el := NewElement(h.Data, convertAttrs(h.Attr))
		el.Children = convertChildren(h, preserve || isPreformatted(h.Data))
		return el
	case html.DocumentNode:
		return NewFragment(convertChildren(h, preserve)...)
	default:
		return nil
	}
}

func convertChildren(h *html.Node, preserve bool) []*Node {
	var out []*Node
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if n := convert(c, preserve); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func convertAttrs(attrs []html.Attribute) Attributes {
	if len(attrs) == 0 {
		return nil
	}
	out := make(Attributes, 0, len(attrs))
	for _, a := range attrs {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + key
		}
		out.Set(key, a.Val)
	}
	return out
}
