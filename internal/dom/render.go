package dom

import "strings"

// PrivatePrefix marks attributes that macros use for bookkeeping. They are
// kept in the tree but never rendered.
const PrivatePrefix = "ss."

const indentUnit = "  "

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;")
)

// Render serializes a tree.
//
// An element renders on one line when it has no children, is inline, is a
// paragraph, or holds a single inline child. Otherwise each child goes on its
// own line one level deeper and the closing tag gets its own line. Fragments
// render their children joined by newlines.
func Render(n *Node) string {
	var b strings.Builder
	renderBlock(&b, n, 0)
	return b.String()
}

// RenderDocument is Render with a leading doctype when the tree holds an
// <html> root.
func RenderDocument(n *Node) string {
	out := Render(n)
	if hasHTMLRoot(n) {
		return "<!DOCTYPE html>\n" + out
	}
	return out
}

func hasHTMLRoot(n *Node) bool {
	if n.IsTag("html") {
		return true
	}
	if n.IsFragment() {
		for _, c := range n.Children {
			if hasHTMLRoot(c) {
				return true
			}
		}
	}
	return false
}

func renderBlock(b *strings.Builder, n *Node, level int) {
	if n == nil {
		return
	}
	switch n.Kind {
	case TextNode:
		writeIndent(b, level)
		b.WriteString(textEscaper.Replace(n.Data))
	case FragmentNode:
		first := true
		for _, c := range n.Children {
			if c == nil {
				continue
			}
			if !first {
				b.WriteByte('\n')
			}
			renderBlock(b, c, level)
			first = false
		}
	case ElementNode:
		writeIndent(b, level)
		renderElement(b, n, level)
	}
}

func renderElement(b *strings.Builder, n *Node, level int) {
	writeOpenTag(b, n)
	if IsVoidTag(n.Tag) {
		return
	}
	if isPreformatted(n.Tag) || singleLine(n) {
		for _, c := range n.Children {
			renderInline(b, c, isRawTextTag(n.Tag))
		}
		writeCloseTag(b, n)
		return
	}
	for _, c := range n.Children {
		if c == nil || (c.IsText() && strings.TrimSpace(c.Data) == "") {
			continue
		}
		b.WriteByte('\n')
		if c.IsText() {
			writeIndent(b, level+1)
			b.WriteString(textEscaper.Replace(strings.TrimSpace(c.Data)))
			continue
		}
		renderBlock(b, c, level+1)
	}
	b.WriteByte('\n')
	writeIndent(b, level)
	writeCloseTag(b, n)
}

func singleLine(n *Node) bool {
	if len(n.Children) == 0 || n.Tag == "p" || n.IsInline() {
		return true
	}
	return len(n.Children) == 1 && n.Children[0] != nil && n.Children[0].IsInline()
}

func renderInline(b *strings.Builder, n *Node, raw bool) {
	if n == nil {
		return
	}
	switch n.Kind {
	case TextNode:
		if raw {
			b.WriteString(n.Data)
		} else {
			b.WriteString(textEscaper.Replace(n.Data))
		}
	case FragmentNode:
		for _, c := range n.Children {
			renderInline(b, c, raw)
		}
	case ElementNode:
		writeOpenTag(b, n)
		if IsVoidTag(n.Tag) {
			return
		}
		for _, c := range n.Children {
			renderInline(b, c, raw || isRawTextTag(n.Tag))
		}
		writeCloseTag(b, n)
	}
}

func writeOpenTag(b *strings.Builder, n *Node) {
	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, a := range n.Attrs {
		if strings.HasPrefix(a.Key, PrivatePrefix) {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(a.Key)
		if a.Val == "" {
			continue
		}
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(a.Val))
		b.WriteByte('"')
	}
	b.WriteByte('>')
}

func writeCloseTag(b *strings.Builder, n *Node) {
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

func writeIndent(b *strings.Builder, level int) {
	for range level {
		b.WriteString(indentUnit)
	}
}
