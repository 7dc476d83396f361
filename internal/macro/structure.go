package macro

import (
	"git.home.luguber.info/inful/subscript/internal/dom"
)

// headMacro appends the bundled client dependencies (KaTeX) to <head>.
func headMacro() TagMacro {
	return TagMacro{Tag: "head", Transform: func(n *dom.Node) error {
		if n.HasAttr(markerHead) {
			return nil
		}
		n.AppendChildren(dom.Parse(depsHTML).Children...)
		n.SetAttr(markerHead, "")
		return nil
	}}
}

func layoutMacro() TagMacro {
	return TagMacro{Tag: "layout", Transform: func(n *dom.Node) error {
		n.SetTag("div")
		n.SetAttr("macro", "layout")
		if cols, ok := n.Attr("cols"); ok {
			n.DeleteAttr("cols")
			n.SetAttr("columns", cols)
		}
		return nil
	}}
}

func noteMacro() TagMacro {
	return TagMacro{Tag: "note", Transform: func(n *dom.Node) error {
		n.SetTag("div")
		n.SetAttr("macro", "note")
		return nil
	}}
}

type pageTree struct {
	route string
	title string
	sub   []pageTree
}

// readPageTree reads route/title entries; a node lacking either ends its branch.
func readPageTree(n *dom.Node) (pageTree, bool) {
	route, ok := n.Attr("route")
	if !ok {
		return pageTree{}, false
	}
	title, ok := n.Attr("title")
	if !ok {
		return pageTree{}, false
	}
	return pageTree{route: route, title: title, sub: readPageTrees(n.Children)}, true
}

func readPageTrees(nodes []*dom.Node) []pageTree {
	var out []pageTree
	for _, c := range nodes {
		if c.IsFragment() {
			out = append(out, readPageTrees(c.Children)...)
			continue
		}
		if t, ok := readPageTree(c); ok {
			out = append(out, t)
		}
	}
	return out
}

func (t pageTree) toHTML(current string) *dom.Node {
	li := dom.NewElement("li", nil, dom.NewElement("a", dom.Attrs("href", t.route), dom.NewText(t.title)))
	if current != "" && t.route == current {
		li.SetAttr("active", "")
	}
	if len(t.sub) > 0 {
		ul := dom.NewElement("ul", nil)
		for _, s := range t.sub {
			ul.AppendChildren(s.toHTML(current))
		}
		li.AppendChildren(ul)
	}
	return li
}

// pageNavMacro rebuilds nested route/title elements as a ul/li/a list. The
// entry for the page being compiled is marked active.
func pageNavMacro(env *Env) TagMacro {
	return TagMacro{Tag: "page-nav", Transform: func(n *dom.Node) error {
		nav := dom.NewElement("ul", dom.Attrs("macro", "page-nav"))
		for _, t := range readPageTrees(n.Children) {
			nav.AppendChildren(t.toHTML(env.Page.Route))
		}
		n.Replace(nav)
		return nil
	}}
}
