package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/subscript/internal/dom"
	"git.home.luguber.info/inful/subscript/internal/markdown"
)

func TestMarkdownMacro(t *testing.T) {
	f := newFixture(t)
	f.write(t, "docs/intro.md", "# Hi\n\nSee <tex>y</tex>.\n")

	out := f.compile(`<article><markdown src="docs/intro.md"></markdown></article>`)

	assert.Contains(t, out, `>Hi</h1>`)
	assert.Contains(t, out, `<p>See <span latex="inline">\(y\)</span>.</p>`)
	assert.NotContains(t, out, "<markdown")
}

func TestMarkdownRelativeAssets(t *testing.T) {
	f := newFixture(t)
	f.write(t, "docs/intro.md", "<img src=\"pic.png\">\n")
	f.write(t, "docs/pic.png", "pic")

	out := f.compile(`<markdown src="docs/intro.md"></markdown>`)
	assert.Contains(t, out, `src="/ss-data/`)
}

func TestMarkdownUnwrapsDiv(t *testing.T) {
	f := newFixture(t)
	f.write(t, "x.md", "ignored")
	f.env.Markdown = markdown.Func(func([]byte) (string, error) {
		return "<div><p>a</p><p>b</p></div>", nil
	})

	assert.Equal(t, "<p>a</p>\n<p>b</p>", f.compile(`<markdown src="x.md"></markdown>`))
}

func TestMarkdownMissingSourceDeclines(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, `<markdown src="nope.md"></markdown>`, f.compile(`<markdown src="nope.md"></markdown>`))
}

func TestHeadAppendsDependenciesOnce(t *testing.T) {
	f := newFixture(t)
	tree := dom.Parse("<!doctype html><html><head><title>t</title></head><body></body></html>")

	f.apply(tree)
	f.apply(tree)

	heads := tree.Find("head")
	require.Len(t, heads, 1)
	assert.Len(t, heads[0].Find("link"), 1)
	assert.Len(t, heads[0].Find("script"), 2)
	assert.Contains(t, dom.Render(tree), "katex.min.css")
}

func TestLayoutAndNote(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "<div macro=\"layout\" columns=\"2\">\n  <p>a</p>\n</div>", f.compile(`<layout cols="2"><p>a</p></layout>`))
	assert.Equal(t, `<div macro="note">n</div>`, f.compile(`<note>n</note>`))
}

func TestPageNav(t *testing.T) {
	f := newFixture(t)
	f.env.Page = Page{Route: "/a.html"}

	out := f.compile(`<page-nav>` +
		`<page route="/" title="Home"><page route="/a.html" title="A"></page></page>` +
		`<page route="/b.html"></page>` +
		`</page-nav>`)

	want := "<ul macro=\"page-nav\">\n" +
		"  <li>\n" +
		"    <a href=\"/\">Home</a>\n" +
		"    <ul>\n" +
		"      <li active><a href=\"/a.html\">A</a></li>\n" +
		"    </ul>\n" +
		"  </li>\n" +
		"</ul>"
	assert.Equal(t, want, out)
}
