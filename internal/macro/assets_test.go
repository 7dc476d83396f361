package macro

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/subscript/internal/cache"
	"git.home.luguber.info/inful/subscript/internal/dom"
	"git.home.luguber.info/inful/subscript/internal/sass"
)

func TestImgIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.png", "PNG")

	tree := dom.Parse(`<img src="a.png" width="50%" style="border: 0;">`)
	f.apply(tree)
	once := dom.Render(tree)
	f.apply(tree)

	assert.Equal(t, once, dom.Render(tree))
	img := tree.Children[0]
	style, _ := img.Attr("style")
	assert.Equal(t, "border: 0; min-width: 0; max-width: 50%; width: 100%;", style)
	src, _ := img.Attr("src")
	assert.Equal(t, "/ss-data/"+cache.Hash([]byte("PNG"))+".png", src)
	assert.True(t, img.HasAttr(markerImgSrc))
	assert.True(t, img.HasAttr(markerImgWidth))
}

func TestImgWidthWithoutStyle(t *testing.T) {
	f := newFixture(t)
	tree := dom.Parse(`<img width="200px">`)
	f.apply(tree)

	style, _ := tree.Children[0].Attr("style")
	assert.Equal(t, "min-width: 0; max-width: 200px; width: 100%;", style)
}

func TestImgMissingSourcePassesThrough(t *testing.T) {
	f := newFixture(t)
	out := f.compile(`<img src="gone.png">`)
	assert.Equal(t, `<img src="gone.png">`, out)
	assert.Contains(t, f.logs.String(), "ignoring asset")
}

func TestScriptIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.write(t, "app.js", "console.log(1)")

	tree := dom.Parse(`<script src="app.js"></script><script>inline()</script>`)
	f.apply(tree)
	once := dom.Render(tree)
	f.apply(tree)

	assert.Equal(t, once, dom.Render(tree))
	assert.Contains(t, once, `<script src="/ss-data/`+cache.Hash([]byte("console.log(1)"))+`.js"></script>`)
	assert.Contains(t, once, "<script>inline()</script>")
}

func TestLinkCSSIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.write(t, "site.css", "body{}")

	tree := dom.Parse(`<link rel="stylesheet" href="site.css">`)
	f.apply(tree)
	once := dom.Render(tree)
	f.apply(tree)

	assert.Equal(t, once, dom.Render(tree))
	assert.Equal(t, `<link rel="stylesheet" href="/ss-data/`+cache.Hash([]byte("body{}"))+`.css">`, once)
}

func TestLinkSassCompilesOnceUntilSassChanges(t *testing.T) {
	f := newFixture(t)
	f.write(t, "styles/site.scss", "$c: red; body{color:$c}")
	calls := 0
	f.env.Sass = sass.Func(func(path string) (string, error) {
		calls++
		assert.Equal(t, filepath.Join(f.src, "styles", "site.scss"), path)
		return "body{color:red}", nil
	})

	out := f.compile(`<link href="styles/site.scss">`)
	assert.Equal(t, `<link href="/ss-data/`+cache.Hash([]byte("body{color:red}"))+`" rel="stylesheet">`, out)
	assert.Equal(t, 1, calls)

	again := f.compile(`<link href="styles/site.scss">`)
	assert.Equal(t, out, again)
	assert.Equal(t, 1, calls, "cached stylesheet is reused")

	f.env.Changed = filepath.Join(f.src, "styles", "site.scss")
	f.compile(`<link href="styles/site.scss">`)
	assert.Equal(t, 2, calls)

	f.env.Changed = filepath.Join(f.src, "index.html")
	f.compile(`<link href="styles/site.scss">`)
	assert.Equal(t, 2, calls)

	data, err := os.ReadFile(filepath.Join(f.env.OutputDir, strings.TrimPrefix(out[len(`<link href="`):strings.Index(out, `" rel`)], "/")))
	require.NoError(t, err)
	assert.Equal(t, "body{color:red}", string(data))
}

func TestLinkSassFailureLeavesNode(t *testing.T) {
	f := newFixture(t)
	f.env.Sass = sass.Func(func(string) (string, error) { return "", errors.New("expected \";\"") })

	out := f.compile(`<link href="bad.scss">`)

	assert.Equal(t, `<link href="bad.scss">`, out)
	assert.Contains(t, f.logs.String(), "sass compiler failed")
}

func TestAssetGlob(t *testing.T) {
	f := newFixture(t)
	f.write(t, "gallery/1.jpg", "one")
	f.write(t, "gallery/2.jpg", "two")

	out := f.compile(`<asset-glob src="gallery/*.jpg"><div class="gallery"><content></content></div></asset-glob>`)

	one := "/ss-data/" + cache.Hash([]byte("one")) + ".jpg"
	two := "/ss-data/" + cache.Hash([]byte("two")) + ".jpg"
	want := "<div class=\"gallery\">\n" +
		"  <img src=\"" + one + "\" onclick=\"location.href='" + one + "';\">\n" +
		"  <img src=\"" + two + "\" onclick=\"location.href='" + two + "';\">\n" +
		"</div>"
	assert.Equal(t, want, out)
}
