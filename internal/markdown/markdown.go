// Package markdown converts Markdown sources pulled in by the markdown macro
// into HTML text.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Converter turns Markdown into HTML.
type Converter interface {
	ToHTML(src []byte) (string, error)
}

// Goldmark is the default Converter: GitHub-flavored Markdown with raw HTML
// passed through, so macro tags written inside Markdown survive.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark builds the default converter.
func NewGoldmark() *Goldmark {
	return &Goldmark{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAttribute()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

// ToHTML renders src.
func (g *Goldmark) ToHTML(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Func adapts a function to Converter.
type Func func(src []byte) (string, error)

// ToHTML calls f.
func (f Func) ToHTML(src []byte) (string, error) { return f(src) }
