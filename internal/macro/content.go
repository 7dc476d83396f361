package macro

import (
	"context"
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/subscript/internal/dom"
	ferrors "git.home.luguber.info/inful/subscript/internal/foundation/errors"
)

// markdownMacro replaces <markdown src="x.md"> with the converted content.
// Macros inside the Markdown are expanded relative to the Markdown file.
func markdownMacro(ctx context.Context, env *Env) TagMacro {
	return TagMacro{
		Tag: "markdown",
		Transform: func(n *dom.Node) error {
			src, ok := n.Attr("src")
			if !ok {
				return nil
			}
			text, ok := env.cache().InlineText(env.Location(), src)
			if !ok {
				return nil
			}
			if env.Markdown == nil {
				return ferrors.MacroError("no markdown converter configured").WithContext("src", src).Build()
			}
			html, err := env.Markdown.ToHTML([]byte(text))
			if err != nil {
				return ferrors.WrapError(err, ferrors.CategoryMacro, "markdown conversion failed").
					Warning().
					WithContext("src", src).
					Build()
			}

			nodes := dom.Parse(html).Children
			if len(nodes) == 1 {
				nodes = nodes[0].UnwrapContents("div")
			}
			result := dom.NewFragment(nodes...)
			env.Engine.Apply(ctx, env.WithDir(filepath.Dir(env.Resolve(src))), result)
			n.Replace(result)
			return nil
		},
	}
}

const equationTemplate = "\\begin{equation}\n\\begin{split}\n%s\n\\end{split}\n\\end{equation}"

func texMacro() TagMacro {
	return TagMacro{Tag: "tex", Transform: func(n *dom.Node) error {
		if txt, ok := n.TextContents(); ok {
			n.Replace(latexElement(n, "span", "inline", `\(`+txt+`\)`))
		}
		return nil
	}}
}

func texBlockMacro() TagMacro {
	return TagMacro{Tag: "texblock", Transform: func(n *dom.Node) error {
		if txt, ok := n.TextContents(); ok {
			n.Replace(latexElement(n, "div", "block", "$$"+txt+"$$"))
		}
		return nil
	}}
}

func equationMacro() TagMacro {
	return TagMacro{Tag: "equation", Transform: func(n *dom.Node) error {
		if txt, ok := n.TextContents(); ok {
			n.Replace(latexElement(n, "div", "block", "$$"+fmt.Sprintf(equationTemplate, txt)+"$$"))
		}
		return nil
	}}
}

// latexElement keeps the source node's attributes and adds the latex mode.
func latexElement(src *dom.Node, tag, mode, body string) *dom.Node {
	attrs := src.Attrs.Clone()
	attrs.Set("latex", mode)
	return dom.NewElement(tag, attrs, dom.NewText(body))
}
