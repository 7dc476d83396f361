package macro

import (
	"context"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/subscript/internal/dom"
	ferrors "git.home.luguber.info/inful/subscript/internal/foundation/errors"
)

// includeMacro splices a template: <include src="t.html">body</include>
// expands t.html with its own directory as the current one, puts body in
// place of every <content> placeholder, and replaces the includer.
//
// Nothing guards against a file including itself.
func includeMacro(ctx context.Context, env *Env) TagMacro {
	return TagMacro{
		Tag: "include",
		Transform: func(n *dom.Node) error {
			src, ok := n.Attr("src")
			if !ok {
				return nil
			}
			path := env.Resolve(src)
			data, err := os.ReadFile(path) // #nosec G304 -- template named by the document
			if err != nil {
				return ferrors.WrapError(err, ferrors.CategoryMacro, "include source unreadable").
					Warning().
					WithContext("src", src).
					Build()
			}

			template := dom.Parse(string(data))
			env.Engine.Apply(ctx, env.WithDir(filepath.Dir(path)), template)

			body := n.Children
			fillPlaceholders(template, body)
			n.Replace(template)
			return nil
		},
	}
}

// fillPlaceholders swaps every <content> below tree for a copy of body.
func fillPlaceholders(tree *dom.Node, body []*dom.Node) {
	tree.Eval(func(x *dom.Node) {
		if x.IsTag(placeholderTag) {
			x.Replace(dom.NewFragment(dom.CloneAll(body)...))
		}
	})
}
