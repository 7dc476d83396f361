package macro

import (
	"strings"

	"git.home.luguber.info/inful/subscript/internal/dom"
	ferrors "git.home.luguber.info/inful/subscript/internal/foundation/errors"
	"git.home.luguber.info/inful/subscript/internal/sass"
)

// imgMacro turns `width` into a responsive max-width style and relocates
// `src` through the cache. Each step runs once per node.
func imgMacro(env *Env) TagMacro {
	return TagMacro{
		Tag: "img",
		Transform: func(n *dom.Node) error {
			if width, ok := n.Attr("width"); ok && !n.HasAttr(markerImgWidth) {
				decl := "min-width: 0; max-width: " + width + "; width: 100%;"
				if style, ok := n.Attr("style"); ok && strings.TrimSpace(style) != "" {
					decl = strings.TrimRight(strings.TrimSpace(style), ";") + "; " + decl
				}
				n.SetAttr("style", decl)
				n.SetAttr(markerImgWidth, "")
			}
			if src, ok := n.Attr("src"); ok && !n.HasAttr(markerImgSrc) {
				ref, err := env.cache().File(env.Location(), src)
				if err != nil {
					return err
				}
				n.SetAttr("src", ref.Path)
				n.SetAttr(markerImgSrc, "")
			}
			return nil
		},
	}
}

// scriptMacro relocates local script sources.
func scriptMacro(env *Env) TagMacro {
	return TagMacro{
		Tag: "script",
		Transform: func(n *dom.Node) error {
			if n.HasAttr(markerScript) {
				return nil
			}
			src, ok := n.Attr("src")
			if !ok {
				return nil
			}
			ref, err := env.cache().File(env.Location(), src)
			if err != nil {
				return err
			}
			n.SetAttr("src", ref.Path)
			n.SetAttr(markerScript, "")
			return nil
		},
	}
}

// linkMacro relocates stylesheets. Sass sources are compiled and the CSS is
// stored as a generated asset keyed by the original href; the compiled
// output is reused until a sass file changes.
func linkMacro(env *Env) TagMacro {
	return TagMacro{
		Tag: "link",
		Transform: func(n *dom.Node) error {
			if n.HasAttr(markerLink) {
				return nil
			}
			href, ok := n.Attr("href")
			if !ok {
				return nil
			}
			if !sass.IsSassFile(href) {
				ref, err := env.cache().File(env.Location(), href)
				if err != nil {
					return err
				}
				n.SetAttr("href", ref.Path)
				n.SetAttr(markerLink, "")
				return nil
			}

			out, err := compileStylesheet(env, href)
			if err != nil {
				return err
			}
			n.Replace(dom.NewElement("link", dom.Attrs(
				"href", out,
				"rel", "stylesheet",
				markerLink, "",
			)))
			return nil
		},
	}
}

func compileStylesheet(env *Env, href string) (string, error) {
	c := env.cache()
	if out, ok := c.LookupHashFile(href); ok && !sass.IsSassFile(env.Changed) {
		return out, nil
	}
	if env.Sass == nil {
		return "", ferrors.NewError(ferrors.CategoryStyle, "no sass compiler configured").
			Warning().
			WithContext("href", href).
			Build()
	}
	css, err := env.Sass.Compile(env.Resolve(href))
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryStyle, "sass compiler failed").
			Warning().
			WithContext("href", href).
			Build()
	}
	return c.HashFile(env.Location(), href, css)
}

// assetGlobMacro expands `src` into clickable images placed wherever the
// node's children hold a <content> placeholder. The node itself dissolves.
func assetGlobMacro(env *Env) TagMacro {
	return TagMacro{
		Tag: "asset-glob",
		Transform: func(n *dom.Node) error {
			var images []*dom.Node
			if src, ok := n.Attr("src"); ok {
				for _, ref := range env.cache().Glob(env.Location(), src) {
					images = append(images, dom.NewElement("img", dom.Attrs(
						"src", ref,
						"onclick", "location.href='"+ref+"';",
						markerImgSrc, "",
					)))
				}
			}
			contents := dom.NewFragment(n.Children...)
			fillPlaceholders(contents, images)
			n.Replace(contents)
			return nil
		},
	}
}
