package script

import (
	"fmt"
	"math/rand/v2"

	starlarkjson "go.starlark.net/lib/json"
	"go.starlark.net/starlark"

	"git.home.luguber.info/inful/subscript/internal/dom"
)

// prelude is predeclared in every plugin file.
func prelude() starlark.StringDict {
	return starlark.StringDict{
		"new_rand_id":   starlark.NewBuiltin("new_rand_id", newRandID),
		"parse_html":    starlark.NewBuiltin("parse_html", parseHTML),
		"render_html":   starlark.NewBuiltin("render_html", renderHTML),
		"text_contents": starlark.NewBuiltin("text_contents", textContents),
		"json":          starlarkjson.Module,
	}
}

func newRandID(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.String(fmt.Sprintf("uid%d", rand.Uint64())), nil
}

func parseHTML(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text); err != nil {
		return nil, err
	}
	return ToValue(dom.Parse(text)), nil
}

func renderHTML(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "node", &v); err != nil {
		return nil, err
	}
	n, err := FromValue(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return starlark.String(dom.Render(n)), nil
}

func textContents(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "node", &v); err != nil {
		return nil, err
	}
	n, err := FromValue(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	if text, ok := n.TextContents(); ok {
		return starlark.String(text), nil
	}
	return starlark.None, nil
}
