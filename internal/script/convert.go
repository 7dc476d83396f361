package script

import (
	"fmt"

	starlarkjson "go.starlark.net/lib/json"
	"go.starlark.net/starlark"

	"git.home.luguber.info/inful/subscript/internal/dom"
)

// ToValue converts a node to its script form: text becomes a string, a
// fragment a list and an element a dict with tag, attrs and children.
func ToValue(n *dom.Node) starlark.Value {
	if n == nil {
		return starlark.None
	}
	switch n.Kind {
	case dom.TextNode:
		return starlark.String(n.Data)
	case dom.FragmentNode:
		return childList(n.Children)
	default:
		attrs := starlark.NewDict(len(n.Attrs))
		for _, a := range n.Attrs {
			_ = attrs.SetKey(starlark.String(a.Key), starlark.String(a.Val))
		}
		el := starlark.NewDict(3)
		_ = el.SetKey(starlark.String("tag"), starlark.String(n.Tag))
		_ = el.SetKey(starlark.String("attrs"), attrs)
		_ = el.SetKey(starlark.String("children"), childList(n.Children))
		return el
	}
}

func childList(nodes []*dom.Node) *starlark.List {
	vals := make([]starlark.Value, 0, len(nodes))
	for _, c := range nodes {
		if c != nil {
			vals = append(vals, ToValue(c))
		}
	}
	return starlark.NewList(vals)
}

// FromValue is the inverse of ToValue. None becomes an empty fragment.
func FromValue(v starlark.Value) (*dom.Node, error) {
	switch v := v.(type) {
	case starlark.NoneType:
		return dom.NewFragment(), nil
	case starlark.String:
		return dom.NewText(string(v)), nil
	case *starlark.Dict:
		return elementFromDict(v)
	case starlark.Indexable:
		children, err := nodesFrom(v)
		if err != nil {
			return nil, err
		}
		return dom.NewFragment(children...), nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", v.Type())
	}
}

func nodesFrom(list starlark.Indexable) ([]*dom.Node, error) {
	out := make([]*dom.Node, 0, list.Len())
	for i := range list.Len() {
		child, err := FromValue(list.Index(i))
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		out = append(out, child)
	}
	return out, nil
}

func elementFromDict(d *starlark.Dict) (*dom.Node, error) {
	tagVal, found, err := d.Get(starlark.String("tag"))
	if err != nil || !found {
		return nil, fmt.Errorf("dict has no tag key")
	}
	tag, ok := starlark.AsString(tagVal)
	if !ok || tag == "" {
		return nil, fmt.Errorf("tag must be a non-empty string, got %s", tagVal.Type())
	}

	var attrs dom.Attributes
	if v, found, _ := d.Get(starlark.String("attrs")); found && v != starlark.None {
		ad, ok := v.(*starlark.Dict)
		if !ok {
			return nil, fmt.Errorf("attrs must be a dict, got %s", v.Type())
		}
		for _, item := range ad.Items() {
			key, ok := starlark.AsString(item[0])
			if !ok {
				return nil, fmt.Errorf("attribute key %s is not a string", item[0])
			}
			attrs.Set(key, attrString(item[1]))
		}
	}

	var children []*dom.Node
	if v, found, _ := d.Get(starlark.String("children")); found && v != starlark.None {
		list, ok := v.(starlark.Indexable)
		if !ok {
			return nil, fmt.Errorf("children must be a list, got %s", v.Type())
		}
		if _, isStr := v.(starlark.String); isStr {
			return nil, fmt.Errorf("children must be a list, got string")
		}
		children, err = nodesFrom(list)
		if err != nil {
			return nil, err
		}
	}
	return dom.NewElement(tag, attrs, children...), nil
}

func attrString(v starlark.Value) string {
	if s, ok := starlark.AsString(v); ok {
		return s
	}
	if v == starlark.None {
		return ""
	}
	return v.String()
}

// dump renders v as indented JSON for diagnostics, falling back to the
// Starlark repr for values JSON cannot hold.
func dump(v starlark.Value) string {
	thread := &starlark.Thread{Name: "dump"}
	encoded, err := starlark.Call(thread, starlarkjson.Module.Members["encode"], starlark.Tuple{v}, nil)
	if err != nil {
		return v.String()
	}
	indented, err := starlark.Call(thread, starlarkjson.Module.Members["indent"], starlark.Tuple{encoded},
		[]starlark.Tuple{{starlark.String("indent"), starlark.String("  ")}})
	if err != nil {
		return v.String()
	}
	s, _ := starlark.AsString(indented)
	return s
}
