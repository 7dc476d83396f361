// Package script runs tag macros written in Starlark.
//
// A plugin file is executed once at load time. Its top level must define
// a list named plugins whose entries look like
//
//	{"type": "tag_macro", "tag": "box", "trans": "make_box"}
//
// where trans names a one-argument function of the same file. The function
// receives the matched node as a Starlark value and returns the replacement.
package script

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"go.starlark.net/starlark"

	"git.home.luguber.info/inful/subscript/internal/dom"
	ferrors "git.home.luguber.info/inful/subscript/internal/foundation/errors"
	"git.home.luguber.info/inful/subscript/internal/logfields"
	"git.home.luguber.info/inful/subscript/internal/macro"
)

const pluginType = "tag_macro"

// Plugin is one registered tag macro.
type Plugin struct {
	Tag   string
	Trans string
	File  string

	fn starlark.Callable
}

// Bridge holds the loaded plugins. It is safe for concurrent use once
// loaded: plugin globals are frozen by the interpreter.
type Bridge struct {
	plugins map[string]Plugin
	logger  *slog.Logger
}

// Option configures Load.
type Option func(*Bridge)

// WithLogger sets the logger for load diagnostics and script print output.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// Load executes every file in paths and collects its plugins. Files that fail
// to compile or run are logged and skipped. Later registrations of a tag win.
func Load(paths []string, opts ...Option) *Bridge {
	b := &Bridge{plugins: make(map[string]Plugin), logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}

	predeclared := prelude()
	for _, path := range paths {
		thread := b.thread("load " + path)
		globals, err := starlark.ExecFile(thread, path, nil, predeclared)
		if err != nil {
			args := []any{logfields.Plugin(path), logfields.Error(err)}
			var evalErr *starlark.EvalError
			if errors.As(err, &evalErr) {
				args = append(args, slog.String("backtrace", evalErr.Backtrace()))
			}
			b.logger.Warn("failed to load plugin file; skipping", args...)
			continue
		}
		for _, p := range b.readPlugins(path, globals) {
			b.plugins[p.Tag] = p
		}
	}
	b.logger.Debug("script plugins loaded", logfields.Count(len(b.plugins)))
	return b
}

func (b *Bridge) readPlugins(path string, globals starlark.StringDict) []Plugin {
	list, ok := globals["plugins"].(starlark.Indexable)
	if !ok {
		return nil
	}
	var out []Plugin
	for i := range list.Len() {
		entry, ok := list.Index(i).(*starlark.Dict)
		if !ok {
			continue
		}
		typ, okType := dictString(entry, "type")
		tag, okTag := dictString(entry, "tag")
		trans, okTrans := dictString(entry, "trans")
		if !okType || !okTag || !okTrans {
			continue
		}
		if strings.ReplaceAll(typ, "-", "_") != pluginType {
			continue
		}
		fn, ok := globals[trans].(starlark.Callable)
		if !ok {
			b.logger.Warn("plugin function not found", logfields.Plugin(path), logfields.Tag(tag), slog.String("trans", trans))
			continue
		}
		out = append(out, Plugin{Tag: tag, Trans: trans, File: path, fn: fn})
	}
	return out
}

func dictString(d *starlark.Dict, key string) (string, bool) {
	v, found, err := d.Get(starlark.String(key))
	if err != nil || !found {
		return "", false
	}
	return starlark.AsString(v)
}

func (b *Bridge) thread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(t *starlark.Thread, msg string) {
			b.logger.Info(msg, slog.String("thread", t.Name))
		},
	}
}

// Tags returns the claimed tags, sorted.
func (b *Bridge) Tags() []string {
	tags := make([]string, 0, len(b.plugins))
	for tag := range b.plugins {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Plugin returns the plugin registered for tag.
func (b *Bridge) Plugin(tag string) (Plugin, bool) {
	p, ok := b.plugins[tag]
	return p, ok
}

// Name implements macro.Source.
func (b *Bridge) Name() string { return "script" }

// TagMacros implements macro.Source.
func (b *Bridge) TagMacros(context.Context, *macro.Env) []macro.TagMacro {
	tags := b.Tags()
	out := make([]macro.TagMacro, 0, len(tags))
	for _, tag := range tags {
		out = append(out, macro.TagMacro{Tag: tag, Transform: b.ConsiderNode})
	}
	return out
}

// ConsiderNode runs the plugin registered for n's tag, if any, and replaces n
// with the result. On failure n is left untouched.
func (b *Bridge) ConsiderNode(n *dom.Node) error {
	tag, ok := n.TagName()
	if !ok {
		return nil
	}
	p, ok := b.plugins[tag]
	if !ok {
		return nil
	}

	thread := b.thread(p.Tag)
	result, err := starlark.Call(thread, p.fn, starlark.Tuple{ToValue(n)}, nil)
	if err != nil {
		builder := ferrors.WrapError(err, ferrors.CategoryPlugin, "plugin call failed").
			Warning().
			WithContext("plugin", p.File).
			WithContext("trans", p.Trans)
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			builder = builder.WithContext("backtrace", evalErr.Backtrace())
		}
		return builder.Build()
	}

	node, err := FromValue(result)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryPlugin, "plugin returned a value that is not a node").
			Warning().
			WithContext("plugin", p.File).
			WithContext("trans", p.Trans).
			WithContext("value", dump(result)).
			Build()
	}
	n.Replace(node)
	return nil
}
