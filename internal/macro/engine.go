// Package macro expands tag macros over a document tree.
//
// Every Source contributes TagMacros for one Apply call. The engine walks the
// tree once in post-order and, for each element, runs every macro registered
// for its tag in source order, each one on the node as left by the previous.
// A failing macro leaves its node exactly as it found it and logs a warning.
package macro

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/subscript/internal/dom"
	ferrors "git.home.luguber.info/inful/subscript/internal/foundation/errors"
	"git.home.luguber.info/inful/subscript/internal/logfields"
	"git.home.luguber.info/inful/subscript/internal/metrics"
)

// TagMacro rewrites elements with a given tag. Transform mutates the node in
// place (usually via Replace); returning nil without touching it declines.
type TagMacro struct {
	Tag       string
	Transform func(n *dom.Node) error
}

// Source supplies macros. Sources are asked once per Apply call.
type Source interface {
	Name() string
	TagMacros(ctx context.Context, env *Env) []TagMacro
}

// StaticSource is a fixed macro list.
type StaticSource struct {
	Label  string
	Macros []TagMacro
}

func (s StaticSource) Name() string { return s.Label }

func (s StaticSource) TagMacros(context.Context, *Env) []TagMacro { return s.Macros }

// Engine dispatches macros from its sources. Put script sources before the
// native one: on a shared tag the script macro fires first.
type Engine struct {
	sources []Source
}

// NewEngine builds an engine over sources, in dispatch order.
func NewEngine(sources ...Source) *Engine {
	return &Engine{sources: sources}
}

// Sources returns the configured sources.
func (e *Engine) Sources() []Source {
	return e.sources
}

type boundMacro struct {
	source string
	TagMacro
}

// Apply expands every macro in tree. It never fails: errors and panics in a
// transform are contained to the node.
func (e *Engine) Apply(ctx context.Context, env *Env, tree *dom.Node) {
	if tree == nil {
		return
	}
	if env.Engine == nil {
		cp := *env
		cp.Engine = e
		env = &cp
	}

	index := make(map[string][]boundMacro)
	for _, src := range e.sources {
		for _, m := range src.TagMacros(ctx, env) {
			if m.Transform == nil {
				continue
			}
			index[m.Tag] = append(index[m.Tag], boundMacro{source: src.Name(), TagMacro: m})
		}
	}
	if len(index) == 0 {
		return
	}

	tree.Eval(func(n *dom.Node) {
		tag, ok := n.TagName()
		if !ok {
			return
		}
		for _, m := range index[tag] {
			e.run(env, n, m)
		}
	})
}

func (e *Engine) run(env *Env, n *dom.Node, m boundMacro) {
	snapshot := n.Clone()
	err := invoke(m.Transform, n)
	if err == nil {
		env.recorder().IncMacroApplication(m.Tag, m.source, metrics.ResultSuccess)
		return
	}

	n.Replace(snapshot)
	env.recorder().IncMacroApplication(m.Tag, m.source, metrics.ResultWarning)

	args := []any{logfields.Tag(m.Tag), logfields.Macro(m.source), logfields.Error(err)}
	if ce, ok := ferrors.AsClassified(err); ok {
		args = append(args, ce.Context().Attrs()...)
	}
	env.logger().Warn("macro failed; node left unchanged", args...)
}

func invoke(transform func(*dom.Node) error, n *dom.Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ferrors.NewError(ferrors.CategoryMacro, fmt.Sprintf("macro panicked: %v", r)).
				Warning().
				Build()
		}
	}()
	return transform(n)
}

// Postprocess runs the whole-document passes that need the fully expanded
// tree. Currently that is the table of contents.
func Postprocess(ctx context.Context, env *Env, tree *dom.Node) {
	if tree == nil {
		return
	}
	n := BuildTOC(tree)
	if n > 0 {
		env.logger().Log(ctx, slog.LevelDebug, "table of contents built", logfields.Count(n))
	}
}
