package macro

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/subscript/internal/cache"
	"git.home.luguber.info/inful/subscript/internal/dom"
	"git.home.luguber.info/inful/subscript/internal/markdown"
	"git.home.luguber.info/inful/subscript/internal/sass"
)

type fixture struct {
	env  *Env
	logs *bytes.Buffer
	src  string
}

func newFixture(t *testing.T, sources ...Source) *fixture {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "site")
	require.NoError(t, os.MkdirAll(src, 0o750))

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))
	if len(sources) == 0 {
		sources = []Source{Natives{}}
	}
	env := &Env{
		CurrentDir: src,
		OutputDir:  filepath.Join(root, "out"),
		Cache:      cache.New(cache.WithLogger(logger)),
		Engine:     NewEngine(sources...),
		Markdown:   markdown.NewGoldmark(),
		Sass:       sass.Func(func(string) (string, error) { return "body{}", nil }),
		Logger:     logger,
	}
	return &fixture{env: env, logs: logs, src: src}
}

func (f *fixture) write(t *testing.T, name, content string) {
	t.Helper()
	p := filepath.Join(f.src, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

// compile runs both passes and renders.
func (f *fixture) compile(text string) string {
	tree := dom.Parse(text)
	f.env.Engine.Apply(context.Background(), f.env, tree)
	Postprocess(context.Background(), f.env, tree)
	tree.Normalize()
	return dom.Render(tree)
}

func (f *fixture) apply(tree *dom.Node) {
	f.env.Engine.Apply(context.Background(), f.env, tree)
}
