package build

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/subscript/internal/config"
	"git.home.luguber.info/inful/subscript/internal/journal"
	"git.home.luguber.info/inful/subscript/internal/macro"
	"git.home.luguber.info/inful/subscript/internal/metrics"
	"git.home.luguber.info/inful/subscript/internal/sass"
	"git.home.luguber.info/inful/subscript/internal/script"
)

type countingRecorder struct {
	metrics.NoopRecorder
	mu        sync.Mutex
	documents map[metrics.ResultLabel]int
	builds    []metrics.ResultLabel
}

func (r *countingRecorder) IncDocumentResult(l metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.documents == nil {
		r.documents = make(map[metrics.ResultLabel]int)
	}
	r.documents[l]++
}

func (r *countingRecorder) IncBuildOutcome(l metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builds = append(r.builds, l)
}

type project struct {
	root string
	cfg  *config.Config
	logs *bytes.Buffer
}

func newProject(t *testing.T, files map[string]string, pages ...string) *project {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	out := filepath.Join(root, "out")
	cfg := &config.Config{Root: root, OutputDir: out, Build: config.BuildConfig{Parallelism: 2}}
	for _, name := range pages {
		cfg.Pages = append(cfg.Pages, config.Page{
			Input:  filepath.Join(root, filepath.FromSlash(name)),
			Output: filepath.Join(out, filepath.FromSlash(name)),
		})
	}
	return &project{root: root, cfg: cfg, logs: &bytes.Buffer{}}
}

func (p *project) builder(opts ...Option) *Builder {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(p.logs, nil))),
		WithBridge(script.Load(nil)),
		WithSass(sass.Func(func(string) (string, error) { return "body{}", nil })),
	}
	return New(p.cfg, append(base, opts...)...)
}

func (p *project) output(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(p.cfg.OutputDir, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

func TestBuildCompilesPages(t *testing.T) {
	p := newProject(t, map[string]string{
		"a.html":     `<p><tex>x</tex></p>`,
		"sub/b.html": `<page-nav><page route="/sub/b.html" title="B"></page></page-nav><img src="../pic.png">`,
		"pic.png":    "png",
	}, "a.html", "sub/b.html", "missing.html")

	j, err := journal.Open(":memory:")
	require.NoError(t, err)
	defer j.Close()
	rec := &countingRecorder{}

	report, err := p.builder(WithJournal(j), WithRecorder(rec)).Build(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "<p><span latex=\"inline\">\\(x\\)</span></p>\n", p.output(t, "a.html"))
	b := p.output(t, "sub/b.html")
	assert.Contains(t, b, `<li active><a href="/sub/b.html">B</a></li>`)
	assert.Contains(t, b, `<img src="/ss-data/`)

	assets, err := os.ReadDir(filepath.Join(p.cfg.OutputDir, "ss-data"))
	require.NoError(t, err)
	assert.Len(t, assets, 1)

	assert.Equal(t, BuildStatusFailed, report.Status)
	require.Len(t, report.Failed(), 1)
	assert.Equal(t, filepath.Join(p.root, "missing.html"), report.Failed()[0].Page.Input)
	assert.Equal(t, "/sub/b.html", report.Pages[1].Route)
	assert.NotEmpty(t, report.BuildID)

	entries, err := j.ForBuild(context.Background(), report.BuildID)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	assert.Equal(t, 2, rec.documents[metrics.ResultSuccess])
	assert.Equal(t, 1, rec.documents[metrics.ResultFailed])
	assert.Equal(t, []metrics.ResultLabel{metrics.ResultFailed}, rec.builds)
}

func TestBuildCountsWarnings(t *testing.T) {
	p := newProject(t, map[string]string{
		"a.html":     `<link href="style.scss">`,
		"style.scss": "body{}",
		"plain.html": `<p>ok</p>`,
	}, "a.html", "plain.html")

	failing := sass.Func(func(string) (string, error) { return "", errors.New("boom") })
	report, err := p.builder(WithSass(failing)).Build(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, BuildStatusSuccess, report.Status)
	assert.Equal(t, metrics.ResultWarning, report.Pages[0].Status)
	assert.Equal(t, 1, report.Pages[0].Warnings)
	assert.Equal(t, metrics.ResultSuccess, report.Pages[1].Status)
	assert.Equal(t, "<link href=\"style.scss\">\n", p.output(t, "a.html"))
	assert.Contains(t, p.logs.String(), "macro failed")
}

func TestMissingAssetWarnsAgainstPage(t *testing.T) {
	p := newProject(t, map[string]string{
		"a.html": `<p><img src="missing.png"></p>`,
		"b.html": `<p>ok</p>`,
	}, "a.html", "b.html")

	report, err := p.builder().Build(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, metrics.ResultWarning, report.Pages[0].Status)
	assert.GreaterOrEqual(t, report.Pages[0].Warnings, 1)
	assert.Equal(t, metrics.ResultSuccess, report.Pages[1].Status)
	assert.Contains(t, p.output(t, "a.html"), `<img src="missing.png">`)

	var line string
	for _, l := range strings.Split(p.logs.String(), "\n") {
		if strings.Contains(l, "ignoring asset") {
			line = l
		}
	}
	require.NotEmpty(t, line)
	assert.Contains(t, line, "build.id="+report.BuildID)
	assert.Contains(t, line, "page=/a.html")
}

func TestBuildCancelled(t *testing.T) {
	p := newProject(t, map[string]string{"a.html": "<p>a</p>"}, "a.html")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := p.builder().Build(ctx, "")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, BuildStatusCancelled, report.Status)
	assert.Equal(t, metrics.ResultSkipped, report.Pages[0].Status)
}

func TestRebuildInvalidatesChangedAsset(t *testing.T) {
	p := newProject(t, map[string]string{
		"a.html":  `<img src="pic.png">`,
		"pic.png": "one",
	}, "a.html")
	b := p.builder()

	_, err := b.Build(context.Background(), "")
	require.NoError(t, err)
	first := p.output(t, "a.html")

	pic := filepath.Join(p.root, "pic.png")
	require.NoError(t, os.WriteFile(pic, []byte("two"), 0o600))
	_, err = b.Build(context.Background(), pic)
	require.NoError(t, err)
	second := p.output(t, "a.html")

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(second, `<img src="/ss-data/`))
}

func TestCompileStringDocument(t *testing.T) {
	env := &macro.Env{CurrentDir: t.TempDir()}
	out := CompileString(context.Background(), env, "<!doctype html><html><head><title>t</title></head><body><h1>Intro</h1><toc></toc></body></html>")

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>\n<html>"))
	assert.Contains(t, out, "katex")
	assert.Contains(t, out, `macro="toc"`)
}

func TestCountingHandler(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, n := newCountingLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelError})))

	logger.With("k", "v").Warn("w")
	logger.WithGroup("g").Error("e")
	logger.Info("i")

	assert.Equal(t, int64(2), n.Load())
	assert.NotContains(t, buf.String(), "msg=w")
	assert.Contains(t, buf.String(), "msg=e")
}
