package commands

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/subscript/internal/build"
	ferrors "git.home.luguber.info/inful/subscript/internal/foundation/errors"
	"git.home.luguber.info/inful/subscript/internal/metrics"
)

func writeProject(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"subscript.toml":   manifest,
		"index.html":       `<p>home</p>`,
		"pages/about.html": `<p>about</p>`,
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return filepath.Join(dir, "subscript.toml")
}

const baseManifest = `
[project]
pages = ["index.html", "pages/*.html"]

[server]
metrics = false
`

const journalManifest = baseManifest + `
[build]
journal = true
`

func TestCompileWritesOutput(t *testing.T) {
	manifest := writeProject(t, baseManifest)
	cmd := &CompileCmd{}

	require.NoError(t, cmd.Run(&Global{Stdout: &bytes.Buffer{}}, &CLI{Manifest: manifest}))

	out, err := os.ReadFile(filepath.Join(filepath.Dir(manifest), "output", "pages", "about.html"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "<p>about</p>")
}

func TestCompileMissingManifest(t *testing.T) {
	cmd := &CompileCmd{}
	err := cmd.Run(&Global{}, &CLI{Manifest: filepath.Join(t.TempDir(), "subscript.toml")})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestRenderToStdout(t *testing.T) {
	manifest := writeProject(t, baseManifest)
	var stdout bytes.Buffer
	cmd := &RenderCmd{File: filepath.Join(filepath.Dir(manifest), "index.html")}

	require.NoError(t, cmd.Run(&Global{Stdout: &stdout}, &CLI{Manifest: manifest}))
	assert.Equal(t, "<p>home</p>\n", stdout.String())
}

func TestRenderToFile(t *testing.T) {
	manifest := writeProject(t, baseManifest)
	target := filepath.Join(t.TempDir(), "rendered.html")
	cmd := &RenderCmd{File: filepath.Join(filepath.Dir(manifest), "index.html"), Output: target}

	var stdout bytes.Buffer
	require.NoError(t, cmd.Run(&Global{Stdout: &stdout}, &CLI{Manifest: manifest}))
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "<p>home</p>\n", string(data))
}

func TestHistoryRequiresJournal(t *testing.T) {
	manifest := writeProject(t, baseManifest)
	cmd := &HistoryCmd{Limit: 20}

	err := cmd.Run(&Global{Stdout: &bytes.Buffer{}}, &CLI{Manifest: manifest})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestHistoryListsBuilds(t *testing.T) {
	manifest := writeProject(t, journalManifest)
	root := &CLI{Manifest: manifest}
	require.NoError(t, (&CompileCmd{}).Run(&Global{}, root))

	var stdout bytes.Buffer
	require.NoError(t, (&HistoryCmd{Limit: 20}).Run(&Global{Stdout: &stdout}, root))

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "TIME"))
	assert.Contains(t, stdout.String(), "about.html")
	assert.Contains(t, stdout.String(), string(metrics.ResultSuccess))
}

func TestOpenProjectWarnsWhenJournalUnavailable(t *testing.T) {
	manifest := writeProject(t, journalManifest)
	// A file where the output directory should be makes the journal unopenable.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(manifest), "output"), []byte("x"), 0o600))

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	p, err := openProject(manifest, false)
	require.NoError(t, err)
	defer p.Close()

	assert.Nil(t, p.journal)
	assert.Contains(t, logs.String(), `msg="build journal unavailable"`)
	assert.Contains(t, logs.String(), "path="+filepath.Join(filepath.Dir(manifest), "output", ".subscript", "journal.db"))
	assert.Contains(t, logs.String(), "error=")
}

func TestReportError(t *testing.T) {
	assert.NoError(t, reportError(&build.Report{Pages: []build.PageResult{{Status: metrics.ResultSuccess}}}))

	err := reportError(&build.Report{
		BuildID: "b1",
		Pages: []build.PageResult{
			{Status: metrics.ResultSuccess},
			{Status: metrics.ResultFailed, Err: assert.AnError},
		},
	})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryBuild))
	assert.Contains(t, err.Error(), "1 of 2 pages failed")
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, false, "json").Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))

	buf.Reset()
	newLogger(&buf, false, "text").Debug("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, true, "text").Debug("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Empty(t, firstNonEmpty("", ""))
}
