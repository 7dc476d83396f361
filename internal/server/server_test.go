package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/subscript/internal/metrics"
)

func site(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<p>home</p>\n"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pages"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pages", "about.html"), []byte("<p>about</p>\n"), 0o600))
	return root
}

func TestHandlerServesFilesAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewPrometheusRecorder(reg).IncBuildOutcome(metrics.ResultSuccess)
	s := New(Options{Root: site(t), Registry: reg, Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>home</p>\n", rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pages/about.html", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>about</p>\n", rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "./", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "subscript_build_outcomes_total")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing.html", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNoMetricsWithoutRegistry(t *testing.T) {
	s := New(Options{Root: site(t)})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPanicRecovery(t *testing.T) {
	logs := &bytes.Buffer{}
	h := chain(slog.New(slog.NewTextHandler(logs, nil)), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "HTTP handler panic")
}

func TestRunServesUntilCancelled(t *testing.T) {
	s := New(Options{Addr: "127.0.0.1:0", Root: site(t), Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.URL() != "" }, 2*time.Second, 10*time.Millisecond)
	resp, err := http.Get(s.URL() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "<p>home</p>\n", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
