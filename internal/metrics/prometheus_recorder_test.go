package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncBuildOutcome(ResultSuccess)
	pr.ObserveDocumentDuration(3 * time.Millisecond)
	pr.IncDocumentResult(ResultSuccess)
	pr.IncMacroApplication("img", "native", ResultSuccess)
	pr.IncMacroApplication("img", "native", ResultSuccess)
	pr.IncCacheLookup("file", true)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
	if got := testutil.ToFloat64(pr.macroResults.WithLabelValues("img", "native", "success")); got != 2 {
		t.Fatalf("expected 2 img applications, got %v", got)
	}
}

func TestHTTPHandlerServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncCacheLookup("glob", false)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `subscript_cache_lookups_total{hit="false",op="glob"} 1`) {
		t.Fatalf("cache counter missing from scrape:\n%s", rec.Body.String())
	}
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncCacheLookup("file", true)
	pr.ObserveBuildDuration(time.Second)
}
