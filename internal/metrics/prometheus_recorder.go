package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "subscript"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	buildDuration    prom.Histogram
	buildOutcome     *prom.CounterVec
	documentDuration prom.Histogram
	documentResults  *prom.CounterVec
	macroResults     *prom.CounterVec
	cacheLookups     *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"result"}),
		documentDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "document_duration_seconds",
			Help:      "Time to compile one input document",
			Buckets:   prom.ExponentialBuckets(0.001, 2, 12),
		}),
		documentResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "document_results_total",
			Help:      "Compiled documents by result",
		}, []string{"result"}),
		macroResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "macro_applications_total",
			Help:      "Macro applications by tag, source and result",
		}, []string{"tag", "source", "result"}),
		cacheLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Asset cache lookups by operation and hit",
		}, []string{"op", "hit"}),
	}
	reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.documentDuration, pr.documentResults, pr.macroResults, pr.cacheLookups)
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(result ResultLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveDocumentDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.documentDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDocumentResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.documentResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncMacroApplication(tag, source string, result ResultLabel) {
	if p == nil {
		return
	}
	p.macroResults.WithLabelValues(tag, source, string(result)).Inc()
}

func (p *PrometheusRecorder) IncCacheLookup(op string, hit bool) {
	if p == nil {
		return
	}
	p.cacheLookups.WithLabelValues(op, strconv.FormatBool(hit)).Inc()
}
