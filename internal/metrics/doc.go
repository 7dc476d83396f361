// Package metrics provides build observability for subscript.
//
// Components receive a Recorder and default to NoopRecorder, so nothing needs
// a nil check. The CLI swaps in a PrometheusRecorder when the preview server
// exposes /metrics:
//
//	reg := prom.NewRegistry()
//	builder := build.New(cfg, build.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//	mux.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
