package metrics

import (
	"testing"
	"time"
)

func TestOrNoop(t *testing.T) {
	r := OrNoop(nil)
	if _, ok := r.(NoopRecorder); !ok {
		t.Fatalf("expected NoopRecorder, got %T", r)
	}
	r.IncMacroApplication("tex", "native", ResultSuccess)
	r.ObserveDocumentDuration(time.Millisecond)

	pr := NewPrometheusRecorder(nil)
	if OrNoop(pr) != Recorder(pr) {
		t.Fatal("expected the given recorder back")
	}
}
