package metrics

import "time"

// ResultLabel enumerates result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFailed  ResultLabel = "failed"
	ResultSkipped ResultLabel = "skipped"
)

// Recorder defines observability hooks for builds, documents, macros and the
// asset cache. Implementations must be safe for concurrent use; documents
// are compiled in parallel.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(result ResultLabel)
	ObserveDocumentDuration(d time.Duration)
	IncDocumentResult(result ResultLabel)
	IncMacroApplication(tag, source string, result ResultLabel)
	IncCacheLookup(op string, hit bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are off).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)              {}
func (NoopRecorder) IncBuildOutcome(ResultLabel)                     {}
func (NoopRecorder) ObserveDocumentDuration(time.Duration)           {}
func (NoopRecorder) IncDocumentResult(ResultLabel)                   {}
func (NoopRecorder) IncMacroApplication(string, string, ResultLabel) {}
func (NoopRecorder) IncCacheLookup(string, bool)                     {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
