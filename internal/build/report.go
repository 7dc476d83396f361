package build

import (
	"time"

	"git.home.luguber.info/inful/subscript/internal/config"
	"git.home.luguber.info/inful/subscript/internal/metrics"
)

// BuildStatus represents the outcome of a build.
type BuildStatus string

const (
	// BuildStatusSuccess means every page compiled.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusFailed means at least one page failed.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled means the context ended before all pages ran.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// PageResult is the outcome of one page.
type PageResult struct {
	Page     config.Page
	Route    string
	Status   metrics.ResultLabel
	Warnings int
	Duration time.Duration
	Err      error
}

// Report summarizes a build.
type Report struct {
	BuildID   string
	Status    BuildStatus
	Changed   string
	Pages     []PageResult
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Failed returns the pages that did not compile.
func (r *Report) Failed() []PageResult {
	var out []PageResult
	for _, p := range r.Pages {
		if p.Status == metrics.ResultFailed {
			out = append(out, p)
		}
	}
	return out
}

// Warnings is the total warning count over all pages.
func (r *Report) Warnings() int {
	n := 0
	for _, p := range r.Pages {
		n += p.Warnings
	}
	return n
}

func (r *Report) outcome() metrics.ResultLabel {
	switch r.Status {
	case BuildStatusFailed:
		return metrics.ResultFailed
	case BuildStatusCancelled:
		return metrics.ResultSkipped
	}
	if r.Warnings() > 0 {
		return metrics.ResultWarning
	}
	return metrics.ResultSuccess
}
