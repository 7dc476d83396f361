package watch

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// scheduler runs the periodic full rebuild.
type scheduler struct {
	s gocron.Scheduler
}

func newScheduler(interval time.Duration, task func()) (*scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName("periodic-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	return &scheduler{s: s}, nil
}

func (s *scheduler) Start() { s.s.Start() }

func (s *scheduler) Stop() error { return s.s.Shutdown() }
