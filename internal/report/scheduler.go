package report

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"
)

// runTimeout bounds a single scheduled report run.
const runTimeout = 30 * time.Minute

type runner interface {
	Run(ctx context.Context, now time.Time) (int, error)
}

// Scheduler runs the weekly reporter on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler validates spec (six fields, seconds first) and registers the
// reporter. Call Start to begin.
func NewScheduler(spec string, reporter runner) (*Scheduler, error) {
	c := cron.NewWithLocation(time.UTC)
	err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		startedAt := time.Now()
		sent, err := reporter.Run(ctx, startedAt)
		if err != nil {
			log.Errorf("scheduled weekly reports: %d sent, errors: %s", sent, err)
			return
		}
		log.Infof("scheduled weekly reports: %d sent in %s", sent, time.Since(startedAt))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid report schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
