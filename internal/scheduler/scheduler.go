package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// OrphanSweeper removes upload files that nothing references
type OrphanSweeper interface {
	SweepOrphans(referenced map[string]struct{}, grace time.Duration) ([]string, error)
}

// ReferenceSource lists the media urls still in use
type ReferenceSource interface {
	MediaURLs() map[string]struct{}
}

// IdleEvictor forgets clients that have been quiet for longer than idle
type IdleEvictor interface {
	EvictIdle(idle time.Duration) int
}

// Scheduler runs periodic maintenance jobs
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
}

// NewScheduler creates a scheduler; jobs are added with the Add* methods
func NewScheduler(log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(log)))),
		log:  log,
	}
}

// AddUploadSweep registers the orphan upload sweep on spec
func (s *Scheduler) AddUploadSweep(spec string, grace time.Duration, uploads OrphanSweeper, refs ReferenceSource) error {
	_, err := s.cron.AddFunc(spec, func() {
		SweepUploads(uploads, refs, grace, s.log)
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	s.log.Infof("Upload sweep scheduled: %s", spec)
	return nil
}

// AddThrottleEviction registers a job dropping idle per-client limiters on spec
func (s *Scheduler) AddThrottleEviction(spec string, idle time.Duration, evictor IdleEvictor) error {
	_, err := s.cron.AddFunc(spec, func() {
		if n := evictor.EvictIdle(idle); n > 0 {
			s.log.Debugf("Evicted %d idle login limiters", n)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid eviction schedule %q: %w", spec, err)
	}
	return nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SweepUploads runs one sweep and logs the outcome
func SweepUploads(uploads OrphanSweeper, refs ReferenceSource, grace time.Duration, log *logrus.Logger) []string {
	removed, err := uploads.SweepOrphans(refs.MediaURLs(), grace)
	if err != nil {
		log.Errorf("Upload sweep failed: %v", err)
	}
	if len(removed) > 0 {
		log.WithField("files", removed).Infof("Removed %d orphan uploads", len(removed))
	}
	return removed
}
