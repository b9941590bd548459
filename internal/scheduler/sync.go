package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// SyncScheduler runs the highlight sync pipeline on a cron schedule.
// Overlapping runs are skipped rather than queued: the pipeline assumes
// exclusive read access to the device database.
type SyncScheduler struct {
	schedule string
	job      func() error

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// New creates a scheduler that invokes job on the given cron schedule.
func New(schedule string, job func() error) *SyncScheduler {
	return &SyncScheduler{
		schedule: schedule,
		job:      job,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler and blocks until the context is cancelled.
func (s *SyncScheduler) Start(ctx context.Context) error {
	entryID, err := s.cron.AddFunc(s.schedule, s.runSync)
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	log.Printf("Sync scheduler started with schedule %q. Next run: %v",
		s.schedule, s.cron.Entry(entryID).Next)

	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	log.Printf("Sync scheduler stopped")

	return nil
}

func (s *SyncScheduler) runSync() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Printf("Previous sync still running, skipping this run")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if err := s.job(); err != nil {
		log.Printf("Scheduled sync failed: %v", err)
	}
}
