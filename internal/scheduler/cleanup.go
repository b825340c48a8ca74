package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"deckhand/internal/tasks"
)

// DefaultSchedule runs upload cleanup nightly.
const DefaultSchedule = "0 3 * * *"

// TaskEnqueuer enqueues background tasks. Satisfied by *tasks.Client.
type TaskEnqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// CleanupScheduler periodically enqueues upload cleanup tasks.
type CleanupScheduler struct {
	enqueuer       TaskEnqueuer
	schedule       string
	retentionHours int

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewCleanupScheduler creates a scheduler that enqueues a CleanupUploadsTask
// on the given cron schedule. An empty schedule falls back to DefaultSchedule.
func NewCleanupScheduler(enqueuer TaskEnqueuer, schedule string, retentionHours int) *CleanupScheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &CleanupScheduler{
		enqueuer:       enqueuer,
		schedule:       schedule,
		retentionHours: retentionHours,
		cron:           cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.enqueueCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule upload cleanup '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Upload cleanup scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Upload cleanup scheduler: stopped")
}

// RunNow enqueues a cleanup task immediately.
func (s *CleanupScheduler) RunNow() {
	s.enqueueCleanup()
}

// IsRunning returns whether the scheduler is active.
func (s *CleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next cleanup will be enqueued.
func (s *CleanupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

func (s *CleanupScheduler) enqueueCleanup() {
	_, err := s.enqueuer.Add(tasks.CleanupUploadsTask{RetentionHours: s.retentionHours}).Save()
	if err != nil {
		log.Printf("Upload cleanup scheduler: failed to enqueue task: %v", err)
		return
	}
	log.Printf("Upload cleanup scheduler: enqueued cleanup task")
}
