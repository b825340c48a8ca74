package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// UploadPruner removes stored archives older than the given age.
type UploadPruner interface {
	PruneOlderThan(age time.Duration) (int, error)
}

// CleanupUploadsTask removes uploaded archives older than the configured
// retention period.
type CleanupUploadsTask struct {
	RetentionHours int `json:"retention_hours"`
}

// Config returns the queue configuration for upload cleanup tasks.
func (t CleanupUploadsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_uploads",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupUploadsProcessor creates a processor function for CleanupUploadsTask.
func CleanupUploadsProcessor(pruner UploadPruner) backlite.QueueProcessor[CleanupUploadsTask] {
	return func(ctx context.Context, task CleanupUploadsTask) error {
		if pruner == nil {
			return fmt.Errorf("upload pruner not configured")
		}

		retentionHours := task.RetentionHours
		if retentionHours <= 0 {
			retentionHours = 72
		}
		retention := time.Duration(retentionHours) * time.Hour

		removed, err := pruner.PruneOlderThan(retention)
		if err != nil {
			return fmt.Errorf("cleanup uploads: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d uploaded archives older than %dh", removed, retentionHours)
		return nil
	}
}

// NewCleanupUploadsQueue creates a backlite queue for upload cleanup tasks.
func NewCleanupUploadsQueue(pruner UploadPruner) backlite.Queue {
	return backlite.NewQueue(CleanupUploadsProcessor(pruner))
}
