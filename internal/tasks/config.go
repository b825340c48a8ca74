package tasks

import "time"

// Config tunes the task queue. Zero values are not usable; callers either
// populate every field from the application config or start from
// DefaultConfig.
type Config struct {
	// Number of concurrent task workers.
	Workers int

	// Maximum attempts for a failing task before it is abandoned.
	MaxRetries int

	// Backoff between retry attempts.
	RetryDelay time.Duration

	// Per-task execution deadline.
	TaskTimeout time.Duration

	// Age at which a claimed but unfinished task is returned to the queue.
	ReleaseAfter time.Duration

	// How often completed tasks are swept from the queue database.
	CleanupInterval time.Duration

	// How long completed tasks are kept before the sweep removes them.
	RetentionDuration time.Duration
}

// DefaultConfig returns the tuning used when no overrides are configured.
func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        1 * time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}
