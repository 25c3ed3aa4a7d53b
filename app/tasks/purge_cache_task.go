package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// PurgeCacheTask removes cache entries that can no longer be served, not even
// as stale.
type PurgeCacheTask struct {
	Task
	olderThan time.Duration
	purger    Purger
}

func NewPurgeCacheTask(purger Purger, olderThan time.Duration) *PurgeCacheTask {
	return &PurgeCacheTask{
		Task:      NewTask(TaskTypePurgeCache, "cache"),
		olderThan: olderThan,
		purger:    purger,
	}
}

func (t *PurgeCacheTask) Execute(ctx context.Context) error {
	removed, err := t.purger.Purge(ctx, t.olderThan)
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}

	slog.Info("Task completed",
		"type", "PurgeCache",
		"duration", t.GetDuration(),
		"removed", removed)

	return nil
}
