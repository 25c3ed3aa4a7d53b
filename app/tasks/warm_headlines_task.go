package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/headlines/app/headlines"
)

// WarmHeadlinesTask recomputes one headlines variant whose cached entry has
// expired. Fresh entries are left alone.
type WarmHeadlinesTask struct {
	Task
	Query     headlines.Query
	refresher Refresher
}

func NewWarmHeadlinesTask(query headlines.Query, refresher Refresher) *WarmHeadlinesTask {
	return &WarmHeadlinesTask{
		Task:      NewTask(TaskTypeWarmHeadlines, query.String()),
		Query:     query,
		refresher: refresher,
	}
}

func (t *WarmHeadlinesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	refreshed, err := t.refresher.Refresh(ctx, t.Query)
	if err != nil {
		return fmt.Errorf("failed to refresh headlines: %w", err)
	}

	if !refreshed {
		slog.Debug("Cached variant still fresh", "variant", t.Target)
		return nil
	}

	slog.Info("Task completed",
		"type", "WarmHeadlines",
		"variant", t.Target,
		"duration", t.GetDuration())

	return nil
}
