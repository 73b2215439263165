package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type FetchPruner interface {
	PruneFetches(before time.Time) (int64, error)
}

// PruneFetchesTask drops fetch log rows older than the retention window.
type PruneFetchesTask struct {
	Task
	pruner    FetchPruner
	retention time.Duration
}

func NewPruneFetchesTask(pruner FetchPruner, retention time.Duration) *PruneFetchesTask {
	return &PruneFetchesTask{
		Task:      NewTask(TaskTypePruneFetches, ""),
		pruner:    pruner,
		retention: retention,
	}
}

func (t *PruneFetchesTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	pruned, err := t.pruner.PruneFetches(time.Now().Add(-t.retention))
	if err != nil {
		return fmt.Errorf("failed to prune fetch log: %w", err)
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"duration", t.GetDuration(),
		"pruned", pruned)

	return nil
}
