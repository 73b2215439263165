package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/ticker-comb/app/news"
)

// NewsRefresher refetches one symbol's news and overwrites the cached copy.
type NewsRefresher interface {
	Refresh(ctx context.Context, symbol string, count int) ([]news.RawItem, error)
}

type WarmNewsTask struct {
	Task
	refresher NewsRefresher
	count     int
}

func NewWarmNewsTask(symbol string, refresher NewsRefresher, count int) *WarmNewsTask {
	return &WarmNewsTask{
		Task:      NewTask(TaskTypeWarmNews, symbol),
		refresher: refresher,
		count:     count,
	}
}

func (t *WarmNewsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	items, err := t.refresher.Refresh(ctx, t.Symbol, t.count)
	if err != nil {
		return fmt.Errorf("failed to refresh news for %s: %w", t.Symbol, err)
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"symbol", t.Symbol,
		"duration", t.GetDuration(),
		"items", len(items))

	return nil
}
