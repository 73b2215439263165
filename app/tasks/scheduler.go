package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	queueSize      = 300
	taskTimeout    = 5 * time.Minute
	maxRetryDelay  = 30 * time.Second
	defaultWorkers = 1
)

type Options struct {
	Symbols     []string
	FetchCount  int
	Interval    time.Duration
	WorkerCount int
	Retention   time.Duration
}

type Scheduler struct {
	refresher   NewsRefresher
	pruner      FetchPruner
	symbols     []string
	fetchCount  int
	interval    time.Duration
	workerCount int
	retention   time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

// NewScheduler builds a scheduler that warms every symbol each interval.
// refresher or pruner may be nil, which disables the matching task.
func NewScheduler(refresher NewsRefresher, pruner FetchPruner, opts Options) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	workerCount := opts.WorkerCount
	if workerCount <= 0 {
		workerCount = defaultWorkers
	}

	return &Scheduler{
		refresher:   refresher,
		pruner:      pruner,
		symbols:     opts.Symbols,
		fetchCount:  opts.FetchCount,
		interval:    opts.Interval,
		workerCount: workerCount,
		retention:   opts.Retention,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, queueSize),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.enqueueTasks()

		if s.interval <= 0 {
			<-s.ctx.Done()
			return
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// EnqueueTask adds task to the queue. The queue stays open after Stop, so a
// late call gets the context error instead of a panic.
func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueTasks() {
	if s.refresher != nil {
		slog.Debug("Scheduling news warm-up", "symbols", len(s.symbols))

		for _, symbol := range s.symbols {
			if err := s.EnqueueTask(NewWarmNewsTask(symbol, s.refresher, s.fetchCount)); err != nil {
				slog.Warn("Failed to enqueue WarmNewsTask", "symbol", symbol, "error", err)
			}
		}
	}

	if s.pruner != nil && s.retention > 0 {
		if err := s.EnqueueTask(NewPruneFetchesTask(s.pruner, s.retention)); err != nil {
			slog.Warn("Failed to enqueue PruneFetchesTask", "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := min(retryBackoff(task.GetRetryCount()), maxRetryDelay)

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "symbol", task.GetSymbol(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(retryDelay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-timer.C:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}

// retryBackoff doubles from one second: 1s, 2s, 4s...
func retryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	if retryCount > 6 {
		return maxRetryDelay
	}
	return time.Duration(1<<uint(retryCount-1)) * time.Second
}
