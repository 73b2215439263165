package tasks

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/ticker-comb/app/news"
)

type fakeRefresher struct {
	mu       sync.Mutex
	calls    []string
	failures map[string]int
	done     chan string
}

func newFakeRefresher() *fakeRefresher {
	return &fakeRefresher{failures: map[string]int{}, done: make(chan string, 100)}
}

func (r *fakeRefresher) Refresh(ctx context.Context, symbol string, count int) ([]news.RawItem, error) {
	r.mu.Lock()
	r.calls = append(r.calls, symbol)
	fail := r.failures[symbol] > 0
	if fail {
		r.failures[symbol]--
	}
	r.mu.Unlock()

	if fail {
		return nil, errors.New("upstream down")
	}
	r.done <- symbol
	return []news.RawItem{{"title": symbol}}, nil
}

type fakePruner struct {
	before chan time.Time
}

func (p *fakePruner) PruneFetches(before time.Time) (int64, error) {
	p.before <- before
	return 3, nil
}

func waitFor(t *testing.T, ch <-chan string, n int, timeout time.Duration) []string {
	t.Helper()
	var got []string
	deadline := time.After(timeout)
	for len(got) < n {
		select {
		case s := <-ch:
			got = append(got, s)
		case <-deadline:
			t.Fatalf("Timed out waiting for %d tasks, got %v", n, got)
		}
	}
	return got
}

func TestNewTask(t *testing.T) {
	a := NewTask(TaskTypeWarmNews, "AAPL")
	b := NewTask(TaskTypeWarmNews, "AAPL")

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("Expected unique non-empty ids, got '%s' and '%s'", a.ID, b.ID)
	}
	if a.MaxRetries != DefaultMaxRetries {
		t.Errorf("Expected max retries %d, got %d", DefaultMaxRetries, a.MaxRetries)
	}
	if a.GetDuration() != 0 {
		t.Error("Expected zero duration before start")
	}

	for i := 0; i < DefaultMaxRetries; i++ {
		if !a.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i+1)
		}
		a.IncrementRetryCount()
	}
	if a.CanRetry() {
		t.Error("Expected no retries left")
	}
}

func TestRetryBackoff(t *testing.T) {
	expected := map[int]time.Duration{
		0:  time.Second,
		1:  time.Second,
		2:  2 * time.Second,
		3:  4 * time.Second,
		5:  16 * time.Second,
		6:  maxRetryDelay,
		40: maxRetryDelay,
	}
	for retry, want := range expected {
		if got := min(retryBackoff(retry), maxRetryDelay); got != want {
			t.Errorf("Expected delay %s for retry %d, got %s", want, retry, got)
		}
	}
}

func TestSchedulerWarmsAllSymbols(t *testing.T) {
	refresher := newFakeRefresher()
	pruner := &fakePruner{before: make(chan time.Time, 1)}

	s := NewScheduler(refresher, pruner, Options{
		Symbols:     []string{"AAPL", "MSFT", "^GSPC"},
		FetchCount:  20,
		Interval:    time.Hour,
		WorkerCount: 2,
		Retention:   24 * time.Hour,
	})
	s.Start()
	defer s.Stop()

	got := waitFor(t, refresher.done, 3, 5*time.Second)
	slices.Sort(got)
	expected := []string{"AAPL", "MSFT", "^GSPC"}
	if !slices.Equal(got, expected) {
		t.Errorf("Expected warmed symbols %v, got %v", expected, got)
	}

	select {
	case before := <-pruner.before:
		if age := time.Since(before); age < 23*time.Hour || age > 25*time.Hour {
			t.Errorf("Expected prune cutoff about 24h ago, got %s", age)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for prune task")
	}
}

func TestSchedulerRetriesFailedTask(t *testing.T) {
	refresher := newFakeRefresher()
	refresher.failures["NVDA"] = 1

	s := NewScheduler(refresher, nil, Options{Symbols: []string{"NVDA"}, Interval: time.Hour})
	s.Start()
	defer s.Stop()

	waitFor(t, refresher.done, 1, 5*time.Second)

	refresher.mu.Lock()
	defer refresher.mu.Unlock()
	if len(refresher.calls) != 2 {
		t.Errorf("Expected 2 attempts, got %v", refresher.calls)
	}
}

func TestSchedulerEnqueueQueueFull(t *testing.T) {
	s := NewScheduler(nil, nil, Options{})
	defer s.cancel()

	for i := 0; i < queueSize; i++ {
		if err := s.EnqueueTask(NewWarmNewsTask("AAPL", nil, 1)); err != nil {
			t.Fatalf("Unexpected error at %d: %v", i, err)
		}
	}

	if err := s.EnqueueTask(NewWarmNewsTask("AAPL", nil, 1)); err == nil {
		t.Error("Expected error when queue is full")
	}
}

func TestSchedulerEnqueueAfterStop(t *testing.T) {
	s := NewScheduler(nil, nil, Options{WorkerCount: 2})
	s.Start()
	s.Stop()

	for i := 0; i < 10; i++ {
		if err := s.EnqueueTask(NewWarmNewsTask("AAPL", nil, 1)); err == nil {
			t.Fatal("Expected error when enqueueing after Stop")
		}
	}
}

func TestWarmNewsTaskCancelledContext(t *testing.T) {
	refresher := newFakeRefresher()
	task := NewWarmNewsTask("AAPL", refresher, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := task.Execute(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(refresher.calls) != 0 {
		t.Errorf("Expected no refresh after cancellation, got %v", refresher.calls)
	}
}
