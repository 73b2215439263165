package tasks

// TaskSchedulerInterface defines the interface for background task scheduling.
// Example usage:
//
//	scheduler := NewScheduler(cachedProvider, fetchRepo, opts)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewWarmNewsTask("AAPL", cachedProvider, 20))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
