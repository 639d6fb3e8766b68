package tasks

// TaskSchedulerInterface defines the interface for background task scheduling.
// Used by the main application and the HTTP API to manage the ingestion
// pipeline: periodic fetch and extraction cycles plus on-demand triggers.
// Example usage:
//
//	scheduler := NewScheduler(db, httpClient, opts)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.TriggerFetch(0)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	TriggerFetch(maxPerSource int) error
	TriggerExtract(limit int) error
}
