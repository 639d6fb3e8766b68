package tasks

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/openagg/article-aggregator/app/database"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Options holds the scheduler's tunables. Passing them explicitly instead of
// reading global state keeps the scheduler constructible in tests with tight
// intervals.
type Options struct {
	FetchInterval   time.Duration
	ExtractInterval time.Duration
	MaxPerSource    int
	ExtractLimit    int
	WorkerCount     int
	SourceDelay     time.Duration
	ExtractDelay    time.Duration
	HTTPTimeout     time.Duration
	UserAgent       string
}

type Scheduler struct {
	db         *database.DB
	httpClient *http.Client
	opts       Options
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	taskQueue  chan TaskInterface
}

func NewScheduler(db *database.DB, httpClient *http.Client, opts Options) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		db:         db,
		httpClient: httpClient,
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
		taskQueue:  make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.opts.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.opts.FetchInterval)
		defer ticker.Stop()

		// Fetch once on startup so a fresh deployment has articles before
		// the first interval elapses
		if err := s.TriggerFetch(0); err != nil {
			slog.Warn("Failed to enqueue startup fetch task", "error", err)
		}

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if err := s.TriggerFetch(0); err != nil {
					slog.Warn("Failed to enqueue fetch task", "error", err)
				}
			}
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.opts.ExtractInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if err := s.TriggerExtract(0); err != nil {
					slog.Warn("Failed to enqueue extract task", "error", err)
				}
			}
		}
	}()
}

// Stop cancels all workers and tickers and waits for them to drain. The
// queue channel is left open: workers exit via the context, and a closed
// channel would turn late EnqueueTask calls into send panics.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	// Checked separately so a stopped scheduler always errors instead of
	// racing the send case
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
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

// TriggerFetch enqueues an immediate fetch cycle, outside the periodic
// schedule. Used at startup and by the HTTP API. A maxPerSource of 0 falls
// back to the configured default.
func (s *Scheduler) TriggerFetch(maxPerSource int) error {
	task := NewFetchArticlesTask(s.db, s.httpClient, cmp.Or(maxPerSource, s.opts.MaxPerSource),
		s.opts.SourceDelay, s.opts.UserAgent, s.opts.HTTPTimeout)
	return s.EnqueueTask(task)
}

// TriggerExtract enqueues an immediate extraction cycle. A limit of 0 falls
// back to the configured default.
func (s *Scheduler) TriggerExtract(limit int) error {
	task := NewExtractContentTask(s.db, s.httpClient, cmp.Or(limit, s.opts.ExtractLimit),
		s.opts.ExtractDelay, s.opts.UserAgent, s.opts.HTTPTimeout)
	return s.EnqueueTask(task)
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "error", err)
	}
}
