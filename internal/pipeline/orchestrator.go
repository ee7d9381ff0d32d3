package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/413232903/markdown2word-mcp/internal/config"
	"github.com/413232903/markdown2word-mcp/internal/convert"
)

// ErrQueueFull is returned by Submit when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full")

// Orchestrator runs asynchronous conversions and the retention sweep.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	conv  *convert.Converter
	log   *slog.Logger
	cfg   config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline; Start launches it.
func NewOrchestrator(cfg config.Config, conv *convert.Converter, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		conv:  conv,
		log:   log,
		cfg:   cfg,
	}
}

// Start launches worker goroutines, job cleanup and the retention sweep.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.conv, o.cfg.DownloadBaseURL, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.every(workerCtx, 5*time.Minute, o.jobs.Cleanup)

	// Sweep once now, then on every interval.
	o.sweep()
	o.every(workerCtx, o.cfg.SweepInterval, o.sweep)
}

func (o *Orchestrator) every(ctx context.Context, d time.Duration, fn func()) {
	if d <= 0 {
		return
	}
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

func (o *Orchestrator) sweep() {
	removed, err := Sweep(o.cfg.OutputDir, o.cfg.Retention, time.Now())
	if err != nil {
		o.log.Error("retention sweep failed", "removed", removed, "failures", len(multierr.Errors(err)), "error", err)
		return
	}
	if removed > 0 {
		o.log.Info("retention sweep", "removed", removed, "dir", o.cfg.OutputDir)
	}
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Converter returns the converter shared with synchronous handlers.
func (o *Orchestrator) Converter() *convert.Converter {
	return o.conv
}
