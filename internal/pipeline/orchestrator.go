package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/wikiqa/internal/config"
	"github.com/dgallion1/wikiqa/internal/dataset"
)

var (
	// ErrQueueFull is returned by Submit when every queue slot is taken.
	ErrQueueFull = errors.New("generation queue is full")
	// ErrStopped is returned by Submit once Stop has been called.
	ErrStopped = errors.New("generation pipeline stopped")
)

const sweepInterval = 5 * time.Minute

// Orchestrator feeds generation jobs to a fixed pool of workers and
// periodically evicts expired jobs and idle sessions.
type Orchestrator struct {
	jobs     *JobStore
	sessions *dataset.SessionStore
	queue    chan *Job
	gen      *Generator
	log      *slog.Logger
	cfg      config.Config

	mu      sync.RWMutex // guards stopped and sends on queue
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewOrchestrator(cfg config.Config, gen *Generator, sessions *dataset.SessionStore, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		sessions: sessions,
		queue:    make(chan *Job, cfg.MaxQueueSize),
		gen:      gen,
		log:      log,
		cfg:      cfg,
	}
}

// Start launches the workers and the sweeper. It returns immediately.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)

	for id := range o.cfg.WorkerCount {
		o.wg.Add(1)
		go o.run(ctx, id)
	}
	o.wg.Add(1)
	go o.sweepLoop(ctx)
}

func (o *Orchestrator) run(ctx context.Context, id int) {
	defer o.wg.Done()
	w := NewWorker(o.gen, o.log.With("worker", id), o.cfg.MaxConcurrentGenerate)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-o.queue:
			if !ok {
				return
			}
			w.Process(ctx, job)
		}
	}
}

func (o *Orchestrator) sweepLoop(ctx context.Context) {
	defer o.wg.Done()
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.sweep()
		}
	}
}

func (o *Orchestrator) sweep() {
	o.jobs.Cleanup()
	if o.sessions == nil {
		return
	}
	if n := o.sessions.Cleanup(); n > 0 {
		o.log.Info("evicted idle sessions", "count", n)
	}
}

// Stop cancels in-flight work and waits for every goroutine to exit. Jobs
// still waiting in the queue are marked failed. Later calls to Submit
// return ErrStopped. It is safe to call more than once.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.mu.Unlock()

	o.wg.Wait()
	for job := range o.queue {
		job.AddError("pipeline stopped before the job started")
		job.SetStatus(StatusFailed, "done")
	}
}

// Submit registers job and queues it without blocking. When the queue is
// full the job is recorded as failed and ErrQueueFull is returned.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		job.SetStatus(StatusFailed, "stopped")
		return ErrStopped
	}
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d jobs waiting)", ErrQueueFull, cap(o.queue))
	}
}

func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Generator returns the generator shared by all workers.
func (o *Orchestrator) Generator() *Generator {
	return o.gen
}
