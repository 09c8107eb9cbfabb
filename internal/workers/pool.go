package workers

import (
	"context"
	"sync"
	"time"

	"home-gallery/internal/logging"
	"home-gallery/internal/metrics"
)

const (
	// DefaultQueueSize bounds the pending job queue. Enqueue never blocks;
	// a full queue rejects the job and the caller moves on.
	DefaultQueueSize = 500

	// jobTimeout bounds a single render so a wedged job cannot hold a
	// worker slot indefinitely.
	jobTimeout = 30 * time.Second
)

// RenderFunc produces one artifact at destPath from the file at sourcePath.
type RenderFunc func(ctx context.Context, sourcePath, destPath string) error

// Job is one unit of background work.
type Job struct {
	SourcePath string
	DestPath   string
	EnqueuedAt time.Time

	// Callback, if set, runs after the job finishes with the job's error.
	// A panicking callback is recovered so it cannot take a worker down.
	Callback func(err error)
}

// Stats is a point-in-time-consistent snapshot of pool state. Running
// reports whether the pool is still accepting work; InFlight counts jobs
// being rendered right now.
type Stats struct {
	Workers       int  `json:"workers"`
	QueueCapacity int  `json:"queue_capacity"`
	Running       bool `json:"running"`
	Pending       int  `json:"pending"`
	InFlight      int  `json:"in_flight"`
	Completed     int  `json:"completed"`
	Failed        int  `json:"failed"`
}

// Pool runs render jobs on a fixed set of worker goroutines fed from a
// bounded queue. Job outcomes never propagate beyond counters and logs:
// one bad file must not affect the rest of the queue.
type Pool struct {
	render  RenderFunc
	workers int
	jobs    chan Job

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu        sync.Mutex
	cond      *sync.Cond
	pending   int
	running   int
	completed int
	failed    int
	stopped   bool
	discard   bool
}

// NewPool starts workerCount goroutines consuming from a queue of queueSize
// pending jobs. Zero or negative arguments fall back to one worker and
// DefaultQueueSize.
func NewPool(workerCount, queueSize int, render RenderFunc) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		render:  render,
		workers: workerCount,
		jobs:    make(chan Job, queueSize),
		baseCtx: ctx,
		cancel:  cancel,
	}
	p.cond = sync.NewCond(&p.mu)

	metrics.WorkerPoolRunning.Set(float64(workerCount))
	for i := 0; i < workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	logging.Info("worker pool started: %d workers, queue size %d", workerCount, queueSize)
	return p
}

// Enqueue submits a job without blocking. It returns false when the queue is
// full or the pool is shut down; the caller decides whether to retry, render
// inline, or drop.
func (p *Pool) Enqueue(job Job) bool {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		metrics.WorkerJobsRejected.Inc()
		return false
	}

	select {
	case p.jobs <- job:
		p.pending++
		metrics.WorkerQueueDepth.Set(float64(p.pending))
		return true
	default:
		metrics.WorkerJobsRejected.Inc()
		logging.Debug("worker queue full, rejected job for %s", job.SourcePath)
		return false
	}
}

// Drain blocks until every job accepted so far has finished, success or
// failure. New jobs enqueued while draining extend the wait.
func (p *Pool) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.pending+p.running > 0 {
		p.cond.Wait()
	}
}

// Shutdown stops the pool. Further Enqueue calls are rejected immediately.
// With wait true, queued and in-flight jobs finish first. With wait false,
// queued jobs are discarded but the job each worker is currently rendering
// always runs to completion; the per-job timeout bounds how long that takes.
// Shutdown is idempotent.
func (p *Pool) Shutdown(wait bool) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	if !wait {
		p.discard = true
	}
	p.mu.Unlock()

	if wait {
		p.Drain()
	}
	close(p.jobs)
	p.wg.Wait()
	p.cancel()

	metrics.WorkerPoolRunning.Set(0)
	logging.Info("worker pool stopped")
}

// Stats returns a consistent snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Workers:       p.workers,
		QueueCapacity: cap(p.jobs),
		Running:       !p.stopped,
		Pending:       p.pending,
		InFlight:      p.running,
		Completed:     p.completed,
		Failed:        p.failed,
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.process(id, job)
	}
}

func (p *Pool) process(id int, job Job) {
	p.mu.Lock()
	p.pending--
	metrics.WorkerQueueDepth.Set(float64(p.pending))
	if p.discard {
		// Pool was force-stopped; discard anything still queued. The job a
		// worker already holds is never discarded, only ones still waiting.
		p.cond.Broadcast()
		p.mu.Unlock()
		metrics.WorkerJobsRejected.Inc()
		return
	}
	p.running++
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(p.baseCtx, jobTimeout)
	err := p.render(ctx, job.SourcePath, job.DestPath)
	cancel()

	p.mu.Lock()
	p.running--
	if err != nil {
		p.failed++
		metrics.WorkerJobsFailed.Inc()
	} else {
		p.completed++
		metrics.WorkerJobsCompleted.Inc()
	}
	p.cond.Broadcast()
	p.mu.Unlock()

	if err != nil {
		logging.Warn("worker %d: job failed for %s: %v", id, job.SourcePath, err)
	} else {
		logging.Debug("worker %d: generated %s (queued %v)", id, job.DestPath, time.Since(job.EnqueuedAt))
	}

	if job.Callback != nil {
		p.runCallback(job, err)
	}
}

func (p *Pool) runCallback(job Job, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("job callback panicked for %s: %v", job.SourcePath, r)
		}
	}()
	job.Callback(err)
}
