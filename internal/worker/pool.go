package worker

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/pkg/models"
)

// Handler ingests a single file
type Handler func(ctx context.Context, path string) (*models.Document, error)

// Result is the outcome for one input path
type Result struct {
	Index    int
	Path     string
	Document *models.Document
	Err      error
}

// WorkerPool ingests a batch of files on a fixed number of workers
type WorkerPool struct {
	handler    Handler
	logger     arbor.ILogger
	numWorkers int
}

// NewWorkerPool creates a pool; numWorkers below 1 runs a single worker
func NewWorkerPool(handler Handler, logger arbor.ILogger, numWorkers int) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool{
		handler:    handler,
		logger:     logger,
		numWorkers: numWorkers,
	}
}

// Run processes every path and returns one result per path, in input order.
// Once ctx is cancelled no new path is dispatched; undispatched paths report ctx.Err().
func (wp *WorkerPool) Run(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))
	jobs := make(chan int)

	workers := wp.numWorkers
	if workers > len(paths) {
		workers = len(paths)
	}

	wp.logger.Debug().
		Int("num_workers", workers).
		Int("num_paths", len(paths)).
		Msg("Starting worker pool")

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go wp.worker(ctx, i, paths, jobs, results, &wg)
	}

dispatch:
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(paths); j++ {
				results[j] = Result{Index: j, Path: paths[j], Err: ctx.Err()}
			}
			wp.logger.Warn().Int("skipped", len(paths)-i).Msg("Worker pool cancelled")
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	wp.logger.Debug().Msg("Worker pool stopped")
	return results
}

// worker is the main worker loop. Each index is written by exactly one worker.
func (wp *WorkerPool) worker(ctx context.Context, workerID int, paths []string, jobs <-chan int, results []Result, wg *sync.WaitGroup) {
	defer wg.Done()

	for i := range jobs {
		wp.logger.Debug().
			Int("worker_id", workerID).
			Str("path", paths[i]).
			Msg("Processing file")

		doc, err := wp.handler(ctx, paths[i])
		results[i] = Result{Index: i, Path: paths[i], Document: doc, Err: err}
	}
}
