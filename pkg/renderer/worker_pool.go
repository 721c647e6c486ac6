package renderer

import (
	"image"
	"sync"
)

// RowTask represents a row rendering task for the worker pool
type RowTask struct {
	Row int
}

// RowResult contains the result from rendering a row
type RowResult struct {
	Row   int
	Stats RenderStats
}

// WorkerPool fans image rows out to a fixed set of goroutines.
// Workers write disjoint rows of the shared image, so no locking is needed.
type WorkerPool struct {
	raytracer   *Raytracer
	img         *image.RGBA
	taskQueue   chan RowTask
	resultQueue chan RowResult
	numWorkers  int
	wg          sync.WaitGroup
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(raytracer *Raytracer, img *image.RGBA, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	rows := img.Bounds().Dy()
	return &WorkerPool{
		raytracer:   raytracer,
		img:         img,
		taskQueue:   make(chan RowTask, rows),
		resultQueue: make(chan RowResult, rows),
		numWorkers:  numWorkers,
	}
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.work()
	}
}

func (wp *WorkerPool) work() {
	defer wp.wg.Done()
	for task := range wp.taskQueue {
		wp.resultQueue <- RowResult{
			Row:   task.Row,
			Stats: wp.raytracer.renderRow(wp.img, task.Row),
		}
	}
}

// Submit queues a row for rendering
func (wp *WorkerPool) Submit(task RowTask) {
	wp.taskQueue <- task
}

// Close stops accepting tasks and closes Results once every worker has drained the queue
func (wp *WorkerPool) Close() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// Results returns the channel of finished rows
func (wp *WorkerPool) Results() <-chan RowResult {
	return wp.resultQueue
}
