package video

import (
	"context"
	"log"
	"runtime"
	"sync"

	"github.com/shree2604/badminton-ai/internal/pose"
)

const frameJPEGQuality = 85

// DefaultWorkers sizes the pool at cpu count plus headroom for the
// I/O-bound inference calls, capped at 32.
func DefaultWorkers() int {
	n := runtime.NumCPU() + 4
	if n > 32 {
		n = 32
	}
	return n
}

// WorkerPool fans one batch's frames out to a bounded set of goroutines,
// each invoking the external pose estimator. A pool instance is shared by
// all batches of one run but never across runs.
type WorkerPool struct {
	estimator pose.Estimator
	workers   int
}

func NewWorkerPool(estimator pose.Estimator, workers int) *WorkerPool {
	if workers < 1 {
		workers = DefaultWorkers()
	}
	return &WorkerPool{estimator: estimator, workers: workers}
}

// Process runs inference for every frame in the batch and returns the
// results in completion order. Per-frame failures are isolated: an
// inference or encode error becomes a FrameResult with nil keypoints and
// an error note, never an abort of sibling frames. Workers are allowed to
// drain their in-flight frame on cancellation since the external model
// call may not be interruptible.
func (p *WorkerPool) Process(ctx context.Context, batch *FrameBatch) []FrameResult {
	jobs := make(chan int)
	out := make(chan FrameResult, batch.Len())

	var wg sync.WaitGroup
	workers := p.workers
	if workers > batch.Len() {
		workers = batch.Len()
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out <- p.processFrame(ctx, batch.Frames[i], batch.FrameNumbers[i], batch.Timestamps[i])
			}
		}()
	}

	for i := 0; i < batch.Len(); i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(out)

	results := make([]FrameResult, 0, batch.Len())
	for r := range out {
		results = append(results, r)
	}
	return results
}

func (p *WorkerPool) processFrame(ctx context.Context, frame Frame, frameNumber int, timestamp float64) FrameResult {
	result := FrameResult{
		FrameNumber: frameNumber,
		Timestamp:   timestamp,
		Metrics:     map[string]float64{},
	}

	frameJPEG, err := frame.EncodeJPEG(frameJPEGQuality)
	if err != nil {
		log.Printf("[POOL] Error encoding frame %d: %v", frameNumber, err)
		result.Error = err.Error()
		return result
	}

	keypoints, err := p.estimator.Estimate(ctx, frameJPEG)
	if err != nil {
		log.Printf("[POOL] Error processing frame %d: %v", frameNumber, err)
		result.Error = err.Error()
		return result
	}

	if keypoints == nil {
		// No pose in this frame. Valid outcome, not a failure.
		return result
	}

	result.Keypoints = keypoints
	result.Metrics = pose.Metrics(keypoints)
	return result
}
