package video

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/shree2604/badminton-ai/internal/pose"
)

// Options tune one processing run.
type Options struct {
	SampleRate   int // process every Nth raw frame
	TargetWidth  int
	TargetHeight int
	BatchSize    int
	MaxWorkers   int
	CacheSize    int // retained-frame ceiling for overlay snapshots

	// RetainFrames keeps decoded frames with a detected pose available for
	// overlay rendering, subject to the aggregator's cache eviction.
	RetainFrames bool

	// Progress, when set, is called after each batch with the running count
	// of processed frames.
	Progress func(framesDone int)
}

// DefaultOptions returns the standard pipeline tuning.
func DefaultOptions() Options {
	return Options{
		SampleRate:   3,
		TargetWidth:  854,
		TargetHeight: 480,
		BatchSize:    DefaultBatchSize,
		MaxWorkers:   DefaultWorkers(),
		CacheSize:    DefaultCacheSize,
	}
}

// Processor drives the full pipeline: source, batcher, worker pool and
// aggregator. Batches are dispatched strictly one at a time so at most one
// batch's worth of raw frames is alive.
type Processor struct {
	estimator pose.Estimator
	opts      Options
	snapshots map[int]Frame
}

func NewProcessor(estimator pose.Estimator, opts Options) *Processor {
	if opts.SampleRate < 1 {
		opts.SampleRate = 1
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = DefaultWorkers()
	}
	if opts.TargetWidth <= 0 || opts.TargetHeight <= 0 {
		opts.TargetWidth, opts.TargetHeight = 854, 480
	}
	return &Processor{estimator: estimator, opts: opts}
}

// ProcessFile opens the video at path and processes it to completion.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Analysis, error) {
	src, err := Open(path, SourceOptions{
		SampleRate:   p.opts.SampleRate,
		TargetWidth:  p.opts.TargetWidth,
		TargetHeight: p.opts.TargetHeight,
	})
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return p.Process(ctx, src)
}

// Process consumes the source until exhaustion. On cancellation the
// in-flight batch drains but its results are not committed to the
// aggregate, and the context error is returned.
func (p *Processor) Process(ctx context.Context, src Source) (*Analysis, error) {
	started := time.Now()

	agg := NewAggregator(p.opts.CacheSize)
	pool := NewWorkerPool(p.estimator, p.opts.MaxWorkers)
	batcher := NewBatcher(src, p.opts.BatchSize)

	processed := 0
	batches := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := batcher.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read batch: %w", err)
		}

		results := pool.Process(ctx, batch)

		if err := ctx.Err(); err != nil {
			batch.Release()
			return nil, err
		}

		for _, result := range results {
			agg.Add(result)
		}

		if p.opts.RetainFrames {
			p.retainDetected(agg, batch, results)
		}

		batch.Release()
		processed += len(results)
		batches++

		if p.opts.Progress != nil {
			p.opts.Progress(processed)
		}
	}

	p.snapshots = agg.Snapshots()

	analysis, err := agg.Finalize()
	if err != nil {
		return analysis, err
	}

	log.Printf("[VIDEO] Processed %d frames in %d batches (%d with pose, %d without, %d failed) in %v",
		processed, batches, analysis.FramesWithPose, analysis.FramesWithoutPose,
		len(analysis.Failures), time.Since(started).Round(time.Millisecond))

	return analysis, nil
}

// Snapshots exposes the frames retained during the last run, keyed by
// frame number, for overlay rendering.
func (p *Processor) Snapshots() map[int]Frame {
	return p.snapshots
}

// retainDetected keeps only frames that produced keypoints, since those are
// the ones the overlay can annotate.
func (p *Processor) retainDetected(agg *Aggregator, batch *FrameBatch, results []FrameResult) {
	detected := make(map[int]bool, len(results))
	for _, r := range results {
		if r.Keypoints != nil {
			detected[r.FrameNumber] = true
		}
	}
	for i, frameNumber := range batch.FrameNumbers {
		if detected[frameNumber] {
			agg.Retain(frameNumber, batch.Frames[i])
		}
	}
}
