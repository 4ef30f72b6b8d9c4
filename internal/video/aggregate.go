package video

import (
	"log"
	"sort"
)

// DefaultCacheSize bounds how many decoded frames the aggregator may retain
// for overlay snapshots before it evicts them all.
const DefaultCacheSize = 100

// Aggregator merges per-frame results back into global frame order and
// tracks detection and failure counts. FrameResults are lightweight; only
// retained raw frames count against the memory ceiling.
type Aggregator struct {
	results     []FrameResult
	failures    []FrameFailure
	withPose    int
	withoutPose int

	retained  map[int]Frame
	cacheSize int
}

func NewAggregator(cacheSize int) *Aggregator {
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	return &Aggregator{
		retained:  make(map[int]Frame),
		cacheSize: cacheSize,
	}
}

// Add accepts one result in any arrival order.
func (a *Aggregator) Add(result FrameResult) {
	if result.Error != "" {
		a.failures = append(a.failures, FrameFailure{
			FrameNumber: result.FrameNumber,
			Error:       result.Error,
		})
	}
	if result.Keypoints != nil {
		a.withPose++
	} else {
		a.withoutPose++
	}
	a.results = append(a.results, result)
}

// Retain keeps a decoded frame for overlay snapshots. When the cache grows
// past its ceiling all retained buffers are evicted at once rather than
// one at a time.
func (a *Aggregator) Retain(frameNumber int, frame Frame) {
	if len(a.retained) >= a.cacheSize {
		log.Printf("[AGG] Frame cache over %d entries, evicting", a.cacheSize)
		a.retained = make(map[int]Frame)
	}
	a.retained[frameNumber] = frame
}

// Snapshots exposes the retained frames keyed by frame number.
func (a *Aggregator) Snapshots() map[int]Frame {
	return a.retained
}

// Finalize orders the collected results by ascending frame number and
// classifies the run. It returns the analysis together with ErrNoFrames or
// ErrNoPose when there is no usable data; the caller distinguishes full
// success, partial success and total failure from the error and the
// analysis failure list.
func (a *Aggregator) Finalize() (*Analysis, error) {
	sort.Slice(a.results, func(i, j int) bool {
		return a.results[i].FrameNumber < a.results[j].FrameNumber
	})

	analysis := &Analysis{
		Results:           a.results,
		Failures:          a.failures,
		FramesWithPose:    a.withPose,
		FramesWithoutPose: a.withoutPose,
	}

	if len(a.results) == 0 {
		return analysis, ErrNoFrames
	}
	if a.withPose == 0 {
		return analysis, ErrNoPose
	}
	return analysis, nil
}
