package video

import (
	"errors"
	"io"
	"log"
)

// DefaultBatchSize balances per-dispatch overhead against peak memory
// (batch_size times the frame byte size).
const DefaultBatchSize = 16

// FrameBatch is one fan-out/fan-in unit: parallel slices of frames, raw
// frame numbers and timestamps, always of equal length.
type FrameBatch struct {
	Frames       []Frame
	FrameNumbers []int
	Timestamps   []float64
}

func (b *FrameBatch) Len() int {
	return len(b.Frames)
}

// Release drops the batch's references to the decoded pixel buffers so they
// can be reclaimed once the workers are done with them.
func (b *FrameBatch) Release() {
	for i := range b.Frames {
		b.Frames[i].Pix = nil
	}
	b.Frames = nil
}

// Batcher groups a Source into fixed-size batches. Pure grouping: no frame
// is dropped, duplicated or reordered, and the final batch may be partial.
type Batcher struct {
	src  Source
	size int
}

func NewBatcher(src Source, size int) *Batcher {
	if size < 1 {
		size = DefaultBatchSize
	}
	return &Batcher{src: src, size: size}
}

// Next returns the next batch, or io.EOF once the source is exhausted and
// nothing is buffered. Frames that fail to decode are skipped and logged;
// they do not terminate the stream.
func (b *Batcher) Next() (*FrameBatch, error) {
	batch := &FrameBatch{
		Frames:       make([]Frame, 0, b.size),
		FrameNumbers: make([]int, 0, b.size),
		Timestamps:   make([]float64, 0, b.size),
	}

	for batch.Len() < b.size {
		frame, frameNumber, timestamp, err := b.src.Next()
		if err != nil {
			var decodeErr *FrameDecodeError
			if errors.As(err, &decodeErr) {
				log.Printf("[VIDEO] Skipping frame %d: %v", decodeErr.FrameNumber, decodeErr.Err)
				continue
			}
			if err == io.EOF {
				if batch.Len() > 0 {
					return batch, nil
				}
				return nil, io.EOF
			}
			return nil, err
		}

		batch.Frames = append(batch.Frames, frame)
		batch.FrameNumbers = append(batch.FrameNumbers, frameNumber)
		batch.Timestamps = append(batch.Timestamps, timestamp)
	}

	return batch, nil
}
