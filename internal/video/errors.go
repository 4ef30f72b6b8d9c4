package video

import (
	"errors"
	"fmt"
)

var (
	// ErrOpenVideo means the container could not be opened or probed at all.
	// Fatal to the run, never retried.
	ErrOpenVideo = errors.New("cannot open video")

	// ErrNoFrames means zero frames survived sampling. The run produced no
	// data to analyze, which callers must distinguish from an empty success.
	ErrNoFrames = errors.New("no frames extracted from video")

	// ErrNoPose means frames were processed but none contained a detectable
	// pose, so downstream report generation has no usable input.
	ErrNoPose = errors.New("no pose detected in any frame")
)

// FrameDecodeError marks a single frame that failed to decode mid-stream.
// The pipeline skips it and continues with the next frame.
type FrameDecodeError struct {
	FrameNumber int
	Err         error
}

func (e *FrameDecodeError) Error() string {
	return fmt.Sprintf("failed to decode frame %d: %v", e.FrameNumber, e.Err)
}

func (e *FrameDecodeError) Unwrap() error {
	return e.Err
}
