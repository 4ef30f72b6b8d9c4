package video

import (
	"github.com/shree2604/badminton-ai/internal/pose"
)

// FrameResult is the per-frame outcome of pose inference and metric
// derivation. Keypoints is nil when no pose was detected or inference
// failed for this frame; Metrics is empty whenever Keypoints is nil.
type FrameResult struct {
	FrameNumber int                `json:"frame_number"`
	Timestamp   float64            `json:"timestamp"`
	Keypoints   *pose.Keypoints    `json:"keypoints,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
	Error       string             `json:"error,omitempty"`
}

// FrameFailure records one frame whose inference or decode failed, for the
// run's diagnostics.
type FrameFailure struct {
	FrameNumber int    `json:"frame_number"`
	Error       string `json:"error"`
}

// Analysis is the aggregate handed to report generation: all frame results
// in ascending frame-number order plus the partial-failure record. It lives
// for one run and is not persisted; only the derived report is.
type Analysis struct {
	Results           []FrameResult  `json:"results"`
	Failures          []FrameFailure `json:"failures"`
	FramesWithPose    int            `json:"frames_with_pose"`
	FramesWithoutPose int            `json:"frames_without_pose"`
}

// PartialFailure reports whether the run succeeded overall but lost
// individual frames along the way.
func (a *Analysis) PartialFailure() bool {
	return len(a.Failures) > 0
}
