package pose

import (
	"context"
)

// Landmark is a single detected joint position. Coordinates are normalized
// to [0,1] relative to the frame; Visibility is a confidence-like score.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Keypoints holds the tracked joints for one frame. A nil field means the
// joint was not reported by the estimator, which is a different fact from
// a joint reported with zero visibility.
type Keypoints struct {
	Nose          *Landmark `json:"nose,omitempty"`
	LeftShoulder  *Landmark `json:"left_shoulder,omitempty"`
	RightShoulder *Landmark `json:"right_shoulder,omitempty"`
	LeftElbow     *Landmark `json:"left_elbow,omitempty"`
	RightElbow    *Landmark `json:"right_elbow,omitempty"`
	LeftWrist     *Landmark `json:"left_wrist,omitempty"`
	RightWrist    *Landmark `json:"right_wrist,omitempty"`
}

// Estimator is the external pose-inference capability. The frame is passed
// as encoded JPEG bytes. Estimate returns (nil, nil) when the frame contains
// no detectable pose; an error means inference itself failed for this frame.
type Estimator interface {
	Estimate(ctx context.Context, frameJPEG []byte) (*Keypoints, error)
}

// Config carries the tunables forwarded to the estimator service. The
// confidence values are opaque to this package and passed through as-is.
type Config struct {
	ServerURL              string
	MinDetectionConfidence float64
	MinTrackingConfidence  float64
}

// NewConfig returns estimator defaults. ServerURL must still be set by the
// caller.
func NewConfig() *Config {
	return &Config{
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
	}
}
