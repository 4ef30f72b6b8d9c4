package pose

import "math"

const angleEpsilon = 1e-6

// Metrics derives scalar performance metrics from a keypoint record.
// It is a pure function: nil input yields an empty map, and a metric key is
// silently omitted when any joint it needs is absent.
func Metrics(kp *Keypoints) map[string]float64 {
	metrics := map[string]float64{}
	if kp == nil {
		return metrics
	}

	if kp.LeftWrist != nil && kp.RightWrist != nil {
		dx := kp.LeftWrist.X - kp.RightWrist.X
		dy := kp.LeftWrist.Y - kp.RightWrist.Y
		metrics["wrist_distance"] = math.Sqrt(dx*dx + dy*dy)
	}

	if angle, ok := elbowAngle(kp.LeftShoulder, kp.LeftElbow, kp.LeftWrist); ok {
		metrics["left_elbow_angle"] = angle
	}
	if angle, ok := elbowAngle(kp.RightShoulder, kp.RightElbow, kp.RightWrist); ok {
		metrics["right_elbow_angle"] = angle
	}

	return metrics
}

// elbowAngle computes the angle in degrees at the elbow vertex formed by
// shoulder-elbow-wrist, using 2-D coordinates.
func elbowAngle(shoulder, elbow, wrist *Landmark) (float64, bool) {
	if shoulder == nil || elbow == nil || wrist == nil {
		return 0, false
	}

	bax := shoulder.X - elbow.X
	bay := shoulder.Y - elbow.Y
	bcx := wrist.X - elbow.X
	bcy := wrist.Y - elbow.Y

	dot := bax*bcx + bay*bcy
	norm := math.Sqrt(bax*bax+bay*bay) * math.Sqrt(bcx*bcx+bcy*bcy)

	// The epsilon guards division for near-zero-length limb vectors.
	cosine := dot / (norm + angleEpsilon)
	cosine = math.Max(-1.0, math.Min(1.0, cosine))

	return math.Acos(cosine) * 180 / math.Pi, true
}
