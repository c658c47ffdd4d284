package docker

import "math"

// Corner is one image-space corner of a detected tag quadrilateral.
type Corner struct {
	X, Y float64
}

// ConfidenceFromCorners derives detection confidence from the variance of
// the quadrilateral's four side lengths: a perfectly regular square (low
// variance) scores near 1.0, a skewed or partially occluded detection
// scores lower (spec.md §4.I "derived from the variance of side lengths").
func ConfidenceFromCorners(corners [4]Corner) float64 {
	sides := make([]float64, 4)
	for i := 0; i < 4; i++ {
		a := corners[i]
		b := corners[(i+1)%4]
		sides[i] = math.Hypot(b.X-a.X, b.Y-a.Y)
	}

	var mean float64
	for _, s := range sides {
		mean += s
	}
	mean /= 4
	if mean == 0 {
		return 0
	}

	var variance float64
	for _, s := range sides {
		d := s - mean
		variance += d * d
	}
	variance /= 4

	coeffOfVariation := math.Sqrt(variance) / mean
	confidence := 1.0 - coeffOfVariation*2
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

// TagDetector is the interface the controller's docking step consumes
// (spec.md §6 "the docker module needs only the detection"). It is
// implemented by CameraDetector (a brightness-blob stand-in, not an
// AprilTag decoder), by cmd/robotd's no-camera detector that never reports
// a tag, and by the testutils/inject fake.
type TagDetector interface {
	Detect() TagDetection
}
