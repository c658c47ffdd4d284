package docker

import (
	"context"
	"math"

	"github.com/yusuftiryaki/robot-sub000/internal/hal"
	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// CameraDetector implements TagDetector against a real hal.Camera. No
// AprilTag decoder library is available, so it approximates a tag by the
// bounding box of every pixel above a fixed brightness cutoff (separate
// bright regions are merged into one box) — a narrow stand-in the
// fine-approach state machine only needs to believe in long enough to
// close the last half-meter (spec.md §6 "the docker module needs only the
// detection").
type CameraDetector struct {
	cam       hal.Camera
	tagID     int
	cfg       CameraConfig
}

// CameraConfig holds the pinhole constants used to turn a blob's pixel
// footprint into a distance and bearing estimate.
type CameraConfig struct {
	FocalLengthPx float64
	TagWidthM     float64
	ImageWidthPx  int
	HFOVRad       float64
}

// DefaultCameraConfig returns this detector's own pinhole defaults: a
// 500 px focal length, an 8 cm tag, a 640 px wide image and a 70 degree
// horizontal field of view.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		FocalLengthPx: 500,
		TagWidthM:     0.08,
		ImageWidthPx:  640,
		HFOVRad:       70 * math.Pi / 180,
	}
}

// NewCameraDetector builds a CameraDetector bound to cam, looking for tagID.
func NewCameraDetector(cam hal.Camera, tagID int, cfg CameraConfig) *CameraDetector {
	if cfg.FocalLengthPx == 0 {
		cfg = DefaultCameraConfig()
	}
	return &CameraDetector{cam: cam, tagID: tagID, cfg: cfg}
}

// Detect reads one frame and extracts the brightest blob's corners.
func (c *CameraDetector) Detect() TagDetection {
	frame := c.cam.Read(context.Background())
	if !frame.Valid || len(frame.Pixels) == 0 || frame.Width == 0 || frame.Height == 0 {
		return TagDetection{}
	}

	minX, minY, maxX, maxY, found := brightestBlob(frame)
	if !found {
		return TagDetection{}
	}

	widthPx := float64(maxX - minX + 1)
	corners := [4]Corner{
		{X: float64(minX), Y: float64(minY)},
		{X: float64(maxX), Y: float64(minY)},
		{X: float64(maxX), Y: float64(maxY)},
		{X: float64(minX), Y: float64(maxY)},
	}
	confidence := ConfidenceFromCorners(corners)

	distance := (c.cfg.TagWidthM * c.cfg.FocalLengthPx) / math.Max(widthPx, 1)
	centerX := float64(minX+maxX) / 2
	normalized := (centerX - float64(c.cfg.ImageWidthPx)/2) / (float64(c.cfg.ImageWidthPx) / 2)
	bearing := normalized * (c.cfg.HFOVRad / 2)

	return TagDetection{
		Found:      true,
		TagID:      c.tagID,
		DistanceM:  distance,
		BearingRad: bearing,
		Confidence: confidence,
	}
}

// brightestBlob scans a grayscale-weighted BGR frame for the bounding box
// of pixels above a fixed brightness cutoff, the same threshold-then-box
// approach the obstacle detector uses before its full contour pipeline.
func brightestBlob(frame model.CameraFrame) (minX, minY, maxX, maxY int, found bool) {
	const cutoff = 200.0
	minX, minY = frame.Width, frame.Height
	stride := 3
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			idx := (y*frame.Width + x) * stride
			if idx+2 >= len(frame.Pixels) {
				continue
			}
			b, g, r := float64(frame.Pixels[idx]), float64(frame.Pixels[idx+1]), float64(frame.Pixels[idx+2])
			gray := 0.114*b + 0.587*g + 0.299*r
			if gray < cutoff {
				continue
			}
			found = true
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	return
}
