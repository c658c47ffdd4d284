package vision

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
	"github.com/yusuftiryaki/robot-sub000/internal/rlog"
)

// Config holds the thresholds named in spec.md §4.D and §6.
type Config struct {
	Camera CameraConfig

	EdgeThreshold      float64
	UseAdaptive        bool
	MorphRadius        int
	MinAreaPx          int
	MaxAreaPx          int
	MinAspectRatio     float64
	MaxAspectRatio     float64
	SpatialMatchRadiusM float64

	MaxTrackingDistanceM float64
	TrackingHistory      int

	DetectionThreshold  float64
	StabilityWarmupFrames int
	CloseRangeThresholdM  float64
}

// DefaultConfig returns the spec's named defaults.
func DefaultConfig() Config {
	return Config{
		Camera:                DefaultCameraConfig(),
		EdgeThreshold:         40,
		UseAdaptive:           false,
		MorphRadius:           1,
		MinAreaPx:             30,
		MaxAreaPx:             200000,
		MinAspectRatio:        0.2,
		MaxAspectRatio:        5.0,
		SpatialMatchRadiusM:   0.3,
		MaxTrackingDistanceM:  1.0,
		TrackingHistory:       5,
		DetectionThreshold:    0.5,
		StabilityWarmupFrames: 3,
		CloseRangeThresholdM:  0.5,
	}
}

// Detector runs the full obstacle-detection pipeline over successive
// camera frames, maintaining tracker state and the stability warm-up
// counter across calls (spec.md §4.D).
type Detector struct {
	cfg     Config
	tracker *Tracker
	prev    []model.DynamicObstacle
	frames  int
	log     *zap.SugaredLogger
}

// New builds a Detector.
func New(cfg Config) *Detector {
	if cfg.DetectionThreshold == 0 {
		cfg = DefaultConfig()
	}
	return &Detector{
		cfg:     cfg,
		tracker: NewTracker(cfg.MaxTrackingDistanceM, cfg.TrackingHistory),
		log:     rlog.Named("vision.detector"),
	}
}

// Process runs the pipeline over one frame, returning the temporally
// filtered, tracked, id-stamped obstacle set.
func (d *Detector) Process(frame model.CameraFrame) []model.DynamicObstacle {
	d.frames++

	gray := grayscale(frame.Pixels, frame.Width, frame.Height)
	blurred := gaussianBlur(gray, frame.Width, frame.Height)
	edges := sobelMagnitude(blurred, frame.Width, frame.Height)
	mask := threshold(edges, frame.Width, frame.Height, d.cfg.EdgeThreshold, d.cfg.UseAdaptive)
	mask = morphClose(mask, frame.Width, frame.Height, d.cfg.MorphRadius)
	mask = morphOpen(mask, frame.Width, frame.Height, d.cfg.MorphRadius)

	blobs := extractBlobs(mask, frame.Width, frame.Height)

	now := frame.CapturedAt
	if now.IsZero() {
		now = time.Now()
	}

	var detections []model.DynamicObstacle
	for _, b := range blobs {
		if b.Area < d.cfg.MinAreaPx || b.Area > d.cfg.MaxAreaPx {
			continue
		}
		ratio := b.aspectRatio()
		if ratio < d.cfg.MinAspectRatio || ratio > d.cfg.MaxAspectRatio {
			continue
		}

		proj := projectBlob(b, frame.Width, frame.Height, d.cfg.Camera)
		confidence := d.confidence(b, ratio, proj)

		detections = append(detections, model.DynamicObstacle{
			X: proj.X, Y: proj.Y, Radius: proj.Radius,
			Confidence: confidence, DetectedAt: now,
		})
	}

	tracked := d.tracker.Update(detections)
	d.prev = tracked

	if d.frames <= d.cfg.StabilityWarmupFrames {
		// stability warm-up: suppress output for the first
		// StabilityWarmupFrames processed frames, so with the default of 3
		// the first output comes on the fourth (spec.md §4.D "Temporal filter").
		return nil
	}

	var out []model.DynamicObstacle
	for _, o := range tracked {
		if o.Confidence < d.cfg.DetectionThreshold {
			continue
		}
		dist := math.Hypot(o.X, o.Y)
		if dist < d.cfg.CloseRangeThresholdM {
			d.log.Warnw("obstacle within close-range threshold", "id", o.ID, "distance", dist)
		}
		out = append(out, o)
	}
	return out
}

// confidence combines area, aspect-ratio symmetry, and distance into a
// [0,1] score, boosted by a spatial match with a previous-frame obstacle
// within SpatialMatchRadiusM (spec.md §4.D step 7).
func (d *Detector) confidence(b blob, ratio float64, proj projected) float64 {
	areaScore := math.Min(1, float64(b.Area)/float64(d.cfg.MinAreaPx*10))

	idealRatio := 1.0
	ratioDelta := math.Abs(ratio - idealRatio)
	symmetryScore := math.Max(0, 1-ratioDelta/2)

	distanceScore := math.Max(0, 1-proj.Distance/10)

	score := 0.4*areaScore + 0.3*symmetryScore + 0.3*distanceScore

	for _, p := range d.prev {
		if math.Hypot(p.X-proj.X, p.Y-proj.Y) <= d.cfg.SpatialMatchRadiusM {
			score = math.Min(1, score+0.15)
			break
		}
	}
	return score
}
