// Package docker implements the Charging Docker's fine-approach state
// machine (spec.md §4.I Phase B): the AprilTag-guided SEARCH → DETECTED →
// APPROACH → PRECISE_POSITION → CONTACT → COMPLETED sequence. Phase A (the
// GPS coarse approach) is the planner's charging route, consumed by the
// controller before handing off to this state machine.
package docker

import (
	"math"
	"time"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// State is one fine-approach phase.
type State int

const (
	StateSearch State = iota
	StateDetected
	StateApproach
	StatePrecisePosition
	StateContact
	StateCompleted
	StateError
)

func (s State) String() string {
	switch s {
	case StateSearch:
		return "SEARCH"
	case StateDetected:
		return "DETECTED"
	case StateApproach:
		return "APPROACH"
	case StatePrecisePosition:
		return "PRECISE_POSITION"
	case StateContact:
		return "CONTACT"
	case StateCompleted:
		return "COMPLETED"
	default:
		return "ERROR"
	}
}

// TagDetection is one frame's AprilTag observation (spec.md §6 "the docker
// module needs only the detection").
type TagDetection struct {
	Found      bool
	TagID      int
	DistanceM  float64
	BearingRad float64
	Confidence float64
}

// Config holds the thresholds named in spec.md §4.I.
type Config struct {
	TagID                  int
	MinConfidence          float64
	CloseThresholdM        float64
	PositionToleranceM     float64
	HeadingToleranceRad    float64
	ConnectVoltage         float64
	ConnectCurrentAmps     float64
	ContactTimeout         time.Duration
	MissedFramesToSearch   int
	MissedFramesPrecise    int
	SearchRotationSpeed    float64
	ApproachSpeed          float64
	PreciseSpeed           float64
}

// DefaultConfig returns spec.md's named defaults.
func DefaultConfig() Config {
	return Config{
		TagID:                0,
		MinConfidence:        0.5,
		CloseThresholdM:      0.08,
		PositionToleranceM:   0.02,
		HeadingToleranceRad:  5 * math.Pi / 180,
		ConnectVoltage:       11.0,
		ConnectCurrentAmps:   0.1,
		ContactTimeout:       10 * time.Second,
		MissedFramesToSearch: 10,
		MissedFramesPrecise:  5,
		SearchRotationSpeed:  0.3,
		ApproachSpeed:        0.15,
		PreciseSpeed:         0.04,
	}
}

// Docker runs the fine-approach state machine frame by frame.
type Docker struct {
	cfg          Config
	state        State
	missedFrames int
	contactStart time.Time
}

// New builds a Docker starting in SEARCH.
func New(cfg Config) *Docker {
	if cfg.MinConfidence == 0 {
		cfg = DefaultConfig()
	}
	return &Docker{cfg: cfg, state: StateSearch}
}

// State returns the current phase.
func (d *Docker) State() State { return d.state }

// Reset returns the Docker to SEARCH, used when the controller re-enters
// DOCKING after an ERROR transition back to CHARGE_SEEK and retry.
func (d *Docker) Reset() {
	d.state = StateSearch
	d.missedFrames = 0
}

// Step advances the state machine by one tick given the current tag
// detection and power reading, returning the twist to command and whether
// the docking sequence is complete.
func (d *Docker) Step(det TagDetection, power model.PowerReading, now time.Time) (twist model.Twist, done bool) {
	validDetection := det.Found && det.TagID == d.cfg.TagID && det.Confidence >= d.cfg.MinConfidence

	switch d.state {
	case StateSearch:
		if validDetection {
			d.state = StateDetected
			d.missedFrames = 0
			return model.Twist{}, false
		}
		return model.Twist{W: d.cfg.SearchRotationSpeed}, false

	case StateDetected:
		d.state = StateApproach
		return model.Twist{}, false

	case StateApproach:
		if !validDetection {
			return d.handleMissedFrame(d.cfg.MissedFramesToSearch)
		}
		d.missedFrames = 0
		if det.DistanceM <= d.cfg.CloseThresholdM {
			d.state = StatePrecisePosition
			return model.Twist{}, false
		}
		if math.Abs(det.BearingRad) > 5*math.Pi/180 {
			return model.Twist{W: sign(det.BearingRad) * d.cfg.ApproachSpeed}, false
		}
		return model.Twist{V: d.cfg.ApproachSpeed}, false

	case StatePrecisePosition:
		if !validDetection {
			return d.handleMissedFrame(d.cfg.MissedFramesPrecise)
		}
		d.missedFrames = 0
		if det.DistanceM <= d.cfg.PositionToleranceM && math.Abs(det.BearingRad) <= d.cfg.HeadingToleranceRad {
			d.state = StateContact
			d.contactStart = now
			return model.Twist{}, false
		}
		if math.Abs(det.BearingRad) > d.cfg.HeadingToleranceRad {
			return model.Twist{W: sign(det.BearingRad) * d.cfg.PreciseSpeed}, false
		}
		return model.Twist{V: d.cfg.PreciseSpeed}, false

	case StateContact:
		if power.Valid && power.Voltage >= d.cfg.ConnectVoltage && power.CurrentAmps >= d.cfg.ConnectCurrentAmps {
			d.state = StateCompleted
			return model.Twist{}, true
		}
		if d.contactStart.IsZero() {
			d.contactStart = now
		}
		if now.Sub(d.contactStart) > d.cfg.ContactTimeout {
			d.state = StateCompleted
			return model.Twist{}, true
		}
		return model.Twist{}, false

	case StateCompleted:
		return model.Twist{}, true

	default: // StateError
		return model.Twist{}, false
	}
}

func (d *Docker) handleMissedFrame(limit int) (model.Twist, bool) {
	d.missedFrames++
	if d.missedFrames >= limit {
		d.state = StateSearch
		d.missedFrames = 0
	}
	return model.Twist{}, false
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
