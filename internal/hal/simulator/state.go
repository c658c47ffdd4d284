// Package simulator implements the HAL's deterministic simulation backend
// (spec.md §4.A "Simulator backend is a first-class implementation, not a
// mock"). It holds a singleton SimulationState driven by commanded motor
// twists and integrates pose; every sensor read derives its reading from
// that shared state, grounded on go.viam.com/rdk's components/base/fake,
// components/board/fake and components/encoder/fake test packages, which
// all show a "fake" backend driven by one shared in-memory state struct.
package simulator

import (
	"math"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// State is the simulator's single source of truth. It is confined to this
// package — application code never reaches it directly, only through the
// Backend's Device interfaces (spec.md §9 "Global simulation singleton").
type State struct {
	mu sync.RWMutex

	// commanded twist, last set by SetWheelSpeeds via the wheeled-base math
	commandedV, commandedW float64

	// local-frame pose, integrated by the physics driver (§4.K)
	pose model.Pose

	// GPS reference, established lazily on first GPS read
	projector  *model.GeoProjector
	haveOrigin bool
	originLat, originLon float64

	// battery model
	batteryPercent float64

	// encoder accumulators
	leftPulses, rightPulses int64

	wheelRadiusM   float64
	wheelBaseM     float64
	ticksPerRev    float64

	// motor/brush/fan status
	status model.MotorStatus

	// e-stop test hook
	eStopAsserted atomic.Bool

	// bumper test hook
	bumperScheduleEnabled bool
	startedAt             time.Time

	lastUpdate time.Time

	rng *mathRand
}

// Config seeds the simulator's physical constants and starting GPS origin.
type Config struct {
	WheelRadiusM          float64
	WheelBaseM            float64
	TicksPerRev           float64
	OriginLat, OriginLon  float64
	StartBatteryPercent   float64
	BumperScheduleEnabled bool // disableable per spec.md §9 open question
}

// NewState builds a fresh SimulationState at the zero pose.
func NewState(cfg Config) *State {
	if cfg.WheelRadiusM == 0 {
		cfg.WheelRadiusM = 0.065
	}
	if cfg.WheelBaseM == 0 {
		cfg.WheelBaseM = 0.35
	}
	if cfg.TicksPerRev == 0 {
		cfg.TicksPerRev = 360
	}
	if cfg.StartBatteryPercent == 0 {
		cfg.StartBatteryPercent = 100
	}
	now := time.Now()
	return &State{
		wheelRadiusM:          cfg.WheelRadiusM,
		wheelBaseM:            cfg.WheelBaseM,
		ticksPerRev:           cfg.TicksPerRev,
		originLat:             cfg.OriginLat,
		originLon:             cfg.OriginLon,
		batteryPercent:        cfg.StartBatteryPercent,
		bumperScheduleEnabled: cfg.BumperScheduleEnabled,
		startedAt:             now,
		lastUpdate:            now,
		rng:                   newMathRand(1),
	}
}

// SetCommandedTwist records a new commanded (v, w); it drives the physics
// integrator on the next Step call.
func (s *State) SetCommandedTwist(v, w float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commandedV = v
	s.commandedW = w
	s.status.Active = v != 0 || w != 0
}

// Pose returns a snapshot of the simulated local-frame pose.
func (s *State) Pose() model.Pose {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pose
}

// Step integrates the commanded twist into the pose over dt and accumulates
// encoder pulses and battery drain — the simulation-pose integrator.
// Motor.SetWheelSpeeds calls it once per wheel command with dt = 0.1 s;
// sensor reads, including GPS reads, do not advance it.
func (s *State) Step(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dt <= 0 {
		return
	}

	v, w := s.commandedV, s.commandedW
	theta := s.pose.Theta
	if math.Abs(w) < 1e-6 {
		s.pose.X += v * math.Cos(theta) * dt
		s.pose.Y += v * math.Sin(theta) * dt
	} else {
		r := v / w
		s.pose.X += r*math.Sin(theta+w*dt) - r*math.Sin(theta)
		s.pose.Y += -r*math.Cos(theta+w*dt) + r*math.Cos(theta)
	}
	s.pose.Theta = model.NormalizeAngle(theta + w*dt)
	s.pose.StampMS = time.Now().UnixMilli()

	// differential-drive inverse: derive per-wheel linear speeds from (v, w)
	leftSpeed := v - w*s.wheelBaseM/2
	rightSpeed := v + w*s.wheelBaseM/2
	pulsesPerMeter := s.ticksPerRev / (2 * math.Pi * s.wheelRadiusM)
	s.leftPulses += int64(leftSpeed * dt * pulsesPerMeter)
	s.rightPulses += int64(rightSpeed * dt * pulsesPerMeter)

	// battery: higher drain while moving (spec.md §4.A)
	drainPerSec := 0.002
	if v != 0 || w != 0 {
		drainPerSec = 0.01 + 0.02*math.Abs(v)
	}
	s.batteryPercent -= drainPerSec * dt
	if s.batteryPercent < 0 {
		s.batteryPercent = 0
	}

	s.lastUpdate = time.Now()
}

// SetEStop is the simulator's test hook for asserting the hardware e-stop
// line (spec.md §4.A "always reports released unless a test hook asserts
// it").
func (s *State) SetEStop(asserted bool) {
	s.eStopAsserted.Store(asserted)
}

// SetBatteryPercent is a test hook to force battery level.
func (s *State) SetBatteryPercent(pct float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batteryPercent = pct
}
