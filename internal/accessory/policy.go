// Package accessory implements the Smart Accessory Policy Engine (spec.md
// §4.H): a multi-factor decision function turning the brush/fan actuators
// on/off, applied as a sequence of override layers.
package accessory

// Task mirrors the controller's mission phase, restricted to the values
// the accessory policy distinguishes.
type Task int

const (
	TaskEmergency Task = iota
	TaskMowing
	TaskPointToPoint
	TaskChargeSeek
	TaskDocked
	TaskIdle
)

// Policy selects which performance profile shapes layer 4 (spec.md §4.H
// "Policy-dependent ... hot-swappable via a single setter").
type Policy int

const (
	PolicyPerformance Policy = iota
	PolicyEconomy
	PolicyQuiet
	PolicySafety
)

// Inputs bundles every factor the decision function reads (spec.md §4.H).
type Inputs struct {
	Task                  Task
	Speed                 float64
	NearestObstacleDist   float64
	BatteryPercent        float64
	ChargeNeeded          bool
	BoundaryDistance      float64
	RoughTerrain          bool
	SpeedLimitActive      bool
	ManualOverrideActive  bool
}

// Decision is the output tri-boolean.
type Decision struct {
	MainBrush  bool
	SideBrushes bool
	Fan        bool
}

// Config holds the thresholds named in spec.md §4.H, with defaults.
type Config struct {
	CriticalBatteryPercent   float64
	LowBatteryPercent        float64
	SafeObstacleDistance     float64
	MainBrushCutoffDistance  float64
	BoundarySafetyDistance   float64
	MaxSideBrushSpeed        float64
	MinMowingSpeed           float64
	SafetyPolicySpeedCutoff  float64
}

// DefaultConfig returns the spec's named defaults.
func DefaultConfig() Config {
	return Config{
		CriticalBatteryPercent:  20,
		LowBatteryPercent:       40,
		SafeObstacleDistance:    0.5,
		MainBrushCutoffDistance: 0.35,
		BoundarySafetyDistance:  1.0,
		MaxSideBrushSpeed:       0.3,
		MinMowingSpeed:          0.1,
		SafetyPolicySpeedCutoff: 0.2,
	}
}

// Engine evaluates Decide with a hot-swappable Policy.
type Engine struct {
	cfg    Config
	policy Policy
}

// New builds an Engine with cfg (or DefaultConfig if zero) and an initial
// policy.
func New(cfg Config, policy Policy) *Engine {
	if cfg.SafeObstacleDistance == 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg, policy: policy}
}

// SetPolicy hot-swaps the performance policy (spec.md §4.H).
func (e *Engine) SetPolicy(p Policy) {
	e.policy = p
}

// Decide runs the five sequential layers from spec.md §4.H and returns the
// final accessory state.
func (e *Engine) Decide(in Inputs) Decision {
	// Layer 1: emergency overrides.
	if in.Task == TaskEmergency ||
		in.NearestObstacleDist < 0.2 ||
		in.BatteryPercent <= e.cfg.CriticalBatteryPercent ||
		in.ManualOverrideActive {
		return Decision{}
	}

	// Layer 2: task baseline.
	d := e.taskBaseline(in.Task)

	// Layer 3: safety overrides.
	if in.NearestObstacleDist < e.cfg.SafeObstacleDistance {
		d.SideBrushes = false
		if in.NearestObstacleDist < e.cfg.MainBrushCutoffDistance {
			d.MainBrush = false
		}
	}
	if in.BoundaryDistance < e.cfg.BoundarySafetyDistance {
		d.SideBrushes = false
	}
	if in.RoughTerrain {
		d.SideBrushes = false
	}
	if in.Speed > e.cfg.MaxSideBrushSpeed {
		d.SideBrushes = false
	}

	// Layer 4: performance-policy layer.
	switch e.policy {
	case PolicyPerformance:
		if in.Speed > e.cfg.MinMowingSpeed {
			d.Fan = true
		}
	case PolicyQuiet:
		d.Fan = false
	case PolicySafety:
		if in.Speed > e.cfg.SafetyPolicySpeedCutoff {
			d.SideBrushes = false
		}
	case PolicyEconomy:
		// no additional override; economy relies on the energy layer below
	}

	// Layer 5: energy layer.
	if in.BatteryPercent <= e.cfg.CriticalBatteryPercent {
		return Decision{}
	}
	if in.BatteryPercent <= e.cfg.LowBatteryPercent {
		d.Fan = false
	}
	if in.ChargeNeeded {
		d.SideBrushes = false
		d.Fan = false
	}

	return d
}

func (e *Engine) taskBaseline(task Task) Decision {
	switch task {
	case TaskMowing:
		return Decision{MainBrush: true, SideBrushes: true, Fan: true}
	case TaskPointToPoint:
		return Decision{MainBrush: true, SideBrushes: false, Fan: false}
	default: // CHARGE_SEEK, DOCKED, IDLE
		return Decision{}
	}
}
