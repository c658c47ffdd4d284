// Package avoider implements the Dynamic Window Avoider (spec.md §4.E):
// the local obstacle-avoidance sampler that selects a feasible (v, w)
// twist every tick, plus the independent emergency-brake predicate and the
// dynamic obstacle set's TTL pruning.
package avoider

import (
	"math"
	"sync"
	"time"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// Config holds every tunable named in spec.md §4.E, with the documented
// defaults.
type Config struct {
	MaxLinearAccel   float64 // m/s^2
	MaxAngularAccel  float64 // rad/s^2
	MaxLinearSpeed   float64 // m/s
	MaxAngularSpeed  float64 // rad/s
	LinearResolution float64 // m/s sample step
	AngularResolution float64 // rad/s sample step

	LookaheadSeconds float64
	SimStepSeconds   float64

	RobotRadiusM     float64
	SafetyDistanceM  float64

	WeightGoal     float64
	WeightObstacle float64
	WeightSpeed    float64
	WeightSmooth   float64

	ObstacleTTL time.Duration
}

// DefaultConfig returns the spec's named defaults.
func DefaultConfig() Config {
	return Config{
		MaxLinearAccel:    0.5,
		MaxAngularAccel:   1.5,
		MaxLinearSpeed:    0.6,
		MaxAngularSpeed:   1.2,
		LinearResolution:  0.05,
		AngularResolution: 0.1,
		LookaheadSeconds:  2.0,
		SimStepSeconds:    0.1,
		RobotRadiusM:      0.3,
		SafetyDistanceM:   0.2,
		WeightGoal:        0.4,
		WeightObstacle:    0.3,
		WeightSpeed:       0.2,
		WeightSmooth:      0.1,
		ObstacleTTL:       5 * time.Second,
	}
}

// Sample is one scored (v, w) candidate, returned for introspection/testing.
type Sample struct {
	Twist     model.Twist
	Score     float64
	Emergency bool
}

// Avoider holds the shared dynamic obstacle set (spec.md §3 "shared
// read/write between detector and avoider") and runs the DWA sampling.
type Avoider struct {
	cfg Config

	mu        sync.RWMutex
	obstacles []model.DynamicObstacle
}

// New builds an Avoider with cfg, or DefaultConfig if cfg is the zero
// value.
func New(cfg Config) *Avoider {
	if cfg.MaxLinearSpeed == 0 {
		cfg = DefaultConfig()
	}
	return &Avoider{cfg: cfg}
}

// SetObstacles replaces the tracked obstacle set, as produced by the
// detector (spec.md §3).
func (a *Avoider) SetObstacles(obstacles []model.DynamicObstacle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.obstacles = obstacles
}

// PruneExpired drops obstacles older than the configured TTL. Called once
// at the start of every tick, before sampling (spec.md §4.E "Obstacle TTL
// prune").
func (a *Avoider) PruneExpired(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	kept := a.obstacles[:0]
	for _, o := range a.obstacles {
		if !o.Expired(now, a.cfg.ObstacleTTL) {
			kept = append(kept, o)
		}
	}
	a.obstacles = kept
}

func (a *Avoider) snapshotObstacles() []model.DynamicObstacle {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]model.DynamicObstacle(nil), a.obstacles...)
}

// NearestObstacleDistance returns the clearance (surface-to-surface) to the
// closest tracked obstacle, or +Inf if none are tracked. Consumed by the
// controller's accessory-policy call (spec.md §4.H layer 3).
func (a *Avoider) NearestObstacleDistance(pose model.Pose) float64 {
	obstacles := a.snapshotObstacles()
	nearest := math.Inf(1)
	for _, o := range obstacles {
		d := math.Hypot(o.X-pose.X, o.Y-pose.Y) - o.Radius - a.cfg.RobotRadiusM
		if d < nearest {
			nearest = d
		}
	}
	return nearest
}

// EmergencyBrakeRequired implements the independent emergency-brake
// predicate: a stopping distance v^2/(2*a_max) that reaches or exceeds the
// clearance to the nearest obstacle signals an emergency (spec.md §4.E).
// Clearance is the center distance minus both radii and the safety
// distance, the same margin the DWA collision check uses.
func (a *Avoider) EmergencyBrakeRequired(pose model.Pose, v float64) bool {
	obstacles := a.snapshotObstacles()
	if len(obstacles) == 0 || v == 0 {
		return false
	}
	stoppingDistance := v * v / (2 * a.cfg.MaxLinearAccel)

	nearest := math.Inf(1)
	for _, o := range obstacles {
		d := math.Hypot(o.X-pose.X, o.Y-pose.Y) - o.Radius - a.cfg.RobotRadiusM - a.cfg.SafetyDistanceM
		if d < nearest {
			nearest = d
		}
	}
	return stoppingDistance >= nearest
}

// Avoid is the main DWA entry point: given the current pose, current
// twist, and goal waypoint, returns the best-scoring feasible twist, or
// ok=false if no sample is safe (spec.md §4.E step 4).
func (a *Avoider) Avoid(pose model.Pose, current model.Twist, goalX, goalY float64) (twist model.Twist, ok bool) {
	// Over-speed guard (spec.md §4.E step 1).
	if math.Abs(current.V) > a.cfg.MaxLinearSpeed*1.3 || math.Abs(current.W) > a.cfg.MaxAngularSpeed*1.3 {
		return model.Twist{
			V: current.V - 2*a.cfg.MaxLinearAccel,
			W: current.W * 0.5,
		}, true
	}

	obstacles := a.snapshotObstacles()

	vMin := math.Max(0, current.V-a.cfg.MaxLinearAccel*a.cfg.SimStepSeconds)
	vMax := math.Min(a.cfg.MaxLinearSpeed, current.V+a.cfg.MaxLinearAccel*a.cfg.SimStepSeconds)
	wMin := math.Max(-a.cfg.MaxAngularSpeed, current.W-a.cfg.MaxAngularAccel*a.cfg.SimStepSeconds)
	wMax := math.Min(a.cfg.MaxAngularSpeed, current.W+a.cfg.MaxAngularAccel*a.cfg.SimStepSeconds)

	if vMin > vMax || wMin > wMax || (vMin == vMax && wMin == wMax) {
		// Empty dynamic window: return the current twist unchanged
		// (spec.md §8 "DWA with an empty dynamic window... returns the
		// current twist").
		return current, true
	}

	var best Sample
	found := false

	for v := vMin; v <= vMax+1e-9; v += a.cfg.LinearResolution {
		for w := wMin; w <= wMax+1e-9; w += a.cfg.AngularResolution {
			traj, collided := a.simulate(pose, v, w, obstacles)
			if collided {
				continue
			}
			score := a.score(traj, v, w, goalX, goalY, obstacles)
			if !found || score > best.Score {
				best = Sample{Twist: model.Twist{V: v, W: w}, Score: score}
				found = true
			}
		}
	}

	if !found {
		return model.Twist{}, false
	}
	return best.Twist, true
}

// simulate forward-integrates the unicycle model for the lookahead
// horizon, returning the final pose and whether any intermediate pose
// collides with an obstacle (spec.md §4.E step 3).
func (a *Avoider) simulate(start model.Pose, v, w float64, obstacles []model.DynamicObstacle) (end model.Pose, collided bool) {
	pose := start
	steps := int(a.cfg.LookaheadSeconds / a.cfg.SimStepSeconds)
	const eps = 1e-3
	for i := 0; i < steps; i++ {
		if math.Abs(w) >= eps {
			r := v / w
			pose.X += r*math.Sin(pose.Theta+w*a.cfg.SimStepSeconds) - r*math.Sin(pose.Theta)
			pose.Y += -r*math.Cos(pose.Theta+w*a.cfg.SimStepSeconds) + r*math.Cos(pose.Theta)
		} else {
			pose.X += v * math.Cos(pose.Theta) * a.cfg.SimStepSeconds
			pose.Y += v * math.Sin(pose.Theta) * a.cfg.SimStepSeconds
		}
		pose.Theta = model.NormalizeAngle(pose.Theta + w*a.cfg.SimStepSeconds)

		for _, o := range obstacles {
			d := math.Hypot(pose.X-o.X, pose.Y-o.Y)
			if d <= a.cfg.RobotRadiusM+o.Radius+a.cfg.SafetyDistanceM {
				return pose, true
			}
		}
	}
	return pose, false
}

func (a *Avoider) score(end model.Pose, v, w, goalX, goalY float64, obstacles []model.DynamicObstacle) float64 {
	distToGoal := math.Hypot(goalX-end.X, goalY-end.Y)
	goalProgress := 1.0 / (1.0 + distToGoal)

	minClearance := math.Inf(1)
	for _, o := range obstacles {
		d := math.Hypot(end.X-o.X, end.Y-o.Y) - o.Radius - a.cfg.RobotRadiusM
		if d < minClearance {
			minClearance = d
		}
	}
	clearanceNorm := 1.0
	if !math.IsInf(minClearance, 1) {
		clearanceNorm = minClearance / (minClearance + 1.0)
		if clearanceNorm < 0 {
			clearanceNorm = 0
		}
	}

	speedTerm := v / a.cfg.MaxLinearSpeed
	smoothTerm := 1 - math.Abs(w)/a.cfg.MaxAngularSpeed

	return a.cfg.WeightGoal*goalProgress +
		a.cfg.WeightObstacle*clearanceNorm +
		a.cfg.WeightSpeed*speedTerm +
		a.cfg.WeightSmooth*smoothTerm
}
