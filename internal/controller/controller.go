// Package controller implements the State Machine / Top Controller
// (spec.md §4.J): the ~10 Hz tick loop that reads sensors, runs the safety
// gate, updates localization, drives the per-state navigation step, folds
// in the accessory policy, and issues the final motor command.
package controller

import (
	"context"
	"math"
	"time"

	"go.uber.org/atomic"

	"github.com/yusuftiryaki/robot-sub000/internal/accessory"
	"github.com/yusuftiryaki/robot-sub000/internal/avoider"
	"github.com/yusuftiryaki/robot-sub000/internal/boundary"
	"github.com/yusuftiryaki/robot-sub000/internal/docker"
	"github.com/yusuftiryaki/robot-sub000/internal/hal"
	"github.com/yusuftiryaki/robot-sub000/internal/localize"
	"github.com/yusuftiryaki/robot-sub000/internal/model"
	"github.com/yusuftiryaki/robot-sub000/internal/planner"
	"github.com/yusuftiryaki/robot-sub000/internal/rlog"
	"github.com/yusuftiryaki/robot-sub000/internal/safety"
	"github.com/yusuftiryaki/robot-sub000/internal/telemetry"
	"github.com/yusuftiryaki/robot-sub000/internal/vision"
)

// Config holds the controller-level tunables from spec.md §4.J/§6.
type Config struct {
	TickRate              float64 // Hz
	BatteryLowThreshold   float64
	BatteryFullThreshold  float64
	WaypointTolerance     float64
	StuckLimitTicks       int
	ReplanMaxRateHz        float64
	ApriltagDetectionRange float64
	ErrorGraceDelay        time.Duration
	DockLat, DockLon       float64
}

// DefaultConfig returns the spec's named defaults.
func DefaultConfig() Config {
	return Config{
		TickRate:               10,
		BatteryLowThreshold:    30,
		BatteryFullThreshold:   95,
		WaypointTolerance:      0.3,
		StuckLimitTicks:        20,
		ReplanMaxRateHz:        2,
		ApriltagDetectionRange: 0.5,
	}
}

// Controller owns the tick loop and the current top-level state (spec.md
// §4.J state table).
type Controller struct {
	cfg Config

	backend  *hal.Backend
	safety   *safety.Gate
	loc      *localize.Localizer
	avoid    *avoider.Avoider
	accessor *accessory.Engine
	plan     *planner.Planner
	dock     *docker.Docker
	detector docker.TagDetector
	boundary *boundary.Guard
	vision   *vision.Detector

	state         model.RobotState
	prevState     model.RobotState
	route         *model.Route
	stuckCounter  int
	lastReplan    time.Time
	errorSince    time.Time
	lastTelemetry telemetry.Snapshot
	stopRequested atomic.Bool

	// geo is the canonical GPS<->local-frame projector. It is the garden
	// boundary guard's own projector when a guard is configured, so the
	// localizer's pose estimate, the planner's grid, and boundary checks
	// all agree on the same local origin (spec.md §3 "Garden Polygon").
	geo *model.GeoProjector

	log interface {
		Infow(string, ...any)
		Warnw(string, ...any)
		Errorw(string, ...any)
	}
}

// New builds a Controller wired to every subsystem. guard and vis may be
// nil when no garden polygon or camera is configured, respectively.
func New(cfg Config, backend *hal.Backend, gate *safety.Gate, loc *localize.Localizer, avoid *avoider.Avoider, accessor *accessory.Engine, plan *planner.Planner, dock *docker.Docker, detector docker.TagDetector, guard *boundary.Guard, vis *vision.Detector, geo *model.GeoProjector) *Controller {
	if cfg.TickRate == 0 {
		cfg = DefaultConfig()
	}
	return &Controller{
		cfg: cfg, backend: backend, safety: gate, loc: loc, avoid: avoid,
		accessor: accessor, plan: plan, dock: dock, detector: detector,
		boundary: guard, vision: vis, geo: geo,
		state: model.StateStartup,
		log:   rlog.Named("controller"),
	}
}

// RequestStop sets the cooperative stop flag observed at the next tick's
// sleep boundary (spec.md §5 "Cancellation").
func (c *Controller) RequestStop() {
	c.stopRequested.Store(true)
}

// Run drives the tick loop until ctx is cancelled or RequestStop is called.
func (c *Controller) Run(ctx context.Context) {
	interval := time.Duration(float64(time.Second) / c.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.state = model.StateIdle

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return
		case <-ticker.C:
			if c.stopRequested.Load() {
				c.shutdown()
				return
			}
			c.tick(ctx, time.Now())
		}
	}
}

func (c *Controller) shutdown() {
	c.backend.Motor.SetWheelSpeeds(0, 0)
	c.backend.StopAll()
}

// tick runs one iteration of the loop in spec.md §4.J's pseudocode:
// sensors -> safety -> (emergency short-circuit) -> localize -> act -> motor
// command.
func (c *Controller) tick(ctx context.Context, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Errorw("fatal tick exception", "recovered", r)
			c.prevState = c.state
			c.state = model.StateError
			c.errorSince = now
			c.backend.Motor.SetWheelSpeeds(0, 0)
		}
	}()

	sensors := c.backend.ReadAll(ctx)
	c.safety.Touch(now)
	result := c.safety.Check(sensors, now)

	if result.Emergency {
		c.backend.Motor.EmergencyStop()
		if c.state != model.StateEmergency {
			c.prevState = c.state
		}
		c.state = model.StateEmergency
		c.publishTelemetry(sensors, result)
		return
	}

	c.loc.Tick(now, sensors)
	c.avoid.PruneExpired(now)
	c.observeObstacles(sensors)

	c.actOnState(ctx, sensors, now)
	c.publishTelemetry(sensors, result)
}

// observeObstacles runs the camera frame (if any) through the obstacle
// detector, rotates the detections out of the robot frame they're reported
// in (forward/lateral, spec.md §4.D) into the shared world frame the
// avoider tracks obstacles in, and hands them to the avoider (spec.md §4.E
// "shared read/write between detector and avoider").
func (c *Controller) observeObstacles(sensors model.SensorFrame) {
	if c.vision == nil || sensors.Camera == nil {
		return
	}
	detections := c.vision.Process(*sensors.Camera)
	if detections == nil {
		return
	}
	pose := c.loc.CurrentPose()
	cosT, sinT := math.Cos(pose.Theta), math.Sin(pose.Theta)
	world := make([]model.DynamicObstacle, len(detections))
	for i, o := range detections {
		world[i] = o
		world[i].X = pose.X + o.X*cosT + o.Y*sinT
		world[i].Y = pose.Y + o.X*sinT - o.Y*cosT
	}
	c.avoid.SetObstacles(world)
}

// HandleCommand consumes one inbound control-surface request (spec.md §6).
func (c *Controller) HandleCommand(cmd telemetry.Command) {
	switch cmd.Kind {
	case telemetry.CommandStartMission:
		c.StartMission()
	case telemetry.CommandStopMission:
		if c.state == model.StateMowing {
			c.route = nil
			c.state = model.StateIdle
		}
	case telemetry.CommandEmergencyStop:
		c.prevState = c.state
		c.state = model.StateEmergency
		c.backend.Motor.EmergencyStop()
	case telemetry.CommandManualMove:
		if c.state == model.StateIdle {
			c.backend.Motor.SetWheelSpeeds(twistToWheelSpeeds(model.Twist{V: cmd.Linear, W: cmd.Angular}))
		}
	case telemetry.CommandSetBrushes:
		c.backend.Motor.SetBrushes(cmd.BrushesOn, cmd.BrushesOn, cmd.BrushesOn)
	case telemetry.CommandSetFan:
		c.backend.Motor.SetFan(cmd.FanOn)
	case telemetry.CommandReturnToDock:
		c.beginChargeSeek(time.Now())
	}
}

// StartMission transitions IDLE -> MOWING, planning a full boustrophedon
// coverage route over the garden polygon's bounding box (spec.md §4.J "IDLE
// - mission requested -> MOWING"). It reports false (no transition) when no
// garden polygon is configured or the controller isn't idle.
func (c *Controller) StartMission() bool {
	if c.state != model.StateIdle {
		return false
	}
	if c.boundary == nil {
		c.log.Warnw("start mission requested with no garden boundary configured")
		return false
	}
	minX, minY, maxX, maxY := c.boundary.BoundingBox()
	c.route = c.plan.PlanBoustrophedon(minX, minY, maxX, maxY)
	c.stuckCounter = 0
	c.state = model.StateMowing
	return true
}

func (c *Controller) actOnState(ctx context.Context, sensors model.SensorFrame, now time.Time) {
	switch c.state {
	case model.StateStartup:
		c.state = model.StateIdle

	case model.StateIdle:
		if sensors.Power.Valid && sensors.Power.Percent < c.cfg.BatteryLowThreshold {
			c.beginChargeSeek(now)
		}

	case model.StateMowing:
		if sensors.Power.Valid && sensors.Power.Percent < c.cfg.BatteryLowThreshold {
			c.beginChargeSeek(now)
			return
		}
		c.driveRoute(sensors, now, accessory.TaskMowing)

	case model.StateChargeSeek:
		pose := c.loc.CurrentPose()
		dockX, dockY := c.dockLocal()
		dist := math.Hypot(dockX-pose.X, dockY-pose.Y)
		if dist <= c.cfg.ApriltagDetectionRange {
			c.state = model.StateDocking
			c.dock.Reset()
			return
		}
		c.driveRoute(sensors, now, accessory.TaskChargeSeek)

	case model.StateDocking:
		det := c.detector.Detect()
		twist, done := c.dock.Step(det, sensors.Power, now)
		c.backend.Motor.SetWheelSpeeds(twistToWheelSpeeds(twist))
		if done {
			if c.dock.State() == docker.StateCompleted {
				c.state = model.StateCharging
			} else {
				c.state = model.StateChargeSeek
			}
		}

	case model.StateCharging:
		c.backend.Motor.SetWheelSpeeds(0, 0)
		if sensors.Power.Valid && sensors.Power.Percent >= c.cfg.BatteryFullThreshold {
			c.state = model.StateIdle
		}

	case model.StateEmergency:
		if !c.anyHazard(sensors) {
			next := c.prevState
			if next == model.StateStartup {
				next = model.StateIdle
			}
			c.state = next
		}

	case model.StateError:
		if now.Sub(c.errorSince) > c.cfg.ErrorGraceDelay {
			c.state = model.StateIdle
		}
	}
}

func (c *Controller) anyHazard(sensors model.SensorFrame) bool {
	return c.safety.Check(sensors, time.Now()).Emergency
}

func (c *Controller) beginChargeSeek(now time.Time) {
	pose := c.loc.CurrentPose()
	dockX, dockY := c.dockLocal()
	route := c.plan.PlanChargingRoute(pose.X, pose.Y, dockX, dockY)
	c.route = route
	c.state = model.StateChargeSeek
	c.stuckCounter = 0
}

// dockLocal converts the configured dock GPS fix into the shared local
// frame (spec.md §4.C "charging coarse-route generator"). Falls back to
// treating the configured values as already-local coordinates when no
// shared projector is available (e.g. in unit tests built without one).
func (c *Controller) dockLocal() (x, y float64) {
	if c.geo == nil {
		return c.cfg.DockLat, c.cfg.DockLon
	}
	return c.geo.ToLocal(model.GeoPoint{Lat: c.cfg.DockLat, Lon: c.cfg.DockLon})
}

// driveRoute consults the avoider with the current waypoint and folds the
// accessory policy into the final motor command (spec.md §4.J "Navigation
// step").
func (c *Controller) driveRoute(sensors model.SensorFrame, now time.Time, task accessory.Task) {
	if c.route == nil || c.route.Done() {
		if task == accessory.TaskMowing {
			c.state = model.StateIdle
		}
		c.backend.Motor.SetWheelSpeeds(0, 0)
		return
	}

	wp, ok := c.route.Peek()
	if !ok {
		c.backend.Motor.SetWheelSpeeds(0, 0)
		return
	}

	pose := c.loc.CurrentPose()
	if math.Hypot(wp.X-pose.X, wp.Y-pose.Y) <= c.cfg.WaypointTolerance {
		c.route.NextWaypoint()
		wp, ok = c.route.Peek()
		if !ok {
			c.backend.Motor.SetWheelSpeeds(0, 0)
			return
		}
	}

	current := c.currentTwist()
	twist, avoidOK := c.avoid.Avoid(pose, current, wp.X, wp.Y)
	if !avoidOK {
		c.stuckCounter++
		if c.stuckCounter >= c.cfg.StuckLimitTicks {
			c.prevState = c.state
			c.state = model.StateEmergency
			c.maybeReplan(pose, wp, now)
		}
		c.backend.Motor.SetWheelSpeeds(0, 0)
		return
	}
	c.stuckCounter = 0

	decision := c.accessor.Decide(accessory.Inputs{
		Task:                task,
		Speed:               twist.V,
		NearestObstacleDist: c.avoid.NearestObstacleDistance(pose),
		BatteryPercent:      sensors.Power.Percent,
		BoundaryDistance:    c.boundaryDistance(pose),
	})
	c.backend.Motor.SetBrushes(decision.MainBrush, decision.SideBrushes, decision.SideBrushes)
	c.backend.Motor.SetFan(decision.Fan)
	c.backend.Motor.SetWheelSpeeds(twistToWheelSpeeds(twist))
}

// boundaryDistance converts pose into GPS coordinates via the shared
// projector and runs it through the garden boundary guard (spec.md §4.F),
// returning +Inf (no override) when no guard is configured.
func (c *Controller) boundaryDistance(pose model.Pose) float64 {
	if c.boundary == nil || c.geo == nil {
		return math.Inf(1)
	}
	here := c.geo.ToGeo(pose.X, pose.Y)
	result := c.boundary.Check(here.Lat, here.Lon)
	if !result.Inside {
		return 0
	}
	return result.DistanceToBoundary
}

func (c *Controller) maybeReplan(pose model.Pose, wp model.Waypoint, now time.Time) {
	minInterval := time.Duration(float64(time.Second) / c.cfg.ReplanMaxRateHz)
	if now.Sub(c.lastReplan) < minInterval {
		return
	}
	c.lastReplan = now
	if route, ok := c.plan.PlanPointToPoint(pose.X, pose.Y, wp.X, wp.Y, wp.TargetSpeed); ok {
		c.route = route
	}
}

func (c *Controller) currentTwist() model.Twist {
	status := c.backend.Motor.Status()
	v := (status.LeftSpeed + status.RightSpeed) / 2
	return model.Twist{V: v}
}

func (c *Controller) publishTelemetry(sensors model.SensorFrame, result safety.Result) {
	pose := c.loc.CurrentPose()
	status := c.backend.Motor.Status()
	c.lastTelemetry = telemetry.Snapshot{
		Timestamp: time.Now(),
		State:     c.state.String(),
		Battery:   sensors.Power.Percent,
		Position:  telemetry.Position{X: pose.X, Y: pose.Y, Heading: pose.Theta},
		Motors: telemetry.Motors{
			LeftSpeed: status.LeftSpeed, RightSpeed: status.RightSpeed,
			BrushesActive: status.MainBrushOn, FanActive: status.FanOn,
		},
		SafetyReason: result.Reason,
	}
}

// Snapshot returns the most recently published telemetry snapshot.
func (c *Controller) Snapshot() telemetry.Snapshot {
	return c.lastTelemetry
}

func twistToWheelSpeeds(t model.Twist) (left, right float64) {
	const halfWheelbase = 0.15
	left = t.V - t.W*halfWheelbase
	right = t.V + t.W*halfWheelbase
	return clampUnit(left), clampUnit(right)
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
