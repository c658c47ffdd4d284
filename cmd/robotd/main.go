// Command robotd is the control-core process entrypoint: it loads
// configuration, builds the HAL backend through the Factory, wires every
// subsystem into a controller.Controller, and runs the tick loop until an
// OS signal or a fatal error stops it (spec.md §5 "Cancellation", §6
// "Exit codes"), grounded on 99souls-ariadne's main.go signal-handling
// shape (os/signal.Notify, context.WithCancel, a second-signal forced
// exit).
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/yusuftiryaki/robot-sub000/internal/accessory"
	"github.com/yusuftiryaki/robot-sub000/internal/avoider"
	"github.com/yusuftiryaki/robot-sub000/internal/boundary"
	"github.com/yusuftiryaki/robot-sub000/internal/config"
	"github.com/yusuftiryaki/robot-sub000/internal/controller"
	"github.com/yusuftiryaki/robot-sub000/internal/docker"
	"github.com/yusuftiryaki/robot-sub000/internal/hal"
	"github.com/yusuftiryaki/robot-sub000/internal/hal/bootstrap"
	"github.com/yusuftiryaki/robot-sub000/internal/hal/physical"
	"github.com/yusuftiryaki/robot-sub000/internal/hal/simulator"
	"github.com/yusuftiryaki/robot-sub000/internal/localize"
	"github.com/yusuftiryaki/robot-sub000/internal/model"
	"github.com/yusuftiryaki/robot-sub000/internal/planner"
	"github.com/yusuftiryaki/robot-sub000/internal/rlog"
	"github.com/yusuftiryaki/robot-sub000/internal/safety"
	"github.com/yusuftiryaki/robot-sub000/internal/vision"
)

// exit codes, spec.md §6.
const (
	exitOK          = 0
	exitInitFailure = 1
	exitInterrupt   = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		devLog     bool
		backendStr string
	)
	flag.StringVar(&configPath, "config", "robot.yaml", "path to the robot configuration file")
	flag.BoolVar(&devLog, "dev", false, "enable human-readable development logging")
	flag.StringVar(&backendStr, "backend", "auto", "hal backend: auto|simulation|physical")
	flag.Parse()

	if err := rlog.Init(devLog); err != nil {
		fmt.Fprintf(os.Stderr, "robotd: failed to init logger: %v\n", err)
		return exitInitFailure
	}
	log := rlog.Named("main")

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Warnw("falling back to defaults, config load failed", "path", configPath, "error", err)
		d := config.Default()
		cfg = &d
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupted := false
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Infow("signal received, initiating graceful shutdown")
		interrupted = true
		cancel()
		<-sigCh
		log.Warnw("second signal received, forcing exit")
		os.Exit(exitInterrupt)
	}()

	kind, err := backendKind(backendStr)
	if err != nil {
		log.Errorw("invalid backend flag", "value", backendStr, "error", err)
		return exitInitFailure
	}

	factory := bootstrap.NewFactory(kind, simulatorConfig(cfg), pinConfig(cfg), cfg.Sensors.Camera.Type != "none")
	backend, resolvedKind, err := factory.Build(ctx)
	if err != nil {
		log.Errorw("hal init failed", "error", err)
		return exitInitFailure
	}
	log.Infow("hal backend ready", "kind", resolvedKind.String())
	defer backend.StopAll()

	ctrl := buildController(cfg, backend)

	log.Infow("control core starting")
	ctrl.Run(ctx)

	if interrupted {
		return exitInterrupt
	}
	return exitOK
}

func backendKind(s string) (hal.BackendKind, error) {
	switch s {
	case "", "auto":
		return hal.BackendAuto, nil
	case "simulation":
		return hal.BackendSimulation, nil
	case "physical":
		return hal.BackendPhysical, nil
	default:
		return hal.BackendAuto, fmt.Errorf("unknown backend %q", s)
	}
}

func simulatorConfig(cfg *config.Config) simulator.Config {
	return simulator.Config{
		WheelRadiusM:        cfg.Navigation.WheelDiameter / 2,
		WheelBaseM:          cfg.Navigation.WheelBase,
		OriginLat:           dockLat(cfg),
		OriginLon:           dockLon(cfg),
		StartBatteryPercent: 80,
	}
}

func pinConfig(cfg *config.Config) physical.PinConfig {
	pins := cfg.MotorsCfg.Pins
	return physical.PinConfig{
		EncoderLeftA:  pins["encoder_left_a"],
		EncoderLeftB:  pins["encoder_left_b"],
		EncoderRightA: pins["encoder_right_a"],
		EncoderRightB: pins["encoder_right_b"],
		BumperPin:     pins["bumper"],
		EStopPin:      pins["estop"],
		LeftPWMPin:    pins["left_pwm"],
		RightPWMPin:   pins["right_pwm"],
		LeftDirPin:    pins["left_dir"],
		RightDirPin:   pins["right_dir"],
		MainBrushPin:  pins["main_brush"],
		SideLeftPin:   pins["side_brush_left"],
		SideRightPin:  pins["side_brush_right"],
		FanPin:        pins["fan"],
	}
}

func dockLat(cfg *config.Config) float64 {
	return cfg.Missions.Charging.DockGPS.Latitude
}

func dockLon(cfg *config.Config) float64 {
	return cfg.Missions.Charging.DockGPS.Longitude
}

func buildController(cfg *config.Config, backend *hal.Backend) *controller.Controller {
	log := rlog.Named("main")

	cc := controller.DefaultConfig()
	cc.BatteryLowThreshold = cfg.Missions.Charging.BatteryLowThreshold
	cc.BatteryFullThreshold = cfg.Missions.Charging.BatteryFullThreshold
	cc.ApriltagDetectionRange = cfg.Charging.ApriltagDetectionRange
	cc.DockLat, cc.DockLon = dockLat(cfg), dockLon(cfg)

	gate := safety.New(safety.Config{
		MaxTiltRad:                    cfg.Safety.MaxTiltAngle * (math.Pi / 180),
		MinVoltage:                    cfg.Safety.MinBatteryVoltage,
		BatteryDropWarnPercentPerTick: safety.DefaultConfig().BatteryDropWarnPercentPerTick,
		MaxCurrentAmps:                safety.DefaultConfig().MaxCurrentAmps,
		WatchdogTimeout:               time.Duration(cfg.Safety.WatchdogTimeout * float64(time.Second)),
	})

	guard := buildBoundaryGuard(cfg, log)

	// The garden polygon's own projector is the single canonical local
	// frame: the localizer's pose estimate, the boundary guard's checks,
	// and the planner's grid all have to agree on one origin. Falling back
	// to a dock-anchored projector keeps the dock-seeking distance math
	// working when no garden polygon is configured.
	var geo *model.GeoProjector
	if guard != nil {
		geo = guard.Projector()
	} else {
		geo = model.NewGeoProjector(dockLat(cfg), dockLon(cfg))
	}

	loc := localize.New(localize.DefaultConfig(), geo)
	avoid := avoider.New(avoider.DefaultConfig())
	accessor := accessory.New(accessory.DefaultConfig(), accessory.PolicyPerformance)

	grid := buildGrid(cfg, guard, log)
	plan := planner.New(planner.DefaultConfig(), grid)

	dock := docker.New(docker.DefaultConfig())

	var detector docker.TagDetector
	if backend.Camera != nil {
		detector = docker.NewCameraDetector(backend.Camera, cfg.Charging.TagID, docker.DefaultCameraConfig())
	} else {
		detector = noDetector{}
	}

	var vis *vision.Detector
	if cfg.Sensors.Camera.Type != "none" {
		vis = vision.New(vision.DefaultConfig())
	}

	return controller.New(cc, backend, gate, loc, avoid, accessor, plan, dock, detector, guard, vis, geo)
}

// buildBoundaryGuard constructs the garden boundary guard from the
// configured polygon, or returns nil with a warning when fewer than three
// vertices are configured (spec.md §4.F requires a closed polygon).
func buildBoundaryGuard(cfg *config.Config, log interface{ Warnw(string, ...any) }) *boundary.Guard {
	if len(cfg.BoundaryCoordinates) < 3 {
		log.Warnw("fewer than 3 boundary_coordinates configured, boundary guard disabled")
		return nil
	}
	vertices := make([]model.GeoPoint, len(cfg.BoundaryCoordinates))
	for i, v := range cfg.BoundaryCoordinates {
		vertices[i] = model.GeoPoint{Lat: v.Latitude, Lon: v.Longitude}
	}
	guard, err := boundary.NewGuard(vertices, 0, 0)
	if err != nil {
		log.Warnw("invalid garden boundary, boundary guard disabled", "error", err)
		return nil
	}
	return guard
}

// buildGrid sizes the planner's occupancy grid to the garden polygon's
// bounding box, padded by the configured obstacle padding, instead of an
// arbitrary fixed extent (spec.md §3 "Rebuilt whenever the planner's
// obstacle set changes"). Falls back to a generic extent when no boundary
// guard is configured.
func buildGrid(cfg *config.Config, guard *boundary.Guard, log interface{ Warnw(string, ...any) }) *model.GridMap {
	resolution := cfg.Navigation.PathPlanning.GridResolution
	if guard == nil {
		log.Warnw("no garden boundary configured, falling back to a fixed planning grid extent")
		return model.NewGridMap(-50, -50, 50, 50, resolution)
	}
	pad := cfg.Navigation.PathPlanning.ObstaclePadding
	minX, minY, maxX, maxY := guard.BoundingBox()
	return model.NewGridMap(minX-pad, minY-pad, maxX+pad, maxY+pad, resolution)
}

// noDetector reports no tag ever found, used when no camera is configured.
type noDetector struct{}

func (noDetector) Detect() docker.TagDetection { return docker.TagDetection{} }
