// Package safety implements the Safety System (spec.md §4.G): a
// priority-ordered tick-rate check chain (bumper/e-stop, tilt, battery,
// watchdog) producing one Result per tick that can preempt the
// controller's state machine.
package safety

import (
	"math"
	"time"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// Config holds the thresholds named in spec.md §4.G and §6.
type Config struct {
	MaxTiltRad      float64
	MinVoltage      float64
	BatteryDropWarnPercentPerTick float64
	MaxCurrentAmps  float64
	WatchdogTimeout time.Duration
}

// DefaultConfig returns the spec's named defaults (25 deg tilt, 10.5 V, 5 s
// watchdog).
func DefaultConfig() Config {
	return Config{
		MaxTiltRad:                    25 * math.Pi / 180,
		MinVoltage:                    10.5,
		BatteryDropWarnPercentPerTick: 5.0,
		MaxCurrentAmps:                5.0,
		WatchdogTimeout:               5 * time.Second,
	}
}

// Result is the per-tick outcome of the safety chain (spec.md §4.G).
type Result struct {
	Severity  model.Severity
	Emergency bool
	Reason    string
	Details   map[string]any
}

// Gate evaluates a SensorFrame against the check chain, tracking the
// previous tick's battery percent for the drop-rate check and the last
// update time for the watchdog.
type Gate struct {
	cfg Config

	havePrevBattery bool
	prevBatteryPct  float64
	lastUpdate      time.Time
}

// New builds a Gate.
func New(cfg Config) *Gate {
	if cfg.MaxTiltRad == 0 {
		cfg = DefaultConfig()
	}
	return &Gate{cfg: cfg}
}

// Touch records that a tick's sensor frame was received, resetting the
// watchdog clock. Called once per successful tick regardless of outcome.
func (g *Gate) Touch(now time.Time) {
	g.lastUpdate = now
}

// Check runs the priority-ordered chain in spec.md §4.G over frame and
// returns the worst-severity Result. now is the current tick's wall-clock
// time, used for the watchdog check.
func (g *Gate) Check(frame model.SensorFrame, now time.Time) Result {
	if g.lastUpdate.IsZero() {
		g.lastUpdate = now
	}

	// 1. Bumper or hardware e-stop.
	if frame.Bumper.Valid && frame.Bumper.Pressed {
		return Result{Severity: model.SeverityEmergency, Emergency: true, Reason: "bumper pressed"}
	}
	if frame.EStop.Valid && frame.EStop.Asserted {
		return Result{Severity: model.SeverityEmergency, Emergency: true, Reason: "hardware e-stop asserted"}
	}

	// 2. Tilt. Warnings are held so later emergency checks still run; the
	// first warning in priority order is returned only if none follows.
	var warning *Result
	if frame.IMU.Valid {
		tilt := math.Max(math.Abs(frame.IMU.Roll), math.Abs(frame.IMU.Pitch))
		if tilt > g.cfg.MaxTiltRad {
			return Result{
				Severity: model.SeverityEmergency, Emergency: true, Reason: "excessive tilt",
				Details: map[string]any{"tilt_rad": tilt},
			}
		}
		if tilt > 0.7*g.cfg.MaxTiltRad {
			warning = &Result{
				Severity: model.SeverityWarning, Reason: "approaching tilt limit",
				Details: map[string]any{"tilt_rad": tilt},
			}
		}
	}

	// 3. Battery.
	if frame.Power.Valid {
		if frame.Power.Voltage < g.cfg.MinVoltage {
			return Result{
				Severity: model.SeverityEmergency, Emergency: true, Reason: "battery voltage below minimum",
				Details: map[string]any{"voltage": frame.Power.Voltage},
			}
		}
		if warning == nil && g.havePrevBattery && g.prevBatteryPct-frame.Power.Percent >= g.cfg.BatteryDropWarnPercentPerTick {
			warning = &Result{Severity: model.SeverityWarning, Reason: "rapid battery percent drop"}
		}
		g.prevBatteryPct = frame.Power.Percent
		g.havePrevBattery = true
		if warning == nil && frame.Power.CurrentAmps > g.cfg.MaxCurrentAmps {
			warning = &Result{
				Severity: model.SeverityWarning, Reason: "current draw above limit",
				Details: map[string]any{"current_amps": frame.Power.CurrentAmps},
			}
		}
	}

	// 4. Watchdog.
	if now.Sub(g.lastUpdate) > g.cfg.WatchdogTimeout {
		return Result{Severity: model.SeverityEmergency, Emergency: true, Reason: "sensor watchdog timeout"}
	}

	g.lastUpdate = now
	if warning != nil {
		return *warning
	}
	return Result{Severity: model.SeveritySafe}
}
