// Package hal defines the uniform hardware abstraction layer (spec.md
// §4.A): a small capability interface per device, a runtime-environment
// Factory that selects between the simulator and physical backends, and
// the shared failure semantics (every read returns a validity flag; an
// unhealthy backend never hides that fact from its caller).
//
// Each interface is intentionally narrow (rdk's components/board,
// components/movementsensor, components/encoder packages show the same
// one-capability-per-type split rather than a deep inheritance tree),
// grounded on go.viam.com/rdk's components/ layout.
package hal

import (
	"context"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// Device is the lowest common capability every backend exposes.
type Device interface {
	Start(ctx context.Context) bool
	Stop()
	Healthy() bool
}

// IMU reports orientation and acceleration.
type IMU interface {
	Device
	Read(ctx context.Context) model.IMUReading
}

// GPS reports position fixes.
type GPS interface {
	Device
	Read(ctx context.Context) model.GPSReading
}

// Power reports battery telemetry.
type Power interface {
	Device
	Read(ctx context.Context) model.PowerReading
}

// Bumper reports contact-switch state.
type Bumper interface {
	Device
	Read(ctx context.Context) model.BumperReading
}

// Encoder reports accumulated wheel pulse counts.
type Encoder interface {
	Device
	Read(ctx context.Context) model.EncoderReading
}

// EmergencyStop reports the hardware e-stop line.
type EmergencyStop interface {
	Device
	Read(ctx context.Context) model.EStopReading
}

// Camera produces BGR frames.
type Camera interface {
	Device
	Read(ctx context.Context) model.CameraFrame
}

// Motor is the actuator surface: wheel speeds, brushes, fan, and the
// hard emergency stop (spec.md §4.A).
type Motor interface {
	Device
	SetWheelSpeeds(left, right float64)
	SetBrushes(main, left, right bool)
	SetFan(on bool)
	EmergencyStop()
	Status() model.MotorStatus
}

// Backend bundles every device capability a controller needs for one tick.
// Both the simulator and physical implementations satisfy it; the Factory
// never mixes devices from different backends in one process run
// (spec.md §4.A).
type Backend struct {
	IMU    IMU
	GPS    GPS
	Power  Power
	Bumper Bumper
	Encoder Encoder
	EStop  EmergencyStop
	Motor  Motor
	Camera Camera // optional; nil if no camera is configured
}

// ReadAll polls every device once and assembles a SensorFrame, matching
// the top controller's `sensors = HAL.read_all()` step (spec.md §4.J).
func (b *Backend) ReadAll(ctx context.Context) model.SensorFrame {
	frame := model.SensorFrame{
		IMU:      b.IMU.Read(ctx),
		GPS:      b.GPS.Read(ctx),
		Power:    b.Power.Read(ctx),
		Bumper:   b.Bumper.Read(ctx),
		Encoders: b.Encoder.Read(ctx),
		EStop:    b.EStop.Read(ctx),
	}
	if b.Camera != nil {
		f := b.Camera.Read(ctx)
		frame.Camera = &f
	}
	return frame
}

// StopAll calls Stop on every configured device, used at process shutdown
// (spec.md §5 "Cancellation").
func (b *Backend) StopAll() {
	b.IMU.Stop()
	b.GPS.Stop()
	b.Power.Stop()
	b.Bumper.Stop()
	b.Encoder.Stop()
	b.EStop.Stop()
	b.Motor.Stop()
	if b.Camera != nil {
		b.Camera.Stop()
	}
}
