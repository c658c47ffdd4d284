// Package inject provides function-field fakes for every HAL capability
// interface, mirroring go.viam.com/rdk's testutils/inject pattern (visible
// through its test suite's injectBoard.StatusFunc / injectMotor.GoFunc
// style overrides): each fake embeds no real device and instead exposes a
// Func field per interface method, defaulting to a no-op/zero-value
// implementation when unset.
package inject

import (
	"context"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// IMU is a function-field fake implementing hal.IMU.
type IMU struct {
	StartFunc func(ctx context.Context) bool
	StopFunc  func()
	HealthyFunc func() bool
	ReadFunc  func(ctx context.Context) model.IMUReading
}

func (f *IMU) Start(ctx context.Context) bool {
	if f.StartFunc != nil {
		return f.StartFunc(ctx)
	}
	return true
}
func (f *IMU) Stop() {
	if f.StopFunc != nil {
		f.StopFunc()
	}
}
func (f *IMU) Healthy() bool {
	if f.HealthyFunc != nil {
		return f.HealthyFunc()
	}
	return true
}
func (f *IMU) Read(ctx context.Context) model.IMUReading {
	if f.ReadFunc != nil {
		return f.ReadFunc(ctx)
	}
	return model.IMUReading{}
}

// GPS is a function-field fake implementing hal.GPS.
type GPS struct {
	StartFunc   func(ctx context.Context) bool
	StopFunc    func()
	HealthyFunc func() bool
	ReadFunc    func(ctx context.Context) model.GPSReading
}

func (f *GPS) Start(ctx context.Context) bool {
	if f.StartFunc != nil {
		return f.StartFunc(ctx)
	}
	return true
}
func (f *GPS) Stop() {
	if f.StopFunc != nil {
		f.StopFunc()
	}
}
func (f *GPS) Healthy() bool {
	if f.HealthyFunc != nil {
		return f.HealthyFunc()
	}
	return true
}
func (f *GPS) Read(ctx context.Context) model.GPSReading {
	if f.ReadFunc != nil {
		return f.ReadFunc(ctx)
	}
	return model.GPSReading{}
}

// Power is a function-field fake implementing hal.Power.
type Power struct {
	StartFunc   func(ctx context.Context) bool
	StopFunc    func()
	HealthyFunc func() bool
	ReadFunc    func(ctx context.Context) model.PowerReading
}

func (f *Power) Start(ctx context.Context) bool {
	if f.StartFunc != nil {
		return f.StartFunc(ctx)
	}
	return true
}
func (f *Power) Stop() {
	if f.StopFunc != nil {
		f.StopFunc()
	}
}
func (f *Power) Healthy() bool {
	if f.HealthyFunc != nil {
		return f.HealthyFunc()
	}
	return true
}
func (f *Power) Read(ctx context.Context) model.PowerReading {
	if f.ReadFunc != nil {
		return f.ReadFunc(ctx)
	}
	return model.PowerReading{}
}

// Bumper is a function-field fake implementing hal.Bumper.
type Bumper struct {
	StartFunc   func(ctx context.Context) bool
	StopFunc    func()
	HealthyFunc func() bool
	ReadFunc    func(ctx context.Context) model.BumperReading
}

func (f *Bumper) Start(ctx context.Context) bool {
	if f.StartFunc != nil {
		return f.StartFunc(ctx)
	}
	return true
}
func (f *Bumper) Stop() {
	if f.StopFunc != nil {
		f.StopFunc()
	}
}
func (f *Bumper) Healthy() bool {
	if f.HealthyFunc != nil {
		return f.HealthyFunc()
	}
	return true
}
func (f *Bumper) Read(ctx context.Context) model.BumperReading {
	if f.ReadFunc != nil {
		return f.ReadFunc(ctx)
	}
	return model.BumperReading{}
}

// Encoder is a function-field fake implementing hal.Encoder.
type Encoder struct {
	StartFunc   func(ctx context.Context) bool
	StopFunc    func()
	HealthyFunc func() bool
	ReadFunc    func(ctx context.Context) model.EncoderReading
}

func (f *Encoder) Start(ctx context.Context) bool {
	if f.StartFunc != nil {
		return f.StartFunc(ctx)
	}
	return true
}
func (f *Encoder) Stop() {
	if f.StopFunc != nil {
		f.StopFunc()
	}
}
func (f *Encoder) Healthy() bool {
	if f.HealthyFunc != nil {
		return f.HealthyFunc()
	}
	return true
}
func (f *Encoder) Read(ctx context.Context) model.EncoderReading {
	if f.ReadFunc != nil {
		return f.ReadFunc(ctx)
	}
	return model.EncoderReading{}
}

// EmergencyStop is a function-field fake implementing hal.EmergencyStop.
type EmergencyStop struct {
	StartFunc   func(ctx context.Context) bool
	StopFunc    func()
	HealthyFunc func() bool
	ReadFunc    func(ctx context.Context) model.EStopReading
}

func (f *EmergencyStop) Start(ctx context.Context) bool {
	if f.StartFunc != nil {
		return f.StartFunc(ctx)
	}
	return true
}
func (f *EmergencyStop) Stop() {
	if f.StopFunc != nil {
		f.StopFunc()
	}
}
func (f *EmergencyStop) Healthy() bool {
	if f.HealthyFunc != nil {
		return f.HealthyFunc()
	}
	return true
}
func (f *EmergencyStop) Read(ctx context.Context) model.EStopReading {
	if f.ReadFunc != nil {
		return f.ReadFunc(ctx)
	}
	return model.EStopReading{}
}

// Camera is a function-field fake implementing hal.Camera.
type Camera struct {
	StartFunc   func(ctx context.Context) bool
	StopFunc    func()
	HealthyFunc func() bool
	ReadFunc    func(ctx context.Context) model.CameraFrame
}

func (f *Camera) Start(ctx context.Context) bool {
	if f.StartFunc != nil {
		return f.StartFunc(ctx)
	}
	return true
}
func (f *Camera) Stop() {
	if f.StopFunc != nil {
		f.StopFunc()
	}
}
func (f *Camera) Healthy() bool {
	if f.HealthyFunc != nil {
		return f.HealthyFunc()
	}
	return true
}
func (f *Camera) Read(ctx context.Context) model.CameraFrame {
	if f.ReadFunc != nil {
		return f.ReadFunc(ctx)
	}
	return model.CameraFrame{}
}

// Motor is a function-field fake implementing hal.Motor.
type Motor struct {
	StartFunc           func(ctx context.Context) bool
	StopFunc            func()
	HealthyFunc         func() bool
	SetWheelSpeedsFunc  func(left, right float64)
	SetBrushesFunc      func(main, left, right bool)
	SetFanFunc          func(on bool)
	EmergencyStopFunc   func()
	StatusFunc          func() model.MotorStatus

	lastStatus model.MotorStatus
}

func (f *Motor) Start(ctx context.Context) bool {
	if f.StartFunc != nil {
		return f.StartFunc(ctx)
	}
	return true
}
func (f *Motor) Stop() {
	if f.StopFunc != nil {
		f.StopFunc()
	}
}
func (f *Motor) Healthy() bool {
	if f.HealthyFunc != nil {
		return f.HealthyFunc()
	}
	return true
}
func (f *Motor) SetWheelSpeeds(left, right float64) {
	if f.SetWheelSpeedsFunc != nil {
		f.SetWheelSpeedsFunc(left, right)
		return
	}
	f.lastStatus.LeftSpeed, f.lastStatus.RightSpeed = left, right
}
func (f *Motor) SetBrushes(main, left, right bool) {
	if f.SetBrushesFunc != nil {
		f.SetBrushesFunc(main, left, right)
		return
	}
	f.lastStatus.MainBrushOn, f.lastStatus.SideBrushLeftOn, f.lastStatus.SideBrushRightOn = main, left, right
}
func (f *Motor) SetFan(on bool) {
	if f.SetFanFunc != nil {
		f.SetFanFunc(on)
		return
	}
	f.lastStatus.FanOn = on
}
func (f *Motor) EmergencyStop() {
	if f.EmergencyStopFunc != nil {
		f.EmergencyStopFunc()
		return
	}
	f.lastStatus = model.MotorStatus{}
}
func (f *Motor) Status() model.MotorStatus {
	if f.StatusFunc != nil {
		return f.StatusFunc()
	}
	return f.lastStatus
}
