package physical

import (
	"context"
	"math"
	"sync"

	"periph.io/x/conn/v3/gpio"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

const pwmFrequencyHz = 20000

// Motor drives dual PWM-controlled wheel motors plus the brush/fan relays
// (spec.md §4.A "PWM for motors").
type Motor struct {
	baseDevice
	leftPWM, rightPWM       PWMHandle
	leftDir, rightDir       RelayHandle // direction pins, forward on High
	mainBrush, sideL, sideR RelayHandle
	fan                     RelayHandle

	mu     sync.Mutex
	status model.MotorStatus
}

// NewMotor wires the PWM/direction/relay pins for both wheels and the
// accessories.
func NewMotor(leftPWM, rightPWM PWMHandle, leftDir, rightDir, mainBrush, sideL, sideR, fan RelayHandle) *Motor {
	return &Motor{
		leftPWM: leftPWM, rightPWM: rightPWM,
		leftDir: leftDir, rightDir: rightDir,
		mainBrush: mainBrush, sideL: sideL, sideR: sideR, fan: fan,
	}
}

func (m *Motor) Start(ctx context.Context) bool {
	if m.leftPWM == nil || m.rightPWM == nil {
		return false
	}
	m.healthy.Store(true)
	return true
}

// SetWheelSpeeds clamps both speeds to [-1, 1] internally, per the HAL
// contract in spec.md §4.A.
func (m *Motor) SetWheelSpeeds(left, right float64) {
	left = clampUnit(left)
	right = clampUnit(right)

	m.mu.Lock()
	m.status.LeftSpeed = left
	m.status.RightSpeed = right
	m.status.Active = left != 0 || right != 0
	m.mu.Unlock()

	if !m.Healthy() {
		return
	}
	driveWheel(m.leftPWM, m.leftDir, left)
	driveWheel(m.rightPWM, m.rightDir, right)
}

func driveWheel(pwm PWMHandle, dir RelayHandle, speed float64) {
	if dir != nil {
		level := gpio.High
		if speed < 0 {
			level = gpio.Low
		}
		_ = dir.Out(level)
	}
	duty := gpio.Duty(math.Abs(speed) * float64(gpio.DutyMax))
	_ = pwm.PWM(duty, pwmFrequencyHz)
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func setRelay(pin RelayHandle, on bool) {
	if pin == nil {
		return
	}
	level := gpio.Low
	if on {
		level = gpio.High
	}
	_ = pin.Out(level)
}

func (m *Motor) SetBrushes(main, left, right bool) {
	m.mu.Lock()
	m.status.MainBrushOn = main
	m.status.SideBrushLeftOn = left
	m.status.SideBrushRightOn = right
	m.mu.Unlock()
	setRelay(m.mainBrush, main)
	setRelay(m.sideL, left)
	setRelay(m.sideR, right)
}

func (m *Motor) SetFan(on bool) {
	m.mu.Lock()
	m.status.FanOn = on
	m.mu.Unlock()
	setRelay(m.fan, on)
}

// EmergencyStop zeroes every actuator immediately; this is the physical
// counterpart of the emergency-stop motor command spec.md §8 requires at
// the end of any EMERGENCY tick.
func (m *Motor) EmergencyStop() {
	m.SetWheelSpeeds(0, 0)
	m.SetBrushes(false, false, false)
	m.SetFan(false)
}

func (m *Motor) Status() model.MotorStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}
