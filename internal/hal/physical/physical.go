// Package physical implements the HAL's real-hardware backend: I2C for
// IMU/power, UART for GPS, GPIO interrupts for encoders/bumper with
// quadrature decoding, and PWM for motors (spec.md §4.A). It is built
// against periph.io's conn/gpio/i2c interfaces (periph.io/x/conn/v3,
// periph.io/x/host/v3), grounded on those exact two modules appearing as
// direct requires in go.viam.com/rdk's go.mod.
//
// The device drivers here are written against periph.io's bus interfaces
// so they compile and run against real hardware once host.Init() discovers
// the board's native drivers; this package does not fabricate a fake bus —
// on a machine with no GPIO/I2C hardware, Start returns false and Healthy
// stays false forever, which is the documented HAL init failure semantics
// (spec.md §4.A, §7).
package physical

import (
	"sync"
	"time"

	"go.uber.org/atomic"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3"

	"github.com/yusuftiryaki/robot-sub000/internal/hal"
)

// hostInitOnce runs periph.io's host.Init() exactly once per process,
// discovering the native GPIO/I2C/SPI drivers for the current board.
var (
	hostInitOnce sync.Once
	hostInitErr  error
)

// EnsureHostInit lazily initializes periph.io's driver registry.
func EnsureHostInit() error {
	hostInitOnce.Do(func() {
		_, hostInitErr = host.Init()
	})
	return hostInitErr
}

// I2CHandle is the narrow bus contract the IMU/Power drivers depend on;
// periph.io/x/conn/v3/i2c.Dev satisfies it directly.
type I2CHandle interface {
	Tx(write, read []byte) error
}

// GPIOHandle is the narrow pin contract the encoder/bumper/e-stop drivers
// depend on; periph.io/x/conn/v3/gpio.PinIn satisfies it directly.
type GPIOHandle interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
	WaitForEdge(timeout time.Duration) bool
}

// PWMHandle is the narrow contract the motor driver depends on;
// periph.io/x/conn/v3/gpio.PinOut (duty-cycle driven via PWM()) satisfies
// it.
type PWMHandle interface {
	PWM(duty gpio.Duty, freq int64) error
}

// RelayHandle is the narrow output-pin contract the direction and
// brush/fan relay drivers depend on; periph.io/x/conn/v3/gpio.PinOut
// satisfies it directly via its Out method.
type RelayHandle interface {
	Out(l gpio.Level) error
}

// baseDevice shares the Start/Stop/Healthy bookkeeping every physical
// device needs. A physical device that fails to open its bus handle never
// flips healthy to true, per the HAL failure semantics in spec.md §4.A.
type baseDevice struct {
	healthy atomic.Bool
}

func (d *baseDevice) Healthy() bool { return d.healthy.Load() }
func (d *baseDevice) Stop()         { d.healthy.Store(false) }

// NewBackend bundles already-constructed physical devices into a
// hal.Backend and opens nothing itself; Build is what opens the I2C bus,
// resolves the GPIO pins and opens the UART device before calling it. The
// devices depend only on the narrow I2CHandle/GPIOHandle/PWMHandle/
// RelayHandle/UARTPort contracts, so they can be driven by fakes of those.
func NewBackend(imu *IMU, gps *GPS, power *Power, bumper *Bumper, encoder *Encoder, estop *EmergencyStop, motor *Motor) *hal.Backend {
	return &hal.Backend{
		IMU:     imu,
		GPS:     gps,
		Power:   power,
		Bumper:  bumper,
		Encoder: encoder,
		EStop:   estop,
		Motor:   motor,
	}
}
