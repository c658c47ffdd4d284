package physical

import (
	"fmt"
	"os"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"

	"github.com/yusuftiryaki/robot-sub000/internal/hal"
)

// PinConfig names the GPIO/I2C identifiers the physical backend resolves
// through periph.io's registries, mirroring spec.md §6's
// "motors.type=hardware; per-motor pin groups" configuration surface.
type PinConfig struct {
	I2CBus         string
	IMUAddr        byte
	PowerAddr      byte
	UARTDevicePath string

	EncoderLeftA, EncoderLeftB   string
	EncoderRightA, EncoderRightB string
	BumperPin                    string
	EStopPin                     string

	LeftPWMPin, RightPWMPin         string
	LeftDirPin, RightDirPin         string
	MainBrushPin, SideLeftPin       string
	SideRightPin, FanPin            string
}

// Build resolves every named pin/bus through periph.io's registries and
// assembles the full physical hal.Backend. It returns an error (not a
// panic) on any unresolved pin, matching spec.md §7's "HAL init failure:
// the backend stays unhealthy... the controller logs and continues" —
// callers that get an error here should fall back to BackendSimulation
// rather than crash the process.
func Build(cfg PinConfig) (*hal.Backend, error) {
	if err := EnsureHostInit(); err != nil {
		return nil, fmt.Errorf("physical: host init failed: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("physical: opening i2c bus %q: %w", cfg.I2CBus, err)
	}

	pin := func(name string) (gpioPin, error) {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("physical: gpio pin %q not found", name)
		}
		return p, nil
	}

	leftA, err := pin(cfg.EncoderLeftA)
	if err != nil {
		return nil, err
	}
	leftB, err := pin(cfg.EncoderLeftB)
	if err != nil {
		return nil, err
	}
	rightA, err := pin(cfg.EncoderRightA)
	if err != nil {
		return nil, err
	}
	rightB, err := pin(cfg.EncoderRightB)
	if err != nil {
		return nil, err
	}
	bumperPin, err := pin(cfg.BumperPin)
	if err != nil {
		return nil, err
	}
	eStopPin, err := pin(cfg.EStopPin)
	if err != nil {
		return nil, err
	}
	leftDir, err := pin(cfg.LeftDirPin)
	if err != nil {
		return nil, err
	}
	rightDir, err := pin(cfg.RightDirPin)
	if err != nil {
		return nil, err
	}
	mainBrush, err := pin(cfg.MainBrushPin)
	if err != nil {
		return nil, err
	}
	sideLeft, err := pin(cfg.SideLeftPin)
	if err != nil {
		return nil, err
	}
	sideRight, err := pin(cfg.SideRightPin)
	if err != nil {
		return nil, err
	}
	fanPin, err := pin(cfg.FanPin)
	if err != nil {
		return nil, err
	}
	leftPWM, err := pin(cfg.LeftPWMPin)
	if err != nil {
		return nil, err
	}
	rightPWM, err := pin(cfg.RightPWMPin)
	if err != nil {
		return nil, err
	}

	imu := NewIMU(bus, cfg.IMUAddr)
	power := NewPower(bus, cfg.PowerAddr)
	encoder := NewEncoder(leftA, leftB, rightA, rightB)
	bumper := NewBumper(bumperPin)
	eStop := NewEmergencyStop(eStopPin)
	motor := NewMotor(leftPWM, rightPWM, leftDir, rightDir, mainBrush, sideLeft, sideRight, fanPin)

	// The UART device is expected to already be configured (baud rate,
	// raw mode) by the OS; os.File satisfies UARTPort directly as a thin
	// read handle onto the tty.
	uartFile, err := os.Open(cfg.UARTDevicePath)
	var gps *GPS
	if err != nil {
		gps = NewGPS(nil) // stays unhealthy forever, per HAL failure semantics
	} else {
		gps = NewGPS(uartFile)
	}

	backend := NewBackend(imu, gps, power, bumper, encoder, eStop, motor)
	return backend, nil
}

// gpioPin is the union of capabilities periph.io's gpioreg.ByName() result
// actually offers; GPIOHandle and RelayHandle are both satisfied by it.
type gpioPin interface {
	GPIOHandle
	RelayHandle
}
