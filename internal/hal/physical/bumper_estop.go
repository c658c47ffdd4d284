package physical

import (
	"context"
	"time"

	"go.uber.org/atomic"
	"periph.io/x/conn/v3/gpio"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// Bumper drives a normally-open contact switch GPIO pin.
type Bumper struct {
	baseDevice
	pin GPIOHandle

	pressed atomic.Bool
	stopCh  chan struct{}
}

func NewBumper(pin GPIOHandle) *Bumper {
	return &Bumper{pin: pin, stopCh: make(chan struct{})}
}

func (b *Bumper) Start(ctx context.Context) bool {
	if b.pin == nil {
		return false
	}
	if err := b.pin.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return false
	}
	b.healthy.Store(true)
	go b.watch()
	return true
}

func (b *Bumper) watch() {
	for b.Healthy() {
		if !b.pin.WaitForEdge(200 * time.Millisecond) {
			continue
		}
		select {
		case <-b.stopCh:
			return
		default:
			b.pressed.Store(b.pin.Read() == gpio.Low)
		}
	}
}

func (b *Bumper) Stop() {
	b.baseDevice.Stop()
	close(b.stopCh)
}

func (b *Bumper) Read(ctx context.Context) model.BumperReading {
	if !b.Healthy() {
		return model.BumperReading{SensorValidity: model.SensorValidity{Valid: false, Reason: "bumper gpio not healthy"}}
	}
	return model.BumperReading{SensorValidity: model.SensorValidity{Valid: true}, Pressed: b.pressed.Load()}
}

// EmergencyStop drives the hardware e-stop line. Once asserted, the safety
// gate blocks all motor commands until the line is explicitly released
// (spec.md §3 invariant).
type EmergencyStop struct {
	baseDevice
	pin GPIOHandle
}

func NewEmergencyStop(pin GPIOHandle) *EmergencyStop {
	return &EmergencyStop{pin: pin}
}

func (e *EmergencyStop) Start(ctx context.Context) bool {
	if e.pin == nil {
		return false
	}
	if err := e.pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return false
	}
	e.healthy.Store(true)
	return true
}

func (e *EmergencyStop) Read(ctx context.Context) model.EStopReading {
	if !e.Healthy() {
		return model.EStopReading{SensorValidity: model.SensorValidity{Valid: false, Reason: "estop gpio not healthy"}}
	}
	return model.EStopReading{SensorValidity: model.SensorValidity{Valid: true}, Asserted: e.pin.Read() == gpio.Low}
}
