package simulator

import (
	"context"

	"github.com/yusuftiryaki/robot-sub000/internal/hal"
	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// Camera is a deterministic simulated camera: a flat gray frame, useful for
// exercising the obstacle-detector pipeline's plumbing in tests without a
// real lens.
type Camera struct {
	device
	width, height int
}

func NewCamera(width, height int) *Camera {
	return &Camera{width: width, height: height}
}

func (c *Camera) Read(ctx context.Context) model.CameraFrame {
	if !c.Healthy() {
		return model.CameraFrame{SensorValidity: model.SensorValidity{Valid: false, Reason: "camera not started"}}
	}
	pixels := make([]byte, c.width*c.height*3)
	for i := range pixels {
		pixels[i] = 128
	}
	return model.CameraFrame{
		SensorValidity: model.SensorValidity{Valid: true},
		Width:          c.width,
		Height:         c.height,
		Pixels:         pixels,
	}
}

// NewBackend wires every simulated device to one shared State, exactly the
// "backed by a singleton" arrangement of spec.md §4.A.
func NewBackend(state *State, withCamera bool) *hal.Backend {
	b := &hal.Backend{
		IMU:     NewIMU(state),
		GPS:     NewGPS(state),
		Power:   NewPower(state),
		Bumper:  NewBumper(state),
		Encoder: NewEncoder(state),
		EStop:   NewEmergencyStop(state),
		Motor:   NewMotor(state),
	}
	if withCamera {
		b.Camera = NewCamera(320, 240)
	}
	return b
}

// StartAll starts every device in the backend against the given state.
func StartAll(ctx context.Context, b *hal.Backend) {
	b.IMU.Start(ctx)
	b.GPS.Start(ctx)
	b.Power.Start(ctx)
	b.Bumper.Start(ctx)
	b.Encoder.Start(ctx)
	b.EStop.Start(ctx)
	b.Motor.Start(ctx)
	if b.Camera != nil {
		b.Camera.Start(ctx)
	}
}
