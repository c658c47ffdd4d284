package controller

import (
	"context"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/yusuftiryaki/robot-sub000/internal/accessory"
	"github.com/yusuftiryaki/robot-sub000/internal/avoider"
	"github.com/yusuftiryaki/robot-sub000/internal/boundary"
	"github.com/yusuftiryaki/robot-sub000/internal/docker"
	"github.com/yusuftiryaki/robot-sub000/internal/hal"
	"github.com/yusuftiryaki/robot-sub000/internal/localize"
	"github.com/yusuftiryaki/robot-sub000/internal/model"
	"github.com/yusuftiryaki/robot-sub000/internal/planner"
	"github.com/yusuftiryaki/robot-sub000/internal/safety"
	"github.com/yusuftiryaki/robot-sub000/internal/telemetry"
	"github.com/yusuftiryaki/robot-sub000/internal/testutils/inject"
	"github.com/yusuftiryaki/robot-sub000/internal/vision"
)

func testGardenVertices() []model.GeoPoint {
	return []model.GeoPoint{
		{Lat: 39.9335, Lon: 32.8595},
		{Lat: 39.9336, Lon: 32.8599},
		{Lat: 39.9333, Lon: 32.85985},
	}
}

func newTestController() (*Controller, *inject.Motor, *inject.Power, *inject.Bumper) {
	motor := &inject.Motor{}
	power := &inject.Power{}
	bumper := &inject.Bumper{}

	backend := &hal.Backend{
		IMU:     &inject.IMU{},
		GPS:     &inject.GPS{},
		Power:   power,
		Bumper:  bumper,
		Encoder: &inject.Encoder{},
		EStop:   &inject.EmergencyStop{},
		Motor:   motor,
	}

	guard, err := boundary.NewGuard(testGardenVertices(), 1, 2)
	if err != nil {
		panic(err)
	}
	geo := guard.Projector()

	grid := model.NewGridMap(-5, -5, 5, 5, 0.1)
	c := New(
		DefaultConfig(),
		backend,
		safety.New(safety.DefaultConfig()),
		localize.New(localize.DefaultConfig(), geo),
		avoider.New(avoider.DefaultConfig()),
		accessory.New(accessory.DefaultConfig(), accessory.PolicyPerformance),
		planner.New(planner.DefaultConfig(), grid),
		docker.New(docker.DefaultConfig()),
		&inject.TagDetector{},
		guard,
		vision.New(vision.DefaultConfig()),
		geo,
	)
	return c, motor, power, bumper
}

func TestControllerStartsUpToIdle(t *testing.T) {
	c, _, power, _ := newTestController()
	power.ReadFunc = func(ctx context.Context) model.PowerReading {
		return model.PowerReading{SensorValidity: model.SensorValidity{Valid: true}, Percent: 80, Voltage: 12}
	}
	c.state = model.StateStartup
	c.tick(context.Background(), time.Now())
	test.That(t, c.state, test.ShouldEqual, model.StateIdle)
}

func TestControllerBumperTriggersEmergency(t *testing.T) {
	c, motor, power, bumper := newTestController()
	power.ReadFunc = func(ctx context.Context) model.PowerReading {
		return model.PowerReading{SensorValidity: model.SensorValidity{Valid: true}, Percent: 80, Voltage: 12}
	}
	bumper.ReadFunc = func(ctx context.Context) model.BumperReading {
		return model.BumperReading{SensorValidity: model.SensorValidity{Valid: true}, Pressed: true}
	}
	motor.SetWheelSpeeds(0.5, 0.5)

	c.state = model.StateIdle
	c.tick(context.Background(), time.Now())

	test.That(t, c.state, test.ShouldEqual, model.StateEmergency)
	test.That(t, motor.Status().LeftSpeed, test.ShouldEqual, 0.0)
	test.That(t, motor.Status().RightSpeed, test.ShouldEqual, 0.0)
}

func TestControllerLowBatteryTriggersChargeSeek(t *testing.T) {
	c, _, power, _ := newTestController()
	power.ReadFunc = func(ctx context.Context) model.PowerReading {
		return model.PowerReading{SensorValidity: model.SensorValidity{Valid: true}, Percent: 10, Voltage: 12}
	}
	c.state = model.StateIdle
	c.tick(context.Background(), time.Now())
	test.That(t, c.state, test.ShouldEqual, model.StateChargeSeek)
}

func TestControllerChargingAtFullBatteryReturnsToIdle(t *testing.T) {
	c, _, power, _ := newTestController()
	power.ReadFunc = func(ctx context.Context) model.PowerReading {
		return model.PowerReading{SensorValidity: model.SensorValidity{Valid: true}, Percent: 96, Voltage: 12}
	}
	c.state = model.StateCharging
	c.tick(context.Background(), time.Now())
	test.That(t, c.state, test.ShouldEqual, model.StateIdle)
}

func TestStartMissionTransitionsIdleToMowingWithRoute(t *testing.T) {
	c, _, _, _ := newTestController()
	c.state = model.StateIdle

	ok := c.StartMission()

	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, c.state, test.ShouldEqual, model.StateMowing)
	test.That(t, c.route, test.ShouldNotBeNil)
	test.That(t, c.route.Len(), test.ShouldBeGreaterThan, 0)
}

func TestStartMissionRefusedOutsideIdle(t *testing.T) {
	c, _, _, _ := newTestController()
	c.state = model.StateCharging

	ok := c.StartMission()

	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, c.state, test.ShouldEqual, model.StateCharging)
}

func TestHandleCommandStartMissionReachesMowing(t *testing.T) {
	c, _, _, _ := newTestController()
	c.state = model.StateIdle

	c.HandleCommand(telemetry.Command{Kind: telemetry.CommandStartMission})

	test.That(t, c.state, test.ShouldEqual, model.StateMowing)
}

func TestHandleCommandEmergencyStopForcesEmergencyState(t *testing.T) {
	c, _, _, _ := newTestController()
	c.state = model.StateMowing

	c.HandleCommand(telemetry.Command{Kind: telemetry.CommandEmergencyStop})

	test.That(t, c.state, test.ShouldEqual, model.StateEmergency)
}

func TestObserveObstaclesRunsCameraFrameThroughDetector(t *testing.T) {
	c, _, _, _ := newTestController()
	frame := model.CameraFrame{Width: 8, Height: 8, Pixels: make([]byte, 8*8*3), CapturedAt: time.Now()}
	c.observeObstacles(model.SensorFrame{Camera: &frame})
}
