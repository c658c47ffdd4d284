package simulator

import (
	"context"
	"testing"

	"go.viam.com/test"
)

func TestMotorClampsWheelSpeeds(t *testing.T) {
	state := NewState(Config{})
	motor := NewMotor(state)
	motor.Start(context.Background())

	motor.SetWheelSpeeds(5, -5)
	status := motor.Status()
	test.That(t, status.LeftSpeed, test.ShouldEqual, 1.0)
	test.That(t, status.RightSpeed, test.ShouldEqual, -1.0)
}

func TestEStopReleasedByDefault(t *testing.T) {
	state := NewState(Config{})
	estop := NewEmergencyStop(state)
	estop.Start(context.Background())

	reading := estop.Read(context.Background())
	test.That(t, reading.Valid, test.ShouldBeTrue)
	test.That(t, reading.Asserted, test.ShouldBeFalse)

	state.SetEStop(true)
	reading = estop.Read(context.Background())
	test.That(t, reading.Asserted, test.ShouldBeTrue)
}

func TestGPSIntegratesCommandedVelocity(t *testing.T) {
	state := NewState(Config{OriginLat: 39.9, OriginLon: 32.8})
	motor := NewMotor(state)
	gpsDev := NewGPS(state)
	motor.Start(context.Background())
	gpsDev.Start(context.Background())

	for i := 0; i < 10; i++ {
		motor.SetWheelSpeeds(0.5, 0.5)
	}

	reading := gpsDev.Read(context.Background())
	test.That(t, reading.Valid, test.ShouldBeTrue)
	test.That(t, reading.HasFix, test.ShouldBeTrue)
	test.That(t, reading.Lon, test.ShouldNotEqual, 32.8)
}

func TestBumperDisabledScheduleNeverPresses(t *testing.T) {
	state := NewState(Config{BumperScheduleEnabled: false})
	bumper := NewBumper(state)
	bumper.Start(context.Background())
	reading := bumper.Read(context.Background())
	test.That(t, reading.Pressed, test.ShouldBeFalse)
}
