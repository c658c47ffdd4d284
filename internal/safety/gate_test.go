package safety

import (
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

func validFrame() model.SensorFrame {
	valid := model.SensorValidity{Valid: true}
	return model.SensorFrame{
		IMU:      model.IMUReading{SensorValidity: valid},
		Power:    model.PowerReading{SensorValidity: valid, Voltage: 12.0, Percent: 80, CurrentAmps: 1.0},
		Bumper:   model.BumperReading{SensorValidity: valid},
		EStop:    model.EStopReading{SensorValidity: valid},
		TickTime: time.Now(),
	}
}

func TestSafeFrameReturnsSafe(t *testing.T) {
	g := New(DefaultConfig())
	now := time.Now()
	g.Touch(now)
	result := g.Check(validFrame(), now)
	test.That(t, result.Severity, test.ShouldEqual, model.SeveritySafe)
	test.That(t, result.Emergency, test.ShouldBeFalse)
}

func TestBumperPressedIsEmergency(t *testing.T) {
	g := New(DefaultConfig())
	frame := validFrame()
	frame.Bumper.Pressed = true
	result := g.Check(frame, time.Now())
	test.That(t, result.Emergency, test.ShouldBeTrue)
	test.That(t, result.Severity, test.ShouldEqual, model.SeverityEmergency)
}

func TestEStopAssertedIsEmergency(t *testing.T) {
	g := New(DefaultConfig())
	frame := validFrame()
	frame.EStop.Asserted = true
	result := g.Check(frame, time.Now())
	test.That(t, result.Emergency, test.ShouldBeTrue)
}

func TestExcessiveTiltIsEmergency(t *testing.T) {
	g := New(DefaultConfig())
	frame := validFrame()
	frame.IMU.Roll = 0.6 // > 25 deg
	result := g.Check(frame, time.Now())
	test.That(t, result.Emergency, test.ShouldBeTrue)
	test.That(t, result.Reason, test.ShouldEqual, "excessive tilt")
}

func TestApproachingTiltIsWarning(t *testing.T) {
	g := New(DefaultConfig())
	frame := validFrame()
	frame.IMU.Pitch = 0.35 // between 0.7*25deg and 25deg
	result := g.Check(frame, time.Now())
	test.That(t, result.Emergency, test.ShouldBeFalse)
	test.That(t, result.Severity, test.ShouldEqual, model.SeverityWarning)
}

func TestLowVoltageIsEmergency(t *testing.T) {
	g := New(DefaultConfig())
	frame := validFrame()
	frame.Power.Voltage = 9.0
	result := g.Check(frame, time.Now())
	test.That(t, result.Emergency, test.ShouldBeTrue)
}

func TestWatchdogTimeoutIsEmergency(t *testing.T) {
	g := New(DefaultConfig())
	now := time.Now()
	g.Touch(now.Add(-10 * time.Second))
	result := g.Check(validFrame(), now)
	test.That(t, result.Emergency, test.ShouldBeTrue)
	test.That(t, result.Reason, test.ShouldEqual, "sensor watchdog timeout")
}

func TestRapidBatteryDropIsWarning(t *testing.T) {
	g := New(DefaultConfig())
	now := time.Now()
	frame1 := validFrame()
	frame1.Power.Percent = 80
	g.Check(frame1, now)

	frame2 := validFrame()
	frame2.Power.Percent = 73
	result := g.Check(frame2, now)
	test.That(t, result.Severity, test.ShouldEqual, model.SeverityWarning)
}
