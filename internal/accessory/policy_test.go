package accessory

import (
	"testing"

	"go.viam.com/test"
)

func TestEmergencyOverridesEverything(t *testing.T) {
	e := New(DefaultConfig(), PolicyPerformance)
	d := e.Decide(Inputs{Task: TaskEmergency, NearestObstacleDist: 5, BatteryPercent: 80})
	test.That(t, d.MainBrush, test.ShouldBeFalse)
	test.That(t, d.SideBrushes, test.ShouldBeFalse)
	test.That(t, d.Fan, test.ShouldBeFalse)
}

func TestMowingBaselineAllOn(t *testing.T) {
	e := New(DefaultConfig(), PolicyPerformance)
	d := e.Decide(Inputs{
		Task:                TaskMowing,
		Speed:               0.3,
		NearestObstacleDist: 5,
		BoundaryDistance:    5,
		BatteryPercent:      80,
	})
	test.That(t, d.MainBrush, test.ShouldBeTrue)
	test.That(t, d.SideBrushes, test.ShouldBeTrue)
	test.That(t, d.Fan, test.ShouldBeTrue)
}

func TestCloseObstacleDisablesSideBrushes(t *testing.T) {
	e := New(DefaultConfig(), PolicyPerformance)
	d := e.Decide(Inputs{
		Task:                TaskMowing,
		Speed:               0.3,
		NearestObstacleDist: 0.3,
		BoundaryDistance:    5,
		BatteryPercent:      80,
	})
	test.That(t, d.SideBrushes, test.ShouldBeFalse)
	test.That(t, d.MainBrush, test.ShouldBeFalse)
}

func TestLowBatteryDisablesFan(t *testing.T) {
	e := New(DefaultConfig(), PolicyPerformance)
	d := e.Decide(Inputs{
		Task:                TaskMowing,
		Speed:               0.3,
		NearestObstacleDist: 5,
		BoundaryDistance:    5,
		BatteryPercent:      35,
	})
	test.That(t, d.Fan, test.ShouldBeFalse)
}

func TestCriticalBatteryForcesAllOff(t *testing.T) {
	e := New(DefaultConfig(), PolicyPerformance)
	d := e.Decide(Inputs{
		Task:                TaskMowing,
		Speed:               0.3,
		NearestObstacleDist: 5,
		BoundaryDistance:    5,
		BatteryPercent:      10,
	})
	test.That(t, d.Fan, test.ShouldBeFalse)
	test.That(t, d.MainBrush, test.ShouldBeFalse)
}

func TestQuietPolicyDisablesFan(t *testing.T) {
	e := New(DefaultConfig(), PolicyQuiet)
	d := e.Decide(Inputs{
		Task:                TaskMowing,
		Speed:               0.3,
		NearestObstacleDist: 5,
		BoundaryDistance:    5,
		BatteryPercent:      80,
	})
	test.That(t, d.Fan, test.ShouldBeFalse)
}

func TestChargeNeededDisablesBrushesAndFan(t *testing.T) {
	e := New(DefaultConfig(), PolicyPerformance)
	d := e.Decide(Inputs{
		Task:                TaskMowing,
		Speed:               0.3,
		NearestObstacleDist: 5,
		BoundaryDistance:    5,
		BatteryPercent:      80,
		ChargeNeeded:        true,
	})
	test.That(t, d.SideBrushes, test.ShouldBeFalse)
	test.That(t, d.Fan, test.ShouldBeFalse)
}

func TestSetPolicySwapsBehaviorImmediately(t *testing.T) {
	e := New(DefaultConfig(), PolicyPerformance)
	in := Inputs{Task: TaskMowing, Speed: 0.3, NearestObstacleDist: 5, BoundaryDistance: 5, BatteryPercent: 80}
	before := e.Decide(in)
	test.That(t, before.Fan, test.ShouldBeTrue)

	e.SetPolicy(PolicyQuiet)
	after := e.Decide(in)
	test.That(t, after.Fan, test.ShouldBeFalse)
}
