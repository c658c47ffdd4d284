package planner

import (
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

func emptyGrid() *model.GridMap {
	return model.NewGridMap(0, 0, 5, 5, 0.1)
}

func TestPointToPointReachesGoalWithNoObstacles(t *testing.T) {
	p := New(DefaultConfig(), emptyGrid())
	route, ok := p.PlanPointToPoint(0.1, 0.1, 3, 3, 0.3)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, route.Remaining(), test.ShouldBeGreaterThan, 0)

	var lastX, lastY float64
	for {
		wp, ok := route.NextWaypoint()
		if !ok {
			break
		}
		lastX, lastY = wp.X, wp.Y
	}
	test.That(t, lastX, test.ShouldAlmostEqual, 3.0, 0.15)
	test.That(t, lastY, test.ShouldAlmostEqual, 3.0, 0.15)
}

func TestPointToPointUnreachableGoalReturnsFalse(t *testing.T) {
	grid := emptyGrid()
	// wall off the goal completely
	for col := 0; col < grid.Cols; col++ {
		row, _, ok := grid.CellOf(0, 4.0)
		if ok {
			grid.SetBlocked(row, col, true)
		}
	}
	p := New(DefaultConfig(), grid)
	_, ok := p.PlanPointToPoint(0.1, 0.1, 1, 4.9, 0.3)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestPointToPointBlockedStartReturnsFalse(t *testing.T) {
	grid := emptyGrid()
	row, col, _ := grid.CellOf(0.1, 0.1)
	grid.SetBlocked(row, col, true)
	p := New(DefaultConfig(), grid)
	_, ok := p.PlanPointToPoint(0.1, 0.1, 3, 3, 0.3)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestBoustrophedonIsDeterministic(t *testing.T) {
	p := New(DefaultConfig(), emptyGrid())
	r1 := p.PlanBoustrophedon(0, 0, 4, 4)
	r2 := p.PlanBoustrophedon(0, 0, 4, 4)
	test.That(t, r1.Remaining(), test.ShouldEqual, r2.Remaining())

	for {
		wp1, ok1 := r1.NextWaypoint()
		wp2, ok2 := r2.NextWaypoint()
		test.That(t, ok1, test.ShouldEqual, ok2)
		if !ok1 {
			break
		}
		test.That(t, wp1, test.ShouldResemble, wp2)
	}
}

func TestBoustrophedonAlternatesDirection(t *testing.T) {
	p := New(DefaultConfig(), emptyGrid())
	route := p.PlanBoustrophedon(0, 0, 2, 2)
	first, ok := route.NextWaypoint()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, first.AccessoryEnable, test.ShouldBeTrue)
	test.That(t, first.TargetHeading, test.ShouldEqual, 0.0)

	// a later mowing strip runs back toward -x
	sawReverseStrip := false
	for {
		wp, ok := route.NextWaypoint()
		if !ok {
			break
		}
		if wp.AccessoryEnable && wp.TargetHeading == math.Pi {
			sawReverseStrip = true
			break
		}
	}
	test.That(t, sawReverseStrip, test.ShouldBeTrue)
}

func TestChargingRouteDenseRegimeHoldsStandoff(t *testing.T) {
	p := New(DefaultConfig(), emptyGrid())
	route := p.PlanChargingRoute(0, 0, 1.5, 0)

	var last model.Waypoint
	for {
		wp, ok := route.NextWaypoint()
		if !ok {
			break
		}
		last = wp
	}
	test.That(t, last.TargetSpeed, test.ShouldEqual, 0.0)
	test.That(t, last.X, test.ShouldAlmostEqual, 1.5-DefaultConfig().ApriltagRange, 0.01)
}

func TestChargingRouteFarRegimeUsesAStar(t *testing.T) {
	p := New(DefaultConfig(), model.NewGridMap(0, 0, 30, 30, 0.1))
	route := p.PlanChargingRoute(0, 0, 20, 0)
	test.That(t, route.Remaining(), test.ShouldBeGreaterThan, 0)
}
