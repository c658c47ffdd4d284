package avoider

import (
	"math"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

func TestDWAStraightAheadNoObstacles(t *testing.T) {
	a := New(DefaultConfig())
	pose := model.Pose{X: 0, Y: 0, Theta: 0}
	twist, ok := a.Avoid(pose, model.Twist{}, 2, 0)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, twist.V, test.ShouldBeGreaterThan, 0)
	test.That(t, twist.W, test.ShouldAlmostEqual, 0.0, 0.2)
}

func TestDWAWithObstacleDeviatesOrStuck(t *testing.T) {
	a := New(Config{
		MaxLinearAccel: 0.5, MaxAngularAccel: 1.5,
		MaxLinearSpeed: 0.6, MaxAngularSpeed: 1.2,
		LinearResolution: 0.05, AngularResolution: 0.1,
		LookaheadSeconds: 2.0, SimStepSeconds: 0.1,
		RobotRadiusM: 0.3, SafetyDistanceM: 0.5,
		WeightGoal: 0.4, WeightObstacle: 0.3, WeightSpeed: 0.2, WeightSmooth: 0.1,
		ObstacleTTL: 5 * time.Second,
	})
	a.SetObstacles([]model.DynamicObstacle{{X: 1, Y: 0, Radius: 0.3, DetectedAt: time.Now()}})

	pose := model.Pose{X: 0, Y: 0, Theta: 0}
	twist, ok := a.Avoid(pose, model.Twist{V: 0.4}, 2, 0)
	if ok {
		test.That(t, twist.W, test.ShouldNotEqual, 0.0)
	}
}

func TestEmergencyBrakeRequired(t *testing.T) {
	a := New(DefaultConfig())
	a.SetObstacles([]model.DynamicObstacle{{X: 0.6, Y: 0, Radius: 0.0, DetectedAt: time.Now()}})
	required := a.EmergencyBrakeRequired(model.Pose{X: 0, Y: 0}, 0.4)
	test.That(t, required, test.ShouldBeTrue)
}

func TestEmptyDynamicWindowReturnsCurrentTwist(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLinearAccel = 0
	cfg.MaxAngularAccel = 0
	a := New(cfg)
	current := model.Twist{V: 0.2, W: 0.1}
	twist, ok := a.Avoid(model.Pose{}, current, 5, 5)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, twist, test.ShouldResemble, current)
}

func TestSurroundedObstacleReturnsNone(t *testing.T) {
	a := New(DefaultConfig())
	now := time.Now()
	obstacles := []model.DynamicObstacle{}
	for i := 0; i < 16; i++ {
		angle := float64(i) / 16 * 2 * math.Pi
		obstacles = append(obstacles, model.DynamicObstacle{
			X: 0.4 * math.Cos(angle), Y: 0.4 * math.Sin(angle), Radius: 0.3, DetectedAt: now,
		})
	}
	a.SetObstacles(obstacles)
	_, ok := a.Avoid(model.Pose{}, model.Twist{}, 5, 5)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestObstacleTTLPrune(t *testing.T) {
	a := New(DefaultConfig())
	old := model.DynamicObstacle{X: 1, Y: 1, DetectedAt: time.Now().Add(-10 * time.Second)}
	fresh := model.DynamicObstacle{X: 2, Y: 2, DetectedAt: time.Now()}
	a.SetObstacles([]model.DynamicObstacle{old, fresh})
	a.PruneExpired(time.Now())
	remaining := a.snapshotObstacles()
	test.That(t, len(remaining), test.ShouldEqual, 1)
}

func TestNearestObstacleDistanceWithNoObstaclesIsInf(t *testing.T) {
	a := New(DefaultConfig())
	d := a.NearestObstacleDistance(model.Pose{})
	test.That(t, math.IsInf(d, 1), test.ShouldBeTrue)
}

func TestNearestObstacleDistanceReflectsClosestObstacle(t *testing.T) {
	a := New(DefaultConfig())
	a.SetObstacles([]model.DynamicObstacle{
		{X: 5, Y: 0, Radius: 0.2, DetectedAt: time.Now()},
		{X: 1, Y: 0, Radius: 0.2, DetectedAt: time.Now()},
	})
	d := a.NearestObstacleDistance(model.Pose{})
	test.That(t, d, test.ShouldAlmostEqual, 1-0.2-DefaultConfig().RobotRadiusM, 1e-9)
}
