package localize

import (
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

func TestOdometryOnlyAdvancesPose(t *testing.T) {
	l := New(Config{WheelRadiusM: 0.065, WheelBaseM: 0.35, TicksPerRev: 360, ProcessNoise: 0.1, OdometryNoise: 0.05}, nil)

	t0 := time.Unix(0, 0)
	l.Tick(t0, model.SensorFrame{
		Encoders: model.EncoderReading{SensorValidity: model.SensorValidity{Valid: true}, LeftPulses: 0, RightPulses: 0},
	})

	t1 := t0.Add(100 * time.Millisecond)
	l.Tick(t1, model.SensorFrame{
		Encoders: model.EncoderReading{SensorValidity: model.SensorValidity{Valid: true}, LeftPulses: 100, RightPulses: 100},
	})

	pose := l.CurrentPose()
	test.That(t, pose.X, test.ShouldBeGreaterThan, 0.1)
	test.That(t, pose.X, test.ShouldBeLessThan, 0.13)
	test.That(t, pose.Theta, test.ShouldAlmostEqual, 0.0, 1e-6)
}

func TestPoseWithoutGPSFixStillProducesEstimate(t *testing.T) {
	l := New(DefaultConfig(), nil)
	l.Tick(time.Now(), model.SensorFrame{
		GPS: model.GPSReading{SensorValidity: model.SensorValidity{Valid: true}, HasFix: false},
	})
	pose := l.CurrentPose()
	test.That(t, pose, test.ShouldNotBeNil)
}

func TestThetaAlwaysNormalized(t *testing.T) {
	l := New(DefaultConfig(), nil)
	t0 := time.Now()
	for i := 0; i < 50; i++ {
		l.Tick(t0.Add(time.Duration(i)*100*time.Millisecond), model.SensorFrame{
			Encoders: model.EncoderReading{SensorValidity: model.SensorValidity{Valid: true}, LeftPulses: int64(i * 10), RightPulses: int64(-i * 10)},
		})
	}
	pose := l.CurrentPose()
	test.That(t, pose.Theta, test.ShouldBeLessThanOrEqualTo, 3.14159265)
	test.That(t, pose.Theta, test.ShouldBeGreaterThan, -3.14159266)
}

func TestSuppliedProjectorIsUsedImmediately(t *testing.T) {
	shared := model.NewGeoProjector(39.9335, 32.8595)
	l := New(DefaultConfig(), shared)
	test.That(t, l.Projector(), test.ShouldEqual, shared)

	l.Tick(time.Now(), model.SensorFrame{
		GPS: model.GPSReading{SensorValidity: model.SensorValidity{Valid: true}, HasFix: true, Lat: 39.9336, Lon: 32.8599},
	})
	// The first GPS fix should fold in as an update against the shared
	// projector rather than re-anchoring the origin there.
	test.That(t, l.Projector(), test.ShouldEqual, shared)
}
