package docker

import (
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

func TestSearchRotatesUntilDetected(t *testing.T) {
	d := New(DefaultConfig())
	twist, done := d.Step(TagDetection{Found: false}, model.PowerReading{}, time.Now())
	test.That(t, done, test.ShouldBeFalse)
	test.That(t, twist.W, test.ShouldBeGreaterThan, 0)
	test.That(t, d.State(), test.ShouldEqual, StateSearch)

	_, _ = d.Step(TagDetection{Found: true, TagID: 0, Confidence: 0.9, DistanceM: 2.0}, model.PowerReading{}, time.Now())
	test.That(t, d.State(), test.ShouldEqual, StateDetected)
}

func TestFullSequenceReachesCompleted(t *testing.T) {
	d := New(DefaultConfig())
	now := time.Now()

	// SEARCH -> DETECTED
	d.Step(TagDetection{Found: true, TagID: 0, Confidence: 0.9, DistanceM: 2.0}, model.PowerReading{}, now)
	test.That(t, d.State(), test.ShouldEqual, StateDetected)

	// DETECTED -> APPROACH
	d.Step(TagDetection{Found: true, TagID: 0, Confidence: 0.9, DistanceM: 2.0}, model.PowerReading{}, now)
	test.That(t, d.State(), test.ShouldEqual, StateApproach)

	// APPROACH until close threshold
	for i := 0; i < 50 && d.State() == StateApproach; i++ {
		d.Step(TagDetection{Found: true, TagID: 0, Confidence: 0.9, DistanceM: 0.07, BearingRad: 0}, model.PowerReading{}, now)
	}
	test.That(t, d.State(), test.ShouldEqual, StatePrecisePosition)

	// PRECISE_POSITION -> CONTACT
	d.Step(TagDetection{Found: true, TagID: 0, Confidence: 0.9, DistanceM: 0.01, BearingRad: 0}, model.PowerReading{}, now)
	test.That(t, d.State(), test.ShouldEqual, StateContact)

	// CONTACT -> COMPLETED
	twist, done := d.Step(TagDetection{}, model.PowerReading{SensorValidity: model.SensorValidity{Valid: true}, Voltage: 12.0, CurrentAmps: 0.2}, now)
	test.That(t, done, test.ShouldBeTrue)
	test.That(t, twist, test.ShouldResemble, model.Twist{})
	test.That(t, d.State(), test.ShouldEqual, StateCompleted)
}

func TestLostDetectionInApproachReturnsToSearchAfterNFrames(t *testing.T) {
	d := New(DefaultConfig())
	now := time.Now()
	d.Step(TagDetection{Found: true, TagID: 0, Confidence: 0.9, DistanceM: 2.0}, model.PowerReading{}, now)
	d.Step(TagDetection{Found: true, TagID: 0, Confidence: 0.9, DistanceM: 2.0}, model.PowerReading{}, now)
	test.That(t, d.State(), test.ShouldEqual, StateApproach)

	cfg := DefaultConfig()
	for i := 0; i < cfg.MissedFramesToSearch; i++ {
		d.Step(TagDetection{Found: false}, model.PowerReading{}, now)
	}
	test.That(t, d.State(), test.ShouldEqual, StateSearch)
}

func TestContactTimesOutToCompleted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ContactTimeout = 1 * time.Millisecond
	d := New(cfg)
	d.state = StateContact
	d.contactStart = time.Now()
	later := time.Now().Add(time.Second)
	_, done := d.Step(TagDetection{}, model.PowerReading{}, later)
	test.That(t, done, test.ShouldBeTrue)
}

func TestConfidenceFromRegularSquareIsHigh(t *testing.T) {
	square := [4]Corner{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	conf := ConfidenceFromCorners(square)
	test.That(t, conf, test.ShouldBeGreaterThan, 0.9)
}

func TestConfidenceFromSkewedQuadIsLower(t *testing.T) {
	skewed := [4]Corner{{0, 0}, {10, 0}, {10, 20}, {0, 2}}
	conf := ConfidenceFromCorners(skewed)
	square := [4]Corner{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	test.That(t, conf, test.ShouldBeLessThan, ConfidenceFromCorners(square))
}
