package boundary

import (
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

func testVertices() []model.GeoPoint {
	return []model.GeoPoint{
		{Lat: 39.9335, Lon: 32.8595},
		{Lat: 39.9336, Lon: 32.8599},
		{Lat: 39.9333, Lon: 32.85985},
		{Lat: 39.9332, Lon: 32.89454},
	}
}

func TestGuardCentroidIsSafe(t *testing.T) {
	g, err := NewGuard(testVertices(), 1, 2)
	test.That(t, err, test.ShouldBeNil)

	c := centroidOf(testVertices())
	result := g.Check(c.Lat, c.Lon)
	test.That(t, result.Severity, test.ShouldEqual, model.SeveritySafe)
}

func TestGuardFarPointIsDanger(t *testing.T) {
	g, err := NewGuard(testVertices(), 1, 2)
	test.That(t, err, test.ShouldBeNil)

	result := g.Check(39.934, 32.860)
	test.That(t, result.Severity, test.ShouldEqual, model.SeverityDanger)
	test.That(t, result.SuggestedBearing >= -math.Pi && result.SuggestedBearing <= math.Pi, test.ShouldBeTrue)
}

func TestGuardAreaExceeds100SquareMeters(t *testing.T) {
	g, err := NewGuard(testVertices(), 1, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.AreaM2() > 100, test.ShouldBeTrue)
}

func TestGuardRequiresThreeVertices(t *testing.T) {
	_, err := NewGuard([]model.GeoPoint{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}, 1, 2)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGuardSeverityStableAcrossRepeatedCalls(t *testing.T) {
	g, err := NewGuard(testVertices(), 1, 2)
	test.That(t, err, test.ShouldBeNil)

	a := g.Check(39.9334, 32.8597)
	b := g.Check(39.9334, 32.8597)
	test.That(t, a.Severity, test.ShouldEqual, b.Severity)
	test.That(t, a.Inside, test.ShouldEqual, b.Inside)
}

func TestGuardBoundingBoxContainsEveryVertex(t *testing.T) {
	g, err := NewGuard(testVertices(), 1, 2)
	test.That(t, err, test.ShouldBeNil)

	minX, minY, maxX, maxY := g.BoundingBox()
	test.That(t, minX < maxX, test.ShouldBeTrue)
	test.That(t, minY < maxY, test.ShouldBeTrue)

	for _, v := range testVertices() {
		x, y := g.Projector().ToLocal(v)
		test.That(t, x >= minX && x <= maxX, test.ShouldBeTrue)
		test.That(t, y >= minY && y <= maxY, test.ShouldBeTrue)
	}
}
