// Package boundary implements the garden boundary guard (spec.md §4.F):
// polygon containment, distance to the nearest polygon vertex, severity
// classification, and a
// suggested escape bearing, built on top of github.com/kellydunn/golang-geo
// the way the reference rdk corpus's go.mod pulls in that same library for
// geo-polygon work.
package boundary

import (
	"errors"
	"math"

	geo "github.com/kellydunn/golang-geo"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// Check is the result of a single boundary query.
type Check struct {
	Inside             bool
	DistanceToBoundary float64 // meters, to the nearest vertex
	NearestVertexIndex int
	Severity           model.Severity
	SuggestedBearing   float64 // radians, (-pi, pi]
}

// Guard holds the immutable garden polygon and the configured safety
// margins.
type Guard struct {
	vertices    []model.GeoPoint
	poly        *geo.Polygon
	geoVertices []*geo.Point
	projector   *model.GeoProjector
	centroid    model.GeoPoint

	bufferM  float64
	warningM float64

	areaM2 float64
}

// NewGuard builds a Guard over vertices (closed polygon, >= 3 vertices).
// The polygon is immutable after construction (spec.md §3 invariant).
func NewGuard(vertices []model.GeoPoint, bufferM, warningM float64) (*Guard, error) {
	if len(vertices) < 3 {
		return nil, errors.New("boundary: garden polygon requires at least 3 vertices")
	}
	if bufferM <= 0 {
		bufferM = 1.0
	}
	if warningM <= 0 {
		warningM = 2.0
	}

	geoPts := make([]*geo.Point, len(vertices))
	for i, v := range vertices {
		geoPts[i] = geo.NewPoint(v.Lat, v.Lon)
	}

	g := &Guard{
		vertices:    append([]model.GeoPoint(nil), vertices...),
		poly:        geo.NewPolygon(geoPts),
		geoVertices: geoPts,
		projector:   model.NewGeoProjector(vertices[0].Lat, vertices[0].Lon),
		bufferM:     bufferM,
		warningM:    warningM,
	}
	g.centroid = centroidOf(vertices)
	g.areaM2 = g.shoelaceAreaM2()
	return g, nil
}

// AreaM2 returns the polygon's area in square meters, computed once at init
// via the Shoelace formula over the flat-earth projection (spec.md §4.F).
func (g *Guard) AreaM2() float64 {
	return g.areaM2
}

// BoundingBox returns the garden polygon's axis-aligned bounding box in the
// Guard's local metric frame, used to size the planner's occupancy grid
// (spec.md §3 "Rebuilt whenever the planner's obstacle set changes") instead
// of an arbitrary fixed extent.
func (g *Guard) BoundingBox() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, v := range g.vertices {
		x, y := g.projector.ToLocal(v)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return minX, minY, maxX, maxY
}

// Projector exposes the Guard's local-frame projector so callers (e.g. the
// controller) can convert GPS-frame poses into the same local frame used
// for planning.
func (g *Guard) Projector() *model.GeoProjector {
	return g.projector
}

func (g *Guard) shoelaceAreaM2() float64 {
	n := len(g.vertices)
	sum := 0.0
	for i := 0; i < n; i++ {
		x1, y1 := g.projector.ToLocal(g.vertices[i])
		x2, y2 := g.projector.ToLocal(g.vertices[(i+1)%n])
		sum += x1*y2 - x2*y1
	}
	return math.Abs(sum) / 2
}

func centroidOf(vertices []model.GeoPoint) model.GeoPoint {
	var sumLat, sumLon float64
	for _, v := range vertices {
		sumLat += v.Lat
		sumLon += v.Lon
	}
	n := float64(len(vertices))
	return model.GeoPoint{Lat: sumLat / n, Lon: sumLon / n}
}

// Check evaluates containment, distance, severity and a suggested bearing
// for the given GPS point (spec.md §4.F).
func (g *Guard) Check(lat, lon float64) Check {
	pt := geo.NewPoint(lat, lon)
	here := model.GeoPoint{Lat: lat, Lon: lon}

	inside := g.poly.Contains(pt)

	nearestIdx := 0
	minDist := math.Inf(1)
	for i, v := range g.vertices {
		d := model.HaversineMeters(here, v)
		if d < minDist {
			minDist = d
			nearestIdx = i
		}
	}

	var severity model.Severity
	switch {
	case !inside || minDist <= g.bufferM:
		severity = model.SeverityDanger
	case minDist <= g.warningM:
		severity = model.SeverityWarning
	default:
		severity = model.SeveritySafe
	}

	bearing := g.suggestedBearing(here, g.vertices[nearestIdx])

	return Check{
		Inside:             inside,
		DistanceToBoundary: minDist,
		NearestVertexIndex: nearestIdx,
		Severity:           severity,
		SuggestedBearing:   bearing,
	}
}

// suggestedBearing blends the direction to the polygon centroid (weight
// 0.7) with the direction away from the nearest vertex (weight 0.3),
// per spec.md §4.F.
func (g *Guard) suggestedBearing(here, nearestVertex model.GeoPoint) float64 {
	hx, hy := g.projector.ToLocal(here)
	cx, cy := g.projector.ToLocal(g.centroid)
	vx, vy := g.projector.ToLocal(nearestVertex)

	toCentroid := math.Atan2(cy-hy, cx-hx)
	awayFromVertex := math.Atan2(hy-vy, hx-vx)

	// Blend in Cartesian unit-vector space to avoid angle-wrap averaging bugs.
	bx := 0.7*math.Cos(toCentroid) + 0.3*math.Cos(awayFromVertex)
	by := 0.7*math.Sin(toCentroid) + 0.3*math.Sin(awayFromVertex)
	return model.NormalizeAngle(math.Atan2(by, bx))
}
