package model

import "math"

// earthRadiusM is the mean earth radius used for flat-earth projection and
// haversine distance, matching the convention used across the reference
// corpus's geo tooling.
const earthRadiusM = 6371000.0

// GeoPoint is a GPS vertex (lat, lon in degrees).
type GeoPoint struct {
	Lat, Lon float64
}

// GeoProjector converts between GPS coordinates and a local metric frame via
// a one-time flat-earth projection from a fixed reference point (spec.md
// §3 "Garden Polygon", §4.B "first valid GPS reading establishes the
// reference origin").
type GeoProjector struct {
	refLat, refLon       float64
	cosRefLat            float64
}

// NewGeoProjector builds a projector anchored at (refLat, refLon).
func NewGeoProjector(refLat, refLon float64) *GeoProjector {
	return &GeoProjector{
		refLat:    refLat,
		refLon:    refLon,
		cosRefLat: math.Cos(refLat * math.Pi / 180),
	}
}

// ToLocal projects a GPS point into the local (x east, y north) metric frame.
func (g *GeoProjector) ToLocal(p GeoPoint) (x, y float64) {
	dLat := (p.Lat - g.refLat) * math.Pi / 180
	dLon := (p.Lon - g.refLon) * math.Pi / 180
	y = dLat * earthRadiusM
	x = dLon * earthRadiusM * g.cosRefLat
	return x, y
}

// ToGeo is the inverse of ToLocal; round-trips to within centimeter
// precision for points near the reference (spec.md §8).
func (g *GeoProjector) ToGeo(x, y float64) GeoPoint {
	dLat := y / earthRadiusM
	dLon := x / (earthRadiusM * g.cosRefLat)
	return GeoPoint{
		Lat: g.refLat + dLat*180/math.Pi,
		Lon: g.refLon + dLon*180/math.Pi,
	}
}

// HaversineMeters returns the great-circle distance between two GPS points.
func HaversineMeters(a, b GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusM * c
}

// GridMap is a rectangular occupancy grid over the garden bounding box
// (spec.md §3). Cells are boolean free/blocked, indexed [row][col] with row
// 0 at MinY and col 0 at MinX.
type GridMap struct {
	MinX, MinY float64
	Resolution float64 // meters per cell, default 0.1
	Cols, Rows int
	cells      []bool
}

// NewGridMap allocates a free grid covering [minX,maxX]x[minY,maxY] at the
// given resolution.
func NewGridMap(minX, minY, maxX, maxY, resolution float64) *GridMap {
	if resolution <= 0 {
		resolution = 0.1
	}
	cols := int(math.Ceil((maxX-minX)/resolution)) + 1
	rows := int(math.Ceil((maxY-minY)/resolution)) + 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &GridMap{
		MinX:       minX,
		MinY:       minY,
		Resolution: resolution,
		Cols:       cols,
		Rows:       rows,
		cells:      make([]bool, cols*rows),
	}
}

// CellOf converts a metric-frame point into a (row, col) index; ok is false
// if the point falls outside the grid.
func (g *GridMap) CellOf(x, y float64) (row, col int, ok bool) {
	col = int(math.Floor((x - g.MinX) / g.Resolution))
	row = int(math.Floor((y - g.MinY) / g.Resolution))
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return 0, 0, false
	}
	return row, col, true
}

// PointOf returns the metric-frame center of cell (row, col).
func (g *GridMap) PointOf(row, col int) (x, y float64) {
	x = g.MinX + (float64(col)+0.5)*g.Resolution
	y = g.MinY + (float64(row)+0.5)*g.Resolution
	return x, y
}

// Blocked reports whether cell (row, col) is occupied.
func (g *GridMap) Blocked(row, col int) bool {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return true // out of bounds is treated as blocked
	}
	return g.cells[row*g.Cols+col]
}

// SetBlocked marks cell (row, col) occupied/free.
func (g *GridMap) SetBlocked(row, col int, blocked bool) {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return
	}
	g.cells[row*g.Cols+col] = blocked
}

// InflateObstacle marks every cell whose center lies within radius+padding
// meters of (cx, cy) blocked,
// used to build the obstacle_padding-inflated grid the A* planner searches
// (spec.md §4.C).
func (g *GridMap) InflateObstacle(cx, cy, radius, padding float64) {
	r := radius + padding
	cellR := int(math.Ceil(r / g.Resolution))
	centerRow, centerCol, _ := g.CellOf(cx, cy)
	for dr := -cellR; dr <= cellR; dr++ {
		for dc := -cellR; dc <= cellR; dc++ {
			row := centerRow + dr
			col := centerCol + dc
			if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
				continue
			}
			px, py := g.PointOf(row, col)
			if math.Hypot(px-cx, py-cy) <= r {
				g.SetBlocked(row, col, true)
			}
		}
	}
}

// Clear resets every cell to free, used when rebuilding the grid from a
// changed obstacle set (spec.md §3 "Rebuilt whenever the planner's obstacle
// set changes").
func (g *GridMap) Clear() {
	for i := range g.cells {
		g.cells[i] = false
	}
}
