// Package planner implements the Rota Planner (spec.md §4.C): boustrophedon
// mowing coverage, point-to-point A* routing, and the charging coarse-route
// generator, all over a shared occupancy grid.
package planner

import (
	"math"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// Config holds the tunables named in spec.md §4.C and §6.
type Config struct {
	StripWidth        float64 // brush width minus overlap
	GridResolution    float64
	ObstaclePadding   float64
	WaypointTolerance float64

	NormalSpeed     float64
	SlowSpeed       float64
	VerySlowSpeed   float64
	UltraSlowSpeed  float64
	PreciseSpeed    float64

	ApriltagRange float64 // meters, final standoff before the dock
	GPSAccuracyM  float64 // dense-regime threshold
	MediumRangeM  float64 // coarse-regime threshold
}

// DefaultConfig returns spec.md's named defaults.
func DefaultConfig() Config {
	return Config{
		StripWidth:        0.25,
		GridResolution:    0.1,
		ObstaclePadding:   0.15,
		WaypointTolerance: 0.3,
		NormalSpeed:       0.3,
		SlowSpeed:         0.2,
		VerySlowSpeed:     0.1,
		UltraSlowSpeed:    0.05,
		PreciseSpeed:      0.02,
		ApriltagRange:     0.5,
		GPSAccuracyM:      2.0,
		MediumRangeM:      10.0,
	}
}

// Planner generates routes over a shared occupancy grid (spec.md §3
// "Rebuilt whenever the planner's obstacle set changes").
type Planner struct {
	cfg  Config
	grid *model.GridMap
}

// New builds a Planner bound to grid.
func New(cfg Config, grid *model.GridMap) *Planner {
	if cfg.GridResolution == 0 {
		cfg = DefaultConfig()
	}
	return &Planner{cfg: cfg, grid: grid}
}

// SetGrid swaps the occupancy grid the planner searches, called whenever
// the obstacle set changes.
func (p *Planner) SetGrid(grid *model.GridMap) {
	p.grid = grid
}

// PlanPointToPoint runs 8-connected A* with a Manhattan heuristic and
// Euclidean step cost between start and goal. Returns ok=false if either
// endpoint is untraversable or unreachable (spec.md §4.C).
func (p *Planner) PlanPointToPoint(startX, startY, goalX, goalY, speed float64) (*model.Route, bool) {
	startRow, startCol, ok1 := p.grid.CellOf(startX, startY)
	goalRow, goalCol, ok2 := p.grid.CellOf(goalX, goalY)
	if !ok1 || !ok2 {
		return nil, false
	}
	if p.grid.Blocked(startRow, startCol) || p.grid.Blocked(goalRow, goalCol) {
		return nil, false
	}

	if ok, err := reachable(p.grid, startRow, startCol, goalRow, goalCol); err == nil && !ok {
		return nil, false
	}

	path := aStarGrid(p.grid, startRow, startCol, goalRow, goalCol)
	if path == nil {
		return nil, false
	}

	wps := make([]model.Waypoint, 0, len(path))
	for i, cell := range path {
		x, y := p.grid.PointOf(cell.Row, cell.Col)
		heading := 0.0
		if i > 0 {
			px, py := p.grid.PointOf(path[i-1].Row, path[i-1].Col)
			heading = math.Atan2(y-py, x-px)
		}
		wps = append(wps, model.Waypoint{
			X: x, Y: y, TargetHeading: heading, TargetSpeed: speed, AccessoryEnable: false,
		})
	}
	return model.NewRoute(wps), true
}

// PlanBoustrophedon emits alternating-direction horizontal strips spanning
// [minX,maxX]x[minY,maxY] at StripWidth spacing, sampled at grid resolution,
// routing around obstacle cells via A* (spec.md §4.C). Waypoints inside
// strips carry accessory-enable=true; turning connectors carry
// accessory-enable=false and half speed.
func (p *Planner) PlanBoustrophedon(minX, minY, maxX, maxY float64) *model.Route {
	var all []model.Waypoint

	numStrips := int(math.Floor((maxY-minY)/p.cfg.StripWidth)) + 1
	leftToRight := true

	var lastX, lastY float64
	haveLast := false

	for s := 0; s < numStrips; s++ {
		y := minY + float64(s)*p.cfg.StripWidth
		if y > maxY {
			break
		}

		stripStart, stripEnd := minX, maxX
		if !leftToRight {
			stripStart, stripEnd = maxX, minX
		}

		if haveLast {
			connector, ok := p.connectorSegment(lastX, lastY, stripStart, y)
			if ok {
				all = append(all, connector...)
			}
		}

		strip := p.sampleStrip(stripStart, stripEnd, y)
		all = append(all, strip...)
		if len(strip) > 0 {
			last := strip[len(strip)-1]
			lastX, lastY = last.X, last.Y
			haveLast = true
		}
		leftToRight = !leftToRight
	}

	return model.NewRoute(all)
}

// connectorSegment routes around obstacles between the end of one strip and
// the start of the next via A*, marking the path as a non-mowing, half-speed
// turning connector (spec.md §4.C).
func (p *Planner) connectorSegment(fromX, fromY, toX, toY float64) ([]model.Waypoint, bool) {
	route, ok := p.PlanPointToPoint(fromX, fromY, toX, toY, p.cfg.NormalSpeed/2)
	if !ok {
		// direct connector, best-effort straight line through however the
		// grid looks at the turn point.
		return []model.Waypoint{{
			X: toX, Y: toY,
			TargetHeading:   math.Atan2(toY-fromY, toX-fromX),
			TargetSpeed:     p.cfg.NormalSpeed / 2,
			AccessoryEnable: false,
		}}, true
	}
	wps := make([]model.Waypoint, 0, route.Remaining())
	for {
		wp, ok := route.NextWaypoint()
		if !ok {
			break
		}
		wp.AccessoryEnable = false
		wp.TargetSpeed = p.cfg.NormalSpeed / 2
		wps = append(wps, wp)
	}
	return wps, true
}

// sampleStrip walks a single horizontal strip at the given y, sampling at
// grid resolution and routing each obstacle-occupied point around via A*.
func (p *Planner) sampleStrip(fromX, toX, y float64) []model.Waypoint {
	step := p.cfg.GridResolution
	if toX < fromX {
		step = -step
	}

	var wps []model.Waypoint
	x := fromX
	for {
		done := (step > 0 && x > toX) || (step < 0 && x < toX)
		if done {
			break
		}
		row, col, ok := p.grid.CellOf(x, y)
		if ok && p.grid.Blocked(row, col) {
			if len(wps) > 0 {
				last := wps[len(wps)-1]
				detour, detourOK := p.PlanPointToPoint(last.X, last.Y, x+step, y, p.cfg.NormalSpeed)
				if detourOK {
					for {
						wp, ok := detour.NextWaypoint()
						if !ok {
							break
						}
						wp.AccessoryEnable = true
						wps = append(wps, wp)
					}
				}
			}
			x += step
			continue
		}
		heading := 0.0
		if step < 0 {
			heading = math.Pi
		}
		wps = append(wps, model.Waypoint{
			X: x, Y: y, TargetHeading: heading, TargetSpeed: p.cfg.NormalSpeed, AccessoryEnable: true,
		})
		x += step
	}
	return wps
}

// PlanChargingRoute generates the coarse-phase route to the dock with
// distance-dependent regimes (spec.md §4.C).
func (p *Planner) PlanChargingRoute(fromX, fromY, dockX, dockY float64) *model.Route {
	dist := math.Hypot(dockX-fromX, dockY-fromY)

	switch {
	case dist <= p.cfg.GPSAccuracyM:
		return p.denseApproach(fromX, fromY, dockX, dockY)
	case dist <= p.cfg.MediumRangeM:
		return p.mediumApproach(fromX, fromY, dockX, dockY, dist)
	default:
		route, ok := p.PlanPointToPoint(fromX, fromY, dockX, dockY, p.cfg.NormalSpeed)
		if !ok {
			return model.NewRoute(nil)
		}
		return p.scaleSpeedsByRemainingDistance(route, dockX, dockY)
	}
}

// denseApproach samples 10 equal segments with decreasing speeds, holding
// the final waypoint one apriltagRange before the dock at speed zero.
func (p *Planner) denseApproach(fromX, fromY, dockX, dockY float64) *model.Route {
	const segments = 10
	speeds := []float64{p.cfg.NormalSpeed, p.cfg.SlowSpeed, p.cfg.VerySlowSpeed, p.cfg.UltraSlowSpeed, p.cfg.PreciseSpeed}

	heading := math.Atan2(dockY-fromY, dockX-fromX)
	dirX, dirY := math.Cos(heading), math.Sin(heading)
	totalDist := math.Hypot(dockX-fromX, dockY-fromY)
	standoffDist := math.Max(0, totalDist-p.cfg.ApriltagRange)

	wps := make([]model.Waypoint, 0, segments+1)
	for i := 1; i <= segments; i++ {
		frac := float64(i) / segments
		d := frac * standoffDist
		speedIdx := i * len(speeds) / (segments + 1)
		if speedIdx >= len(speeds) {
			speedIdx = len(speeds) - 1
		}
		wps = append(wps, model.Waypoint{
			X: fromX + dirX*d, Y: fromY + dirY*d,
			TargetHeading: heading, TargetSpeed: speeds[speedIdx], AccessoryEnable: false,
		})
	}
	wps = append(wps, model.Waypoint{
		X: fromX + dirX*standoffDist, Y: fromY + dirY*standoffDist,
		TargetHeading: heading, TargetSpeed: 0, AccessoryEnable: false,
	})
	return model.NewRoute(wps)
}

// mediumApproach emits coarser waypoints with speed scaled down near the
// dock.
func (p *Planner) mediumApproach(fromX, fromY, dockX, dockY, dist float64) *model.Route {
	const segments = 4
	heading := math.Atan2(dockY-fromY, dockX-fromX)
	dirX, dirY := math.Cos(heading), math.Sin(heading)

	wps := make([]model.Waypoint, 0, segments)
	for i := 1; i <= segments; i++ {
		frac := float64(i) / segments
		d := frac * dist
		remaining := dist - d
		speed := p.cfg.NormalSpeed * math.Min(1, remaining/p.cfg.MediumRangeM+0.2)
		if speed < p.cfg.SlowSpeed {
			speed = p.cfg.SlowSpeed
		}
		wps = append(wps, model.Waypoint{
			X: fromX + dirX*d, Y: fromY + dirY*d,
			TargetHeading: heading, TargetSpeed: speed, AccessoryEnable: false,
		})
	}
	return model.NewRoute(wps)
}

func (p *Planner) scaleSpeedsByRemainingDistance(route *model.Route, dockX, dockY float64) *model.Route {
	var wps []model.Waypoint
	for {
		wp, ok := route.NextWaypoint()
		if !ok {
			break
		}
		remaining := math.Hypot(dockX-wp.X, dockY-wp.Y)
		scale := math.Min(1, remaining/p.cfg.MediumRangeM+0.1)
		wp.TargetSpeed *= scale
		wp.AccessoryEnable = false
		wps = append(wps, wp)
	}
	return model.NewRoute(wps)
}
