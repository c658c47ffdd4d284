package vision

import (
	"math"

	"github.com/google/uuid"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// track is a per-id detection history ring buffer (spec.md §4.D "short
// per-id histories ... using nearest-neighbor").
type track struct {
	id          string
	history     []model.DynamicObstacle
	count       int
	lastHitTick int
}

func (t *track) push(o model.DynamicObstacle, historySize int, tick int) {
	if t.history == nil {
		t.history = make([]model.DynamicObstacle, historySize)
	}
	t.history[t.count%historySize] = o
	t.count++
	t.lastHitTick = tick
}

func (t *track) latest(historySize int) model.DynamicObstacle {
	if t.count == 0 {
		return model.DynamicObstacle{}
	}
	idx := (t.count - 1) % historySize
	return t.history[idx]
}

// Tracker matches new detections to existing tracks across frames, assigns
// stable uuid ids, and prunes tracks that missed one full pruning cycle
// (spec.md §4.D).
type Tracker struct {
	maxDistance float64
	historySize int
	tick        int
	tracks      map[string]*track
}

// NewTracker builds a Tracker with the configured matching distance and
// ring-buffer size.
func NewTracker(maxTrackingDistance float64, trackingHistory int) *Tracker {
	if trackingHistory <= 0 {
		trackingHistory = 5
	}
	return &Tracker{
		maxDistance: maxTrackingDistance,
		historySize: trackingHistory,
		tracks:      make(map[string]*track),
	}
}

// Update matches detections against existing tracks, assigns ids, and
// returns the id-stamped obstacles. Tracks with no hit for one pruning
// cycle are dropped.
func (tr *Tracker) Update(detections []model.DynamicObstacle) []model.DynamicObstacle {
	tr.tick++
	matched := make(map[string]bool)
	out := make([]model.DynamicObstacle, 0, len(detections))

	for _, d := range detections {
		bestID := ""
		bestDist := math.Inf(1)
		for id, t := range tr.tracks {
			if matched[id] {
				continue
			}
			prev := t.latest(tr.historySize)
			dist := math.Hypot(d.X-prev.X, d.Y-prev.Y)
			if dist <= tr.maxDistance && dist < bestDist {
				bestDist = dist
				bestID = id
			}
		}

		if bestID == "" {
			bestID = uuid.NewString()
			tr.tracks[bestID] = &track{id: bestID}
		}
		matched[bestID] = true
		d.ID = bestID
		tr.tracks[bestID].push(d, tr.historySize, tr.tick)
		out = append(out, d)
	}

	for id, t := range tr.tracks {
		if t.lastHitTick < tr.tick {
			delete(tr.tracks, id)
		}
	}

	return out
}
