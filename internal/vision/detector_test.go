package vision

import (
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

func syntheticFrame(width, height int, blockMinX, blockMinY, blockMaxX, blockMaxY int) model.CameraFrame {
	pixels := make([]byte, width*height*3)
	for i := range pixels {
		pixels[i] = 30
	}
	for y := blockMinY; y <= blockMaxY; y++ {
		for x := blockMinX; x <= blockMaxX; x++ {
			idx := (y*width + x) * 3
			pixels[idx] = 220
			pixels[idx+1] = 220
			pixels[idx+2] = 220
		}
	}
	return model.CameraFrame{Width: width, Height: height, Pixels: pixels, CapturedAt: time.Now()}
}

func TestDetectorSuppressesOutputDuringWarmup(t *testing.T) {
	d := New(DefaultConfig())
	frame := syntheticFrame(64, 48, 20, 20, 40, 40)

	for i := 0; i < 3; i++ {
		out := d.Process(frame)
		test.That(t, out, test.ShouldBeNil)
	}
}

func TestDetectorEmitsAfterWarmup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinAreaPx = 1
	cfg.DetectionThreshold = 0
	d := New(cfg)
	frame := syntheticFrame(64, 48, 20, 20, 40, 40)

	var out []model.DynamicObstacle
	for i := 0; i < 5; i++ {
		out = d.Process(frame)
	}
	test.That(t, len(out), test.ShouldBeGreaterThan, 0)
	test.That(t, out[0].ID, test.ShouldNotBeEmpty)
}

func TestDetectorTrackingAssignsStableIDs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinAreaPx = 1
	cfg.DetectionThreshold = 0
	d := New(cfg)
	frame := syntheticFrame(64, 48, 20, 20, 40, 40)

	var ids []string
	for i := 0; i < 6; i++ {
		out := d.Process(frame)
		for _, o := range out {
			ids = append(ids, o.ID)
		}
	}
	test.That(t, len(ids), test.ShouldBeGreaterThan, 0)
	test.That(t, ids[0], test.ShouldEqual, ids[len(ids)-1])
}

func TestNoBlobsProducesNoObstacles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DetectionThreshold = 0
	d := New(cfg)
	frame := syntheticFrame(64, 48, 0, 0, 0, 0)
	var out []model.DynamicObstacle
	for i := 0; i < 5; i++ {
		out = d.Process(frame)
	}
	test.That(t, len(out), test.ShouldEqual, 0)
}
