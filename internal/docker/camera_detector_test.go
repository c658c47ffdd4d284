package docker

import (
	"context"
	"testing"

	"go.viam.com/test"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

type fakeCamera struct {
	frame model.CameraFrame
}

func (f *fakeCamera) Start(ctx context.Context) bool { return true }
func (f *fakeCamera) Stop()                           {}
func (f *fakeCamera) Healthy() bool                   { return true }
func (f *fakeCamera) Read(ctx context.Context) model.CameraFrame {
	return f.frame
}

func brightSquareFrame(width, height, minX, minY, maxX, maxY int) model.CameraFrame {
	pixels := make([]byte, width*height*3)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			idx := (y*width + x) * 3
			pixels[idx], pixels[idx+1], pixels[idx+2] = 255, 255, 255
		}
	}
	return model.CameraFrame{
		SensorValidity: model.SensorValidity{Valid: true},
		Width:          width,
		Height:         height,
		Pixels:         pixels,
	}
}

func TestCameraDetectorFindsBrightSquare(t *testing.T) {
	cam := &fakeCamera{frame: brightSquareFrame(640, 480, 300, 200, 340, 240)}
	det := NewCameraDetector(cam, 0, DefaultCameraConfig())

	result := det.Detect()
	test.That(t, result.Found, test.ShouldBeTrue)
	test.That(t, result.TagID, test.ShouldEqual, 0)
	test.That(t, result.DistanceM, test.ShouldBeGreaterThan, 0.0)
	test.That(t, result.Confidence, test.ShouldBeGreaterThan, 0.5)
}

func TestCameraDetectorNoBrightRegionReturnsNotFound(t *testing.T) {
	cam := &fakeCamera{frame: model.CameraFrame{
		SensorValidity: model.SensorValidity{Valid: true},
		Width:          640,
		Height:         480,
		Pixels:         make([]byte, 640*480*3),
	}}
	det := NewCameraDetector(cam, 0, DefaultCameraConfig())

	result := det.Detect()
	test.That(t, result.Found, test.ShouldBeFalse)
}

func TestCameraDetectorInvalidFrameReturnsNotFound(t *testing.T) {
	cam := &fakeCamera{frame: model.CameraFrame{}}
	det := NewCameraDetector(cam, 0, DefaultCameraConfig())

	result := det.Detect()
	test.That(t, result.Found, test.ShouldBeFalse)
}
