package vision

import "math"

// CameraConfig carries the intrinsics the projection step needs (spec.md
// §4.D step 5-6: "flat ground plane and known camera height/FOV" /
// "pinhole geometry with the configured focal length").
type CameraConfig struct {
	HeightM     float64 // mount height above ground
	TiltRad     float64 // downward tilt from horizontal, 0 = level
	HFOVRad     float64
	VFOVRad     float64
	FocalLength float64 // pixels
}

// DefaultCameraConfig returns representative mount values for the robot's
// forward-facing obstacle camera.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		HeightM:     0.25,
		TiltRad:     0.25,
		HFOVRad:     1.22, // ~70 deg
		VFOVRad:     0.96, // ~55 deg
		FocalLength: 600,
	}
}

// projected is the robot-frame geometry derived from one blob.
type projected struct {
	X, Y, Radius float64
	Distance     float64
}

// projectBlob maps a bounding box's bottom-center pixel onto the ground
// plane in front of the robot, assuming a flat ground plane and the
// configured camera height/tilt/FOV (spec.md §4.D step 5), then estimates
// the obstacle radius from the bounding box dimensions via pinhole
// geometry (step 6).
func projectBlob(b blob, imgWidth, imgHeight int, cam CameraConfig) projected {
	bottomY := b.MaxY
	centerX := (b.MinX + b.MaxX) / 2

	// vertical angle of the bottom-center pixel below the optical axis.
	pxFromCenterY := float64(bottomY) - float64(imgHeight)/2
	angleY := cam.TiltRad + pxFromCenterY/float64(imgHeight)*cam.VFOVRad

	distance := cam.HeightM / math.Max(math.Tan(angleY), 1e-3)

	pxFromCenterX := float64(centerX) - float64(imgWidth)/2
	angleX := pxFromCenterX / float64(imgWidth) * cam.HFOVRad
	x := distance
	y := distance * math.Tan(angleX)

	widthPx := float64(b.Width())
	radius := (widthPx / 2) * distance / cam.FocalLength

	return projected{X: x, Y: y, Radius: radius, Distance: distance}
}
