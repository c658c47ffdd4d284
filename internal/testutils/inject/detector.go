package inject

import "github.com/yusuftiryaki/robot-sub000/internal/docker"

// TagDetector is a function-field fake implementing docker.TagDetector.
type TagDetector struct {
	DetectFunc func() docker.TagDetection
}

func (f *TagDetector) Detect() docker.TagDetection {
	if f.DetectFunc != nil {
		return f.DetectFunc()
	}
	return docker.TagDetection{}
}
