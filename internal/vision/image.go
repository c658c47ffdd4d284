// Package vision implements the Obstacle Detector (spec.md §4.D): a
// from-scratch grayscale→blur→edge→morphology→contour→geometry→confidence
// pipeline plus a nearest-neighbor tracker and temporal filter. OpenCV
// bindings are not available in the reference corpus (see DESIGN.md), so
// the image-processing primitives below are hand-rolled; tracking and
// scoring reuse the corpus's patterns (uuid ids, zap logging).
package vision

import "math"

// grayscale converts a row-major BGR byte buffer into a single-channel
// luminance buffer using the standard Rec. 601 weights.
func grayscale(bgr []byte, width, height int) []float64 {
	out := make([]float64, width*height)
	for i := 0; i < width*height; i++ {
		b := float64(bgr[i*3+0])
		g := float64(bgr[i*3+1])
		r := float64(bgr[i*3+2])
		out[i] = 0.114*b + 0.587*g + 0.299*r
	}
	return out
}

// gaussianBlur applies a separable 5-tap approximate Gaussian kernel.
func gaussianBlur(src []float64, width, height int) []float64 {
	kernel := []float64{1, 4, 6, 4, 1}
	const kSum = 16.0

	tmp := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for k := -2; k <= 2; k++ {
				xi := clamp(x+k, 0, width-1)
				sum += src[y*width+xi] * kernel[k+2]
			}
			tmp[y*width+x] = sum / kSum
		}
	}

	out := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for k := -2; k <= 2; k++ {
				yi := clamp(y+k, 0, height-1)
				sum += tmp[yi*width+x] * kernel[k+2]
			}
			out[y*width+x] = sum / kSum
		}
	}
	return out
}

// sobelMagnitude returns the gradient magnitude at every pixel, the basis
// for the edge-detection step (a Canny stand-in, spec.md §4.D step 2).
func sobelMagnitude(src []float64, width, height int) []float64 {
	gx := []float64{-1, 0, 1, -2, 0, 2, -1, 0, 1}
	gy := []float64{-1, -2, -1, 0, 0, 0, 1, 2, 1}

	out := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sx, sy float64
			idx := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					xi := clamp(x+dx, 0, width-1)
					yi := clamp(y+dy, 0, height-1)
					v := src[yi*width+xi]
					sx += v * gx[idx]
					sy += v * gy[idx]
					idx++
				}
			}
			out[y*width+x] = hypot(sx, sy)
		}
	}
	return out
}

// threshold binarizes src at cutoff, using the adaptive mean-offset
// fallback when useAdaptive is set (spec.md §4.D "Canny OR adaptive
// threshold fallback").
func threshold(src []float64, width, height int, cutoff float64, useAdaptive bool) []bool {
	out := make([]bool, width*height)
	if !useAdaptive {
		for i, v := range src {
			out[i] = v >= cutoff
		}
		return out
	}

	windowRadius := 7
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			var n int
			for dy := -windowRadius; dy <= windowRadius; dy++ {
				for dx := -windowRadius; dx <= windowRadius; dx++ {
					xi, yi := x+dx, y+dy
					if xi < 0 || xi >= width || yi < 0 || yi >= height {
						continue
					}
					sum += src[yi*width+xi]
					n++
				}
			}
			mean := sum / float64(n)
			out[y*width+x] = src[y*width+x] >= mean+cutoff
		}
	}
	return out
}

// morphClose dilates then erodes (fills small gaps); morphOpen erodes then
// dilates (removes small specks) — spec.md §4.D step 3.
func morphClose(mask []bool, width, height, radius int) []bool {
	return erode(dilate(mask, width, height, radius), width, height, radius)
}

func morphOpen(mask []bool, width, height, radius int) []bool {
	return dilate(erode(mask, width, height, radius), width, height, radius)
}

func dilate(mask []bool, width, height, radius int) []bool {
	out := make([]bool, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			set := false
			for dy := -radius; dy <= radius && !set; dy++ {
				for dx := -radius; dx <= radius && !set; dx++ {
					xi, yi := x+dx, y+dy
					if xi < 0 || xi >= width || yi < 0 || yi >= height {
						continue
					}
					if mask[yi*width+xi] {
						set = true
					}
				}
			}
			out[y*width+x] = set
		}
	}
	return out
}

func erode(mask []bool, width, height, radius int) []bool {
	out := make([]bool, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			all := true
			for dy := -radius; dy <= radius && all; dy++ {
				for dx := -radius; dx <= radius && all; dx++ {
					xi, yi := x+dx, y+dy
					if xi < 0 || xi >= width || yi < 0 || yi >= height {
						all = false
						continue
					}
					if !mask[yi*width+xi] {
						all = false
					}
				}
			}
			out[y*width+x] = all
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func hypot(a, b float64) float64 {
	return math.Sqrt(a*a + b*b)
}
