package vision

// blob is a connected component of set pixels in a binary mask, standing in
// for the contour-extraction step (spec.md §4.D step 4). Rather than
// walking a true contour boundary, connected-component bounding boxes are
// extracted directly — sufficient for the bounding-box projection geometry
// the downstream steps consume.
type blob struct {
	MinX, MinY, MaxX, MaxY int
	Area                   int
}

func (b blob) Width() int  { return b.MaxX - b.MinX + 1 }
func (b blob) Height() int { return b.MaxY - b.MinY + 1 }

// extractBlobs runs a flood-fill connected-component labeling pass over
// mask and returns one blob per component.
func extractBlobs(mask []bool, width, height int) []blob {
	visited := make([]bool, width*height)
	var blobs []blob

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if !mask[idx] || visited[idx] {
				continue
			}

			b := blob{MinX: x, MinY: y, MaxX: x, MaxY: y}
			stack := []int{idx}
			visited[idx] = true
			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				cx, cy := cur%width, cur/width
				b.Area++
				if cx < b.MinX {
					b.MinX = cx
				}
				if cx > b.MaxX {
					b.MaxX = cx
				}
				if cy < b.MinY {
					b.MinY = cy
				}
				if cy > b.MaxY {
					b.MaxY = cy
				}

				for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					nx, ny := cx+d[0], cy+d[1]
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					nIdx := ny*width + nx
					if mask[nIdx] && !visited[nIdx] {
						visited[nIdx] = true
						stack = append(stack, nIdx)
					}
				}
			}
			blobs = append(blobs, b)
		}
	}
	return blobs
}

// aspectRatio returns width/height for b.
func (b blob) aspectRatio() float64 {
	return float64(b.Width()) / float64(b.Height())
}
