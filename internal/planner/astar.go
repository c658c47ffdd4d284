package planner

import (
	"container/heap"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// neighbor (dRow, dCol) offsets in fixed scan order N, NE, E, SE, S, SW, W,
// NW (rows grow north, columns grow east), matching spec.md §9's tie-break
// resolution for 8-connected grid search.
var neighborOffsets = [8][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

type searchNode struct {
	row, col int
	g, f     float64
	seq      int // insertion order, for deterministic tie-breaking
	index    int // heap.Interface bookkeeping
}

type openList []*searchNode

func (o openList) Len() int { return len(o) }
func (o openList) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	return o[i].seq < o[j].seq
}
func (o openList) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}
func (o *openList) Push(x any) {
	n := x.(*searchNode)
	n.index = len(*o)
	*o = append(*o, n)
}
func (o *openList) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*o = old[:n-1]
	return item
}

// cellCost is the Euclidean step cost between grid cells, scaled by
// resolution.
func cellCost(resolution float64, dr, dc int) float64 {
	if dr != 0 && dc != 0 {
		return resolution * 1.4142135623730951
	}
	return resolution
}

func manhattan(row, col, goalRow, goalCol int, resolution float64) float64 {
	dr := row - goalRow
	if dr < 0 {
		dr = -dr
	}
	dc := col - goalCol
	if dc < 0 {
		dc = -dc
	}
	return float64(dr+dc) * resolution
}

// aStarGrid searches an 8-connected path from (startRow,startCol) to
// (goalRow,goalCol) over grid, using the Manhattan heuristic and Euclidean
// step cost, with the fixed neighbor-scan tie-break order (spec.md §4.C,
// Open Question resolved in SPEC_FULL.md). Returns nil if no path exists.
func aStarGrid(grid *model.GridMap, startRow, startCol, goalRow, goalCol int) []gridCell {
	if grid.Blocked(startRow, startCol) || grid.Blocked(goalRow, goalCol) {
		return nil
	}

	key := func(row, col int) int { return row*grid.Cols + col }

	gScore := map[int]float64{key(startRow, startCol): 0}
	cameFrom := map[int]int{}
	visited := map[int]bool{}

	open := &openList{}
	heap.Init(open)
	seq := 0
	heap.Push(open, &searchNode{
		row: startRow, col: startCol,
		g: 0, f: manhattan(startRow, startCol, goalRow, goalCol, grid.Resolution),
		seq: seq,
	})

	for open.Len() > 0 {
		cur := heap.Pop(open).(*searchNode)
		curKey := key(cur.row, cur.col)
		if visited[curKey] {
			continue
		}
		visited[curKey] = true

		if cur.row == goalRow && cur.col == goalCol {
			return reconstructPath(cameFrom, key, grid.Cols, startRow, startCol, goalRow, goalCol)
		}

		for _, off := range neighborOffsets {
			nr, nc := cur.row+off[0], cur.col+off[1]
			if grid.Blocked(nr, nc) {
				continue
			}
			nKey := key(nr, nc)
			if visited[nKey] {
				continue
			}
			tentativeG := gScore[curKey] + cellCost(grid.Resolution, off[0], off[1])
			if existing, ok := gScore[nKey]; ok && tentativeG >= existing {
				continue
			}
			gScore[nKey] = tentativeG
			cameFrom[nKey] = curKey
			seq++
			heap.Push(open, &searchNode{
				row: nr, col: nc,
				g: tentativeG,
				f:  tentativeG + manhattan(nr, nc, goalRow, goalCol, grid.Resolution),
				seq: seq,
			})
		}
	}
	return nil
}

type gridCell struct {
	Row, Col int
}

func reconstructPath(cameFrom map[int]int, key func(row, col int) int, cols, startRow, startCol, goalRow, goalCol int) []gridCell {
	path := []gridCell{{Row: goalRow, Col: goalCol}}
	cur := key(goalRow, goalCol)
	start := key(startRow, startCol)
	for cur != start {
		prev, ok := cameFrom[cur]
		if !ok {
			return nil
		}
		path = append(path, gridCell{Row: prev / cols, Col: prev % cols})
		cur = prev
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
