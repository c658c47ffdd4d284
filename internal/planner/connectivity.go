package planner

import (
	"github.com/katalvlaran/lvlath/gridgraph"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// reachable answers "is goal connected to start" in one BFS pass via
// lvlath's gridgraph.ConnectedComponents, short-circuiting a doomed A*
// expansion when the goal sits in a fully enclosed pocket (SPEC_FULL.md
// §"Rota Planner" expansion).
func reachable(grid *model.GridMap, startRow, startCol, goalRow, goalCol int) (bool, error) {
	values := make([][]int, grid.Rows)
	for row := 0; row < grid.Rows; row++ {
		values[row] = make([]int, grid.Cols)
		for col := 0; col < grid.Cols; col++ {
			if grid.Blocked(row, col) {
				values[row][col] = 0
			} else {
				values[row][col] = 1
			}
		}
	}

	gg, err := gridgraph.NewGridGraph(values, gridgraph.GridOptions{
		LandThreshold: 1,
		Conn:          gridgraph.Conn8,
	})
	if err != nil {
		return false, err
	}

	components := gg.ConnectedComponents()
	for _, comps := range components {
		for _, comp := range comps {
			var hasStart, hasGoal bool
			for _, c := range comp {
				// gridgraph.Cell uses (X=col, Y=row).
				if c.Y == startRow && c.X == startCol {
					hasStart = true
				}
				if c.Y == goalRow && c.X == goalCol {
					hasGoal = true
				}
			}
			if hasStart && hasGoal {
				return true, nil
			}
			if hasStart || hasGoal {
				// found one endpoint's component but not both: definitely
				// disconnected, no need to keep scanning other components.
				return false, nil
			}
		}
	}
	return false, nil
}
