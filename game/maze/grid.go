package maze

import (
	"strings"

	"github.com/wricardo/gift-journey/game/engine"
)

// Cell is the terrain of a grid square
type Cell int

const (
	Wall Cell = iota
	Path
	Start
	Goal
)

// Layout legend
const (
	WallChar  = '#'
	PathChar  = '.'
	StartChar = 'S'
	GoalChar  = 'G'
)

func (c Cell) String() string {
	switch c {
	case Wall:
		return "wall"
	case Path:
		return "path"
	case Start:
		return "start"
	case Goal:
		return "goal"
	}
	return "unknown"
}

// Char returns the layout character for the cell
func (c Cell) Char() byte {
	switch c {
	case Path:
		return PathChar
	case Start:
		return StartChar
	case Goal:
		return GoalChar
	}
	return WallChar
}

// Grid is a rectangular maze, indexed [row][col]
type Grid [][]Cell

// ParseGrid converts a layout of equal-length rows into a validated grid
func ParseGrid(layout []string) (Grid, error) {
	if len(layout) < engine.MinGridSize || len(layout) > engine.MaxGridSize {
		return nil, engine.ConfigErrorf("maze: layout must have between %d and %d rows, got %d",
			engine.MinGridSize, engine.MaxGridSize, len(layout))
	}

	grid := make(Grid, len(layout))
	for r, row := range layout {
		if len(row) != len(layout[0]) {
			return nil, engine.ConfigErrorf("maze: row %d must have %d characters, got %d", r+1, len(layout[0]), len(row))
		}
		grid[r] = make([]Cell, len(row))
		for c := 0; c < len(row); c++ {
			switch row[c] {
			case WallChar:
				grid[r][c] = Wall
			case PathChar:
				grid[r][c] = Path
			case StartChar:
				grid[r][c] = Start
			case GoalChar:
				grid[r][c] = Goal
			default:
				return nil, engine.ConfigErrorf("maze: invalid character '%c' at row %d, col %d", row[c], r+1, c+1)
			}
		}
	}

	if err := ValidateGrid(grid); err != nil {
		return nil, err
	}
	return grid, nil
}

// ValidateGrid checks shape, exactly one start and one goal, and that the
// goal is reachable from the start
func ValidateGrid(g Grid) error {
	if len(g) < engine.MinGridSize || len(g) > engine.MaxGridSize {
		return engine.ConfigErrorf("maze: grid must have between %d and %d rows, got %d",
			engine.MinGridSize, engine.MaxGridSize, len(g))
	}
	cols := len(g[0])
	if cols < engine.MinGridSize || cols > engine.MaxGridSize {
		return engine.ConfigErrorf("maze: grid must have between %d and %d columns, got %d",
			engine.MinGridSize, engine.MaxGridSize, cols)
	}

	starts, goals := 0, 0
	for r, row := range g {
		if len(row) != cols {
			return engine.ConfigErrorf("maze: row %d must have %d cells, got %d", r+1, cols, len(row))
		}
		for c, cell := range row {
			switch cell {
			case Start:
				starts++
			case Goal:
				goals++
			case Wall, Path:
			default:
				return engine.ConfigErrorf("maze: unknown cell %d at row %d, col %d", cell, r+1, c+1)
			}
		}
	}
	if starts != 1 {
		return engine.ConfigErrorf("maze: exactly one start (S) required, got %d", starts)
	}
	if goals != 1 {
		return engine.ConfigErrorf("maze: exactly one goal (G) required, got %d", goals)
	}

	start, _ := g.Find(Start)
	goal, _ := g.Find(Goal)
	if _, ok := g.ShortestPath(start, goal); !ok {
		return engine.ConfigErrorf("maze: goal at (%d, %d) is unreachable from start at (%d, %d)",
			goal.Row+1, goal.Col+1, start.Row+1, start.Col+1)
	}
	return nil
}

// Rows returns the grid height
func (g Grid) Rows() int { return len(g) }

// Cols returns the grid width
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// InBounds reports whether p lies on the grid
func (g Grid) InBounds(p engine.Position) bool {
	return p.Row >= 0 && p.Row < g.Rows() && p.Col >= 0 && p.Col < g.Cols()
}

// Passable reports whether the player may stand on p
func (g Grid) Passable(p engine.Position) bool {
	return g.InBounds(p) && g[p.Row][p.Col] != Wall
}

// Find returns the first position holding the given cell
func (g Grid) Find(cell Cell) (engine.Position, bool) {
	for r, row := range g {
		for c, v := range row {
			if v == cell {
				return engine.Position{Row: r, Col: c}, true
			}
		}
	}
	return engine.Position{}, false
}

// Layout renders the grid back to legend rows
func (g Grid) Layout() []string {
	rows := make([]string, len(g))
	for r, row := range g {
		var b strings.Builder
		for _, cell := range row {
			b.WriteByte(cell.Char())
		}
		rows[r] = b.String()
	}
	return rows
}

// Clone returns a deep copy
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for r, row := range g {
		out[r] = append([]Cell(nil), row...)
	}
	return out
}

// ShortestPath finds a minimal sequence of moves from one position to
// another by breadth-first search
func (g Grid) ShortestPath(from, to engine.Position) ([]engine.Direction, bool) {
	if !g.Passable(from) || !g.Passable(to) {
		return nil, false
	}

	type step struct {
		prev engine.Position
		dir  engine.Direction
	}
	visited := map[engine.Position]step{from: {}}
	queue := []engine.Position{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			break
		}
		for _, d := range engine.Directions {
			next := cur.Step(d)
			if !g.Passable(next) {
				continue
			}
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = step{prev: cur, dir: d}
			queue = append(queue, next)
		}
	}

	if _, ok := visited[to]; !ok {
		return nil, false
	}

	var path []engine.Direction
	for cur := to; cur != from; cur = visited[cur].prev {
		path = append(path, visited[cur].dir)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}
