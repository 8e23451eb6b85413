// Command analyze prints quick, human-readable heuristics about content
// bundles: deck size, quiz score tiers, maze openness with its shortest
// route and dead ends, and puzzle size.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/gift-journey/game/config"
	"github.com/wricardo/gift-journey/game/engine"
	"github.com/wricardo/gift-journey/game/maze"
	"github.com/wricardo/gift-journey/game/quiz"
)

// MazeStats summarises the shape of a maze
type MazeStats struct {
	Rows, Cols   int
	OpenCells    int
	Walls        int
	DeadEnds     []engine.Position
	Junctions    int
	Route        []engine.Direction
	RouteOverlay []string
}

// analyzeMaze measures a parsed grid
func analyzeMaze(grid maze.Grid) MazeStats {
	stats := MazeStats{Rows: grid.Rows(), Cols: grid.Cols()}

	for r := 0; r < grid.Rows(); r++ {
		for c := 0; c < grid.Cols(); c++ {
			p := engine.Position{Row: r, Col: c}
			if !grid.Passable(p) {
				stats.Walls++
				continue
			}
			stats.OpenCells++

			exits := 0
			for _, d := range engine.Directions {
				if grid.Passable(p.Step(d)) {
					exits++
				}
			}
			switch {
			case exits == 1 && grid[r][c] == maze.Path:
				stats.DeadEnds = append(stats.DeadEnds, p)
			case exits >= 3:
				stats.Junctions++
			}
		}
	}

	start, _ := grid.Find(maze.Start)
	goal, _ := grid.Find(maze.Goal)
	if route, ok := grid.ShortestPath(start, goal); ok {
		stats.Route = route
		stats.RouteOverlay = overlayRoute(grid, start, route)
	}
	return stats
}

// overlayRoute marks the cells of a route with '*'
func overlayRoute(grid maze.Grid, start engine.Position, route []engine.Direction) []string {
	rows := make([][]byte, grid.Rows())
	for r, line := range grid.Layout() {
		rows[r] = []byte(line)
	}
	p := start
	for _, d := range route {
		p = p.Step(d)
		if grid[p.Row][p.Col] == maze.Path {
			rows[p.Row][p.Col] = '*'
		}
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = string(row)
	}
	return out
}

// tierThresholds returns the lowest score reaching each tier
func tierThresholds(total int) map[quiz.Tier]int {
	thresholds := make(map[quiz.Tier]int)
	for score := total; score >= 0; score-- {
		thresholds[quiz.Classify(score, total)] = score
	}
	return thresholds
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

func analyzeContent(w io.Writer, content *config.Content) {
	fmt.Fprintf(w, "Name: %s\n", content.Name)
	if content.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", content.Description)
	}

	pairs := len(content.Memory.Images)
	fmt.Fprintf(w, "\nMemory: %d pairs, %d cards\n", pairs, 2*pairs)
	fmt.Fprintf(w, "  Perfect game: %d moves, mismatch shown for %s\n", pairs, content.Timing.MismatchDelay())

	total := len(content.Quiz.Questions)
	thresholds := tierThresholds(total)
	fmt.Fprintf(w, "\nQuiz: %d questions, answer shown for %s\n", total, content.Timing.AnswerDelay())
	for _, tier := range []quiz.Tier{quiz.TierPerfect, quiz.TierGood, quiz.TierNeedsMoreTime} {
		if score, ok := thresholds[tier]; ok {
			fmt.Fprintf(w, "  %-16s from %d/%d\n", tier, score, total)
		}
	}

	grid, err := maze.ParseGrid(content.Maze.Layout)
	if err != nil {
		fmt.Fprintf(w, "\n⚠️  Maze invalid: %v\n", err)
	} else {
		stats := analyzeMaze(grid)
		fmt.Fprintf(w, "\nMaze: %dx%d, %d open cells, %d walls, swipe threshold %.0fpx\n",
			stats.Rows, stats.Cols, stats.OpenCells, stats.Walls, content.Maze.Threshold())
		fmt.Fprintf(w, "  Junctions: %d, dead ends: %d\n", stats.Junctions, len(stats.DeadEnds))
		if stats.Route == nil {
			fmt.Fprintf(w, "  ⚠️  CRITICAL: goal unreachable\n")
		} else {
			fmt.Fprintf(w, "  Shortest route: %d moves\n", len(stats.Route))
			for _, line := range stats.RouteOverlay {
				fmt.Fprintf(w, "    %s\n", line)
			}
			if len(stats.Route) > engine.MaxBulkMoves {
				fmt.Fprintf(w, "  Note: route is longer than one bulk move (%d)\n", engine.MaxBulkMoves)
			}
		}
	}

	tiles := len(content.Puzzle.Tiles)
	fmt.Fprintf(w, "\nPuzzle: %d tiles, %.0f scrambled arrangements\n", tiles, factorial(tiles)-1)
	fmt.Fprintf(w, "  Worst case: %d swaps\n", tiles-1)
	fmt.Fprintf(w, "  Closing messages: %d\n", len(content.Puzzle.Messages))
}

func run(ctx context.Context, cmd *cli.Command) error {
	contents, err := config.NewManager(cmd.String("dir"))
	if err != nil {
		return err
	}

	names := cmd.Args().Slice()
	if len(names) == 0 {
		infos, err := contents.ListContent()
		if err != nil {
			return err
		}
		for _, info := range infos {
			names = append(names, info.ContentID)
		}
	}

	for _, name := range names {
		name = strings.TrimSuffix(filepath.Base(name), ".json")
		fmt.Printf("\n=== Analyzing %s ===\n", name)
		content, err := contents.LoadContent(name)
		if err != nil {
			fmt.Printf("Error loading content: %v\n", err)
			continue
		}
		analyzeContent(os.Stdout, content)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "Print heuristics about gift journey content bundles",
		ArgsUsage: "[bundle...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "content", Usage: "Content directory"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
