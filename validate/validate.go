// Command validate checks content bundle JSON files. It reports:
//   - JSON structure, including unknown fields
//   - Every section the server validates when loading a bundle
//   - Maze solvability and the length of the shortest route
//   - Content smells such as repeated quiz prompts or an answer key that
//     always points at the same option
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/gift-journey/game/config"
	"github.com/wricardo/gift-journey/game/maze"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// validateContentFile loads and validates a single bundle file
func validateContentFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var content config.Content
	if err := json.Unmarshal(data, &content); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	strict := json.NewDecoder(bytes.NewReader(data))
	strict.DisallowUnknownFields()
	if err := strict.Decode(&config.Content{}); err != nil {
		result.warn("Unknown field (ignored by the server): %v", err)
	}

	if err := config.ValidateContent(&content); err != nil {
		result.fail("%v", err)
		return result
	}

	result.info("Name: %s", content.Name)
	result.info("Memory: %d pairs (%d cards)", len(content.Memory.Images), 2*len(content.Memory.Images))
	result.info("Quiz: %d questions", len(content.Quiz.Questions))
	result.info("Puzzle: %d tiles", len(content.Puzzle.Tiles))

	checkMaze(&result, content.Maze.Layout)
	checkQuiz(&result, &content)
	checkPuzzle(&result, &content)
	return result
}

// checkMaze reports the shortest route from start to goal
func checkMaze(result *ValidationResult, layout []string) {
	grid, err := maze.ParseGrid(layout)
	if err != nil {
		result.fail("%v", err)
		return
	}
	start, _ := grid.Find(maze.Start)
	goal, _ := grid.Find(maze.Goal)
	path, ok := grid.ShortestPath(start, goal)
	if !ok {
		result.fail("Maze goal unreachable from start")
		return
	}
	result.info("Maze: %dx%d, goal reachable in %d moves", grid.Rows(), grid.Cols(), len(path))
	if len(path) <= 1 {
		result.warn("Maze goal is next to the start")
	}
}

func checkQuiz(result *ValidationResult, content *config.Content) {
	questions := content.Quiz.Questions
	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		prompt := strings.ToLower(strings.TrimSpace(q.Prompt))
		if seen[prompt] {
			result.warn("Quiz question %d repeats an earlier prompt", i+1)
		}
		seen[prompt] = true
	}

	if len(questions) > 2 {
		same := true
		for _, q := range questions[1:] {
			if q.Correct != questions[0].Correct {
				same = false
				break
			}
		}
		if same {
			result.warn("Every quiz answer is option %d", questions[0].Correct)
		}
	}
}

func checkPuzzle(result *ValidationResult, content *config.Content) {
	type look struct{ label, color string }
	looks := make(map[look]int, len(content.Puzzle.Tiles))
	var order []look
	for _, tile := range content.Puzzle.Tiles {
		l := look{tile.Label, tile.Color}
		if looks[l] == 0 {
			order = append(order, l)
		}
		looks[l]++
	}
	for _, l := range order {
		if n := looks[l]; n > 1 {
			result.warn("Puzzle label %q with color %q appears on %d identical tiles", l.label, l.color, n)
		}
	}
	if len(content.Puzzle.Messages) == 0 {
		result.warn("Puzzle has no closing messages; the default message is shown")
	}
}

// collectFiles expands directories into their *.json files
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.json"))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

// printResult writes a concise report and reports whether the file passed
func printResult(result ValidationResult, strict bool) bool {
	fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

	valid := result.Valid && !(strict && len(result.Warnings) > 0)
	if valid {
		fmt.Println("✅ VALID")
		for _, info := range result.Errors {
			fmt.Println("  " + info)
		}
	} else {
		fmt.Println("❌ INVALID")
		for _, err := range result.Errors {
			if !strings.HasPrefix(err, "✓") {
				fmt.Println("  ❌ " + err)
			}
		}
	}
	for _, w := range result.Warnings {
		fmt.Println("  ⚠️  " + w)
	}
	return valid
}

func run(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		paths = []string{cmd.String("dir")}
	}

	files, err := collectFiles(paths)
	if err != nil {
		return fmt.Errorf("finding content files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no content files found in %v", paths)
	}

	allValid := true
	for _, file := range files {
		if !printResult(validateContentFile(file), cmd.Bool("strict")) {
			allValid = false
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		return cli.Exit("❌ Some content bundles have errors", 1)
	}
	fmt.Println("✅ All content bundles are valid!")
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "Validate gift journey content bundles",
		ArgsUsage: "[file or directory...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "content", Usage: "Directory scanned when no paths are given"},
			&cli.BoolFlag{Name: "strict", Usage: "Treat warnings as errors"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
