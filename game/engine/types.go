package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// GameID identifies a mini-game on the journey map
type GameID string

const (
	Memory GameID = "memory"
	Quiz   GameID = "quiz"
	Maze   GameID = "maze"
	Puzzle GameID = "puzzle"

	// Validation constants
	MaxPairs     = 32
	MinTiles     = 2
	MaxTiles     = 64
	MinGridSize  = 2
	MaxGridSize  = 50
	MinOptions   = 2
	MaxQuestions = 100
	MaxDelay     = 10 * time.Second
	MaxBulkMoves = 50

	DefaultMismatchDelay  = 1000 * time.Millisecond
	DefaultAnswerDelay    = 1500 * time.Millisecond
	DefaultSwipeThreshold = 50.0
)

// AllGames lists the mini-games in the order the map presents them
var AllGames = []GameID{Memory, Quiz, Maze, Puzzle}

var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrUnknownGame      = errors.New("unknown game")
	ErrUnknownDirection = errors.New("unknown direction")
	ErrClosed           = errors.New("game instance closed")
)

// ConfigErrorf builds a construction error wrapping ErrInvalidConfig
func ConfigErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

// ParseGameID resolves a case-insensitive game name
func ParseGameID(s string) (GameID, error) {
	id := GameID(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllGames {
		if id == known {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGame, s)
}

// Position represents row,col coordinates on a grid
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Step returns the neighbouring position in the given direction
func (p Position) Step(d Direction) Position {
	dr, dc := d.Delta()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// Direction is one of the four grid moves
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists every valid direction
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection accepts "up", "down", "left", "right" in any case, plus the
// keyboard names ("ArrowUp" etc.) a browser view forwards
func ParseDirection(s string) (Direction, error) {
	d := strings.ToLower(strings.TrimSpace(s))
	d = strings.TrimPrefix(d, "arrow")
	switch Direction(d) {
	case Up, Down, Left, Right:
		return Direction(d), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Delta returns the row and column offsets of a unit move
func (d Direction) Delta() (dRow, dCol int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	}
	return 0, 0
}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	dr, dc := d.Delta()
	return dr != 0 || dc != 0
}
