// Package maze implements the grid maze mini-game: the player walks from the
// start cell to the goal cell one orthogonal step at a time, by keyboard
// direction or by swipe gesture.
package maze

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/gift-journey/game/engine"
)

// MaxHistory is how many recent move attempts an instance keeps
const MaxHistory = 200

// MoveEntry records a single move attempt
type MoveEntry struct {
	MoveNumber int              `json:"move_number"`
	Direction  engine.Direction `json:"direction"`
	From       engine.Position  `json:"from"`
	To         engine.Position  `json:"to"`
	Success    bool             `json:"success"`
	Timestamp  int64            `json:"timestamp"`
}

// State is a read-only snapshot of a maze instance
type State struct {
	InstanceID    string             `json:"instance_id"`
	Layout        []string           `json:"layout"`
	Rows          int                `json:"rows"`
	Cols          int                `json:"cols"`
	Player        engine.Position    `json:"player"`
	Start         engine.Position    `json:"start"`
	Goal          engine.Position    `json:"goal"`
	Moves         int                `json:"moves"`
	Complete      bool               `json:"complete"`
	PossibleMoves []engine.Direction `json:"possible_moves"`
	LastMove      *MoveEntry         `json:"last_move,omitempty"`
}

// Option configures an Engine
type Option func(*Engine)

// WithSwipeThreshold sets the minimum gesture length along the dominant axis
func WithSwipeThreshold(threshold float64) Option {
	return func(e *Engine) { e.threshold = threshold }
}

// WithOnComplete registers the completion callback
func WithOnComplete(fn func()) Option {
	return func(e *Engine) { e.onComplete = fn }
}

// Engine is a maze instance. It is safe for concurrent use.
type Engine struct {
	mu         sync.Mutex
	instanceID string
	grid       Grid
	start      engine.Position
	goal       engine.Position
	player     engine.Position
	moves      int
	attempts   int
	history    []MoveEntry
	closed     bool
	done       engine.Once

	threshold  float64
	onComplete func()
}

// New validates the grid and places the player on the start cell
func New(grid Grid, opts ...Option) (*Engine, error) {
	if err := ValidateGrid(grid); err != nil {
		return nil, err
	}

	e := &Engine{
		grid:      grid.Clone(),
		threshold: engine.DefaultSwipeThreshold,
	}
	e.start, _ = e.grid.Find(Start)
	e.goal, _ = e.grid.Find(Goal)
	for _, opt := range opts {
		opt(e)
	}

	e.mu.Lock()
	e.reset()
	e.mu.Unlock()
	return e, nil
}

// NewFromLayout parses a legend layout and builds an engine from it
func NewFromLayout(layout []string, opts ...Option) (*Engine, error) {
	grid, err := ParseGrid(layout)
	if err != nil {
		return nil, err
	}
	return New(grid, opts...)
}

func (e *Engine) reset() {
	e.instanceID = uuid.NewString()
	e.player = e.start
	e.moves = 0
	e.attempts = 0
	e.history = nil
	e.done.Reset()
}

// Reset returns the player to the start as a fresh instance
func (e *Engine) Reset() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false
	}
	e.reset()
	return true
}

// Move steps the player one cell. Moves into walls or off the grid, and any
// move after completion, are rejected and not counted.
func (e *Engine) Move(d engine.Direction) bool {
	e.mu.Lock()
	accepted, completed := e.move(d)
	onComplete := e.onComplete
	e.mu.Unlock()

	if completed {
		engine.Notify(onComplete)
	}
	return accepted
}

func (e *Engine) move(d engine.Direction) (accepted, completed bool) {
	if e.closed || e.done.Fired() || !d.Valid() {
		return false, false
	}

	from := e.player
	to := from.Step(d)
	if !e.grid.Passable(to) {
		e.record(d, from, to, false)
		return false, false
	}

	e.player = to
	e.moves++
	e.record(d, from, to, true)
	if to == e.goal {
		return true, e.done.Arm()
	}
	return true, false
}

func (e *Engine) record(d engine.Direction, from, to engine.Position, success bool) {
	e.attempts++
	if len(e.history) >= MaxHistory {
		copy(e.history, e.history[1:])
		e.history = e.history[:len(e.history)-1]
	}
	e.history = append(e.history, MoveEntry{
		MoveNumber: e.attempts,
		Direction:  d,
		From:       from,
		To:         to,
		Success:    success,
		Timestamp:  time.Now().Unix(),
	})
}

// Normalize maps a drag vector to a direction. The dominant axis wins and its
// magnitude must exceed threshold; positive dy points down the screen.
func Normalize(dx, dy, threshold float64) (engine.Direction, bool) {
	if math.Abs(dx) > math.Abs(dy) {
		switch {
		case dx > threshold:
			return engine.Right, true
		case dx < -threshold:
			return engine.Left, true
		}
		return "", false
	}
	switch {
	case dy > threshold:
		return engine.Down, true
	case dy < -threshold:
		return engine.Up, true
	}
	return "", false
}

// Swipe normalises a gesture and applies the resulting move. It returns the
// recognised direction (empty when the gesture was too short) and whether the
// move was accepted.
func (e *Engine) Swipe(dx, dy float64) (engine.Direction, bool) {
	e.mu.Lock()
	threshold := e.threshold
	e.mu.Unlock()

	d, ok := Normalize(dx, dy, threshold)
	if !ok {
		return "", false
	}
	return d, e.Move(d)
}

// CanMove reports whether a move in direction d would be accepted
func (e *Engine) CanMove(d engine.Direction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.closed && !e.done.Fired() && d.Valid() && e.grid.Passable(e.player.Step(d))
}

// PossibleMoves returns every direction currently open to the player
func (e *Engine) PossibleMoves() []engine.Direction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.possibleMoves()
}

func (e *Engine) possibleMoves() []engine.Direction {
	moves := []engine.Direction{}
	if e.closed || e.done.Fired() {
		return moves
	}
	for _, d := range engine.Directions {
		if e.grid.Passable(e.player.Step(d)) {
			moves = append(moves, d)
		}
	}
	return moves
}

// ShortestPath returns a minimal move sequence from the player to the goal
func (e *Engine) ShortestPath() ([]engine.Direction, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid.ShortestPath(e.player, e.goal)
}

// Close tears the instance down; further input is ignored
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

// Snapshot returns a deep copy of the current state
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := State{
		InstanceID:    e.instanceID,
		Layout:        e.grid.Layout(),
		Rows:          e.grid.Rows(),
		Cols:          e.grid.Cols(),
		Player:        e.player,
		Start:         e.start,
		Goal:          e.goal,
		Moves:         e.moves,
		Complete:      e.done.Fired(),
		PossibleMoves: e.possibleMoves(),
	}
	if n := len(e.history); n > 0 {
		last := e.history[n-1]
		state.LastMove = &last
	}
	return state
}

// History returns the most recent move attempts since the last reset, up to
// MaxHistory, oldest first
func (e *Engine) History() []MoveEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]MoveEntry(nil), e.history...)
}

// Position returns the player position
func (e *Engine) Position() engine.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.player
}

// Moves returns the number of successful moves
func (e *Engine) Moves() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moves
}

// IsComplete reports whether the player reached the goal
func (e *Engine) IsComplete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done.Fired()
}
