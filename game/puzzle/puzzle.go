// Package puzzle implements the tile-swap puzzle: N tiles dealt onto N board
// positions in random order, solved by swapping pairs of tiles until every
// tile sits at its home position.
package puzzle

import (
	"sync"

	"github.com/google/uuid"
	"github.com/wricardo/gift-journey/game/engine"
)

// TileSpec is the content of one tile. Its index in the tile list is its
// home position.
type TileSpec struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Tile is a tile on the board
type Tile struct {
	ID      int    `json:"id"`
	Home    int    `json:"home"`
	Current int    `json:"current"`
	Label   string `json:"label"`
	Color   string `json:"color"`
}

// Selection is the optional first pick of a swap
type Selection struct {
	TileID int  `json:"tile_id"`
	Active bool `json:"active"`
}

// State is a read-only snapshot of a puzzle instance
type State struct {
	InstanceID string    `json:"instance_id"`
	Tiles      []Tile    `json:"tiles"`
	Board      []int     `json:"board"`
	Selection  Selection `json:"selection"`
	Moves      int       `json:"moves"`
	Solved     bool      `json:"solved"`
	Message    string    `json:"message,omitempty"`
}

// Option configures an Engine
type Option func(*Engine)

// WithRand sets the shuffle source
func WithRand(r engine.Rand) Option {
	return func(e *Engine) { e.rand = r }
}

// WithOnComplete registers the completion callback
func WithOnComplete(fn func()) Option {
	return func(e *Engine) { e.onComplete = fn }
}

// WithMessages sets the pool a closing message is drawn from on completion
func WithMessages(messages []string) Option {
	return func(e *Engine) { e.messages = append([]string(nil), messages...) }
}

// Engine is a tile puzzle instance. It is safe for concurrent use.
type Engine struct {
	mu         sync.Mutex
	instanceID string
	specs      []TileSpec
	tiles      []Tile
	selection  Selection
	moves      int
	message    string
	closed     bool
	done       engine.Once

	rand       engine.Rand
	messages   []string
	onComplete func()
}

// ValidateTiles checks a tile list can form a puzzle
func ValidateTiles(specs []TileSpec) error {
	if len(specs) < engine.MinTiles {
		return engine.ConfigErrorf("puzzle: at least %d tiles are required, got %d", engine.MinTiles, len(specs))
	}
	if len(specs) > engine.MaxTiles {
		return engine.ConfigErrorf("puzzle: at most %d tiles allowed, got %d", engine.MaxTiles, len(specs))
	}
	return nil
}

// New validates the tiles and deals a shuffled board
func New(specs []TileSpec, opts ...Option) (*Engine, error) {
	if err := ValidateTiles(specs); err != nil {
		return nil, err
	}

	e := &Engine{
		specs: append([]TileSpec(nil), specs...),
		rand:  engine.DefaultRand(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.mu.Lock()
	e.deal()
	e.mu.Unlock()
	return e, nil
}

// deal assigns home = index and shuffles current positions. A draw that
// equals the solved arrangement is redrawn.
func (e *Engine) deal() {
	n := len(e.specs)
	e.tiles = make([]Tile, n)
	for i, s := range e.specs {
		e.tiles[i] = Tile{ID: i, Home: i, Current: i, Label: s.Label, Color: s.Color}
	}

	for {
		perm := engine.Perm(e.rand, n)
		for i := range e.tiles {
			e.tiles[i].Current = perm[i]
		}
		if !e.solved() {
			break
		}
	}

	e.instanceID = uuid.NewString()
	e.selection = Selection{}
	e.moves = 0
	e.message = ""
	e.done.Reset()
}

func (e *Engine) solved() bool {
	for _, t := range e.tiles {
		if t.Current != t.Home {
			return false
		}
	}
	return true
}

// SelectTile selects a tile or, when another tile is already selected, swaps
// the two. It reports false when the input is ignored.
func (e *Engine) SelectTile(id int) bool {
	e.mu.Lock()
	accepted, completed := e.selectTile(id)
	onComplete := e.onComplete
	e.mu.Unlock()

	if completed {
		engine.Notify(onComplete)
	}
	return accepted
}

func (e *Engine) selectTile(id int) (accepted, completed bool) {
	if e.closed || e.done.Fired() || id < 0 || id >= len(e.tiles) {
		return false, false
	}
	if !e.selection.Active {
		e.selection = Selection{TileID: id, Active: true}
		return true, false
	}
	if e.selection.TileID == id {
		return false, false
	}

	a, b := &e.tiles[e.selection.TileID], &e.tiles[id]
	a.Current, b.Current = b.Current, a.Current
	e.moves++
	e.selection = Selection{}

	if !e.solved() {
		return true, false
	}
	if msg, ok := engine.Pick(e.rand, e.messages); ok {
		e.message = msg
	}
	return true, e.done.Arm()
}

// Reshuffle restarts the board before it is solved. After completion it is
// ignored.
func (e *Engine) Reshuffle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.done.Fired() {
		return false
	}
	e.deal()
	return true
}

// NewGame deals a fresh board whether or not the current one is solved
func (e *Engine) NewGame() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false
	}
	e.deal()
	return true
}

// Close tears the instance down; further input is ignored
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

// Board maps each position to the id of the tile occupying it
func (e *Engine) Board() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board()
}

func (e *Engine) board() []int {
	board := make([]int, len(e.tiles))
	for _, t := range e.tiles {
		board[t.Current] = t.ID
	}
	return board
}

// Hint returns the solved arrangement, tiles ordered by position
func (e *Engine) Hint() []Tile {
	e.mu.Lock()
	defer e.mu.Unlock()

	hint := make([]Tile, len(e.tiles))
	for _, t := range e.tiles {
		t.Current = t.Home
		hint[t.Home] = t
	}
	return hint
}

// Snapshot returns a deep copy of the current state
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	tiles := make([]Tile, len(e.tiles))
	copy(tiles, e.tiles)
	return State{
		InstanceID: e.instanceID,
		Tiles:      tiles,
		Board:      e.board(),
		Selection:  e.selection,
		Moves:      e.moves,
		Solved:     e.done.Fired(),
		Message:    e.message,
	}
}

// Moves returns the number of swaps made
func (e *Engine) Moves() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moves
}

// IsSolved reports whether the puzzle has been completed
func (e *Engine) IsSolved() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done.Fired()
}
