// Package memory implements the memory-match mini-game: a shuffled deck of
// image pairs, revealed two at a time, with mismatches hidden again after a
// short delay.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/gift-journey/game/engine"
)

// Card is one face of the deck. Cards id and id+P share a content key.
type Card struct {
	ID         int    `json:"id"`
	ContentKey string `json:"content_key"`
	Revealed   bool   `json:"revealed"`
	Matched    bool   `json:"matched"`
}

// State is a read-only snapshot of a game instance
type State struct {
	InstanceID   string `json:"instance_id"`
	Cards        []Card `json:"cards"`
	Pending      []int  `json:"pending"`
	MatchedPairs int    `json:"matched_pairs"`
	TotalPairs   int    `json:"total_pairs"`
	Moves        int    `json:"moves"`
	Resolving    bool   `json:"resolving"`
	Complete     bool   `json:"complete"`
}

// Option configures an Engine
type Option func(*Engine)

// WithRand sets the shuffle source
func WithRand(r engine.Rand) Option {
	return func(e *Engine) { e.rand = r }
}

// WithScheduler sets the clock used to hide mismatched pairs
func WithScheduler(s engine.Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithMismatchDelay sets how long a mismatched pair stays face up
func WithMismatchDelay(d time.Duration) Option {
	return func(e *Engine) { e.delay = d }
}

// WithOnComplete registers the completion callback
func WithOnComplete(fn func()) Option {
	return func(e *Engine) { e.onComplete = fn }
}

// WithOnChange registers a callback fired after a delayed hide
func WithOnChange(fn func()) Option {
	return func(e *Engine) { e.onChange = fn }
}

// Engine is a memory-match game instance. It is safe for concurrent use.
type Engine struct {
	mu         sync.Mutex
	instanceID string
	keys       []string
	cards      []Card      // display order
	index      map[int]int // card id -> position in cards
	pending    []int
	matched    int
	moves      int
	hideTimer  engine.Timer
	gen        uint64
	closed     bool
	done       engine.Once

	rand       engine.Rand
	sched      engine.Scheduler
	delay      time.Duration
	onComplete func()
	onChange   func()
}

// ValidateKeys checks a content key list can form a deck
func ValidateKeys(keys []string) error {
	if len(keys) == 0 {
		return engine.ConfigErrorf("memory: at least one image key is required")
	}
	if len(keys) > engine.MaxPairs {
		return engine.ConfigErrorf("memory: at most %d image keys allowed, got %d", engine.MaxPairs, len(keys))
	}
	seen := make(map[string]bool, len(keys))
	for i, k := range keys {
		if k == "" {
			return engine.ConfigErrorf("memory: image key %d is empty", i+1)
		}
		if seen[k] {
			return engine.ConfigErrorf("memory: image key %q appears more than once, every key must form exactly one pair", k)
		}
		seen[k] = true
	}
	return nil
}

// New validates keys and deals a fresh shuffled deck of 2*len(keys) cards
func New(keys []string, opts ...Option) (*Engine, error) {
	if err := ValidateKeys(keys); err != nil {
		return nil, err
	}

	e := &Engine{
		rand:  engine.DefaultRand(),
		sched: engine.RealScheduler{},
		delay: engine.DefaultMismatchDelay,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.mu.Lock()
	e.deal(keys)
	e.mu.Unlock()
	return e, nil
}

// NewGame restarts the instance with fresh content. Any pending hide is
// cancelled.
func (e *Engine) NewGame(keys []string) error {
	if err := ValidateKeys(keys); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return engine.ErrClosed
	}
	e.deal(keys)
	return nil
}

func (e *Engine) deal(keys []string) {
	e.stopTimer()
	e.gen++
	e.instanceID = uuid.NewString()
	e.keys = append([]string(nil), keys...)

	p := len(keys)
	deck := make([]Card, 0, 2*p)
	for copyIdx := 0; copyIdx < 2; copyIdx++ {
		for i, k := range keys {
			deck = append(deck, Card{ID: copyIdx*p + i, ContentKey: k})
		}
	}
	e.cards = engine.Shuffle(e.rand, deck)

	e.index = make(map[int]int, len(e.cards))
	for i, c := range e.cards {
		e.index[c.ID] = i
	}
	e.pending = nil
	e.matched = 0
	e.moves = 0
	e.done.Reset()
}

// Reveal turns a card face up. It reports false when the input is ignored:
// two cards already pending, unknown id, card matched or already revealed,
// game complete or closed.
func (e *Engine) Reveal(cardID int) bool {
	e.mu.Lock()
	accepted, completed := e.reveal(cardID)
	onComplete := e.onComplete
	e.mu.Unlock()

	if completed {
		engine.Notify(onComplete)
	}
	return accepted
}

func (e *Engine) reveal(cardID int) (accepted, completed bool) {
	if e.closed || e.done.Fired() || len(e.pending) >= 2 {
		return false, false
	}
	i, ok := e.index[cardID]
	if !ok {
		return false, false
	}
	card := &e.cards[i]
	if card.Matched || card.Revealed {
		return false, false
	}

	card.Revealed = true
	e.pending = append(e.pending, cardID)
	if len(e.pending) < 2 {
		return true, false
	}
	return true, e.resolve()
}

// resolve settles a full pending pair and reports whether the game just
// completed
func (e *Engine) resolve() bool {
	e.moves++
	a := &e.cards[e.index[e.pending[0]]]
	b := &e.cards[e.index[e.pending[1]]]

	if a.ContentKey == b.ContentKey {
		a.Matched, b.Matched = true, true
		e.matched++
		e.pending = nil
		if e.matched == len(e.keys) {
			return e.done.Arm()
		}
		return false
	}

	// Mismatch: the pair stays pending until the hide fires.
	gen := e.gen
	pair := [2]int{e.pending[0], e.pending[1]}
	e.hideTimer = e.sched.AfterFunc(e.delay, func() { e.hide(gen, pair) })
	return false
}

func (e *Engine) hide(gen uint64, pair [2]int) {
	e.mu.Lock()
	if e.closed || gen != e.gen {
		e.mu.Unlock()
		return
	}
	for _, id := range pair {
		if c := &e.cards[e.index[id]]; !c.Matched {
			c.Revealed = false
		}
	}
	e.pending = nil
	e.hideTimer = nil
	onChange := e.onChange
	e.mu.Unlock()

	engine.Notify(onChange)
}

func (e *Engine) stopTimer() {
	if e.hideTimer != nil {
		e.hideTimer.Stop()
		e.hideTimer = nil
	}
}

// Close tears the instance down. Pending hides are cancelled and further
// input is ignored.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	e.gen++
	e.stopTimer()
}

// Snapshot returns a deep copy of the current state
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	cards := make([]Card, len(e.cards))
	copy(cards, e.cards)
	return State{
		InstanceID:   e.instanceID,
		Cards:        cards,
		Pending:      append([]int{}, e.pending...),
		MatchedPairs: e.matched,
		TotalPairs:   len(e.keys),
		Moves:        e.moves,
		Resolving:    len(e.pending) == 2,
		Complete:     e.done.Fired(),
	}
}

// Moves returns the number of resolved pair attempts
func (e *Engine) Moves() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moves
}

// MatchedPairs returns the number of pairs found so far
func (e *Engine) MatchedPairs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matched
}

// IsComplete reports whether every pair has been matched
func (e *Engine) IsComplete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done.Fired()
}

// InstanceID identifies the current deal
func (e *Engine) InstanceID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.instanceID
}
