// Package journey tracks which mini-games of a gift journey are complete and
// which screen the player is on. It is the single writer of that state.
package journey

import (
	"errors"
	"fmt"
	"sync"

	"github.com/wricardo/gift-journey/game/engine"
)

// Screen is a view of the journey
type Screen string

const (
	ScreenIntro  Screen = "intro"
	ScreenMap    Screen = "map"
	ScreenFinal  Screen = "final"
	ScreenSecret Screen = "secret"
)

// GameScreen returns the screen that hosts a mini-game
func GameScreen(id engine.GameID) Screen {
	return Screen(id)
}

var (
	ErrFinaleLocked      = errors.New("finale locked: not every game is complete")
	ErrNotStarted        = errors.New("journey not started")
	ErrInvalidTransition = errors.New("invalid screen transition")
)

// GameStatus reports one mini-game's progress
type GameStatus struct {
	ID        engine.GameID `json:"id"`
	Completed bool          `json:"completed"`
}

// Status is a read-only snapshot of the journey
type Status struct {
	Screen         Screen       `json:"screen"`
	Games          []GameStatus `json:"games"`
	Completed      int          `json:"completed"`
	Total          int          `json:"total"`
	FinaleUnlocked bool         `json:"finale_unlocked"`
}

// Journey holds the completion map and current screen. It is safe for
// concurrent use.
type Journey struct {
	mu        sync.RWMutex
	order     []engine.GameID
	completed map[engine.GameID]bool
	screen    Screen
}

// New tracks the given games in order, or every game when none are given
func New(ids ...engine.GameID) *Journey {
	if len(ids) == 0 {
		ids = engine.AllGames
	}
	j := &Journey{
		completed: make(map[engine.GameID]bool, len(ids)),
		screen:    ScreenIntro,
	}
	for _, id := range ids {
		if _, dup := j.completed[id]; dup {
			continue
		}
		j.order = append(j.order, id)
		j.completed[id] = false
	}
	return j
}

// Tracks reports whether id is part of this journey
func (j *Journey) Tracks(id engine.GameID) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, ok := j.completed[id]
	return ok
}

// MarkComplete records a game as complete and returns control to the map.
// It reports whether the completion map changed; repeated calls are no-ops.
func (j *Journey) MarkComplete(id engine.GameID) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	done, ok := j.completed[id]
	if !ok {
		return false
	}
	if j.screen == GameScreen(id) {
		j.screen = ScreenMap
	}
	if done {
		return false
	}
	j.completed[id] = true
	return true
}

// IsComplete reports whether a game has been completed
func (j *Journey) IsComplete(id engine.GameID) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.completed[id]
}

// AllComplete reports whether every tracked game is complete
func (j *Journey) AllComplete() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.allComplete()
}

func (j *Journey) allComplete() bool {
	for _, done := range j.completed {
		if !done {
			return false
		}
	}
	return true
}

// Start moves from the intro to the map. Later calls are no-ops.
func (j *Journey) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.screen == ScreenIntro {
		j.screen = ScreenMap
	}
}

// Enter navigates to a screen. Game screens need a started journey, the final
// screen needs every game complete, and the secret screen is only reachable
// from the final one.
func (j *Journey) Enter(s Screen) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	switch s {
	case ScreenIntro:
		return fmt.Errorf("%w: cannot return to %s", ErrInvalidTransition, s)
	case ScreenMap:
		if j.screen == ScreenIntro {
			return ErrNotStarted
		}
	case ScreenFinal:
		if !j.allComplete() {
			return ErrFinaleLocked
		}
	case ScreenSecret:
		if j.screen != ScreenFinal && j.screen != ScreenSecret {
			return fmt.Errorf("%w: %s is only reachable from %s", ErrInvalidTransition, s, ScreenFinal)
		}
	default:
		if _, ok := j.completed[engine.GameID(s)]; !ok {
			return fmt.Errorf("%w: %q", engine.ErrUnknownGame, s)
		}
		if j.screen == ScreenIntro {
			return ErrNotStarted
		}
	}

	j.screen = s
	return nil
}

// RevealSecret moves from the final screen to the secret one
func (j *Journey) RevealSecret() error {
	return j.Enter(ScreenSecret)
}

// Screen returns the current screen
func (j *Journey) Screen() Screen {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.screen
}

// Status returns a snapshot with games in their tracked order
func (j *Journey) Status() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()

	st := Status{
		Screen: j.screen,
		Games:  make([]GameStatus, 0, len(j.order)),
		Total:  len(j.order),
	}
	for _, id := range j.order {
		done := j.completed[id]
		st.Games = append(st.Games, GameStatus{ID: id, Completed: done})
		if done {
			st.Completed++
		}
	}
	st.FinaleUnlocked = j.allComplete()
	return st
}
