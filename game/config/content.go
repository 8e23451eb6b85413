package config

import (
	"fmt"
	"time"

	"github.com/wricardo/gift-journey/game/engine"
	"github.com/wricardo/gift-journey/game/maze"
	"github.com/wricardo/gift-journey/game/memory"
	"github.com/wricardo/gift-journey/game/puzzle"
	"github.com/wricardo/gift-journey/game/quiz"
)

// Content is everything a journey shows: the cards, questions, maze and
// tiles of each mini-game plus the finale copy
type Content struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Memory      MemoryContent `json:"memory"`
	Quiz        QuizContent   `json:"quiz"`
	Maze        MazeContent   `json:"maze"`
	Puzzle      PuzzleContent `json:"puzzle"`
	Finale      FinaleContent `json:"finale"`
	Timing      Timing        `json:"timing"`
}

type MemoryContent struct {
	Images []string `json:"images"`
}

type QuizContent struct {
	Questions []quiz.Question `json:"questions"`
}

type MazeContent struct {
	Layout         []string `json:"layout"`
	SwipeThreshold float64  `json:"swipe_threshold,omitempty"`
}

type PuzzleContent struct {
	Tiles    []puzzle.TileSpec `json:"tiles"`
	Messages []string          `json:"messages,omitempty"`
}

// FinaleContent is the letter shown once every game is complete and the
// secret revealed after it
type FinaleContent struct {
	Letter           string `json:"letter"`
	Signature        string `json:"signature,omitempty"`
	SecretInvitation string `json:"secret_invitation"`
	SecretQuestion   string `json:"secret_question"`
	SecretPromise    string `json:"secret_promise,omitempty"`
	SecretAccepted   string `json:"secret_accepted"`
}

// Timing holds the delays of the timed transitions, in milliseconds. Zero
// means the engine default.
type Timing struct {
	MismatchDelayMS int `json:"mismatch_delay_ms,omitempty"`
	AnswerDelayMS   int `json:"answer_delay_ms,omitempty"`
}

// MismatchDelay returns how long a mismatched memory pair stays face up
func (t Timing) MismatchDelay() time.Duration {
	if t.MismatchDelayMS <= 0 {
		return engine.DefaultMismatchDelay
	}
	return time.Duration(t.MismatchDelayMS) * time.Millisecond
}

// AnswerDelay returns how long a quiz answer is shown before advancing
func (t Timing) AnswerDelay() time.Duration {
	if t.AnswerDelayMS <= 0 {
		return engine.DefaultAnswerDelay
	}
	return time.Duration(t.AnswerDelayMS) * time.Millisecond
}

// Threshold returns the maze gesture threshold
func (m MazeContent) Threshold() float64 {
	if m.SwipeThreshold <= 0 {
		return engine.DefaultSwipeThreshold
	}
	return m.SwipeThreshold
}

// ContentInfo describes an available content bundle
type ContentInfo struct {
	Filename    string `json:"filename"`
	ContentID   string `json:"content_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Pairs       int    `json:"pairs"`
	Questions   int    `json:"questions"`
	MazeRows    int    `json:"maze_rows"`
	MazeCols    int    `json:"maze_cols"`
	Tiles       int    `json:"tiles"`
}

// Info summarises the bundle for listings
func (c *Content) Info(id, filename string) *ContentInfo {
	info := &ContentInfo{
		Filename:    filename,
		ContentID:   id,
		Name:        c.Name,
		Description: c.Description,
		Pairs:       len(c.Memory.Images),
		Questions:   len(c.Quiz.Questions),
		MazeRows:    len(c.Maze.Layout),
		Tiles:       len(c.Puzzle.Tiles),
	}
	if len(c.Maze.Layout) > 0 {
		info.MazeCols = len(c.Maze.Layout[0])
	}
	return info
}

// ValidateContent checks every section of a bundle
func ValidateContent(c *Content) error {
	if c == nil {
		return fmt.Errorf("content validation: content is nil")
	}
	if c.Name == "" {
		return fmt.Errorf("content validation: name is required")
	}
	if err := memory.ValidateKeys(c.Memory.Images); err != nil {
		return fmt.Errorf("content validation: %w", err)
	}
	if err := quiz.Validate(c.Quiz.Questions); err != nil {
		return fmt.Errorf("content validation: %w", err)
	}
	if _, err := maze.ParseGrid(c.Maze.Layout); err != nil {
		return fmt.Errorf("content validation: %w", err)
	}
	if c.Maze.SwipeThreshold < 0 {
		return fmt.Errorf("content validation: maze.swipe_threshold must not be negative, got %v", c.Maze.SwipeThreshold)
	}
	if err := puzzle.ValidateTiles(c.Puzzle.Tiles); err != nil {
		return fmt.Errorf("content validation: %w", err)
	}
	if c.Finale.Letter == "" {
		return fmt.Errorf("content validation: finale.letter is required")
	}
	if c.Finale.SecretQuestion == "" {
		return fmt.Errorf("content validation: finale.secret_question is required")
	}

	maxMS := int(engine.MaxDelay / time.Millisecond)
	if c.Timing.MismatchDelayMS < 0 || c.Timing.MismatchDelayMS > maxMS {
		return fmt.Errorf("content validation: timing.mismatch_delay_ms must be between 0 and %d, got %d", maxMS, c.Timing.MismatchDelayMS)
	}
	if c.Timing.AnswerDelayMS < 0 || c.Timing.AnswerDelayMS > maxMS {
		return fmt.Errorf("content validation: timing.answer_delay_ms must be between 0 and %d, got %d", maxMS, c.Timing.AnswerDelayMS)
	}
	return nil
}
