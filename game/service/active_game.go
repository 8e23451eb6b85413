package service

import (
	"fmt"

	"github.com/wricardo/gift-journey/game/config"
	"github.com/wricardo/gift-journey/game/engine"
	"github.com/wricardo/gift-journey/game/maze"
	"github.com/wricardo/gift-journey/game/memory"
	"github.com/wricardo/gift-journey/game/puzzle"
	"github.com/wricardo/gift-journey/game/quiz"
)

// ActiveGame is the mini-game instance a session is currently playing.
// Exactly one engine field is set, matching ID.
type ActiveGame struct {
	ID     engine.GameID
	Memory *memory.Engine
	Quiz   *quiz.Engine
	Maze   *maze.Engine
	Puzzle *puzzle.Engine
}

// gameHooks are the callbacks wired into every engine
type gameHooks struct {
	onComplete func()
	onChange   func()
}

// newActiveGame builds a fresh engine for id from the session content
func newActiveGame(id engine.GameID, content *config.Content, r engine.Rand, sched engine.Scheduler, hooks gameHooks) (*ActiveGame, error) {
	g := &ActiveGame{ID: id}

	var err error
	switch id {
	case engine.Memory:
		g.Memory, err = memory.New(content.Memory.Images,
			memory.WithRand(r),
			memory.WithScheduler(sched),
			memory.WithMismatchDelay(content.Timing.MismatchDelay()),
			memory.WithOnComplete(hooks.onComplete),
			memory.WithOnChange(hooks.onChange),
		)
	case engine.Quiz:
		g.Quiz, err = quiz.New(content.Quiz.Questions,
			quiz.WithScheduler(sched),
			quiz.WithAnswerDelay(content.Timing.AnswerDelay()),
			quiz.WithOnComplete(hooks.onComplete),
			quiz.WithOnChange(hooks.onChange),
		)
	case engine.Maze:
		var grid maze.Grid
		grid, err = maze.ParseGrid(content.Maze.Layout)
		if err == nil {
			g.Maze, err = maze.New(grid,
				maze.WithSwipeThreshold(content.Maze.Threshold()),
				maze.WithOnComplete(hooks.onComplete),
			)
		}
	case engine.Puzzle:
		g.Puzzle, err = puzzle.New(content.Puzzle.Tiles,
			puzzle.WithRand(r),
			puzzle.WithMessages(content.Puzzle.Messages),
			puzzle.WithOnComplete(hooks.onComplete),
		)
	default:
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownGame, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", id, err)
	}
	return g, nil
}

// Close tears the engine down, cancelling pending timers
func (g *ActiveGame) Close() {
	switch {
	case g.Memory != nil:
		g.Memory.Close()
	case g.Quiz != nil:
		g.Quiz.Close()
	case g.Maze != nil:
		g.Maze.Close()
	case g.Puzzle != nil:
		g.Puzzle.Close()
	}
}

// IsComplete reports whether the engine raised its completion signal
func (g *ActiveGame) IsComplete() bool {
	switch {
	case g.Memory != nil:
		return g.Memory.IsComplete()
	case g.Quiz != nil:
		return g.Quiz.IsComplete()
	case g.Maze != nil:
		return g.Maze.IsComplete()
	case g.Puzzle != nil:
		return g.Puzzle.IsSolved()
	}
	return false
}

// View snapshots the engine
func (g *ActiveGame) View() *GameView {
	view := &GameView{Game: g.ID}
	switch {
	case g.Memory != nil:
		st := g.Memory.Snapshot()
		view.Memory, view.Complete = &st, st.Complete
	case g.Quiz != nil:
		st := g.Quiz.Snapshot()
		view.Quiz, view.Complete = &st, st.Phase == quiz.PhaseComplete
	case g.Maze != nil:
		st := g.Maze.Snapshot()
		view.Maze, view.Complete = &st, st.Complete
	case g.Puzzle != nil:
		st := g.Puzzle.Snapshot()
		view.Puzzle, view.Complete = &st, st.Solved
	}
	return view
}

// Restart deals a fresh instance of the same game
func (g *ActiveGame) Restart(content *config.Content) bool {
	switch {
	case g.Memory != nil:
		return g.Memory.NewGame(content.Memory.Images) == nil
	case g.Quiz != nil:
		return g.Quiz.Restart()
	case g.Maze != nil:
		return g.Maze.Reset()
	case g.Puzzle != nil:
		return g.Puzzle.NewGame()
	}
	return false
}
