package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/gift-journey/game/engine"
	"github.com/wricardo/gift-journey/game/maze"
	"github.com/wricardo/gift-journey/game/memory"
	"github.com/wricardo/gift-journey/game/puzzle"
	"github.com/wricardo/gift-journey/game/quiz"
	"github.com/wricardo/gift-journey/game/service"
)

var errNoProgress = errors.New("no progress")

// Player solves each mini-game using only what the game has shown it
type Player struct {
	client *Client

	// wait blocks while a timed transition runs; tests swap in a virtual clock
	wait     func(time.Duration)
	poll     time.Duration
	maxPolls int
	delay    time.Duration
	maxSteps int
}

func NewPlayer(client *Client) *Player {
	return &Player{
		client:   client,
		wait:     time.Sleep,
		poll:     250 * time.Millisecond,
		maxPolls: 80,
		maxSteps: 1000,
	}
}

func (p *Player) pause() {
	if p.delay > 0 {
		p.wait(p.delay)
	}
}

// waitFor polls the game state until done reports true
func (p *Player) waitFor(done func(*service.GameView) bool) (*service.GameView, error) {
	for i := 0; i < p.maxPolls; i++ {
		p.wait(p.poll)
		state, err := p.client.State()
		if err != nil {
			return nil, err
		}
		if state.Game == nil {
			return nil, fmt.Errorf("game closed while waiting")
		}
		if done(state.Game) {
			return state.Game, nil
		}
	}
	return nil, fmt.Errorf("%w: timed transition never finished", errNoProgress)
}

// Play enters a game and solves it
func (p *Player) Play(game engine.GameID) error {
	state, err := p.client.Enter(game)
	if err != nil {
		return fmt.Errorf("enter %s: %w", game, err)
	}
	if state.Game == nil {
		return fmt.Errorf("enter %s: no active game", game)
	}

	switch game {
	case engine.Memory:
		return p.playMemory(state.Game.Memory)
	case engine.Quiz:
		return p.playQuiz(state.Game.Quiz)
	case engine.Maze:
		return p.playMaze(state.Game.Maze)
	case engine.Puzzle:
		return p.playPuzzle(state.Game.Puzzle)
	}
	return fmt.Errorf("%w: %s", engine.ErrUnknownGame, game)
}

func memoryView(result *service.ActionResult) (*memory.State, error) {
	if result.State == nil || result.State.Game == nil || result.State.Game.Memory == nil {
		return nil, fmt.Errorf("memory: missing state in response")
	}
	return result.State.Game.Memory, nil
}

// playMemory remembers every card it has seen face up and matches from
// memory, revealing unseen cards otherwise
func (p *Player) playMemory(st *memory.State) error {
	seen := make(map[int]string)

	for step := 0; !st.Complete; step++ {
		if step > p.maxSteps {
			return fmt.Errorf("memory: %w after %d steps", errNoProgress, step)
		}

		for _, c := range st.Cards {
			if c.Matched {
				delete(seen, c.ID)
			} else if c.Revealed {
				seen[c.ID] = c.ContentKey
			}
		}

		if st.Resolving {
			view, err := p.waitFor(func(g *service.GameView) bool { return g.Memory != nil && !g.Memory.Resolving })
			if err != nil {
				return err
			}
			st = view.Memory
			continue
		}

		cardID, ok := nextMemoryCard(st, seen)
		if !ok {
			return fmt.Errorf("memory: no card left to reveal")
		}
		result, err := p.client.Reveal(cardID)
		if err != nil {
			return err
		}
		if st, err = memoryView(result); err != nil {
			return err
		}
		p.pause()
	}

	log.Info().Int("moves", st.Moves).Int("pairs", st.TotalPairs).Msg("memory solved")
	return nil
}

// nextMemoryCard picks the card to reveal from what has been seen so far
func nextMemoryCard(st *memory.State, seen map[int]string) (int, bool) {
	faceDown := func(id int) bool {
		for _, c := range st.Cards {
			if c.ID == id {
				return !c.Revealed && !c.Matched
			}
		}
		return false
	}
	unseen := func(exclude int) (int, bool) {
		for _, c := range st.Cards {
			if c.ID == exclude || c.Matched || c.Revealed {
				continue
			}
			if _, known := seen[c.ID]; !known {
				return c.ID, true
			}
		}
		for _, c := range st.Cards {
			if c.ID != exclude && !c.Matched && !c.Revealed {
				return c.ID, true
			}
		}
		return 0, false
	}

	if len(st.Pending) == 1 {
		pending := st.Pending[0]
		key := seen[pending]
		for id, k := range seen {
			if id != pending && k == key && faceDown(id) {
				return id, true
			}
		}
		return unseen(pending)
	}

	byKey := make(map[string][]int)
	for id, k := range seen {
		if faceDown(id) {
			byKey[k] = append(byKey[k], id)
		}
	}
	for _, ids := range byKey {
		if len(ids) >= 2 {
			return ids[0], true
		}
	}
	return unseen(-1)
}

// playQuiz has no answer key: it picks the first option, notes the answer the
// quiz reveals and lets the quiz move on
func (p *Player) playQuiz(st *quiz.State) error {
	for step := 0; st.Phase != quiz.PhaseComplete; step++ {
		if step > p.maxSteps {
			return fmt.Errorf("quiz: %w after %d steps", errNoProgress, step)
		}

		if st.Phase == quiz.PhaseRevealing {
			index := st.Index
			view, err := p.waitFor(func(g *service.GameView) bool {
				return g.Quiz != nil && (g.Quiz.Phase != quiz.PhaseRevealing || g.Quiz.Index != index)
			})
			if err != nil {
				return err
			}
			st = view.Quiz
			continue
		}

		result, err := p.client.Answer(0)
		if err != nil {
			return err
		}
		if result.State == nil || result.State.Game == nil || result.State.Game.Quiz == nil {
			return fmt.Errorf("quiz: missing state in response")
		}
		st = result.State.Game.Quiz
		if st.CorrectOption != nil {
			log.Debug().Int("question", st.Index+1).Int("correct", *st.CorrectOption).Msg("answer revealed")
		}
		p.pause()
	}

	log.Info().Int("score", st.Score).Int("total", st.Total).Str("tier", string(st.Tier)).Msg("quiz finished")
	return nil
}

// playMaze plans the shortest route and walks it in bulk moves
func (p *Player) playMaze(st *maze.State) error {
	grid, err := maze.ParseGrid(st.Layout)
	if err != nil {
		return fmt.Errorf("maze: %w", err)
	}
	route, ok := grid.ShortestPath(st.Player, st.Goal)
	if !ok {
		return fmt.Errorf("maze: goal unreachable")
	}
	log.Info().Int("moves", len(route)).Msg("maze route planned")

	for len(route) > 0 {
		chunk := route
		if len(chunk) > engine.MaxBulkMoves {
			chunk = chunk[:engine.MaxBulkMoves]
		}
		result, err := p.client.BulkMove(chunk)
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("maze: stopped on move %d: %s", result.StoppedOnMove, result.StoppedReason)
		}
		route = route[len(chunk):]
		p.pause()
	}
	return nil
}

// playPuzzle fixes one board position per swap
func (p *Player) playPuzzle(st *puzzle.State) error {
	for step := 0; !st.Solved; step++ {
		if step > p.maxSteps {
			return fmt.Errorf("puzzle: %w after %d steps", errNoProgress, step)
		}

		a, b, ok := nextSwap(st)
		if !ok {
			return fmt.Errorf("puzzle: nothing to swap but not solved")
		}
		if _, err := p.client.SelectTile(a); err != nil {
			return err
		}
		result, err := p.client.SelectTile(b)
		if err != nil {
			return err
		}
		if result.State == nil || result.State.Game == nil || result.State.Game.Puzzle == nil {
			return fmt.Errorf("puzzle: missing state in response")
		}
		st = result.State.Game.Puzzle
		p.pause()
	}

	log.Info().Int("moves", st.Moves).Str("message", st.Message).Msg("puzzle solved")
	return nil
}

// nextSwap finds the first misplaced position and the tile that belongs there
func nextSwap(st *puzzle.State) (int, int, bool) {
	home := make(map[int]int, len(st.Tiles))
	belongs := make(map[int]int, len(st.Tiles))
	for _, t := range st.Tiles {
		home[t.ID] = t.Home
		belongs[t.Home] = t.ID
	}
	for pos, tileID := range st.Board {
		if home[tileID] != pos {
			return tileID, belongs[pos], true
		}
	}
	return 0, 0, false
}
