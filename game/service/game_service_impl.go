package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/gift-journey/game/config"
	"github.com/wricardo/gift-journey/game/engine"
	"github.com/wricardo/gift-journey/game/journey"
	"github.com/wricardo/gift-journey/game/puzzle"
)

// ErrNoMoves is returned by BulkMove when the move list is empty
var ErrNoMoves = errors.New("no moves provided")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	contents ContentManager
	notifier Notifier
	sched    engine.Scheduler
	newRand  func() engine.Rand
	mu       sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithNotifier pushes state changes and events to connected views
func WithNotifier(n Notifier) Option {
	return func(s *gameServiceImpl) { s.notifier = n }
}

// WithScheduler sets the clock every engine's delayed transitions run on
func WithScheduler(sched engine.Scheduler) Option {
	return func(s *gameServiceImpl) { s.sched = sched }
}

// WithRandSource sets the factory giving each engine its random source
func WithRandSource(fn func() engine.Rand) Option {
	return func(s *gameServiceImpl) { s.newRand = fn }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, contents ContentManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		contents: contents,
		sched:    engine.RealScheduler{},
		newRand:  engine.DefaultRand,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new journey session
func (s *gameServiceImpl) CreateSession(ctx context.Context, contentID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var content *config.Content
	if contentID == "" {
		contentID = config.DefaultContentID
		content = s.contents.GetDefault()
	} else {
		var err error
		content, err = s.contents.LoadContent(contentID)
		if err != nil {
			if errors.Is(err, config.ErrContentNotFound) {
				if available, listErr := s.contents.ListContent(); listErr == nil && len(available) > 0 {
					ids := make([]string, 0, len(available))
					for _, info := range available {
						ids = append(ids, info.ContentID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available content: %v", config.ErrContentNotFound, contentID, ids)
				}
			}
			return nil, fmt.Errorf("failed to load content %s: %w", contentID, err)
		}
	}

	sess, err := s.sessions.Create("", contentID, content)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().Str("session", sess.ID).Str("content", contentID).Msg("session created")
	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session, tearing down its active game
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// StartJourney leaves the intro for the map
func (s *gameServiceImpl) StartJourney(ctx context.Context, sessionID string) (*SessionState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Journey.Start()
	state := s.currentState(sess)
	s.pushState(state)
	return state, nil
}

// GetJourney returns the completion map and current screen
func (s *gameServiceImpl) GetJourney(ctx context.Context, sessionID string) (*journey.Status, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	status := sess.Journey.Status()
	return &status, nil
}

// EnterGame starts a fresh instance of a mini-game, discarding any other
// active one
func (s *gameServiceImpl) EnterGame(ctx context.Context, sessionID, game string) (*SessionState, error) {
	id, err := engine.ParseGameID(game)
	if err != nil {
		return nil, err
	}
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	var g *ActiveGame
	hooks := gameHooks{
		onComplete: s.completionHandler(sess, id),
		onChange: func() {
			s.pushState(s.buildState(sess, g))
		},
	}
	g, err = newActiveGame(id, sess.Content, s.newRand(), s.sched, hooks)
	if err != nil {
		return nil, err
	}
	if err := sess.Journey.Enter(journey.GameScreen(id)); err != nil {
		g.Close()
		return nil, err
	}

	sess.closeActive()
	sess.active = g

	log.Info().Str("session", sess.ID).Str("game", string(id)).Msg("game entered")
	state := s.buildState(sess, g)
	s.pushState(state)
	return state, nil
}

// LeaveGame returns to the map without completing the active game
func (s *gameServiceImpl) LeaveGame(ctx context.Context, sessionID string) (*SessionState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.Journey.Enter(journey.ScreenMap); err != nil {
		return nil, err
	}
	if sess.active != nil {
		log.Info().Str("session", sess.ID).Str("game", string(sess.active.ID)).Msg("game left")
	}
	sess.closeActive()

	state := s.buildState(sess, nil)
	s.pushState(state)
	return state, nil
}

// GetGameState returns the journey and active game snapshot
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*SessionState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.currentState(sess), nil
}

// Restart deals a fresh instance of the active game
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(sessionID, "", func(sess *Session, g *ActiveGame) (bool, engine.Direction) {
		return g.Restart(sess.Content), ""
	})
}

// Reveal turns a memory card face up
func (s *gameServiceImpl) Reveal(ctx context.Context, sessionID string, cardID int) (*ActionResult, error) {
	return s.act(sessionID, engine.Memory, func(_ *Session, g *ActiveGame) (bool, engine.Direction) {
		return g.Memory.Reveal(cardID), ""
	})
}

// SelectTile selects or swaps a puzzle tile
func (s *gameServiceImpl) SelectTile(ctx context.Context, sessionID string, tileID int) (*ActionResult, error) {
	return s.act(sessionID, engine.Puzzle, func(_ *Session, g *ActiveGame) (bool, engine.Direction) {
		return g.Puzzle.SelectTile(tileID), ""
	})
}

// Reshuffle restarts the puzzle board before it is solved
func (s *gameServiceImpl) Reshuffle(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(sessionID, engine.Puzzle, func(_ *Session, g *ActiveGame) (bool, engine.Direction) {
		return g.Puzzle.Reshuffle(), ""
	})
}

// PuzzleHint returns the solved arrangement of the active puzzle
func (s *gameServiceImpl) PuzzleHint(ctx context.Context, sessionID string) ([]puzzle.Tile, error) {
	var hint []puzzle.Tile
	err := s.withGame(sessionID, engine.Puzzle, func(_ *Session, g *ActiveGame) {
		hint = g.Puzzle.Hint()
	})
	return hint, err
}

// Move steps the maze player in a direction
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*ActionResult, error) {
	d, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	return s.act(sessionID, engine.Maze, func(_ *Session, g *ActiveGame) (bool, engine.Direction) {
		return g.Maze.Move(d), d
	})
}

// Swipe normalises a drag gesture into a maze move
func (s *gameServiceImpl) Swipe(ctx context.Context, sessionID string, dx, dy float64) (*ActionResult, error) {
	return s.act(sessionID, engine.Maze, func(_ *Session, g *ActiveGame) (bool, engine.Direction) {
		d, ok := g.Maze.Swipe(dx, dy)
		return ok, d
	})
}

// BulkMove executes maze moves in sequence, stopping at the first rejected
// move or when the goal is reached
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string) (*BulkMoveResult, error) {
	if len(moves) == 0 {
		return nil, ErrNoMoves
	}

	result := &BulkMoveResult{RequestedMoves: len(moves), Success: true}
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	dirs := make([]engine.Direction, len(moves))
	for i, m := range moves {
		d, err := engine.ParseDirection(m)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		dirs[i] = d
	}

	err := s.withGame(sessionID, engine.Maze, func(sess *Session, g *ActiveGame) {
		wasComplete := g.IsComplete()
		for i, d := range dirs {
			if g.Maze.IsComplete() {
				result.StoppedReason = "goal reached"
				result.StoppedOnMove = i + 1
				break
			}
			if !g.Maze.Move(d) {
				result.Success = false
				result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, d)
				result.StoppedOnMove = i + 1
				break
			}
			result.MovesExecuted++
		}

		result.State = s.buildState(sess, g)
		if !wasComplete && g.IsComplete() {
			result.Events = append(result.Events, completeEvent(g.ID))
		}
		if result.MovesExecuted > 0 {
			s.pushState(result.State)
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Answer locks in a quiz option
func (s *gameServiceImpl) Answer(ctx context.Context, sessionID string, option int) (*ActionResult, error) {
	return s.act(sessionID, engine.Quiz, func(_ *Session, g *ActiveGame) (bool, engine.Direction) {
		return g.Quiz.Answer(option), ""
	})
}

// OpenFinale shows the closing letter once every game is complete
func (s *gameServiceImpl) OpenFinale(ctx context.Context, sessionID string) (*FinaleView, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.Journey.Enter(journey.ScreenFinal); err != nil {
		return nil, err
	}
	sess.closeActive()

	view := finaleView(sess)
	log.Info().Str("session", sess.ID).Msg("finale opened")
	s.notifyEvent(sess.ID, EventFinaleOpened, view)
	s.pushState(s.buildState(sess, nil))
	return view, nil
}

// RevealSecret moves from the letter to the secret invitation
func (s *gameServiceImpl) RevealSecret(ctx context.Context, sessionID string) (*FinaleView, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Journey.RevealSecret(); err != nil {
		return nil, err
	}

	view := finaleView(sess)
	log.Info().Str("session", sess.ID).Msg("secret revealed")
	s.notifyEvent(sess.ID, EventSecretRevealed, view)
	s.pushState(s.currentState(sess))
	return view, nil
}

// ListContent returns all available content bundles
func (s *gameServiceImpl) ListContent(ctx context.Context) ([]*config.ContentInfo, error) {
	return s.contents.ListContent()
}

// LoadContent loads a specific content bundle
func (s *gameServiceImpl) LoadContent(ctx context.Context, contentID string) (*config.Content, error) {
	return s.contents.LoadContent(contentID)
}

// SaveContent validates and stores a content bundle
func (s *gameServiceImpl) SaveContent(ctx context.Context, contentID string, content *config.Content) error {
	return s.contents.SaveContent(contentID, content)
}

// getSession looks a session up and marks it as accessed
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// withGame runs fn with the session's active game while holding the session
// input lock. want restricts the call to one game; empty accepts any.
func (s *gameServiceImpl) withGame(sessionID string, want engine.GameID, fn func(sess *Session, g *ActiveGame)) error {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	g := sess.active
	if g == nil {
		return ErrNoActiveGame
	}
	if want != "" && g.ID != want {
		return fmt.Errorf("%w: %s is active, not %s", ErrWrongGame, g.ID, want)
	}
	fn(sess, g)
	return nil
}

// act applies one input to the active game and reports the outcome
func (s *gameServiceImpl) act(sessionID string, want engine.GameID, fn func(sess *Session, g *ActiveGame) (bool, engine.Direction)) (*ActionResult, error) {
	var result *ActionResult
	err := s.withGame(sessionID, want, func(sess *Session, g *ActiveGame) {
		wasComplete := g.IsComplete()
		accepted, dir := fn(sess, g)

		result = &ActionResult{
			Accepted:  accepted,
			Direction: dir,
			State:     s.buildState(sess, g),
		}
		if !wasComplete && g.IsComplete() {
			result.Events = append(result.Events, completeEvent(g.ID))
		}
		if accepted {
			s.pushState(result.State)
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// completionHandler is wired into every engine as its completion callback.
// It runs with the engine unlocked and only touches the journey, which has
// its own lock.
func (s *gameServiceImpl) completionHandler(sess *Session, id engine.GameID) func() {
	return func() {
		changed := sess.Journey.MarkComplete(id)
		status := sess.Journey.Status()

		log.Info().
			Str("session", sess.ID).
			Str("game", string(id)).
			Bool("first_completion", changed).
			Int("completed", status.Completed).
			Int("total", status.Total).
			Msg("game complete")

		s.notifyEvent(sess.ID, EventGameComplete, GameCompleteData{Game: id, Journey: status})
	}
}

func completeEvent(id engine.GameID) GameEvent {
	return GameEvent{
		Type:      EventGameComplete,
		Game:      id,
		Message:   fmt.Sprintf("%s complete", id),
		Timestamp: time.Now(),
	}
}

// currentState snapshots the session, taking the input lock to read the
// active game
func (s *gameServiceImpl) currentState(sess *Session) *SessionState {
	sess.mu.Lock()
	g := sess.active
	sess.mu.Unlock()
	return s.buildState(sess, g)
}

func (s *gameServiceImpl) buildState(sess *Session, g *ActiveGame) *SessionState {
	state := &SessionState{
		SessionID: sess.ID,
		Journey:   sess.Journey.Status(),
	}
	if g != nil {
		state.Game = g.View()
	}
	return state
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ContentID:      sess.ContentID,
		ContentName:    sess.Content.Name,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		Journey:        sess.Journey.Status(),
		ActiveGame:     sess.ActiveGameID(),
	}
}

func (s *gameServiceImpl) pushState(state *SessionState) {
	if s.notifier != nil {
		s.notifier.BroadcastToSession(state.SessionID, state)
	}
}

func (s *gameServiceImpl) notifyEvent(sessionID, event string, data interface{}) {
	if s.notifier != nil {
		s.notifier.BroadcastEvent(sessionID, event, data)
	}
}

// finaleView renders the finale copy for the journey's current screen
func finaleView(sess *Session) *FinaleView {
	f := sess.Content.Finale
	view := &FinaleView{
		Screen:    sess.Journey.Screen(),
		Letter:    f.Letter,
		Signature: f.Signature,
	}
	if view.Screen == journey.ScreenSecret {
		view.SecretInvitation = f.SecretInvitation
		view.SecretQuestion = f.SecretQuestion
		view.SecretPromise = f.SecretPromise
		view.SecretAccepted = f.SecretAccepted
	}
	return view
}
