package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/gift-journey/game/config"
	"github.com/wricardo/gift-journey/game/engine"
	"github.com/wricardo/gift-journey/game/journey"
	"github.com/wricardo/gift-journey/game/puzzle"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoActiveGame    = errors.New("no active game")
	ErrWrongGame       = errors.New("active game does not accept this action")
)

// GameService defines all journey operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, contentID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Journey Navigation
	StartJourney(ctx context.Context, sessionID string) (*SessionState, error)
	GetJourney(ctx context.Context, sessionID string) (*journey.Status, error)
	EnterGame(ctx context.Context, sessionID, game string) (*SessionState, error)
	LeaveGame(ctx context.Context, sessionID string) (*SessionState, error)
	GetGameState(ctx context.Context, sessionID string) (*SessionState, error)
	Restart(ctx context.Context, sessionID string) (*ActionResult, error)

	// Mini-game Input
	Reveal(ctx context.Context, sessionID string, cardID int) (*ActionResult, error)
	SelectTile(ctx context.Context, sessionID string, tileID int) (*ActionResult, error)
	Reshuffle(ctx context.Context, sessionID string) (*ActionResult, error)
	PuzzleHint(ctx context.Context, sessionID string) ([]puzzle.Tile, error)
	Move(ctx context.Context, sessionID, direction string) (*ActionResult, error)
	Swipe(ctx context.Context, sessionID string, dx, dy float64) (*ActionResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string) (*BulkMoveResult, error)
	Answer(ctx context.Context, sessionID string, option int) (*ActionResult, error)

	// Finale
	OpenFinale(ctx context.Context, sessionID string) (*FinaleView, error)
	RevealSecret(ctx context.Context, sessionID string) (*FinaleView, error)

	// Content
	ListContent(ctx context.Context) ([]*config.ContentInfo, error)
	LoadContent(ctx context.Context, contentID string) (*config.Content, error)
	SaveContent(ctx context.Context, contentID string, content *config.Content) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, contentID string, content *config.Content) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ContentManager handles content bundle loading
type ContentManager interface {
	LoadContent(name string) (*config.Content, error)
	ListContent() ([]*config.ContentInfo, error)
	GetDefault() *config.Content
	SaveContent(name string, content *config.Content) error
}

// Notifier pushes state to connected views. The websocket hub implements it.
type Notifier interface {
	BroadcastToSession(sessionID string, state interface{})
	BroadcastEvent(sessionID, event string, data interface{})
}

// Session represents one player's journey
type Session struct {
	ID        string
	ContentID string
	Content   *config.Content
	Journey   *journey.Journey
	CreatedAt time.Time

	accessMu     sync.RWMutex
	lastAccessed time.Time

	// mu serialises input to the active game
	mu     sync.Mutex
	active *ActiveGame
}

// NewSession creates a session at the journey intro
func NewSession(id, contentID string, content *config.Content) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		ContentID:    contentID,
		Content:      content,
		Journey:      journey.New(engine.AllGames...),
		CreatedAt:    now,
		lastAccessed: now,
	}
}

// Touch records an access at t
func (s *Session) Touch(t time.Time) {
	s.accessMu.Lock()
	s.lastAccessed = t
	s.accessMu.Unlock()
}

// LastAccessed returns when the session was last used
func (s *Session) LastAccessed() time.Time {
	s.accessMu.RLock()
	defer s.accessMu.RUnlock()
	return s.lastAccessed
}

// ActiveGameID returns the game currently being played, if any
func (s *Session) ActiveGameID() engine.GameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ""
	}
	return s.active.ID
}

// CloseActive tears down the active mini-game
func (s *Session) CloseActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeActive()
}

func (s *Session) closeActive() {
	if s.active != nil {
		s.active.Close()
		s.active = nil
	}
}
