package service

import (
	"time"

	"github.com/wricardo/gift-journey/game/engine"
	"github.com/wricardo/gift-journey/game/journey"
	"github.com/wricardo/gift-journey/game/maze"
	"github.com/wricardo/gift-journey/game/memory"
	"github.com/wricardo/gift-journey/game/puzzle"
	"github.com/wricardo/gift-journey/game/quiz"
)

// Websocket event names
const (
	EventStateUpdate    = "state_update"
	EventGameComplete   = "game_complete"
	EventFinaleOpened   = "finale_opened"
	EventSecretRevealed = "secret_revealed"
)

// SessionInfo provides information about a journey session
type SessionInfo struct {
	ID             string         `json:"id"`
	ContentID      string         `json:"content_id"`
	ContentName    string         `json:"content_name"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	Journey        journey.Status `json:"journey"`
	ActiveGame     engine.GameID  `json:"active_game,omitempty"`
}

// GameView is the snapshot of one mini-game; exactly one engine field is set
type GameView struct {
	Game     engine.GameID `json:"game"`
	Complete bool          `json:"complete"`
	Memory   *memory.State `json:"memory,omitempty"`
	Quiz     *quiz.State   `json:"quiz,omitempty"`
	Maze     *maze.State   `json:"maze,omitempty"`
	Puzzle   *puzzle.State `json:"puzzle,omitempty"`
}

// SessionState is the full view pushed to clients after every change
type SessionState struct {
	SessionID string         `json:"session_id"`
	Journey   journey.Status `json:"journey"`
	Game      *GameView      `json:"game,omitempty"`
}

// ActionResult contains the result of a mini-game input
type ActionResult struct {
	Accepted  bool             `json:"accepted"`
	Direction engine.Direction `json:"direction,omitempty"`
	State     *SessionState    `json:"state"`
	Events    []GameEvent      `json:"events,omitempty"`
}

// BulkMoveResult contains the result of a sequence of maze moves
type BulkMoveResult struct {
	MovesExecuted  int           `json:"moves_executed"`
	RequestedMoves int           `json:"requested_moves"`
	Success        bool          `json:"success"`
	StoppedReason  string        `json:"stopped_reason,omitempty"`
	StoppedOnMove  int           `json:"stopped_on_move,omitempty"` // 1-based index of the move that caused stop
	Truncated      bool          `json:"truncated,omitempty"`
	Limit          int           `json:"limit,omitempty"`
	State          *SessionState `json:"state"`
	Events         []GameEvent   `json:"events,omitempty"`
}

// GameEvent represents something notable that happened during play
type GameEvent struct {
	Type      string        `json:"type"` // "game_complete", "finale_opened", "secret_revealed"
	Game      engine.GameID `json:"game,omitempty"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

// FinaleView is the closing letter, plus the secret once revealed
type FinaleView struct {
	Screen           journey.Screen `json:"screen"`
	Letter           string         `json:"letter"`
	Signature        string         `json:"signature,omitempty"`
	SecretInvitation string         `json:"secret_invitation,omitempty"`
	SecretQuestion   string         `json:"secret_question,omitempty"`
	SecretPromise    string         `json:"secret_promise,omitempty"`
	SecretAccepted   string         `json:"secret_accepted,omitempty"`
}

// GameCompleteData is the payload of a game_complete event
type GameCompleteData struct {
	Game    engine.GameID  `json:"game"`
	Journey journey.Status `json:"journey"`
}
