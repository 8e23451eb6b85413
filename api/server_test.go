package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/gift-journey/game/config"
	"github.com/wricardo/gift-journey/game/engine"
	"github.com/wricardo/gift-journey/game/journey"
	"github.com/wricardo/gift-journey/game/puzzle"
	"github.com/wricardo/gift-journey/game/service"
	"github.com/wricardo/gift-journey/game/session"
	"github.com/wricardo/gift-journey/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, contentID string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Journey Navigation
	StartJourneyFunc func(ctx context.Context, sessionID string) (*service.SessionState, error)
	GetJourneyFunc   func(ctx context.Context, sessionID string) (*journey.Status, error)
	EnterGameFunc    func(ctx context.Context, sessionID, game string) (*service.SessionState, error)
	LeaveGameFunc    func(ctx context.Context, sessionID string) (*service.SessionState, error)
	GetGameStateFunc func(ctx context.Context, sessionID string) (*service.SessionState, error)
	RestartFunc      func(ctx context.Context, sessionID string) (*service.ActionResult, error)

	// Mini-game Input
	RevealFunc     func(ctx context.Context, sessionID string, cardID int) (*service.ActionResult, error)
	SelectTileFunc func(ctx context.Context, sessionID string, tileID int) (*service.ActionResult, error)
	ReshuffleFunc  func(ctx context.Context, sessionID string) (*service.ActionResult, error)
	PuzzleHintFunc func(ctx context.Context, sessionID string) ([]puzzle.Tile, error)
	MoveFunc       func(ctx context.Context, sessionID, direction string) (*service.ActionResult, error)
	SwipeFunc      func(ctx context.Context, sessionID string, dx, dy float64) (*service.ActionResult, error)
	BulkMoveFunc   func(ctx context.Context, sessionID string, moves []string) (*service.BulkMoveResult, error)
	AnswerFunc     func(ctx context.Context, sessionID string, option int) (*service.ActionResult, error)

	// Finale
	OpenFinaleFunc   func(ctx context.Context, sessionID string) (*service.FinaleView, error)
	RevealSecretFunc func(ctx context.Context, sessionID string) (*service.FinaleView, error)

	// Content
	ListContentFunc func(ctx context.Context) ([]*config.ContentInfo, error)
	LoadContentFunc func(ctx context.Context, contentID string) (*config.Content, error)
	SaveContentFunc func(ctx context.Context, contentID string, content *config.Content) error
}

func okResult(sessionID string) *service.ActionResult {
	return &service.ActionResult{Accepted: true, State: &service.SessionState{SessionID: sessionID}}
}

func (m *MockGameService) CreateSession(ctx context.Context, contentID string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, contentID)
	}
	return &service.SessionInfo{ID: "test-session", ContentID: contentID, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ContentID: "default", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) StartJourney(ctx context.Context, sessionID string) (*service.SessionState, error) {
	if m.StartJourneyFunc != nil {
		return m.StartJourneyFunc(ctx, sessionID)
	}
	return &service.SessionState{SessionID: sessionID}, nil
}

func (m *MockGameService) GetJourney(ctx context.Context, sessionID string) (*journey.Status, error) {
	if m.GetJourneyFunc != nil {
		return m.GetJourneyFunc(ctx, sessionID)
	}
	return &journey.Status{Screen: journey.ScreenMap}, nil
}

func (m *MockGameService) EnterGame(ctx context.Context, sessionID, game string) (*service.SessionState, error) {
	if m.EnterGameFunc != nil {
		return m.EnterGameFunc(ctx, sessionID, game)
	}
	return &service.SessionState{SessionID: sessionID}, nil
}

func (m *MockGameService) LeaveGame(ctx context.Context, sessionID string) (*service.SessionState, error) {
	if m.LeaveGameFunc != nil {
		return m.LeaveGameFunc(ctx, sessionID)
	}
	return &service.SessionState{SessionID: sessionID}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*service.SessionState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &service.SessionState{SessionID: sessionID}, nil
}

func (m *MockGameService) Restart(ctx context.Context, sessionID string) (*service.ActionResult, error) {
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx, sessionID)
	}
	return okResult(sessionID), nil
}

func (m *MockGameService) Reveal(ctx context.Context, sessionID string, cardID int) (*service.ActionResult, error) {
	if m.RevealFunc != nil {
		return m.RevealFunc(ctx, sessionID, cardID)
	}
	return okResult(sessionID), nil
}

func (m *MockGameService) SelectTile(ctx context.Context, sessionID string, tileID int) (*service.ActionResult, error) {
	if m.SelectTileFunc != nil {
		return m.SelectTileFunc(ctx, sessionID, tileID)
	}
	return okResult(sessionID), nil
}

func (m *MockGameService) Reshuffle(ctx context.Context, sessionID string) (*service.ActionResult, error) {
	if m.ReshuffleFunc != nil {
		return m.ReshuffleFunc(ctx, sessionID)
	}
	return okResult(sessionID), nil
}

func (m *MockGameService) PuzzleHint(ctx context.Context, sessionID string) ([]puzzle.Tile, error) {
	if m.PuzzleHintFunc != nil {
		return m.PuzzleHintFunc(ctx, sessionID)
	}
	return []puzzle.Tile{}, nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string) (*service.ActionResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction)
	}
	return okResult(sessionID), nil
}

func (m *MockGameService) Swipe(ctx context.Context, sessionID string, dx, dy float64) (*service.ActionResult, error) {
	if m.SwipeFunc != nil {
		return m.SwipeFunc(ctx, sessionID, dx, dy)
	}
	return okResult(sessionID), nil
}

func (m *MockGameService) BulkMove(ctx context.Context, sessionID string, moves []string) (*service.BulkMoveResult, error) {
	if m.BulkMoveFunc != nil {
		return m.BulkMoveFunc(ctx, sessionID, moves)
	}
	return &service.BulkMoveResult{Success: true, State: &service.SessionState{SessionID: sessionID}}, nil
}

func (m *MockGameService) Answer(ctx context.Context, sessionID string, option int) (*service.ActionResult, error) {
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, sessionID, option)
	}
	return okResult(sessionID), nil
}

func (m *MockGameService) OpenFinale(ctx context.Context, sessionID string) (*service.FinaleView, error) {
	if m.OpenFinaleFunc != nil {
		return m.OpenFinaleFunc(ctx, sessionID)
	}
	return &service.FinaleView{Screen: journey.ScreenFinal}, nil
}

func (m *MockGameService) RevealSecret(ctx context.Context, sessionID string) (*service.FinaleView, error) {
	if m.RevealSecretFunc != nil {
		return m.RevealSecretFunc(ctx, sessionID)
	}
	return &service.FinaleView{Screen: journey.ScreenSecret}, nil
}

func (m *MockGameService) ListContent(ctx context.Context) ([]*config.ContentInfo, error) {
	if m.ListContentFunc != nil {
		return m.ListContentFunc(ctx)
	}
	return []*config.ContentInfo{}, nil
}

func (m *MockGameService) LoadContent(ctx context.Context, contentID string) (*config.Content, error) {
	if m.LoadContentFunc != nil {
		return m.LoadContentFunc(ctx, contentID)
	}
	return config.Default(), nil
}

func (m *MockGameService) SaveContent(ctx context.Context, contentID string, content *config.Content) error {
	if m.SaveContentFunc != nil {
		return m.SaveContentFunc(ctx, contentID, content)
	}
	return nil
}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	return NewServer(mockService, websocket.NewHub())
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("failed to get session x: %w", service.ErrSessionNotFound), http.StatusNotFound},
		{config.ErrContentNotFound, http.StatusNotFound},
		{journey.ErrFinaleLocked, http.StatusConflict},
		{journey.ErrNotStarted, http.StatusConflict},
		{journey.ErrInvalidTransition, http.StatusConflict},
		{service.ErrNoActiveGame, http.StatusConflict},
		{fmt.Errorf("%w: quiz is active", service.ErrWrongGame), http.StatusConflict},
		{engine.ErrUnknownGame, http.StatusBadRequest},
		{engine.ErrUnknownDirection, http.StatusBadRequest},
		{engine.ConfigErrorf("bad"), http.StatusBadRequest},
		{service.ErrNoMoves, http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, got)
			}
		})
	}
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "Create session with default content",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, contentID string) (*service.SessionInfo, error) {
					if contentID != "" {
						t.Errorf("Expected empty content id, got %s", contentID)
					}
					return &service.SessionInfo{ID: "ab12", ContentID: "default"}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12" {
					t.Errorf("Expected session ID ab12, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with specific content",
			requestBody: map[string]string{"content_id": "quick"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, contentID string) (*service.SessionInfo, error) {
					return &service.SessionInfo{ID: "cd34", ContentID: contentID}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ContentID != "quick" {
					t.Errorf("Expected content quick, got %s", resp.ContentID)
				}
			},
		},
		{
			name:        "Unknown content",
			requestBody: map[string]string{"content_id": "nope"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, contentID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: 'nope'", config.ErrContentNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, contentID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %v", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			var body interface{}
			if tt.requestBody != nil {
				body = tt.requestBody
			}
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions", body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "new", CreatedAt: now, LastAccessedAt: now},
				{ID: "mid", CreatedAt: now.Add(-time.Minute), LastAccessedAt: now.Add(-time.Minute)},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
		total   int
	}{
		{"default sort by access desc", "", []string{"new", "mid", "old"}, 3},
		{"created ascending", "?sort=created&order=asc", []string{"old", "mid", "new"}, 3},
		{"limited", "?limit=1", []string{"new"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)
			if resp.Count != len(tt.wantIDs) || resp.Total != tt.total {
				t.Errorf("Expected count %d total %d, got %d %d", len(tt.wantIDs), tt.total, resp.Count, resp.Total)
			}
			for i, id := range tt.wantIDs {
				if resp.Sessions[i].ID != id {
					t.Errorf("Expected session %d to be %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, service.ErrSessionNotFound
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "ab12" {
				return service.ErrSessionNotFound
			}
			return nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/api/sessions/ab12", http.StatusOK},
		{"GET", "/api/sessions/zz99", http.StatusNotFound},
		{"DELETE", "/api/sessions/ab12", http.StatusOK},
		{"DELETE", "/api/sessions/zz99", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest(tt.method, tt.path, nil))
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestJourneyRoutes(t *testing.T) {
	var entered string
	mockService := &MockGameService{
		EnterGameFunc: func(ctx context.Context, sessionID, game string) (*service.SessionState, error) {
			entered = game
			if game == "chess" {
				return nil, fmt.Errorf("%w: %q", engine.ErrUnknownGame, game)
			}
			return &service.SessionState{SessionID: sessionID}, nil
		},
		OpenFinaleFunc: func(ctx context.Context, sessionID string) (*service.FinaleView, error) {
			return nil, journey.ErrFinaleLocked
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"start", "POST", "/api/sessions/ab12/start", http.StatusOK},
		{"journey", "GET", "/api/sessions/ab12/journey", http.StatusOK},
		{"enter maze", "POST", "/api/sessions/ab12/games/maze/enter", http.StatusOK},
		{"enter unknown", "POST", "/api/sessions/ab12/games/chess/enter", http.StatusBadRequest},
		{"leave", "POST", "/api/sessions/ab12/leave", http.StatusOK},
		{"state", "GET", "/api/sessions/ab12/state", http.StatusOK},
		{"restart", "POST", "/api/sessions/ab12/restart", http.StatusOK},
		{"finale locked", "POST", "/api/sessions/ab12/finale", http.StatusConflict},
		{"secret", "POST", "/api/sessions/ab12/finale/secret", http.StatusOK},
		{"health", "GET", "/health", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest(tt.method, tt.path, nil))
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
		})
	}

	if entered != "chess" {
		t.Errorf("Expected game path variable to reach the service, got %q", entered)
	}
}

func TestGameInputHandlers(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		requestBody    interface{}
		setupMock      func(*MockGameService)
		handler        func(*Server) http.HandlerFunc
		expectedStatus int
	}{
		{
			name:        "Reveal card",
			path:        "/memory/reveal",
			requestBody: map[string]int{"card_id": 3},
			setupMock: func(m *MockGameService) {
				m.RevealFunc = func(ctx context.Context, sessionID string, cardID int) (*service.ActionResult, error) {
					if cardID != 3 {
						t.Errorf("Expected card 3, got %d", cardID)
					}
					return okResult(sessionID), nil
				}
			},
			handler:        func(s *Server) http.HandlerFunc { return s.handleReveal },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Reveal without card",
			path:           "/memory/reveal",
			requestBody:    map[string]int{},
			handler:        func(s *Server) http.HandlerFunc { return s.handleReveal },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Reveal in wrong game",
			path:        "/memory/reveal",
			requestBody: map[string]int{"card_id": 0},
			setupMock: func(m *MockGameService) {
				m.RevealFunc = func(ctx context.Context, sessionID string, cardID int) (*service.ActionResult, error) {
					return nil, fmt.Errorf("%w: maze is active, not memory", service.ErrWrongGame)
				}
			},
			handler:        func(s *Server) http.HandlerFunc { return s.handleReveal },
			expectedStatus: http.StatusConflict,
		},
		{
			name:        "Select tile zero",
			path:        "/puzzle/select",
			requestBody: map[string]int{"tile_id": 0},
			setupMock: func(m *MockGameService) {
				m.SelectTileFunc = func(ctx context.Context, sessionID string, tileID int) (*service.ActionResult, error) {
					if tileID != 0 {
						t.Errorf("Expected tile 0, got %d", tileID)
					}
					return okResult(sessionID), nil
				}
			},
			handler:        func(s *Server) http.HandlerFunc { return s.handleSelectTile },
			expectedStatus: http.StatusOK,
		},
		{
			name:        "Move",
			path:        "/maze/move",
			requestBody: map[string]string{"direction": "ArrowDown"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string) (*service.ActionResult, error) {
					if direction != "ArrowDown" {
						t.Errorf("Expected raw direction, got %s", direction)
					}
					return okResult(sessionID), nil
				}
			},
			handler:        func(s *Server) http.HandlerFunc { return s.handleMove },
			expectedStatus: http.StatusOK,
		},
		{
			name:        "Move unknown direction",
			path:        "/maze/move",
			requestBody: map[string]string{"direction": "sideways"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string) (*service.ActionResult, error) {
					return nil, fmt.Errorf("%w: %q", engine.ErrUnknownDirection, direction)
				}
			},
			handler:        func(s *Server) http.HandlerFunc { return s.handleMove },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Swipe",
			path:        "/maze/swipe",
			requestBody: map[string]float64{"dx": -70, "dy": 5},
			setupMock: func(m *MockGameService) {
				m.SwipeFunc = func(ctx context.Context, sessionID string, dx, dy float64) (*service.ActionResult, error) {
					if dx != -70 || dy != 5 {
						t.Errorf("Expected (-70,5), got (%v,%v)", dx, dy)
					}
					return &service.ActionResult{Accepted: true, Direction: engine.Left}, nil
				}
			},
			handler:        func(s *Server) http.HandlerFunc { return s.handleSwipe },
			expectedStatus: http.StatusOK,
		},
		{
			name:        "Bulk move",
			path:        "/maze/bulk",
			requestBody: map[string][]string{"moves": {"down", "down"}},
			setupMock: func(m *MockGameService) {
				m.BulkMoveFunc = func(ctx context.Context, sessionID string, moves []string) (*service.BulkMoveResult, error) {
					if len(moves) != 2 {
						t.Errorf("Expected 2 moves, got %d", len(moves))
					}
					return &service.BulkMoveResult{MovesExecuted: 2, RequestedMoves: 2, Success: true}, nil
				}
			},
			handler:        func(s *Server) http.HandlerFunc { return s.handleBulkMove },
			expectedStatus: http.StatusOK,
		},
		{
			name:        "Bulk move empty",
			path:        "/maze/bulk",
			requestBody: map[string][]string{"moves": {}},
			setupMock: func(m *MockGameService) {
				m.BulkMoveFunc = func(ctx context.Context, sessionID string, moves []string) (*service.BulkMoveResult, error) {
					return nil, service.ErrNoMoves
				}
			},
			handler:        func(s *Server) http.HandlerFunc { return s.handleBulkMove },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Answer",
			path:        "/quiz/answer",
			requestBody: map[string]int{"option": 2},
			setupMock: func(m *MockGameService) {
				m.AnswerFunc = func(ctx context.Context, sessionID string, option int) (*service.ActionResult, error) {
					if option != 2 {
						t.Errorf("Expected option 2, got %d", option)
					}
					return okResult(sessionID), nil
				}
			},
			handler:        func(s *Server) http.HandlerFunc { return s.handleAnswer },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Answer with invalid body",
			path:           "/quiz/answer",
			requestBody:    "not json",
			handler:        func(s *Server) http.HandlerFunc { return s.handleAnswer },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Answer without a game",
			path: "/quiz/answer",
			setupMock: func(m *MockGameService) {
				m.AnswerFunc = func(ctx context.Context, sessionID string, option int) (*service.ActionResult, error) {
					return nil, service.ErrNoActiveGame
				}
			},
			requestBody:    map[string]int{"option": 0},
			handler:        func(s *Server) http.HandlerFunc { return s.handleAnswer },
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions/ab12"+tt.path, tt.requestBody)
			req = mux.SetURLVars(req, map[string]string{"id": "ab12"})

			tt.handler(server)(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestPuzzleHint(t *testing.T) {
	mockService := &MockGameService{
		PuzzleHintFunc: func(ctx context.Context, sessionID string) ([]puzzle.Tile, error) {
			return []puzzle.Tile{{ID: 1, Home: 0, Current: 0, Label: "E"}}, nil
		},
	}
	server := setupTestServer(mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/puzzle/hint", nil))

	var resp struct {
		Tiles []puzzle.Tile `json:"tiles"`
	}
	parseResponse(t, w, &resp)
	if len(resp.Tiles) != 1 || resp.Tiles[0].Label != "E" {
		t.Errorf("Expected hint tiles, got %+v", resp.Tiles)
	}
}

func TestContentHandlers(t *testing.T) {
	var saved string
	mockService := &MockGameService{
		ListContentFunc: func(ctx context.Context) ([]*config.ContentInfo, error) {
			return []*config.ContentInfo{{ContentID: "default"}, {ContentID: "quick"}}, nil
		},
		LoadContentFunc: func(ctx context.Context, contentID string) (*config.Content, error) {
			if contentID != "quick" {
				return nil, config.ErrContentNotFound
			}
			return config.Default(), nil
		},
		SaveContentFunc: func(ctx context.Context, contentID string, content *config.Content) error {
			saved = contentID
			return config.ValidateContent(content)
		},
	}
	server := setupTestServer(mockService)

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/content", nil))
		var resp []*config.ContentInfo
		parseResponse(t, w, &resp)
		if len(resp) != 2 {
			t.Errorf("Expected 2 bundles, got %d", len(resp))
		}
	})

	t.Run("get strips extension", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/content/quick.json", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/content/missing", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("save", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := map[string]interface{}{"content_id": "mine", "content": config.Default()}
		server.ServeHTTP(w, makeRequest("POST", "/api/content", body))
		if w.Code != http.StatusCreated {
			t.Errorf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		if saved != "mine" {
			t.Errorf("Expected content saved as mine, got %s", saved)
		}
	})

	t.Run("save invalid", func(t *testing.T) {
		bad := config.Default()
		bad.Maze.Layout = []string{"S#", "#G"}
		w := httptest.NewRecorder()
		body := map[string]interface{}{"content_id": "bad", "content": bad}
		server.ServeHTTP(w, makeRequest("POST", "/api/content", body))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockGameService) {
				m.GetGameStateFunc = func(ctx context.Context, sessionID string) (*service.SessionState, error) {
					return nil, service.ErrSessionNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.handleWebSocket(w, httptest.NewRequest("GET", "/ws"+tt.queryParams, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

// TestJourneyOverHTTP drives a real service through the router
func TestJourneyOverHTTP(t *testing.T) {
	contents, err := config.NewManager("")
	if err != nil {
		t.Fatalf("Failed to create content manager: %v", err)
	}
	svc := service.NewGameService(session.NewManager(), contents,
		service.WithScheduler(engine.NewManualScheduler()),
	)
	ts := httptest.NewServer(NewServer(svc, nil))
	defer ts.Close()

	post := func(path string, body interface{}, target interface{}) int {
		t.Helper()
		data, _ := json.Marshal(body)
		resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
		if err != nil {
			t.Fatalf("POST %s failed: %v", path, err)
		}
		defer resp.Body.Close()
		if target != nil {
			json.NewDecoder(resp.Body).Decode(target)
		}
		return resp.StatusCode
	}

	var info service.SessionInfo
	if code := post("/api/sessions", map[string]string{}, &info); code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", code)
	}
	if code := post("/api/sessions/"+info.ID+"/games/maze/enter", nil, nil); code != http.StatusConflict {
		t.Errorf("Expected 409 before the journey starts, got %d", code)
	}
	post("/api/sessions/"+info.ID+"/start", nil, nil)

	var state service.SessionState
	if code := post("/api/sessions/"+info.ID+"/games/maze/enter", nil, &state); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if state.Game == nil || state.Game.Maze == nil {
		t.Fatal("Expected a maze snapshot")
	}

	var result service.ActionResult
	post("/api/sessions/"+info.ID+"/maze/move", map[string]string{"direction": "up"}, &result)
	if result.Accepted {
		t.Error("Expected a move into the top wall to be rejected")
	}
	if result.State.Game.Maze.Moves != 0 {
		t.Errorf("Expected rejected move not counted, got %d", result.State.Game.Maze.Moves)
	}
}
