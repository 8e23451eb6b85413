package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/gift-journey/game/config"
	"github.com/wricardo/gift-journey/game/engine"
	"github.com/wricardo/gift-journey/game/journey"
	"github.com/wricardo/gift-journey/game/service"
)

// Hub is the websocket side of the server
type Hub interface {
	ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, initial interface{})
}

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil, which disables /ws.
func NewServer(gameService service.GameService, hub Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Journey navigation
	api.HandleFunc("/sessions/{id}/start", s.handleStartJourney).Methods("POST")
	api.HandleFunc("/sessions/{id}/journey", s.handleGetJourney).Methods("GET")
	api.HandleFunc("/sessions/{id}/games/{game}/enter", s.handleEnterGame).Methods("POST")
	api.HandleFunc("/sessions/{id}/leave", s.handleLeaveGame).Methods("POST")
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/restart", s.handleRestart).Methods("POST")

	// Mini-game input
	api.HandleFunc("/sessions/{id}/memory/reveal", s.handleReveal).Methods("POST")
	api.HandleFunc("/sessions/{id}/puzzle/select", s.handleSelectTile).Methods("POST")
	api.HandleFunc("/sessions/{id}/puzzle/reshuffle", s.handleReshuffle).Methods("POST")
	api.HandleFunc("/sessions/{id}/puzzle/hint", s.handlePuzzleHint).Methods("GET")
	api.HandleFunc("/sessions/{id}/maze/move", s.handleMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/maze/swipe", s.handleSwipe).Methods("POST")
	api.HandleFunc("/sessions/{id}/maze/bulk", s.handleBulkMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/quiz/answer", s.handleAnswer).Methods("POST")

	// Finale
	api.HandleFunc("/sessions/{id}/finale", s.handleOpenFinale).Methods("POST")
	api.HandleFunc("/sessions/{id}/finale/secret", s.handleRevealSecret).Methods("POST")

	// Content
	api.HandleFunc("/content", s.handleListContent).Methods("GET")
	api.HandleFunc("/content", s.handleSaveContent).Methods("POST")
	api.HandleFunc("/content/{name}", s.handleGetContent).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// logRequests logs every request with its duration
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"error": message, "code": status})
}

// respondServiceError maps service sentinels to status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, config.ErrContentNotFound):
		return http.StatusNotFound
	case errors.Is(err, journey.ErrFinaleLocked),
		errors.Is(err, journey.ErrNotStarted),
		errors.Is(err, journey.ErrInvalidTransition),
		errors.Is(err, service.ErrNoActiveGame),
		errors.Is(err, service.ErrWrongGame):
		return http.StatusConflict
	case errors.Is(err, engine.ErrUnknownGame),
		errors.Is(err, engine.ErrUnknownDirection),
		errors.Is(err, engine.ErrInvalidConfig),
		errors.Is(err, config.ErrInvalidContent),
		errors.Is(err, service.ErrNoMoves):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContentID string `json:"content_id,omitempty"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	info, err := s.service.CreateSession(r.Context(), req.ContentID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Journey Handlers

func (s *Server) handleStartJourney(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.StartJourney(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleGetJourney(w http.ResponseWriter, r *http.Request) {
	status, err := s.service.GetJourney(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleEnterGame(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	state, err := s.service.EnterGame(r.Context(), vars["id"], vars["game"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleLeaveGame(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.LeaveGame(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.respondAction(w, r, func(ctx context.Context, id string) (*service.ActionResult, error) {
		return s.service.Restart(ctx, id)
	})
}

// Mini-game Handlers

// respondAction runs one mini-game input and writes its result
func (s *Server) respondAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, sessionID string) (*service.ActionResult, error)) {
	sessionID := mux.Vars(r)["id"]
	result, err := fn(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if len(result.Events) > 0 {
		log.Info().Str("session", sessionID).Str("event", result.Events[0].Type).Str("game", string(result.Events[0].Game)).Msg("action completed game")
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CardID *int `json:"card_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.CardID == nil {
		respondError(w, http.StatusBadRequest, "card_id is required")
		return
	}
	s.respondAction(w, r, func(ctx context.Context, id string) (*service.ActionResult, error) {
		return s.service.Reveal(ctx, id, *req.CardID)
	})
}

func (s *Server) handleSelectTile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TileID *int `json:"tile_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.TileID == nil {
		respondError(w, http.StatusBadRequest, "tile_id is required")
		return
	}
	s.respondAction(w, r, func(ctx context.Context, id string) (*service.ActionResult, error) {
		return s.service.SelectTile(ctx, id, *req.TileID)
	})
}

func (s *Server) handleReshuffle(w http.ResponseWriter, r *http.Request) {
	s.respondAction(w, r, func(ctx context.Context, id string) (*service.ActionResult, error) {
		return s.service.Reshuffle(ctx, id)
	})
}

func (s *Server) handlePuzzleHint(w http.ResponseWriter, r *http.Request) {
	hint, err := s.service.PuzzleHint(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"tiles": hint})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string `json:"direction"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.respondAction(w, r, func(ctx context.Context, id string) (*service.ActionResult, error) {
		return s.service.Move(ctx, id, req.Direction)
	})
}

func (s *Server) handleSwipe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DX float64 `json:"dx"`
		DY float64 `json:"dy"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.respondAction(w, r, func(ctx context.Context, id string) (*service.ActionResult, error) {
		return s.service.Swipe(ctx, id, req.DX, req.DY)
	})
}

func (s *Server) handleBulkMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Moves []string `json:"moves"`
	}
	if !decode(w, r, &req) {
		return
	}

	result, err := s.service.BulkMove(r.Context(), sessionID, req.Moves)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("session", sessionID).
		Int("executed", result.MovesExecuted).
		Int("requested", result.RequestedMoves).
		Str("stopped", result.StoppedReason).
		Msg("bulk move")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Option *int `json:"option"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Option == nil {
		respondError(w, http.StatusBadRequest, "option is required")
		return
	}
	s.respondAction(w, r, func(ctx context.Context, id string) (*service.ActionResult, error) {
		return s.service.Answer(ctx, id, *req.Option)
	})
}

// Finale Handlers

func (s *Server) handleOpenFinale(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.OpenFinale(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleRevealSecret(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.RevealSecret(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Content Handlers

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	contents, err := s.service.ListContent(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contents)
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	content, err := s.service.LoadContent(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, content)
}

func (s *Server) handleSaveContent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContentID string          `json:"content_id"`
		Content   *config.Content `json:"content"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.ContentID == "" || req.Content == nil {
		respondError(w, http.StatusBadRequest, "content_id and content are required")
		return
	}

	if err := s.service.SaveContent(r.Context(), req.ContentID, req.Content); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Content saved successfully",
		"content_id": req.ContentID,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket disabled", http.StatusNotFound)
		return
	}
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID, state)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
