package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wricardo/gift-journey/game/engine"
	"github.com/wricardo/gift-journey/game/journey"
	"github.com/wricardo/gift-journey/game/service"
)

// Client drives one journey session over the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (c *Client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return &APIError{Status: resp.StatusCode, Message: errResp.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func (c *Client) path(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) CreateSession(contentID string) (*service.SessionInfo, error) {
	body := map[string]string{}
	if contentID != "" {
		body["content_id"] = contentID
	}

	var info service.SessionInfo
	if err := c.do("POST", "/api/sessions", body, &info); err != nil {
		return nil, err
	}
	c.sessionID = info.ID
	return &info, nil
}

func (c *Client) GetSession() (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do("GET", c.path(""), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) Journey() (*journey.Status, error) {
	var status journey.Status
	if err := c.do("GET", c.path("/journey"), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Start() (*service.SessionState, error) {
	return c.stateCall("POST", "/start")
}

func (c *Client) Enter(game engine.GameID) (*service.SessionState, error) {
	return c.stateCall("POST", "/games/"+string(game)+"/enter")
}

func (c *Client) Leave() (*service.SessionState, error) {
	return c.stateCall("POST", "/leave")
}

func (c *Client) State() (*service.SessionState, error) {
	return c.stateCall("GET", "/state")
}

func (c *Client) stateCall(method, suffix string) (*service.SessionState, error) {
	var state service.SessionState
	if err := c.do(method, c.path(suffix), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) action(suffix string, body interface{}) (*service.ActionResult, error) {
	var result service.ActionResult
	if err := c.do("POST", c.path(suffix), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Reveal(cardID int) (*service.ActionResult, error) {
	return c.action("/memory/reveal", map[string]int{"card_id": cardID})
}

func (c *Client) SelectTile(tileID int) (*service.ActionResult, error) {
	return c.action("/puzzle/select", map[string]int{"tile_id": tileID})
}

func (c *Client) Answer(option int) (*service.ActionResult, error) {
	return c.action("/quiz/answer", map[string]int{"option": option})
}

func (c *Client) BulkMove(moves []engine.Direction) (*service.BulkMoveResult, error) {
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = string(m)
	}

	var result service.BulkMoveResult
	if err := c.do("POST", c.path("/maze/bulk"), map[string]interface{}{"moves": names}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) OpenFinale() (*service.FinaleView, error) {
	var view service.FinaleView
	if err := c.do("POST", c.path("/finale"), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) RevealSecret() (*service.FinaleView, error) {
	var view service.FinaleView
	if err := c.do("POST", c.path("/finale/secret"), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}
