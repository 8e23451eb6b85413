package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/gift-journey/game/config"
	"github.com/wricardo/gift-journey/game/journey"
	"github.com/wricardo/gift-journey/game/puzzle"
	"github.com/wricardo/gift-journey/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Gift Journey",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Gift Journey - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Complete the four mini-games (memory, quiz, maze, puzzle) in any order, then
open the finale letter and reveal the secret.

FLOW:
create_session -> start_journey -> enter_game -> play -> (back on the map
automatically when a game completes) -> open_finale -> reveal_secret

Use game_instructions for the rules of each mini-game. Inputs that the game
ignores (a matched card, a wall, an answer while the result is showing) are
reported as "ignored", not as errors.`),
	)

	c.registerTools()
}

func sessionProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

// sessionTool builds a tool taking a session_id plus the given properties
func sessionTool(name, description string, props map[string]interface{}, required ...string) mcp.Tool {
	properties := map[string]interface{}{"session_id": sessionProp()}
	for k, v := range props {
		properties[k] = v
	}
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   append([]string{"session_id"}, required...),
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new journey session with optional content selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"content_id": map[string]interface{}{
					"type":        "string",
					"description": "Content bundle to use (optional, see list_content)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active journey sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_content",
		Description: "List available content bundles",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListContent)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the journey and every mini-game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	// Journey navigation
	c.mcpServer.AddTool(sessionTool("journey_status", "Show which games are complete and the current screen", nil), c.handleJourneyStatus)
	c.mcpServer.AddTool(sessionTool("start_journey", "Leave the intro screen for the map", nil), c.handleStartJourney)
	c.mcpServer.AddTool(sessionTool("enter_game", "Start a fresh instance of a mini-game", map[string]interface{}{
		"game": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"memory", "quiz", "maze", "puzzle"},
			"description": "Mini-game to enter",
		},
	}, "game"), c.handleEnterGame)
	c.mcpServer.AddTool(sessionTool("leave_game", "Return to the map without completing the active game", nil), c.handleLeaveGame)
	c.mcpServer.AddTool(sessionTool("game_state", "Get the journey and the active mini-game state", nil), c.handleGameState)
	c.mcpServer.AddTool(sessionTool("restart_game", "Deal a fresh instance of the active mini-game", nil), c.handleRestart)

	// Mini-game input
	c.mcpServer.AddTool(sessionTool("reveal_card", "Memory: turn a card face up", map[string]interface{}{
		"card_id": intProp("Card ID (see game_state)"),
	}, "card_id"), c.handleRevealCard)
	c.mcpServer.AddTool(sessionTool("select_tile", "Puzzle: select a tile, or swap it with the selected one", map[string]interface{}{
		"tile_id": intProp("Tile ID (see game_state)"),
	}, "tile_id"), c.handleSelectTile)
	c.mcpServer.AddTool(sessionTool("reshuffle_puzzle", "Puzzle: shuffle the board again", nil), c.handleReshuffle)
	c.mcpServer.AddTool(sessionTool("puzzle_hint", "Puzzle: show the solved arrangement", nil), c.handlePuzzleHint)
	c.mcpServer.AddTool(sessionTool("maze_move", "Maze: move one cell", map[string]interface{}{
		"direction": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"up", "down", "left", "right"},
			"description": "Direction to move",
		},
		"intent": map[string]interface{}{
			"type":        "string",
			"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
		},
	}, "direction"), c.handleMazeMove)
	c.mcpServer.AddTool(sessionTool("maze_bulk_move", "Maze: execute several moves in sequence, stopping at the first wall or at the goal", map[string]interface{}{
		"moves": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "string",
				"enum": []string{"up", "down", "left", "right"},
			},
			"description": "Array of moves",
		},
		"intent": map[string]interface{}{
			"type":        "string",
			"description": "Brief explanation of the intent behind this sequence of moves",
		},
	}, "moves"), c.handleMazeBulkMove)
	c.mcpServer.AddTool(sessionTool("quiz_answer", "Quiz: lock in an answer for the current question", map[string]interface{}{
		"option": intProp("Option index, 0-based"),
	}, "option"), c.handleQuizAnswer)

	// Finale
	c.mcpServer.AddTool(sessionTool("open_finale", "Open the finale letter once every game is complete", nil), c.handleOpenFinale)
	c.mcpServer.AddTool(sessionTool("reveal_secret", "Reveal the secret after the finale letter", nil), c.handleRevealSecret)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(args map[string]interface{}, suffix string) string {
	sessionID, _ := args["session_id"].(string)
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// intArg reads an integer argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contentID, _ := arguments(request)["content_id"].(string)

	body := map[string]string{}
	if contentID != "" {
		body["content_id"] = contentID
	}

	var info service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Content: %s, %d/%d games, screen: %s, created: %s)\n",
			s.ID, s.ContentID, s.Journey.Completed, s.Journey.Total, s.Journey.Screen, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var contents []config.ContentInfo
	if err := c.apiCall("GET", "/api/content", nil, &contents); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Content:\n\n"
	for _, info := range contents {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  %d pairs, %d questions, %dx%d maze, %d tiles\n\n",
			info.ContentID, info.Name, info.Description, info.Pairs, info.Questions, info.MazeRows, info.MazeCols, info.Tiles)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleJourneyStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var status journey.Status
	if err := c.apiCall("GET", sessionPath(arguments(request), "/journey"), nil, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatJourney(&status)), nil
}

// stateCall runs a request answering with a SessionState
func (c *Client) stateCall(method, path string) (*mcp.CallToolResult, error) {
	var state service.SessionState
	if err := c.apiCall(method, path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionState(&state)), nil
}

func (c *Client) handleStartJourney(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.stateCall("POST", sessionPath(arguments(request), "/start"))
}

func (c *Client) handleEnterGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	game, _ := args["game"].(string)
	return c.stateCall("POST", sessionPath(args, "/games/"+url.PathEscape(game)+"/enter"))
}

func (c *Client) handleLeaveGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.stateCall("POST", sessionPath(arguments(request), "/leave"))
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.stateCall("GET", sessionPath(arguments(request), "/state"))
}

// actionCall runs a mini-game input answering with an ActionResult
func (c *Client) actionCall(path string, body interface{}) (*mcp.CallToolResult, error) {
	var result service.ActionResult
	if err := c.apiCall("POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.actionCall(sessionPath(arguments(request), "/restart"), nil)
}

func (c *Client) handleRevealCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	cardID, ok := intArg(args, "card_id")
	if !ok {
		return mcp.NewToolResultError("card_id is required"), nil
	}
	return c.actionCall(sessionPath(args, "/memory/reveal"), map[string]int{"card_id": cardID})
}

func (c *Client) handleSelectTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	tileID, ok := intArg(args, "tile_id")
	if !ok {
		return mcp.NewToolResultError("tile_id is required"), nil
	}
	return c.actionCall(sessionPath(args, "/puzzle/select"), map[string]int{"tile_id": tileID})
}

func (c *Client) handleReshuffle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.actionCall(sessionPath(arguments(request), "/puzzle/reshuffle"), nil)
}

func (c *Client) handlePuzzleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Tiles []puzzle.Tile `json:"tiles"`
	}
	if err := c.apiCall("GET", sessionPath(arguments(request), "/puzzle/hint"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Solved arrangement: " + formatTileRow(response.Tiles)), nil
}

func (c *Client) handleMazeMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	direction, _ := args["direction"].(string)
	// intent is accepted for the caller's reasoning and not forwarded
	return c.actionCall(sessionPath(args, "/maze/move"), map[string]string{"direction": direction})
}

func (c *Client) handleMazeBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	movesRaw, _ := args["moves"].([]interface{})

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	var result service.BulkMoveResult
	if err := c.apiCall("POST", sessionPath(args, "/maze/bulk"), map[string]interface{}{"moves": moves}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBulkMoveResult(&result)), nil
}

func (c *Client) handleQuizAnswer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	option, ok := intArg(args, "option")
	if !ok {
		return mcp.NewToolResultError("option is required"), nil
	}
	return c.actionCall(sessionPath(args, "/quiz/answer"), map[string]int{"option": option})
}

func (c *Client) handleOpenFinale(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var view service.FinaleView
	if err := c.apiCall("POST", sessionPath(arguments(request), "/finale"), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatFinale(&view)), nil
}

func (c *Client) handleRevealSecret(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var view service.FinaleView
	if err := c.apiCall("POST", sessionPath(arguments(request), "/finale/secret"), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatFinale(&view)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Gift Journey - Instructions

JOURNEY:
• The journey starts on the intro screen; start_journey moves to the map.
• From the map, enter any of the four mini-games. Each entry deals a fresh game.
• Completing a game marks it on the map and returns there. Replays are allowed
  and never un-complete a game. Leaving a game early does not complete it.
• When all four are complete, open_finale shows the letter and reveal_secret
  the secret behind it.

MEMORY (reveal_card):
• Cards are dealt face down in pairs. Reveal two cards per turn.
• A matching pair stays face up. A mismatch is shown briefly, then both cards
  turn face down again; reveals during that pause are ignored.
• Each pair of reveals counts as one move. Match every pair to finish.

QUIZ (quiz_answer):
• One question at a time. The first answer is locked in and scored, the
  correct option is shown, then the next question follows after a pause.
• The final result is perfect, good (at least three fifths) or needs more time.

MAZE (maze_move, maze_bulk_move):
• Legend: # wall, . path, S start, G goal, P player.
• Moves into walls or off the grid are ignored and not counted.
• Reaching G finishes the maze; further moves are ignored.

PUZZLE (select_tile, reshuffle_puzzle, puzzle_hint):
• Tiles are shuffled across the board. Select one tile, then another to swap
  their positions. Selecting the same tile again does nothing.
• Each swap counts as one move. The puzzle is solved when every tile is home;
  puzzle_hint shows the solved arrangement.`
