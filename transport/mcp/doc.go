// Package mcp exposes the gift journey to AI agents over the Model Context
// Protocol.
//
// The Client is a thin MCP server that forwards every tool call to the REST
// API of a running journey server and renders the JSON answers as text.
//
// Tools:
//   - create_session, list_sessions, list_content, game_instructions
//   - journey_status, start_journey, enter_game, leave_game, game_state, restart_game
//   - reveal_card (memory)
//   - select_tile, reshuffle_puzzle, puzzle_hint (puzzle)
//   - maze_move, maze_bulk_move (maze)
//   - quiz_answer (quiz)
//   - open_finale, reveal_secret
//
// Every tool except the session listing ones takes a session_id. API errors
// come back as tool errors carrying the server's message, so an agent sees
// "finale locked" rather than a transport failure.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
