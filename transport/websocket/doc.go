// Package websocket pushes journey state to connected views.
//
// A central Hub owns every connection, grouped by session ID. The game
// service reports through the Hub (it implements service.Notifier): a
// state_update after every accepted input and every timed transition, plus
// game_complete, finale_opened and secret_revealed events.
//
// Message Protocol:
//
// Outgoing messages are JSON:
//
//	{"session_id": "ab12", "event": "state_update", "state": {...}}
//	{"session_id": "ab12", "event": "game_complete", "data": {...}}
//
// Input is not read from the socket; clients act through REST or MCP.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"), initialState)
//	})
//
// Broadcasts are queued on a buffered channel and never block the caller,
// which may be an engine timer goroutine. When the queue is full the message
// is dropped and logged.
package websocket
