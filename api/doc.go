// Package api provides the HTTP REST API for the gift journey.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions {content_id} - Create new session
//   - GET /api/sessions?sort=&order=&limit= - List sessions
//   - GET /api/sessions/{id} - Get session info
//   - DELETE /api/sessions/{id} - Delete session
//
// Journey:
//   - POST /api/sessions/{id}/start - Leave the intro for the map
//   - GET /api/sessions/{id}/journey - Completion map and current screen
//   - POST /api/sessions/{id}/games/{game}/enter - Start a fresh mini-game
//   - POST /api/sessions/{id}/leave - Back to the map
//   - GET /api/sessions/{id}/state - Journey plus active game snapshot
//   - POST /api/sessions/{id}/restart - Fresh instance of the active game
//
// Mini-games:
//   - POST /api/sessions/{id}/memory/reveal {card_id}
//   - POST /api/sessions/{id}/puzzle/select {tile_id}
//   - POST /api/sessions/{id}/puzzle/reshuffle
//   - GET /api/sessions/{id}/puzzle/hint
//   - POST /api/sessions/{id}/maze/move {direction}
//   - POST /api/sessions/{id}/maze/swipe {dx, dy}
//   - POST /api/sessions/{id}/maze/bulk {moves}
//   - POST /api/sessions/{id}/quiz/answer {option}
//
// Finale:
//   - POST /api/sessions/{id}/finale - Open the letter (all games complete)
//   - POST /api/sessions/{id}/finale/secret - Reveal the secret
//
// Content:
//   - GET /api/content - List content bundles
//   - GET /api/content/{name} - Get a bundle
//   - POST /api/content {content_id, content} - Validate and save a bundle
//
// Other:
//   - GET /health
//   - GET /ws?session={id} - WebSocket state stream
//
// Ignored input is not an error: mini-game routes answer 200 with
// "accepted": false. Errors are returned as JSON with a status mapped from
// the service sentinels (404 not found, 409 wrong screen or game, 400 bad
// input):
//
//	{
//	  "error": "finale locked: not every game is complete",
//	  "code": 409
//	}
package api
