// Package session provides session management for the gift journey.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session owns one journey (completion map and current screen)
// and at most one active mini-game instance.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference, looked up
// case-insensitively.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", "default", config.Default())
//	if err != nil {
//		log.Fatal().Err(err).Send()
//	}
//
//	sess, err = manager.Get(sess.ID)
//	sessions := manager.List()
//
// Cleanup:
//
// Sessions live in memory only. They are deleted explicitly or expire after
// inactivity; either way the active mini-game is closed so its pending timers
// never fire.
package session
