// Package service provides the business logic layer for the gift journey.
//
// The service package implements:
//   - Multi-session journey management
//   - Content bundle loading
//   - Routing player input to the active mini-game
//   - Completion handling and finale gating
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// SessionManager handles session creation, retrieval, and lifecycle.
// ContentManager loads and saves content bundles.
// Notifier receives state pushes, including those triggered by timers.
//
// Architecture:
//
// The service sits between the transports (HTTP/WebSocket/MCP) and the
// mini-game engines. Each session owns a journey and at most one active
// engine. Entering a game builds a fresh engine instance with the session's
// content; leaving, re-entering or deleting the session closes it so its
// pending timers never fire.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	contentMgr, _ := config.NewManager("content")
//	svc := service.NewGameService(sessionMgr, contentMgr, service.WithNotifier(hub))
//
//	info, err := svc.CreateSession(ctx, "")
//	if err != nil {
//		log.Fatal().Err(err).Send()
//	}
//	svc.StartJourney(ctx, info.ID)
//	svc.EnterGame(ctx, info.ID, "maze")
//	result, err := svc.Move(ctx, info.ID, "down")
package service
