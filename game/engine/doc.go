// Package engine provides the primitives shared by every mini-game of the
// gift journey.
//
// The engine package implements:
//   - Fisher-Yates shuffling over an injectable uniform random source
//   - Single-shot delayed callbacks behind a Scheduler (wall clock or a
//     manually advanced virtual clock for tests)
//   - One-shot completion signalling
//   - Shared identifiers: GameID, Position, Direction
//   - Construction error reporting via ErrInvalidConfig
//
// Core Types:
//
// Rand is the random source; NewRand gives a seeded, reproducible one.
// Scheduler is implemented by RealScheduler (time.AfterFunc) and
// ManualScheduler (virtual time advanced with Advance).
//
// Usage:
//
//	r := engine.NewRand(42)
//	deck := engine.Shuffle(r, []string{"a", "b", "c"})
//
//	clock := engine.NewManualScheduler()
//	clock.AfterFunc(time.Second, func() { fmt.Println("fired") })
//	clock.Advance(time.Second) // prints "fired"
//
// Game engines (memory, quiz, maze, puzzle) live in sibling packages and only
// depend on this one.
package engine
