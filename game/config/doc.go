// Package config provides content management for the gift journey.
//
// The config package handles:
//   - Loading content bundles from JSON files
//   - Content validation against every mini-game's rules
//   - The built-in default bundle
//   - Bundle discovery and listing
//
// Content Format:
//
// A bundle is a JSON file in the content directory. Each bundle defines:
//   - memory.images: one key per card pair
//   - quiz.questions: prompt, options and correct index
//   - maze.layout: rows using '#' wall, '.' path, 'S' start, 'G' goal
//   - puzzle.tiles: label and color per tile, in solved order
//   - finale: the closing letter and the secret invitation
//   - timing: mismatch and answer delays in milliseconds
//
// Usage:
//
//	manager, err := config.NewManager("content")
//	if err != nil {
//		log.Fatal().Err(err).Send()
//	}
//
//	content, err := manager.LoadContent("quick")
//	bundles, err := manager.ListContent()
//	fallback := manager.GetDefault()
//
// Validation:
//
// Bundles are validated on load and before save: duplicate card keys,
// questions without a valid answer, mazes whose goal cannot be reached from
// the start and puzzles with fewer than two tiles are all rejected.
package config
