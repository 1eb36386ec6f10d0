// Package engine provides the core game logic for Sky Garden Race.
//
// The engine package implements the game mechanics including:
//   - The fixed 64-tile serpentine board and its special tiles
//   - Turn resolution with exact-landing wins and tile effects
//   - Mystery rewards and the periodic event cards
//   - Character selection and the setup/playing/won lifecycle
//   - Narrated log and cumulative turn history
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. Snapshot is the value state that ResolveTurn
// works on; GameState wraps it with the log and history. Rules holds the
// tunable parameters loaded from JSON or HCL files by the config package.
// All randomness goes through a Source so games can be replayed.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultRules(), nil, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_ = gameEngine.SelectCharacter(0, "bunny")
//	_ = gameEngine.SelectCharacter(1, "fox")
//	_ = gameEngine.Start()
//
//	result, err := gameEngine.Roll()
//
// Game Rules:
//
// Two players race from tile 0 to tile 64 and must land on it exactly. Vines
// climb, clouds drop unless a shield absorbs them, and the remaining special
// tiles grant a bonus roll, swap positions, freeze the opponent or draw a
// mystery reward. Every few rounds an event card shakes up both players, and
// a player left far behind gets a comeback boost instead.
package engine
