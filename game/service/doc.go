// Package service provides the business logic layer for Sky Garden Race.
//
// The service package implements:
//   - Multi-session game management
//   - Character selection, turn rolling and resets
//   - Paginated turn history
//   - Ruleset listing, loading and saving
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads and validates rulesets.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP, the
// terminal) and the game engine. Each session owns its own engine. Every
// method opens an OpenTelemetry span tagged with the session id; spans are
// dropped unless a tracer provider is installed.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, narrator.New("en-US"))
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, _ = gameService.SelectCharacter(ctx, info.ID, 0, "bunny")
//	_, _ = gameService.SelectCharacter(ctx, info.ID, 1, "fox")
//	_, _ = gameService.StartGame(ctx, info.ID)
//	result, err := gameService.Roll(ctx, info.ID)
package service
