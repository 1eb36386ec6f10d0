// Package mcp exposes Sky Garden Race to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call is translated into a REST call
// against the api package and the JSON answer is rendered as readable text.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - select_character, start_game, roll_dice, reset_game
//   - game_state, game_history
//   - list_configs, game_instructions, describe_tile
//
// Transport Modes:
//
// The same server is served over stdio for local agents and mounted at /mcp
// by the serve command for remote ones.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
