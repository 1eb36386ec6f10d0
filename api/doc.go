// Package api provides the HTTP REST API for Sky Garden Race.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions              create a session, body {"config_id": "chaos"}
//   - GET    /api/sessions              list sessions (sort=created|accessed, order, limit)
//   - GET    /api/sessions/unified      several sessions at once (sessionIds, configName)
//   - GET    /api/sessions/{id}         session info
//   - DELETE /api/sessions/{id}         delete a session
//
// Game:
//   - POST /api/sessions/{id}/characters  {"player": 0, "character": "bunny"}
//   - POST /api/sessions/{id}/start
//   - POST /api/sessions/{id}/roll
//   - POST /api/sessions/{id}/reset
//   - GET  /api/sessions/{id}/state
//   - GET  /api/sessions/{id}/history     page, limit (max 100), order=asc|desc
//
// Board and rulesets:
//   - GET  /api/board, /api/characters
//   - GET  /api/configs, GET /api/configs/{name}, POST /api/configs
//   - GET  /api/health
//
// GET /ws?session=<id> upgrades to a WebSocket that receives state_update and
// event_card messages. Everything else is served from the static directory.
//
// Error Handling:
//
// Errors are returned as {"error": "message"}. Missing sessions and rulesets
// map to 404, rule violations (not ready, not playing, character taken) to
// 409 and malformed input to 400.
package api
