// Package websocket provides WebSocket transport for Sky Garden Race.
//
// The package uses a hub-and-spoke model where a central Hub tracks the
// clients watching each session. Each connection runs a read pump that
// keeps the pong deadline fresh and a write pump that forwards queued
// messages and pings.
//
// Message Protocol:
//
// Outgoing messages are JSON:
//   - {"session_id": "abc1", "event": "state_update", "game_state": {...}} after every mutation
//   - {"session_id": "abc1", "event": "event_card", "data": {"card": {...}, "round": 5}} when a card fires
//
// Clients pick a session with the session query parameter (/ws?session=abc1).
// Incoming messages are ignored.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//	hub.BroadcastToSession(sessionID, state)
package websocket
