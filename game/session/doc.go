// Package session provides session management for Sky Garden Race.
//
// The session package implements:
//   - Thread-safe in-memory session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//
// Manager is the main session manager. Each session owns an engine built
// from a ruleset, a dice source and a narrator for the ruleset's locale.
// Sessions use 4-character hex IDs and are looked up case-insensitively.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", engine.DefaultRules())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
