package service

import (
	"time"

	"github.com/wricardo/sky-garden-race/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	ConfigName     string            `json:"config_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
	Rules          *engine.Rules     `json:"rules"`
}

// RollResult contains the result of one turn
type RollResult struct {
	GameState *engine.GameState  `json:"game_state"`
	Roll      int                `json:"roll"`
	Bonus     int                `json:"bonus,omitempty"`
	Effects   []engine.Effect    `json:"effects"`
	Events    []GameEvent        `json:"events"`
	Card      *engine.EventCard  `json:"card,omitempty"`
	ExtraTurn bool               `json:"extra_turn,omitempty"`
	Winner    int                `json:"winner"`
	Record    *engine.TurnRecord `json:"record"`
	Message   string             `json:"message"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // an engine effect kind, or "reset"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Player    int       `json:"player"`
	From      int       `json:"from"`
	To        int       `json:"to"`
}

// HistoryOptions configures turn history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated turn history
type HistoryResponse struct {
	Turns       []engine.TurnRecord `json:"turns"`
	TotalTurns  int                 `json:"total_turns"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// ConfigInfo provides information about a ruleset
type ConfigInfo struct {
	Filename      string `json:"filename"`
	ConfigID      string `json:"config_id"` // The identifier to use for session creation
	Name          string `json:"name"`      // Display name
	Description   string `json:"description"`
	Format        string `json:"format"` // "json" or "hcl"
	EventEvery    int    `json:"event_every"`
	ComebackGap   int    `json:"comeback_gap"`
	ComebackBoost int    `json:"comeback_boost"`
	Locale        string `json:"locale"`
}

// TileInfo is a board tile with its description
type TileInfo struct {
	engine.Tile
	Description string `json:"description"`
}

// BoardInfo describes the fixed board and the selectable characters
type BoardInfo struct {
	Tiles      []TileInfo             `json:"tiles"`
	Characters []engine.Character     `json:"characters"`
	Rewards    []engine.MysteryReward `json:"rewards"`
	Events     []engine.EventCard     `json:"events"`
}
