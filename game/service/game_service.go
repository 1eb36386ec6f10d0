package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/sky-garden-race/game/engine"
)

// Error classes shared by the storage packages. Transports map them to
// status codes with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	SelectCharacter(ctx context.Context, sessionID string, player int, characterID string) (*engine.GameState, error)
	StartGame(ctx context.Context, sessionID string) (*engine.GameState, error)
	Roll(ctx context.Context, sessionID string) (*RollResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	GetBoard(ctx context.Context) (*BoardInfo, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.Rules, error)
	SaveConfig(ctx context.Context, configName string, rules *engine.Rules) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, rules *engine.Rules) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, rules *engine.Rules) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles ruleset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.Rules, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.Rules
	SaveConfig(name string, rules *engine.Rules) error
}

// Describer explains tiles in a human language
type Describer interface {
	DescribeTile(tile engine.Tile) string
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Rules          *engine.Rules
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
