package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/sky-garden-race/game/engine"
)

const tracerName = "github.com/wricardo/sky-garden-race/game/service"

// Pagination bounds for turn history
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	describer Describer
	tracer    trace.Tracer
	mu        sync.Mutex
}

// NewGameService creates a new game service instance. A nil describer leaves
// tile descriptions empty.
func NewGameService(sessions SessionManager, configs ConfigManager, describer Describer) GameService {
	return &gameServiceImpl{
		sessions:  sessions,
		configs:   configs,
		describer: describer,
		tracer:    otel.Tracer(tracerName),
	}
}

func (s *gameServiceImpl) startSpan(ctx context.Context, name, sessionID string) (context.Context, trace.Span) {
	var opts []trace.SpanStartOption
	if sessionID != "" {
		opts = append(opts, trace.WithAttributes(attribute.String("session.id", sessionID)))
	}
	return s.tracer.Start(ctx, "GameService."+name, opts...)
}

// fail records err on the span and returns it unchanged
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// getConfigID returns the config_id for a given ruleset name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(rulesName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == rulesName {
				return cfg.ConfigID
			}
		}
	}
	if rulesName == "" {
		return "default"
	}
	return rulesName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	if configID == "" {
		configID = s.getConfigID(sess.Rules.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		Rules:          sess.Rules,
	}
}

// lookup fetches a session and marks it as accessed. It writes
// LastAccessedAt, so callers must hold s.mu.
func (s *gameServiceImpl) lookup(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	_, span := s.startSpan(ctx, "CreateSession", "")
	defer span.End()
	span.SetAttributes(attribute.String("config.name", configName))

	s.mu.Lock()
	defer s.mu.Unlock()

	var rules *engine.Rules
	var err error
	if configName != "" {
		rules, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fail(span, fmt.Errorf("config '%s': %w. Available configs: %v", configName, err, configIDs))
				}
				return nil, fail(span, fmt.Errorf("config '%s': %w. Use /api/configs to list available configurations", configName, err))
			}
			return nil, fail(span, fmt.Errorf("failed to load config %s: %w", configName, err))
		}
	} else {
		rules = s.configs.GetDefault()
	}

	// Let the session manager generate a 4-character ID
	sess, err := s.sessions.Create("", rules)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to create session: %w", err))
	}
	span.SetAttributes(attribute.String("session.id", sess.ID))

	return s.sessionInfo(sess, configName), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	_, span := s.startSpan(ctx, "GetSession", sessionID)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, fail(span, err)
	}
	return s.sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	_, span := s.startSpan(ctx, "ListSessions", "")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}
	span.SetAttributes(attribute.Int("session.count", len(result)))
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	_, span := s.startSpan(ctx, "DeleteSession", sessionID)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fail(span, fmt.Errorf("session %s: %w", sessionID, err))
	}
	return nil
}

// SelectCharacter assigns a character to a player
func (s *gameServiceImpl) SelectCharacter(ctx context.Context, sessionID string, player int, characterID string) (*engine.GameState, error) {
	_, span := s.startSpan(ctx, "SelectCharacter", sessionID)
	defer span.End()
	span.SetAttributes(attribute.Int("player", player), attribute.String("character", characterID))

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, fail(span, err)
	}
	if err := sess.Engine.SelectCharacter(player, strings.ToLower(strings.TrimSpace(characterID))); err != nil {
		return nil, fail(span, err)
	}
	return sess.Engine.GetState(), nil
}

// StartGame starts the race once both characters are chosen
func (s *gameServiceImpl) StartGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	_, span := s.startSpan(ctx, "StartGame", sessionID)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, fail(span, err)
	}
	if err := sess.Engine.Start(); err != nil {
		return nil, fail(span, err)
	}
	return sess.Engine.GetState(), nil
}

// Roll plays one turn for the current player
func (s *gameServiceImpl) Roll(ctx context.Context, sessionID string) (*RollResult, error) {
	_, span := s.startSpan(ctx, "Roll", sessionID)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, fail(span, err)
	}

	turn, err := sess.Engine.Roll()
	if err != nil {
		return nil, fail(span, err)
	}
	state := sess.Engine.GetState()

	result := &RollResult{
		GameState: state,
		Roll:      state.LastRoll,
		Bonus:     state.LastBonus,
		Effects:   turn.Effects,
		Events:    effectEvents(turn),
		Card:      turn.Card,
		ExtraTurn: turn.ExtraTurn,
		Winner:    state.Winner,
		Record:    &turn.Record,
	}
	if n := len(turn.Lines); n > 0 {
		result.Message = turn.Lines[n-1].Text
	}

	span.SetAttributes(
		attribute.Int("turn.player", turn.Record.Player),
		attribute.Int("turn.roll", turn.Record.Roll),
		attribute.Int("turn.to", turn.Record.To),
	)
	if turn.Card != nil {
		span.AddEvent("event_card", trace.WithAttributes(attribute.String("card.kind", string(turn.Card.Kind))))
	}
	return result, nil
}

// Reset returns a game session to character selection
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	_, span := s.startSpan(ctx, "Reset", sessionID)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, fail(span, err)
	}
	return sess.Engine.Reset(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	_, span := s.startSpan(ctx, "GetGameState", sessionID)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, fail(span, err)
	}
	return sess.Engine.GetState(), nil
}

// GetHistory returns paginated turn history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	_, span := s.startSpan(ctx, "GetHistory", sessionID)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, fail(span, err)
	}

	history := sess.Engine.GetHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultHistoryLimit
	}
	if opts.Limit > MaxHistoryLimit {
		opts.Limit = MaxHistoryLimit
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	turns := []engine.TurnRecord{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			turns = append(turns, history[i])
		}
	} else if start < total {
		turns = append(turns, history[start:end]...)
	}

	return &HistoryResponse{
		Turns:       turns,
		TotalTurns:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// GetBoard returns the fixed board with tile descriptions
func (s *gameServiceImpl) GetBoard(ctx context.Context) (*BoardInfo, error) {
	_, span := s.startSpan(ctx, "GetBoard", "")
	defer span.End()

	board := engine.Board()
	tiles := make([]TileInfo, 0, len(board))
	for _, tile := range board {
		info := TileInfo{Tile: tile}
		if s.describer != nil {
			info.Description = s.describer.DescribeTile(tile)
		}
		tiles = append(tiles, info)
	}
	return &BoardInfo{
		Tiles:      tiles,
		Characters: engine.Characters(),
		Rewards:    engine.MysteryRewards(),
		Events:     engine.EventCards(),
	}, nil
}

// ListConfigs returns available rulesets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	_, span := s.startSpan(ctx, "ListConfigs", "")
	defer span.End()

	configs, err := s.configs.ListConfigs()
	if err != nil {
		return nil, fail(span, err)
	}
	return configs, nil
}

// LoadConfig loads a specific ruleset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.Rules, error) {
	_, span := s.startSpan(ctx, "LoadConfig", "")
	defer span.End()
	span.SetAttributes(attribute.String("config.name", configName))

	rules, err := s.configs.LoadConfig(configName)
	if err != nil {
		return nil, fail(span, err)
	}
	return rules, nil
}

// SaveConfig saves a ruleset to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, rules *engine.Rules) error {
	_, span := s.startSpan(ctx, "SaveConfig", "")
	defer span.End()
	span.SetAttributes(attribute.String("config.name", configName))

	if err := s.configs.SaveConfig(configName, rules); err != nil {
		return fail(span, err)
	}
	return nil
}

// effectEvents maps the effects of a turn to timestamped game events
func effectEvents(turn *engine.TurnResult) []GameEvent {
	now := time.Now()
	events := make([]GameEvent, 0, len(turn.Effects))
	for i, effect := range turn.Effects {
		ev := GameEvent{
			Type:      string(effect.Kind),
			Timestamp: now,
			Player:    effect.Player,
			From:      effect.From,
			To:        effect.To,
		}
		if i < len(turn.Lines) {
			ev.Message = turn.Lines[i].Text
		}
		events = append(events, ev)
	}
	return events
}
