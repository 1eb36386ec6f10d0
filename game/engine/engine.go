package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotInSetup     = errors.New("characters can only be chosen before the game starts")
	ErrInvalidPlayer  = errors.New("invalid player")
	ErrCharacterTaken = errors.New("character already taken by the other player")
	ErrNotReady       = errors.New("both players must choose different characters")
)

// Narrator turns effects into log lines
type Narrator interface {
	Opening(players [PlayerCount]Player) string
	Narrate(effect Effect, players [PlayerCount]Player) string
}

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() *GameState
	IsOver() bool
	Winner() int
	CurrentPlayer() int
	Round() int

	// Setup
	SelectCharacter(player int, characterID string) error
	Start() error

	// Turns
	Roll() (*TurnResult, error)

	// Configuration
	GetRules() *Rules

	// History
	GetHistory() []TurnRecord
	GetLastTurn() *TurnRecord
	GetLog() []LogEntry
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state    *GameState
	rules    *Rules
	rng      Source
	narrator Narrator
}

// NewEngine creates a new game engine with the provided rules. A nil source
// rolls real dice and a nil narrator writes plain effect summaries.
func NewEngine(rules *Rules, rng Source, narrator Narrator) (*GameEngine, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRandomSource()
	}
	if narrator == nil {
		narrator = PlainNarrator{}
	}

	return &GameEngine{
		state:    newGameState(rules),
		rules:    rules,
		rng:      rng,
		narrator: narrator,
	}, nil
}

// NewEngineWithDefaults creates a new game engine with the classic rules
func NewEngineWithDefaults() *GameEngine {
	rules := DefaultRules()
	return &GameEngine{
		state:    newGameState(rules),
		rules:    rules,
		rng:      NewRandomSource(),
		narrator: PlainNarrator{},
	}
}

func newGameState(rules *Rules) *GameState {
	return &GameState{
		Snapshot: Snapshot{
			Phase: PhaseSetup,
			Players: [PlayerCount]Player{
				{ID: 0, Name: "Player 1"},
				{ID: 1, Name: "Player 2"},
			},
			Winner: NoWinner,
		},
		Round:     1,
		RulesName: rules.Name,
		Log:       []LogEntry{},
		History:   []TurnRecord{},
	}
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Reset returns the game to character selection
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history across resets
	prevHistory := e.state.History
	prevTotal := e.state.TotalTurns

	e.state = newGameState(e.rules)
	e.state.History = prevHistory
	e.state.TotalTurns = prevTotal

	return e.state
}

// IsOver returns whether a player has reached the last tile
func (e *GameEngine) IsOver() bool {
	return e.state.Phase == PhaseWon
}

// Winner returns the winning player index or NoWinner
func (e *GameEngine) Winner() int {
	return e.state.Winner
}

// CurrentPlayer returns the index of the player to roll
func (e *GameEngine) CurrentPlayer() int {
	return e.state.Current
}

// Round returns the current round
func (e *GameEngine) Round() int {
	return e.state.Snapshot.Round()
}

// SelectCharacter assigns a character to a player during setup
func (e *GameEngine) SelectCharacter(player int, characterID string) error {
	if e.state.Phase != PhaseSetup {
		return ErrNotInSetup
	}
	if player < 0 || player >= PlayerCount {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, player)
	}
	char, err := LookupCharacter(characterID)
	if err != nil {
		return fmt.Errorf("%w: %q", err, characterID)
	}
	if taken := e.state.Players[Other(player)].Character; taken != nil && taken.ID == char.ID {
		return ErrCharacterTaken
	}
	e.state.Players[player].Character = char
	return nil
}

// Start begins the race once both players have distinct characters
func (e *GameEngine) Start() error {
	if e.state.Phase != PhaseSetup {
		return ErrNotInSetup
	}
	a, b := e.state.Players[0].Character, e.state.Players[1].Character
	if a == nil || b == nil || a.ID == b.ID {
		return ErrNotReady
	}

	e.state.Phase = PhasePlaying
	e.state.Current = 0
	e.state.StartedAt = time.Now()
	e.appendLog(LogEntry{Turn: e.state.TotalTurns, Kind: "start", Text: e.narrator.Opening(e.state.Players)})
	return nil
}

// Roll resolves one turn for the current player
func (e *GameEngine) Roll() (*TurnResult, error) {
	before := e.state.Snapshot
	outcome, err := ResolveTurn(before, e.rules, e.rng)
	if err != nil {
		return nil, err
	}

	turnNumber := e.state.TotalTurns + 1
	lines := make([]LogEntry, 0, len(outcome.Effects))
	for _, eff := range outcome.Effects {
		lines = append(lines, LogEntry{
			Turn: turnNumber,
			Kind: string(eff.Kind),
			Text: e.narrator.Narrate(eff, outcome.State.Players),
		})
	}

	mover := before.Current
	record := TurnRecord{
		ID:         uuid.NewString(),
		TurnNumber: turnNumber,
		Player:     mover,
		Round:      before.Round(),
		Roll:       outcome.State.LastRoll,
		From:       before.Players[mover].Position,
		To:         outcome.State.Players[mover].Position,
		Effects:    outcome.Effects,
		Timestamp:  time.Now().Unix(),
	}

	e.state.Snapshot = outcome.State
	e.state.Round = outcome.State.Round()
	e.state.LastEffects = outcome.Effects
	e.state.LastCard = outcome.Card
	e.state.History = append(e.state.History, record)
	e.state.TotalTurns++
	e.appendLog(lines...)

	return &TurnResult{
		Effects:   outcome.Effects,
		Card:      outcome.Card,
		ExtraTurn: outcome.ExtraTurn,
		Record:    record,
		Lines:     lines,
	}, nil
}

// GetRules returns the rules this game is played with
func (e *GameEngine) GetRules() *Rules {
	return e.rules
}

// GetHistory returns the cumulative turn history
func (e *GameEngine) GetHistory() []TurnRecord {
	return e.state.History
}

// GetLastTurn returns the last turn played, or nil if none
func (e *GameEngine) GetLastTurn() *TurnRecord {
	if len(e.state.History) == 0 {
		return nil
	}
	return &e.state.History[len(e.state.History)-1]
}

// GetLog returns the narrated log, oldest first
func (e *GameEngine) GetLog() []LogEntry {
	return e.state.Log
}

// appendLog adds lines and keeps only the most recent LogLimit entries
func (e *GameEngine) appendLog(lines ...LogEntry) {
	e.state.Log = append(e.state.Log, lines...)
	if limit := e.rules.LogLimit; limit > 0 && len(e.state.Log) > limit {
		trimmed := make([]LogEntry, limit)
		copy(trimmed, e.state.Log[len(e.state.Log)-limit:])
		e.state.Log = trimmed
	}
}

// PlainNarrator writes terse, untranslated effect summaries
type PlainNarrator struct{}

func (PlainNarrator) Opening(players [PlayerCount]Player) string {
	return fmt.Sprintf("%s vs %s: race begins", players[0].Name, players[1].Name)
}

func (PlainNarrator) Narrate(effect Effect, players [PlayerCount]Player) string {
	name := players[effect.Player].Name
	switch effect.Kind {
	case EffectRolled, EffectDoubleRoll:
		return fmt.Sprintf("%s %s %d (%d -> %d)", name, effect.Kind, effect.Roll, effect.From, effect.To)
	case EffectMystery:
		return fmt.Sprintf("%s %s %s (%d -> %d)", name, effect.Kind, effect.Reward.Kind, effect.From, effect.To)
	case EffectEvent:
		return fmt.Sprintf("event %s", effect.Card.Kind)
	case EffectOvershoot, EffectBonusOvershoot:
		return fmt.Sprintf("%s %s, needs %d", name, effect.Kind, effect.Needed)
	}
	return fmt.Sprintf("%s %s (%d -> %d)", name, effect.Kind, effect.From, effect.To)
}
