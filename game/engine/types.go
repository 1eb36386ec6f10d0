package engine

import "time"

// TileType represents the kind of a board tile
type TileType string

const (
	Normal  TileType = "normal"
	Vine    TileType = "vine"
	Cloud   TileType = "cloud"
	Double  TileType = "double"
	Swap    TileType = "swap"
	Freeze  TileType = "freeze"
	Mystery TileType = "mystery"

	// Board and rule constants
	TotalTiles     = 64
	BoardCols      = 8
	PlayerCount    = 2
	DieFaces       = 6
	NoWinner       = -1
	EventCap       = TotalTiles - 1
	RocketBoost    = 6
	EventStep      = 3
	ChaosRange     = 5
	DefaultLogSize = 21
)

// Phase is the lifecycle stage of a game
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhasePlaying Phase = "playing"
	PhaseWon     Phase = "won"
)

// Tile describes one square of the board
type Tile struct {
	Number int      `json:"number"`
	Type   TileType `json:"type"`
	Dest   int      `json:"dest,omitempty"` // vine and cloud destinations
	Row    int      `json:"row"`
	Col    int      `json:"col"`
}

// Character is a selectable player avatar
type Character struct {
	ID    string `json:"id"`
	Emoji string `json:"emoji"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Player is one of the two racers
type Player struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Character  *Character `json:"character,omitempty"`
	Position   int        `json:"position"`
	Frozen     int        `json:"frozen"`
	Shield     bool       `json:"shield"`
	DoubleNext bool       `json:"double_next"`
}

// Snapshot is the value state the resolver works on. It holds no slices or maps
// besides the character pointer, which is never mutated, so copying a Snapshot
// yields an independent state.
type Snapshot struct {
	Phase     Phase               `json:"phase"`
	Players   [PlayerCount]Player `json:"players"`
	Current   int                 `json:"current"`
	Turns     int                 `json:"turns"`
	Winner    int                 `json:"winner"`
	LastRoll  int                 `json:"last_roll"`
	LastBonus int                 `json:"last_bonus,omitempty"`
}

// Round returns the 1-based round number; a round is two resolved moves.
func (s Snapshot) Round() int {
	return 1 + s.Turns/2
}

// Other returns the index of the player that is not idx
func Other(idx int) int {
	return 1 - idx
}

// EventKind identifies an event card
type EventKind string

const (
	EventWindstorm    EventKind = "windstorm"
	EventBlossom      EventKind = "blossom"
	EventChaosDice    EventKind = "chaos_dice"
	EventMirror       EventKind = "mirror"
	EventTimeFreeze   EventKind = "time_freeze"
	EventShootingStar EventKind = "shooting_star"
	EventComeback     EventKind = "comeback"
)

// EventCard is drawn by the event scheduler
type EventCard struct {
	Kind EventKind `json:"kind"`
	Icon string    `json:"icon"`
	Text string    `json:"text"`
}

// RewardKind identifies a mystery tile reward
type RewardKind string

const (
	RewardRocket  RewardKind = "rocket_boost"
	RewardShield  RewardKind = "cloud_shield"
	RewardStar    RewardKind = "star_power"
	RewardRainbow RewardKind = "rainbow_jump"
	RewardLucky   RewardKind = "lucky_star"
)

// MysteryReward is drawn when landing on a mystery tile
type MysteryReward struct {
	Kind RewardKind `json:"kind"`
	Icon string     `json:"icon"`
	Text string     `json:"text"`
}

// EffectKind identifies one observable consequence of a turn
type EffectKind string

const (
	EffectFrozenSkip     EffectKind = "frozen_skip"
	EffectRolled         EffectKind = "rolled"
	EffectOvershoot      EffectKind = "overshoot"
	EffectWon            EffectKind = "won"
	EffectVine           EffectKind = "vine"
	EffectCloud          EffectKind = "cloud"
	EffectShieldBlock    EffectKind = "shield_block"
	EffectDoubleRoll     EffectKind = "double_roll"
	EffectBonusOvershoot EffectKind = "bonus_overshoot"
	EffectSwap           EffectKind = "swap"
	EffectFreeze         EffectKind = "freeze"
	EffectMystery        EffectKind = "mystery"
	EffectEvent          EffectKind = "event"
)

// Effect records what happened during a turn, in order
type Effect struct {
	Kind   EffectKind     `json:"kind"`
	Player int            `json:"player"`
	From   int            `json:"from"`
	To     int            `json:"to"`
	Roll   int            `json:"roll,omitempty"`
	Needed int            `json:"needed,omitempty"`
	Other  int            `json:"other"`
	Reward *MysteryReward `json:"reward,omitempty"`
	Card   *EventCard     `json:"card,omitempty"`
}

// LogEntry is one narrated line of the game log
type LogEntry struct {
	Turn int    `json:"turn"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// TurnRecord is one entry of the cumulative turn history
type TurnRecord struct {
	ID         string   `json:"id"`
	TurnNumber int      `json:"turn_number"`
	Player     int      `json:"player"`
	Round      int      `json:"round"`
	Roll       int      `json:"roll"`
	From       int      `json:"from"`
	To         int      `json:"to"`
	Effects    []Effect `json:"effects"`
	Timestamp  int64    `json:"timestamp"`
}

// TurnResult is returned by a single roll
type TurnResult struct {
	Effects   []Effect   `json:"effects"`
	Card      *EventCard `json:"card,omitempty"`
	ExtraTurn bool       `json:"extra_turn,omitempty"`
	Record    TurnRecord `json:"record"`
	Lines     []LogEntry `json:"lines"`
}

// GameState represents the complete serialisable game state
type GameState struct {
	Snapshot
	Round       int          `json:"round"`
	RulesName   string       `json:"rules_name"`
	Log         []LogEntry   `json:"log"`
	LastEffects []Effect     `json:"last_effects,omitempty"`
	LastCard    *EventCard   `json:"last_card,omitempty"`
	History     []TurnRecord `json:"history"`
	TotalTurns  int          `json:"total_turns"`
	StartedAt   time.Time    `json:"started_at"`
}
