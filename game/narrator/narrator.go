// Package narrator turns game effects into localized log lines.
package narrator

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/wricardo/sky-garden-race/game/engine"
)

// Narrator prints effects in one locale. It implements engine.Narrator.
type Narrator struct {
	locale  string
	printer *message.Printer
}

// New returns a narrator for locale. Unknown locales fall back to BaseLocale.
func New(locale string) *Narrator {
	if !defaultBundle.HasLocale(locale) {
		locale = BaseLocale
	}
	return &Narrator{
		locale:  locale,
		printer: message.NewPrinter(language.MustParse(locale)),
	}
}

// Locale returns the locale actually used
func (n *Narrator) Locale() string {
	return n.locale
}

// PlayerLabel names a player by character when one is chosen
func (n *Narrator) PlayerLabel(p engine.Player) string {
	if p.Character != nil {
		return p.Character.Emoji + " " + p.Character.Name
	}
	return n.printer.Sprintf("player.name", p.ID+1)
}

func (n *Narrator) Opening(players [engine.PlayerCount]engine.Player) string {
	return n.printer.Sprintf("game.opening", n.PlayerLabel(players[0]), n.PlayerLabel(players[1]))
}

func (n *Narrator) Narrate(effect engine.Effect, players [engine.PlayerCount]engine.Player) string {
	who := n.PlayerLabel(players[effect.Player])
	other := n.PlayerLabel(players[effect.Other])
	key := "effect." + string(effect.Kind)

	switch effect.Kind {
	case engine.EffectFrozenSkip, engine.EffectWon, engine.EffectShieldBlock:
		return n.printer.Sprintf(key, who)
	case engine.EffectRolled:
		return n.printer.Sprintf(key, who, effect.Roll)
	case engine.EffectOvershoot, engine.EffectBonusOvershoot:
		return n.printer.Sprintf(key, who, effect.Needed)
	case engine.EffectVine, engine.EffectCloud:
		return n.printer.Sprintf(key, who, effect.To)
	case engine.EffectDoubleRoll:
		return n.printer.Sprintf(key, who, effect.Roll)
	case engine.EffectSwap, engine.EffectFreeze:
		return n.printer.Sprintf(key, who, other)
	case engine.EffectMystery:
		return n.printer.Sprintf(key, who, n.Reward(effect.Reward))
	case engine.EffectEvent:
		return n.printer.Sprintf(key, n.Card(effect.Card))
	}
	return fmt.Sprintf("%s: %s", who, effect.Kind)
}

// Reward returns the localized description of a mystery reward
func (n *Narrator) Reward(reward *engine.MysteryReward) string {
	if reward == nil {
		return ""
	}
	return n.printer.Sprintf("reward." + string(reward.Kind))
}

// Card returns the localized text of an event card
func (n *Narrator) Card(card *engine.EventCard) string {
	if card == nil {
		return ""
	}
	return n.printer.Sprintf("event." + string(card.Kind))
}

// DescribeTile explains what a tile does
func (n *Narrator) DescribeTile(tile engine.Tile) string {
	switch {
	case tile.Number == engine.TotalTiles:
		return n.printer.Sprintf("tile.goal", tile.Number)
	case tile.Type == engine.Vine || tile.Type == engine.Cloud:
		return n.printer.Sprintf("tile."+string(tile.Type), tile.Number, tile.Dest)
	}
	return n.printer.Sprintf("tile."+string(tile.Type), tile.Number)
}
