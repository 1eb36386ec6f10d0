package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/sky-garden-race/game/engine"
	"github.com/wricardo/sky-garden-race/game/service"
)

// recentLogLines is how much of the game log formatGameState shows
const recentLogLines = 6

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nRuleset: %s\nCreated: %s\nLast accessed: %s\n\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.LastAccessedAt.Format("2006-01-02 15:04:05"))
	b.WriteString(formatGameState(session.GameState))
	return b.String()
}

func playerLabel(p engine.Player) string {
	if p.Character != nil {
		return fmt.Sprintf("%s %s", p.Character.Emoji, p.Character.Name)
	}
	return p.Name
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	switch state.Phase {
	case engine.PhaseSetup:
		b.WriteString("🌱 SETUP: choose characters, then start_game\n")
	case engine.PhaseWon:
		fmt.Fprintf(&b, "🏆 WINNER: %s\n", playerLabel(state.Players[state.Winner]))
	default:
		fmt.Fprintf(&b, "Round %d, %s to roll\n", state.Round, playerLabel(state.Players[state.Current]))
	}

	for i, p := range state.Players {
		fmt.Fprintf(&b, "Player %d: %s on tile %d/%d", i, playerLabel(p), p.Position, engine.TotalTiles)
		var status []string
		if p.Frozen > 0 {
			status = append(status, fmt.Sprintf("frozen %d", p.Frozen))
		}
		if p.Shield {
			status = append(status, "shield")
		}
		if p.DoubleNext {
			status = append(status, "double next")
		}
		if len(status) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(status, ", "))
		}
		b.WriteString("\n")
	}

	if state.LastCard != nil {
		fmt.Fprintf(&b, "Last event: %s %s\n", state.LastCard.Icon, state.LastCard.Text)
	}

	if len(state.Log) > 0 {
		b.WriteString("\nRecent log:\n")
		start := max(0, len(state.Log)-recentLogLines)
		for _, line := range state.Log[start:] {
			fmt.Fprintf(&b, "  %s\n", line.Text)
		}
	}

	return b.String()
}

func formatRollResult(result *service.RollResult) string {
	var b strings.Builder

	for _, event := range result.Events {
		if event.Message != "" {
			fmt.Fprintf(&b, "%s\n", event.Message)
		}
	}
	if result.Card != nil {
		fmt.Fprintf(&b, "✨ Event: %s %s\n", result.Card.Icon, result.Card.Text)
	}
	if result.ExtraTurn {
		b.WriteString("⏳ Same player rolls again\n")
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}

	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Turn History (Page %d/%d, %d total turns):\n\n",
		history.Page, history.TotalPages, history.TotalTurns)

	for _, turn := range history.Turns {
		fmt.Fprintf(&b, "#%d round %d: player %d rolled %d, %d -> %d",
			turn.TurnNumber, turn.Round, turn.Player, turn.Roll, turn.From, turn.To)
		var kinds []string
		for _, e := range turn.Effects {
			if e.Kind != engine.EffectRolled {
				kinds = append(kinds, string(e.Kind))
			}
		}
		if len(kinds) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(kinds, ", "))
		}
		b.WriteString("\n")
	}

	if history.HasNext {
		fmt.Fprintf(&b, "\nMore turns on page %d\n", history.Page+1)
	}
	return b.String()
}

func instructions() string {
	var b strings.Builder
	b.WriteString(`🌸 Sky Garden Race - Complete Instructions

GAME OBJECTIVE:
Two racers climb a 64-tile sky garden. Players alternate rolling one die. The first to land
EXACTLY on tile 64 wins. A roll that would pass 64 is lost and the turn passes.

HOW TO PLAY:
1. create_session (optionally with a ruleset from list_configs)
2. select_character for player 0 and player 1 (they must differ)
3. start_game
4. roll_dice until someone wins; game_state shows whose turn it is

SPECIAL TILES (one effect per move):
`)
	fmt.Fprintf(&b, "• 🌸 Magic vines climb: %s\n", pairs(engine.Vine))
	fmt.Fprintf(&b, "• ☁️ Storm clouds drop you: %s (a shield blocks one cloud)\n", pairs(engine.Cloud))
	fmt.Fprintf(&b, "• 🎲 Double roll: %s (roll again and move forward)\n", numbers(engine.Double))
	fmt.Fprintf(&b, "• 🔄 Swap: %s (trade places with your rival)\n", numbers(engine.Swap))
	fmt.Fprintf(&b, "• ❄️ Freeze: %s (your rival skips a turn)\n", numbers(engine.Freeze))
	fmt.Fprintf(&b, "• 🎁 Mystery: %s (a random reward)\n", numbers(engine.Mystery))

	b.WriteString("\nMYSTERY REWARDS:\n")
	for _, r := range engine.MysteryRewards() {
		fmt.Fprintf(&b, "• %s %s\n", r.Icon, r.Text)
	}

	b.WriteString(`
GARDEN EVENTS:
Every few rounds (see the ruleset) a garden event fires. If one racer is far behind they get
the comeback card instead. Events never carry anyone onto tile 64.
`)
	for _, card := range engine.EventCards() {
		fmt.Fprintf(&b, "• %s %s\n", card.Icon, card.Text)
	}

	b.WriteString("\nCHARACTERS:\n")
	for _, ch := range engine.Characters() {
		fmt.Fprintf(&b, "• %s %s (%s)\n", ch.Emoji, ch.Name, ch.ID)
	}

	b.WriteString("\nGood luck in the sky garden!\n")
	return b.String()
}

func pairs(t engine.TileType) string {
	var out []string
	for _, tile := range engine.Board() {
		if tile.Type == t {
			out = append(out, fmt.Sprintf("%d→%d", tile.Number, tile.Dest))
		}
	}
	return strings.Join(out, ", ")
}

func numbers(t engine.TileType) string {
	var out []string
	for _, tile := range engine.Board() {
		if tile.Type == t {
			out = append(out, fmt.Sprint(tile.Number))
		}
	}
	return strings.Join(out, ", ")
}
