package engine

import "fmt"

var eventCards = []EventCard{
	{Kind: EventWindstorm, Icon: "🌪", Text: "Windstorm! Both players move back 3 tiles."},
	{Kind: EventBlossom, Icon: "🌸", Text: "Cherry Blossom! Both players move forward 3 tiles."},
	{Kind: EventChaosDice, Icon: "🎲", Text: "Chaos Dice! All players re-roll their position (within 5 tiles)."},
	{Kind: EventMirror, Icon: "🔀", Text: "Mirror World! Swap all players' positions!"},
	{Kind: EventTimeFreeze, Icon: "⏸️", Text: "Time Freeze! Current player gets an extra turn."},
	{Kind: EventShootingStar, Icon: "🌟", Text: "Shooting Star! Trailing player jumps to halfway point."},
}

// EventCards returns the regular event deck (the comeback card is not drawn
// from it)
func EventCards() []EventCard {
	out := make([]EventCard, len(eventCards))
	copy(out, eventCards)
	return out
}

// EventDue reports whether the round clock has just reached an event round
func EventDue(s Snapshot, rules *Rules) bool {
	return s.Turns > 0 && s.Turns%2 == 0 && s.Round()%rules.EventEvery == 0
}

// DrawEvent applies an event card to both players. A position gap wider than
// the comeback threshold always yields the comeback card. The returned bool is
// true when the current player keeps the turn. Events never move a player onto
// the last tile.
func DrawEvent(s Snapshot, rules *Rules, rng Source) (Snapshot, EventCard, bool) {
	next := s
	trailing := Trailing(next)

	if Gap(next) > rules.ComebackGap {
		card := EventCard{
			Kind: EventComeback,
			Icon: "🌟",
			Text: fmt.Sprintf("Comeback! The trailing player leaps forward %d tiles!", rules.ComebackBoost),
		}
		t := &next.Players[trailing]
		t.Position = min(t.Position+rules.ComebackBoost, EventCap)
		return next, card, false
	}

	card := eventCards[rng.Intn(len(eventCards))]
	switch card.Kind {
	case EventWindstorm:
		for i := range next.Players {
			next.Players[i].Position = max(0, next.Players[i].Position-EventStep)
		}
	case EventBlossom:
		for i := range next.Players {
			next.Players[i].Position = min(EventCap, next.Players[i].Position+EventStep)
		}
	case EventChaosDice:
		for i := range next.Players {
			offset := rng.Intn(2*ChaosRange+1) - ChaosRange
			next.Players[i].Position = clamp(next.Players[i].Position+offset, 0, EventCap)
		}
	case EventMirror:
		next.Players[0].Position, next.Players[1].Position = next.Players[1].Position, next.Players[0].Position
	case EventTimeFreeze:
		return next, card, true
	case EventShootingStar:
		if gap := Gap(next); gap > 0 {
			t := &next.Players[trailing]
			t.Position = min(t.Position+(gap+1)/2, EventCap)
		}
	}
	return next, card, false
}

// Trailing returns the index of the player further from the goal. Ties go to
// the second player.
func Trailing(s Snapshot) int {
	if s.Players[0].Position < s.Players[1].Position {
		return 0
	}
	return 1
}

// Gap returns the distance between the two players
func Gap(s Snapshot) int {
	return abs(s.Players[0].Position - s.Players[1].Position)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
