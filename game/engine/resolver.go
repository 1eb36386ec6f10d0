package engine

import "errors"

var ErrNotPlaying = errors.New("game is not in progress")

// Outcome is the result of resolving one turn
type Outcome struct {
	State     Snapshot
	Effects   []Effect
	Card      *EventCard
	ExtraTurn bool
}

// ResolveTurn plays one turn for the current player. It never mutates s and
// draws every random decision from rng.
//
// Order of resolution:
//
//	frozen skip -> roll -> exact win / overshoot -> tile effect
//	(unshielded vine or cloud, shield block, double roll, swap, freeze, mystery)
//	-> win check -> round clock and event card -> pass the turn
//
// Exactly one tile effect applies per move. Frozen skips and overshoots do not
// advance the round clock.
func ResolveTurn(s Snapshot, rules *Rules, rng Source) (Outcome, error) {
	if s.Phase != PhasePlaying {
		return Outcome{State: s}, ErrNotPlaying
	}
	if rules == nil {
		rules = DefaultRules()
	}

	next := s
	next.LastRoll = 0
	next.LastBonus = 0
	cur := next.Current
	p := &next.Players[cur]
	var out Outcome

	if p.Frozen > 0 {
		p.Frozen--
		out.Effects = append(out.Effects, Effect{
			Kind: EffectFrozenSkip, Player: cur, From: p.Position, To: p.Position, Other: Other(cur),
		})
		next.Current = Other(cur)
		out.State = next
		return out, nil
	}

	roll := rng.Roll()
	next.LastRoll = roll
	from := p.Position
	target := from + roll

	if target > TotalTiles {
		out.Effects = append(out.Effects,
			Effect{Kind: EffectRolled, Player: cur, From: from, To: from, Roll: roll, Other: Other(cur)},
			Effect{Kind: EffectOvershoot, Player: cur, From: from, To: from, Roll: roll, Needed: TotalTiles - from, Other: Other(cur)},
		)
		next.Current = Other(cur)
		out.State = next
		return out, nil
	}

	out.Effects = append(out.Effects, Effect{Kind: EffectRolled, Player: cur, From: from, To: target, Roll: roll, Other: Other(cur)})
	p.Position = target

	if target < TotalTiles {
		out.Effects = append(out.Effects, applyTile(&next, cur, rng)...)
	}

	if p.Position == TotalTiles {
		next.Phase = PhaseWon
		next.Winner = cur
		out.Effects = append(out.Effects, Effect{Kind: EffectWon, Player: cur, From: from, To: TotalTiles, Other: Other(cur)})
		out.State = next
		return out, nil
	}

	next.Turns++
	if EventDue(next, rules) {
		drawn, card, extra := DrawEvent(next, rules, rng)
		next = drawn
		out.Card = &card
		out.ExtraTurn = extra
		out.Effects = append(out.Effects, Effect{Kind: EffectEvent, Player: cur, Card: &card, Other: Other(cur)})
	}

	if !out.ExtraTurn {
		next.Current = Other(cur)
	}
	out.State = next
	return out, nil
}

// applyTile applies the single effect of the tile the current player stands on
func applyTile(s *Snapshot, cur int, rng Source) []Effect {
	p := &s.Players[cur]
	tile := p.Position
	other := Other(cur)
	tileType := TileTypeAt(tile)

	// A shield holder never climbs a vine and keeps the shield there.
	switch {
	case tileType == Vine && !p.Shield:
		p.Position = vines[tile]
		return []Effect{{Kind: EffectVine, Player: cur, From: tile, To: p.Position, Other: other}}

	case tileType == Cloud && !p.Shield:
		p.Position = clouds[tile]
		return []Effect{{Kind: EffectCloud, Player: cur, From: tile, To: p.Position, Other: other}}

	case tileType == Cloud:
		p.Shield = false
		return []Effect{{Kind: EffectShieldBlock, Player: cur, From: tile, To: tile, Other: other}}

	case tileType == Double || p.DoubleNext:
		p.DoubleNext = false
		bonus := rng.Roll()
		s.LastBonus = bonus
		if tile+bonus > TotalTiles {
			return []Effect{
				{Kind: EffectDoubleRoll, Player: cur, From: tile, To: tile, Roll: bonus, Other: other},
				{Kind: EffectBonusOvershoot, Player: cur, From: tile, To: tile, Roll: bonus, Needed: TotalTiles - tile, Other: other},
			}
		}
		p.Position = tile + bonus
		return []Effect{{Kind: EffectDoubleRoll, Player: cur, From: tile, To: p.Position, Roll: bonus, Other: other}}

	case tileType == Swap:
		o := &s.Players[other]
		p.Position, o.Position = o.Position, p.Position
		return []Effect{{Kind: EffectSwap, Player: cur, From: tile, To: p.Position, Other: other}}

	case tileType == Freeze:
		s.Players[other].Frozen++
		return []Effect{{Kind: EffectFreeze, Player: cur, From: tile, To: tile, Other: other}}

	case tileType == Mystery:
		reward := mysteryRewards[rng.Intn(len(mysteryRewards))]
		applyMystery(p, reward)
		return []Effect{{Kind: EffectMystery, Player: cur, From: tile, To: p.Position, Reward: &reward, Other: other}}
	}
	return nil
}
