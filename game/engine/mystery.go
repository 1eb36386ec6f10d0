package engine

var mysteryRewards = []MysteryReward{
	{Kind: RewardRocket, Icon: "🚀", Text: "Rocket Boost! Move +6 tiles"},
	{Kind: RewardShield, Icon: "🛡️", Text: "Cloud Shield! Immune to next cloud"},
	{Kind: RewardStar, Icon: "⭐", Text: "Star Power! Roll twice next turn"},
	{Kind: RewardRainbow, Icon: "🌈", Text: "Rainbow Jump! Jump to nearest vine"},
	{Kind: RewardLucky, Icon: "💫", Text: "Lucky Star! Skip any cloud once"},
}

// MysteryRewards returns the reward table drawn from on mystery tiles
func MysteryRewards() []MysteryReward {
	out := make([]MysteryReward, len(mysteryRewards))
	copy(out, mysteryRewards)
	return out
}

// applyMystery grants a reward to p. Movement rewards follow the exact-landing
// rule: a boost that would pass the last tile is lost.
func applyMystery(p *Player, reward MysteryReward) {
	switch reward.Kind {
	case RewardRocket:
		if p.Position+RocketBoost <= TotalTiles {
			p.Position += RocketBoost
		}
	case RewardShield, RewardLucky:
		p.Shield = true
	case RewardStar:
		p.DoubleNext = true
	case RewardRainbow:
		if _, dest, ok := NearestVineAbove(p.Position); ok {
			p.Position = dest
		}
	}
}
