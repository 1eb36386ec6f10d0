// Package config provides ruleset management for Sky Garden Race.
//
// The config package handles:
//   - Loading rulesets from JSON and HCL files
//   - Filling defaults and validating ranges
//   - Default ruleset selection
//   - Ruleset discovery, listing and saving
//
// Ruleset Format:
//
// Rulesets live in the configs directory as either .json or .hcl files.
// The board is fixed; a ruleset only tunes the event cadence, the comeback
// card, the log size and the narration locale. HCL files may use the board
// and defaults variables:
//
//	name           = "gentle"
//	description    = "Calm skies"
//	event_every    = defaults.event_every * 2
//	comeback_gap   = board.goal / 4
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rules, err := manager.LoadConfig("chaos")
//	defaultRules := manager.GetDefault()
//	configs, err := manager.ListConfigs()
package config
