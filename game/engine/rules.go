package engine

import (
	"fmt"
	"strings"
)

// Rule limits
const (
	DefaultEventEvery    = 5
	DefaultComebackGap   = 15
	DefaultComebackBoost = 8
	DefaultLocale        = "en-US"

	MinEventEvery    = 1
	MaxEventEvery    = 20
	MinComebackGap   = 1
	MaxComebackGap   = EventCap
	MinComebackBoost = 1
	MaxComebackBoost = 20
	MinLogLimit      = 1
	MaxLogLimit      = 500
)

// Rules holds the tunable parameters of a game. The board itself is fixed.
type Rules struct {
	Name          string `json:"name" hcl:"name"`
	Description   string `json:"description" hcl:"description"`
	EventEvery    int    `json:"event_every" hcl:"event_every,optional"`
	ComebackGap   int    `json:"comeback_gap" hcl:"comeback_gap,optional"`
	ComebackBoost int    `json:"comeback_boost" hcl:"comeback_boost,optional"`
	LogLimit      int    `json:"log_limit" hcl:"log_limit,optional"`
	Locale        string `json:"locale" hcl:"locale,optional"`
}

// DefaultRules returns the classic Sky Garden rules
func DefaultRules() *Rules {
	return &Rules{
		Name:          "classic",
		Description:   "The original Sky Garden Race: events every 5 rounds, comeback over 15 tiles",
		EventEvery:    DefaultEventEvery,
		ComebackGap:   DefaultComebackGap,
		ComebackBoost: DefaultComebackBoost,
		LogLimit:      DefaultLogSize,
		Locale:        DefaultLocale,
	}
}

// ApplyDefaults fills zero-valued optional fields
func (r *Rules) ApplyDefaults() {
	if r.EventEvery == 0 {
		r.EventEvery = DefaultEventEvery
	}
	if r.ComebackGap == 0 {
		r.ComebackGap = DefaultComebackGap
	}
	if r.ComebackBoost == 0 {
		r.ComebackBoost = DefaultComebackBoost
	}
	if r.LogLimit == 0 {
		r.LogLimit = DefaultLogSize
	}
	if strings.TrimSpace(r.Locale) == "" {
		r.Locale = DefaultLocale
	}
}

// ValidateRules validates a ruleset for correctness
func ValidateRules(rules *Rules) error {
	if rules == nil {
		return fmt.Errorf("rules validation: rules are required")
	}
	if strings.TrimSpace(rules.Name) == "" {
		return fmt.Errorf("rules validation: name is required")
	}
	if strings.TrimSpace(rules.Description) == "" {
		return fmt.Errorf("rules validation: description is required")
	}
	if rules.EventEvery < MinEventEvery || rules.EventEvery > MaxEventEvery {
		return fmt.Errorf("rules validation: event_every must be between %d and %d, got %d",
			MinEventEvery, MaxEventEvery, rules.EventEvery)
	}
	if rules.ComebackGap < MinComebackGap || rules.ComebackGap > MaxComebackGap {
		return fmt.Errorf("rules validation: comeback_gap must be between %d and %d, got %d",
			MinComebackGap, MaxComebackGap, rules.ComebackGap)
	}
	if rules.ComebackBoost < MinComebackBoost || rules.ComebackBoost > MaxComebackBoost {
		return fmt.Errorf("rules validation: comeback_boost must be between %d and %d, got %d",
			MinComebackBoost, MaxComebackBoost, rules.ComebackBoost)
	}
	if rules.LogLimit < MinLogLimit || rules.LogLimit > MaxLogLimit {
		return fmt.Errorf("rules validation: log_limit must be between %d and %d, got %d",
			MinLogLimit, MaxLogLimit, rules.LogLimit)
	}
	if strings.TrimSpace(rules.Locale) == "" {
		return fmt.Errorf("rules validation: locale is required")
	}
	return nil
}
