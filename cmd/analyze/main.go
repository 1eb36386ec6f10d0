// Command analyze plays many seeded games for each ruleset in the configs
// directory and prints how they tend to go: win rates per seat, game length,
// how often each tile effect triggers and which garden events fire.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/wricardo/sky-garden-race/game/config"
	"github.com/wricardo/sky-garden-race/game/engine"
)

// maxTurns stops a simulated game that never finishes
const maxTurns = 10000

// Report summarizes a batch of simulated games for one ruleset.
type Report struct {
	Ruleset    string
	Games      int
	Unfinished int
	Wins       [engine.PlayerCount]int
	TotalTurns int
	MinRounds  int
	MaxRounds  int
	SumRounds  int
	Effects    map[engine.EffectKind]int
	Events     map[engine.EventKind]int
}

// AvgRounds is the mean length of finished games
func (r *Report) AvgRounds() float64 {
	finished := r.Games - r.Unfinished
	if finished == 0 {
		return 0
	}
	return float64(r.SumRounds) / float64(finished)
}

// WinRate returns the share of finished games won by player
func (r *Report) WinRate(player int) float64 {
	finished := r.Games - r.Unfinished
	if finished == 0 {
		return 0
	}
	return float64(r.Wins[player]) / float64(finished)
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "simulate games for each ruleset and report statistics",
		ArgsUsage: "[ruleset...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory containing rulesets"},
			&cli.IntFlag{Name: "games", Value: 1000, Usage: "games per ruleset"},
			&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "first dice seed; game i uses seed+i"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(os.Stdout, cmd.String("config-dir"), cmd.Args().Slice(), int(cmd.Int("games")), cmd.Uint64("seed"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(out io.Writer, configDir string, names []string, games int, seed uint64) error {
	if games <= 0 {
		return fmt.Errorf("games must be positive, got %d", games)
	}

	manager, err := config.NewManager(configDir)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		infos, err := manager.ListConfigs()
		if err != nil {
			return err
		}
		for _, info := range infos {
			names = append(names, info.ConfigID)
		}
	}

	for _, name := range names {
		rules, err := manager.LoadConfig(name)
		if err != nil {
			log.WithField("ruleset", name).Warnf("Skipping: %v", err)
			continue
		}

		report, err := Simulate(rules, games, seed)
		if err != nil {
			return fmt.Errorf("simulate %s: %w", name, err)
		}
		printReport(out, report)
	}
	return nil
}

// Simulate plays games seeded seed, seed+1, ... with the same two characters.
func Simulate(rules *engine.Rules, games int, seed uint64) (*Report, error) {
	report := &Report{
		Ruleset: rules.Name,
		Games:   games,
		Effects: make(map[engine.EffectKind]int),
		Events:  make(map[engine.EventKind]int),
	}

	for i := 0; i < games; i++ {
		eng, err := engine.NewEngine(rules, engine.NewSeededSource(seed+uint64(i)), nil)
		if err != nil {
			return nil, err
		}
		if err := playOut(eng, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func playOut(eng *engine.GameEngine, report *Report) error {
	if err := eng.SelectCharacter(0, "bunny"); err != nil {
		return err
	}
	if err := eng.SelectCharacter(1, "fox"); err != nil {
		return err
	}
	if err := eng.Start(); err != nil {
		return err
	}

	for turns := 0; !eng.IsOver(); turns++ {
		if turns == maxTurns {
			report.Unfinished++
			return nil
		}
		turn, err := eng.Roll()
		if err != nil {
			return err
		}
		report.TotalTurns++
		for _, effect := range turn.Effects {
			report.Effects[effect.Kind]++
		}
		if turn.Card != nil {
			report.Events[turn.Card.Kind]++
		}
	}

	rounds := eng.Round()
	report.Wins[eng.Winner()]++
	report.SumRounds += rounds
	if report.MinRounds == 0 || rounds < report.MinRounds {
		report.MinRounds = rounds
	}
	if rounds > report.MaxRounds {
		report.MaxRounds = rounds
	}
	return nil
}

func printReport(out io.Writer, r *Report) {
	p := message.NewPrinter(language.English)

	p.Fprintf(out, "\n=== %s ===\n", r.Ruleset)
	p.Fprintf(out, "Games: %d (%d turns, %d unfinished)\n", r.Games, r.TotalTurns, r.Unfinished)
	for i := range r.Wins {
		p.Fprintf(out, "Player %d wins: %d (%.1f%%)\n", i+1, r.Wins[i], 100*r.WinRate(i))
	}
	p.Fprintf(out, "Rounds: avg %.1f, min %d, max %d\n", r.AvgRounds(), r.MinRounds, r.MaxRounds)

	p.Fprintln(out, "Tile effects per game:")
	for _, kind := range sortedKeys(r.Effects) {
		p.Fprintf(out, "  %-16s %.2f\n", kind, float64(r.Effects[kind])/float64(r.Games))
	}

	if len(r.Events) == 0 {
		p.Fprintln(out, "Garden events: none")
		return
	}
	p.Fprintln(out, "Garden events:")
	for _, kind := range sortedKeys(r.Events) {
		p.Fprintf(out, "  %-16s %d\n", kind, r.Events[kind])
	}
}

func sortedKeys[K ~string](m map[K]int) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
