package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wricardo/sky-garden-race/game/engine"
	"github.com/wricardo/sky-garden-race/game/service"
)

var tileGlyphs = map[engine.TileType]string{
	engine.Normal:  " ",
	engine.Vine:    "V",
	engine.Cloud:   "C",
	engine.Double:  "D",
	engine.Swap:    "S",
	engine.Freeze:  "F",
	engine.Mystery: "?",
}

func seededSource(seed uint64) func() engine.Source {
	return func() engine.Source {
		return engine.NewSeededSource(seed)
	}
}

// prompter reads answers line by line
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// ask prints a prompt and returns the trimmed answer; false on end of input
func (p *prompter) ask(format string, args ...interface{}) (string, bool) {
	fmt.Fprintf(p.out, format, args...)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

// playGame runs a hot-seat game on in/out until someone wins or input ends.
func playGame(ctx context.Context, svc service.GameService, ruleset string, in io.Reader, out io.Writer) error {
	info, err := svc.CreateSession(ctx, ruleset)
	if err != nil {
		return err
	}
	defer svc.DeleteSession(ctx, info.ID)

	p := &prompter{in: bufio.NewScanner(in), out: out}
	fmt.Fprintf(out, "🌸 %s (ruleset: %s)\n\n", AppName, info.ConfigName)

	chars := engine.Characters()
	for player := 0; player < engine.PlayerCount; player++ {
		for {
			fmt.Fprintf(out, "Characters for player %d:\n", player+1)
			for i, ch := range chars {
				fmt.Fprintf(out, "  %d) %s %s\n", i+1, ch.Emoji, ch.Name)
			}
			answer, ok := p.ask("Player %d, choose a character: ", player+1)
			if !ok {
				fmt.Fprintln(out, "Goodbye!")
				return nil
			}

			_, err := svc.SelectCharacter(ctx, info.ID, player, characterChoice(answer, chars))
			if err == nil {
				break
			}
			if errors.Is(err, engine.ErrCharacterTaken) {
				fmt.Fprintln(out, "That character is already taken.")
			} else {
				fmt.Fprintf(out, "Invalid choice: %v\n", err)
			}
		}
	}

	state, err := svc.StartGame(ctx, info.ID)
	if err != nil {
		return err
	}
	if n := len(state.Log); n > 0 {
		fmt.Fprintf(out, "\n%s\n", state.Log[n-1].Text)
	}

	for {
		current := state.Players[state.Current]
		answer, ok := p.ask("\n%s, press Enter to roll (q to quit): ", label(current))
		if !ok || strings.EqualFold(answer, "q") {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		result, err := svc.Roll(ctx, info.ID)
		if err != nil {
			return err
		}
		state = result.GameState

		for _, event := range result.Events {
			if event.Message != "" {
				fmt.Fprintf(out, "  %s\n", event.Message)
			}
		}
		if result.Card != nil {
			fmt.Fprintf(out, "  ✨ %s %s\n", result.Card.Icon, result.Card.Text)
		}
		fmt.Fprintf(out, "  %s\n", positions(state))

		if result.Winner != engine.NoWinner {
			fmt.Fprintf(out, "\n🏆 %s wins after %d rounds!\n", label(state.Players[result.Winner]), state.Round)
			return nil
		}
	}
}

// characterChoice accepts a menu number or a character id
func characterChoice(answer string, chars []engine.Character) string {
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(chars) {
		return chars[n-1].ID
	}
	return strings.ToLower(answer)
}

func label(p engine.Player) string {
	if p.Character != nil {
		return p.Character.Emoji + " " + p.Character.Name
	}
	return p.Name
}

func positions(state *engine.GameState) string {
	parts := make([]string, 0, engine.PlayerCount)
	for _, p := range state.Players {
		parts = append(parts, fmt.Sprintf("%s: %d", label(p), p.Position))
	}
	return fmt.Sprintf("Round %d | %s", state.Round, strings.Join(parts, " | "))
}

// printBoard draws the serpentine grid with tile markers, then lists the
// special tiles in the describer's language.
func printBoard(out io.Writer, describer service.Describer) {
	var grid [engine.TotalTiles / engine.BoardCols][engine.BoardCols]engine.Tile
	tiles := engine.Board()
	for _, tile := range tiles {
		grid[tile.Row][tile.Col] = tile
	}

	border := "+" + strings.Repeat("----+", engine.BoardCols)
	fmt.Fprintln(out, border)
	for _, row := range grid {
		fmt.Fprint(out, "|")
		for _, tile := range row {
			fmt.Fprintf(out, " %2d%s|", tile.Number, tileGlyphs[tile.Type])
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, border)
	}
	fmt.Fprintln(out, "V vine  C cloud  D double  S swap  F freeze  ? mystery")
	fmt.Fprintln(out)

	for _, tile := range tiles {
		if tile.Type == engine.Normal && tile.Number != engine.TotalTiles {
			continue
		}
		fmt.Fprintf(out, "%2d  %s\n", tile.Number, describer.DescribeTile(tile))
	}
}
