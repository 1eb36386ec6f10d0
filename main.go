// Command sky-garden-race runs the Sky Garden Race server and tools.
//
// Commands:
//  1. "serve" (default) – HTTP server exposing the REST API, WebSocket, and an /mcp endpoint
//  2. "mcp" – MCP stdio server; reuses a running API or spins up an internal one
//  3. "play" – a hot-seat game in the terminal
//  4. "board" – prints the board
//
// Settings come from SKYGARDEN_* environment variables (and .env); flags
// override them.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/sky-garden-race/game/config"
	"github.com/wricardo/sky-garden-race/game/narrator"
	"github.com/wricardo/sky-garden-race/game/service"
	"github.com/wricardo/sky-garden-race/game/session"
	"github.com/wricardo/sky-garden-race/telemetry"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Sky Garden Race"
)

func main() {
	settings, err := loadSettings()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	if err := newCommand(settings).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newCommand builds the command tree. Flag defaults come from settings.
func newCommand(s *Settings) *cli.Command {
	return &cli.Command{
		Name:    "sky-garden-race",
		Usage:   "two-player snakes and ladders race through a sky garden",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: s.Host, Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: s.Port, Usage: "HTTP server port"},
			&cli.StringFlag{Name: "config-dir", Value: s.ConfigDir, Usage: "directory containing rulesets"},
			&cli.StringFlag{Name: "static-dir", Value: s.StaticDir, Usage: "directory served at /"},
			&cli.StringFlag{Name: "locale", Value: s.Locale, Usage: "locale for tile descriptions"},
			&cli.BoolFlag{Name: "debug", Value: s.Debug, Usage: "enable debug logging"},
			&cli.StringFlag{Name: "log-format", Value: s.LogFormat, Usage: "log format: text or json"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			s.Host = cmd.String("host")
			s.Port = int(cmd.Int("port"))
			s.ConfigDir = cmd.String("config-dir")
			s.StaticDir = cmd.String("static-dir")
			s.Locale = cmd.String("locale")
			s.Debug = cmd.Bool("debug")
			s.LogFormat = cmd.String("log-format")
			return ctx, setupLogging(s.Debug, s.LogFormat)
		},
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			serveCommand(s),
			{
				Name:  "mcp",
				Usage: "run an MCP stdio server backed by the REST API",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runStdioMCP(ctx, s)
				},
			},
			playCommand(s),
			{
				Name:  "board",
				Usage: "print the board",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					printBoard(os.Stdout, narrator.New(s.Locale))
					return nil
				},
			},
		},
	}
}

func serveCommand(s *Settings) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket and /mcp endpoint",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "ngrok", Value: s.Ngrok.Enabled, Usage: "enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Value: s.Ngrok.AuthToken, Usage: "ngrok auth token"},
			&cli.StringFlag{Name: "ngrok-domain", Value: s.Ngrok.Domain, Usage: "custom ngrok domain (optional)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s.Ngrok.Enabled = cmd.Bool("ngrok")
			s.Ngrok.AuthToken = cmd.String("ngrok-auth")
			s.Ngrok.Domain = cmd.String("ngrok-domain")
			return runServe(ctx, s)
		},
	}
}

func playCommand(s *Settings) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "play a hot-seat game in the terminal",
		ArgsUsage: "[ruleset]",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "seed", Usage: "dice seed for a reproducible game (0 = random)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var opts []session.Option
			if seed := cmd.Uint64("seed"); seed != 0 {
				opts = append(opts, session.WithSourceFactory(seededSource(seed)))
			}
			svc, _, err := initializeServices(s, opts...)
			if err != nil {
				return err
			}
			return playGame(ctx, svc, cmd.Args().First(), os.Stdin, os.Stdout)
		},
	}
}

// initializeServices wires the config and session managers into the game service.
func initializeServices(s *Settings, opts ...session.Option) (service.GameService, *session.Manager, error) {
	configManager, err := config.NewManager(s.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager(opts...)
	gameService := service.NewGameService(sessionManager, configManager, narrator.New(s.Locale))

	log.WithFields(log.Fields{
		"config_dir": s.ConfigDir,
		"default":    configManager.GetDefault().Name,
	}).Debug("Services initialized")

	return gameService, sessionManager, nil
}

// startTelemetry installs tracing when an endpoint is configured
func startTelemetry(ctx context.Context, s *Settings) func() {
	shutdown, err := telemetry.Setup(ctx, "sky-garden-race", Version, s.OtelEndpoint)
	if err != nil {
		log.Warnf("Tracing disabled: %v", err)
		return func() {}
	}
	if s.OtelEndpoint != "" {
		log.Infof("Exporting traces to %s", s.OtelEndpoint)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Warnf("Tracing shutdown: %v", err)
		}
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl, until ctx is done.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Infof("Cleaned up %d expired sessions", removed)
			}
		}
	}
}
