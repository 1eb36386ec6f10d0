package main

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Settings are the process settings read from the environment. Command line
// flags use them as defaults, so a flag always wins over a variable.
type Settings struct {
	Host      string `env:"SKYGARDEN_HOST" envDefault:"localhost"`
	Port      int    `env:"SKYGARDEN_PORT" envDefault:"8080"`
	ConfigDir string `env:"SKYGARDEN_CONFIG_DIR"`
	StaticDir string `env:"SKYGARDEN_STATIC_DIR" envDefault:"./static/"`
	Locale    string `env:"SKYGARDEN_LOCALE" envDefault:"en-US"`

	Debug     bool   `env:"SKYGARDEN_DEBUG"`
	LogFormat string `env:"SKYGARDEN_LOG_FORMAT" envDefault:"text"`

	OtelEndpoint string `env:"SKYGARDEN_OTEL_ENDPOINT"`

	SessionTTL      time.Duration `env:"SKYGARDEN_SESSION_TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"SKYGARDEN_CLEANUP_INTERVAL" envDefault:"1h"`

	// ExternalAPI is probed by the mcp command before it starts its own server
	ExternalAPI string `env:"SKYGARDEN_API_URL" envDefault:"http://localhost:8080"`

	Ngrok NgrokSettings
}

// NgrokSettings keeps the variable names the ngrok tooling already uses
type NgrokSettings struct {
	Enabled   bool   `env:"NGROK_ENABLED"`
	AuthToken string `env:"NGROK_AUTHTOKEN"`
	Domain    string `env:"NGROK_DOMAIN"`
}

// loadSettings reads .env when present and parses the environment.
func loadSettings() (*Settings, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Error loading .env file: %v", err)
		}
	} else {
		log.Debug("Loaded environment variables from .env file")
	}

	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	s.applyFallbacks()
	return &s, nil
}

func (s *Settings) applyFallbacks() {
	if s.ConfigDir == "" {
		s.ConfigDir = os.Getenv("CONFIG_DIR")
	}
	if s.ConfigDir == "" {
		s.ConfigDir = "configs"
	}
	if s.Ngrok.AuthToken == "" {
		s.Ngrok.AuthToken = os.Getenv("NGROK_AUTH_TOKEN")
	}
}

// setupLogging configures the global logrus logger
func setupLogging(debug bool, format string) error {
	log.SetOutput(os.Stderr)
	switch format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q (use text or json)", format)
	}

	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportCaller(true)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	return nil
}
