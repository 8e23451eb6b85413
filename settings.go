package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

// Settings is the server configuration. Values come from the environment
// (optionally seeded by a .env file) and command line flags override them.
type Settings struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"8080"`
	ContentDir      string        `env:"CONTENT_DIR" envDefault:"content"`
	DefaultContent  string        `env:"DEFAULT_CONTENT"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`
	Ngrok           NgrokSettings `envPrefix:"NGROK_"`
}

// NgrokSettings controls the optional public tunnel
type NgrokSettings struct {
	Enabled   bool   `env:"ENABLED"`
	AuthToken string `env:"AUTHTOKEN"`
	Domain    string `env:"DOMAIN"`
}

// Addr is the host:port the HTTP server binds
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func loadSettings() (*Settings, error) {
	s, err := env.ParseAs[Settings]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if s.Ngrok.AuthToken == "" {
		s.Ngrok.AuthToken = os.Getenv("NGROK_AUTH_TOKEN")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", s.SessionTTL)
	}
	if s.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive, got %s", s.CleanupInterval)
	}
	return nil
}

// applyFlags overrides settings with the flags given on the command line
func (s *Settings) applyFlags(cmd *cli.Command) error {
	if cmd.IsSet("host") {
		s.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		s.Port = cmd.Int("port")
	}
	if cmd.IsSet("content-dir") {
		s.ContentDir = cmd.String("content-dir")
	}
	if cmd.IsSet("default-content") {
		s.DefaultContent = cmd.String("default-content")
	}
	if cmd.IsSet("log-level") {
		s.LogLevel = cmd.String("log-level")
	}
	if cmd.Bool("debug") {
		s.LogLevel = "debug"
	}
	if cmd.IsSet("ngrok") {
		s.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		s.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		s.Ngrok.Domain = cmd.String("ngrok-domain")
	}
	return s.validate()
}

func settingsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "host", Usage: "HTTP server host (HOST)"},
		&cli.IntFlag{Name: "port", Usage: "HTTP server port (PORT)"},
		&cli.StringFlag{Name: "content-dir", Usage: "Directory containing content bundles (CONTENT_DIR)"},
		&cli.StringFlag{Name: "default-content", Usage: "Bundle used when a session names none (DEFAULT_CONTENT)"},
		&cli.StringFlag{Name: "log-level", Usage: "trace, debug, info, warn or error (LOG_LEVEL)"},
		&cli.BoolFlag{Name: "debug", Usage: "Shorthand for --log-level debug"},
		&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel (NGROK_ENABLED)"},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token (NGROK_AUTHTOKEN)"},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (NGROK_DOMAIN)"},
	}
}

// setupLogging configures the global zerolog logger. Stdio MCP mode owns
// stdout, so logs always go to stderr.
func setupLogging(s *Settings, w io.Writer) {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if s.LogFormat == "json" {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
}
