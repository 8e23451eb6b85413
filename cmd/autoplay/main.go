// Command autoplay plays a whole gift journey against a running server: it
// starts the journey, solves every mini-game through the REST API, then opens
// the finale and reveals the secret. It is a smoke test for a deployed server
// and a quick way to reach the finale while editing content.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/gift-journey/game/engine"
	"github.com/wricardo/gift-journey/game/journey"
	"github.com/wricardo/gift-journey/game/service"
)

const sessionFile = ".session"

// Options controls one autoplay run
type Options struct {
	Content  string
	Continue string
	Replay   bool
	Games    []engine.GameID
}

// Run plays the journey and returns the finale it reached
func Run(p *Player, opts Options) (*service.FinaleView, error) {
	c := p.client

	if opts.Continue != "" {
		c.sessionID = opts.Continue
		if _, err := c.GetSession(); err != nil {
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
				return nil, err
			}
			log.Warn().Str("session", opts.Continue).Msg("session not found (may be expired), creating a new one")
			c.sessionID = ""
		} else {
			log.Info().Str("session", c.sessionID).Msg("resuming session")
		}
	}

	if c.sessionID == "" {
		info, err := c.CreateSession(opts.Content)
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		log.Info().Str("session", info.ID).Str("content", info.ContentName).Msg("session created")
	}

	status, err := c.Journey()
	if err != nil {
		return nil, err
	}
	if status.Screen == journey.ScreenIntro {
		if _, err := c.Start(); err != nil {
			return nil, fmt.Errorf("start journey: %w", err)
		}
	} else if status.Screen != journey.ScreenMap {
		// Back out of whatever screen a resumed session was left on
		if _, err := c.Leave(); err != nil {
			return nil, fmt.Errorf("leave: %w", err)
		}
	}

	games := opts.Games
	if len(games) == 0 {
		games = engine.AllGames
	}
	for _, game := range games {
		if !opts.Replay && completed(status, game) {
			log.Info().Str("game", string(game)).Msg("already complete, skipping")
			continue
		}

		start := time.Now()
		if err := p.Play(game); err != nil {
			return nil, fmt.Errorf("%s: %w", game, err)
		}

		status, err = c.Journey()
		if err != nil {
			return nil, err
		}
		if !completed(status, game) {
			return nil, fmt.Errorf("%s: solved but not marked complete", game)
		}
		log.Info().
			Str("game", string(game)).
			Dur("took", time.Since(start)).
			Int("completed", status.Completed).
			Int("total", status.Total).
			Msg("game complete")
	}

	if !status.FinaleUnlocked {
		return nil, fmt.Errorf("finale still locked: %d/%d games complete", status.Completed, status.Total)
	}
	if _, err := c.OpenFinale(); err != nil {
		return nil, fmt.Errorf("open finale: %w", err)
	}
	view, err := c.RevealSecret()
	if err != nil {
		return nil, fmt.Errorf("reveal secret: %w", err)
	}
	return view, nil
}

func completed(status *journey.Status, game engine.GameID) bool {
	for _, g := range status.Games {
		if g.ID == game {
			return g.Completed
		}
	}
	return false
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("v") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var games []engine.GameID
	for _, name := range cmd.StringSlice("game") {
		id, err := engine.ParseGameID(name)
		if err != nil {
			return err
		}
		games = append(games, id)
	}

	resume := cmd.String("continue")
	if resume == "" && !cmd.Bool("fresh") {
		if data, err := os.ReadFile(sessionFile); err == nil {
			resume = string(bytes.TrimSpace(data))
		}
	}

	log.Info().Str("url", cmd.String("url")).Msg("connecting to journey server")
	client := NewClient(cmd.String("url"))
	player := NewPlayer(client)
	player.delay = cmd.Duration("delay")

	view, err := Run(player, Options{
		Content:  cmd.String("content"),
		Continue: resume,
		Replay:   cmd.Bool("replay"),
		Games:    games,
	})
	if client.sessionID != "" {
		if werr := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); werr != nil {
			log.Warn().Err(werr).Msg("failed to save session ID")
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("\n🎉 Journey complete (session %s)\n\n%s\n\n%s\n%s\n", client.sessionID, view.Letter, view.SecretQuestion, view.SecretAccepted)
	return nil
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Play a whole gift journey against a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Journey server URL"},
			&cli.StringFlag{Name: "content", Usage: "Content bundle for a new session"},
			&cli.StringFlag{Name: "continue", Usage: "Resume an existing session by ID"},
			&cli.BoolFlag{Name: "fresh", Usage: "Ignore the saved session and start a new one"},
			&cli.BoolFlag{Name: "replay", Usage: "Replay games that are already complete"},
			&cli.StringSliceFlag{Name: "game", Usage: "Play only these games, in order (repeatable)"},
			&cli.DurationFlag{Name: "delay", Usage: "Pause between moves, e.g. 200ms"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("autoplay failed")
		os.Exit(1)
	}
}
