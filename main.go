// Command gift-journey starts the gift journey server.
//
// It supports two modes:
//  1. "server" (default) runs the HTTP server exposing the REST API, the
//     WebSocket state stream and an /mcp HTTP endpoint
//  2. "stdio-mcp" runs an MCP stdio server, reusing a running API server or
//     starting an internal one on a loopback port
//
// Settings come from the environment (and a .env file when present); flags
// override them. An optional ngrok tunnel exposes the server publicly during
// development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/gift-journey/api"
	"github.com/wricardo/gift-journey/game/config"
	"github.com/wricardo/gift-journey/game/service"
	"github.com/wricardo/gift-journey/game/session"
	"github.com/wricardo/gift-journey/transport/mcp"
	"github.com/wricardo/gift-journey/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Gift Journey Server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: loading .env file: %v\n", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "gift-journey",
		Usage:   AppName,
		Version: Version,
		Flags:   settingsFlags(),
		Action:  runServerCommand,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServerCommand,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server backed by an existing or internal HTTP API",
				Action:  runStdioCommand,
			},
		},
	}
}

// prepare resolves settings and configures logging for a command
func prepare(cmd *cli.Command) (*Settings, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	if err := settings.applyFlags(cmd); err != nil {
		return nil, err
	}
	setupLogging(settings, os.Stderr)
	return settings, nil
}

func runServerCommand(ctx context.Context, cmd *cli.Command) error {
	settings, err := prepare(cmd)
	if err != nil {
		return err
	}
	log.Info().Str("version", Version).Str("mode", "server").Msgf("starting %s", AppName)
	return runHTTPServer(ctx, settings)
}

func runStdioCommand(ctx context.Context, cmd *cli.Command) error {
	settings, err := prepare(cmd)
	if err != nil {
		return err
	}
	log.Info().Str("version", Version).Str("mode", "stdio-mcp").Msgf("starting %s", AppName)
	return runStdioMCP(ctx, settings)
}

// initializeServices wires the content and session managers into the game
// service. The notifier may be nil when nothing listens for pushes.
func initializeServices(settings *Settings, notifier service.Notifier) (service.GameService, *session.Manager, error) {
	contents, err := config.NewManager(settings.ContentDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create content manager: %w", err)
	}
	if settings.DefaultContent != "" {
		if err := contents.SetDefault(settings.DefaultContent); err != nil {
			return nil, nil, fmt.Errorf("failed to set default content: %w", err)
		}
	}

	sessions := session.NewManager()

	var opts []service.Option
	if notifier != nil {
		opts = append(opts, service.WithNotifier(notifier))
	}
	return service.NewGameService(sessions, contents, opts...), sessions, nil
}

// runHTTPServer serves the REST API, WebSocket hub and /mcp endpoint until ctx
// is cancelled. With ngrok enabled the same router is also served through a
// public tunnel.
func runHTTPServer(ctx context.Context, settings *Settings) error {
	hub := websocket.NewHub()
	gameService, sessions, err := initializeServices(settings, hub)
	if err != nil {
		return err
	}

	addr := settings.Addr()
	mcpClient := mcp.NewClient("http://" + addr)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(gameService, hub))
	mainRouter.Handle("/mcp", mcpHandler(mcpClient.GetMCPServer()))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		cleanupLoop(gctx, sessions, settings.CleanupInterval, settings.SessionTTL)
		return nil
	})

	if settings.Ngrok.Enabled {
		g.Go(func() error {
			runNgrok(gctx, settings.Ngrok, mainRouter)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// mcpHandler answers single JSON-RPC messages posted to /mcp
func mcpHandler(mcpServer *server.MCPServer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error().Err(err).Msg("failed to encode MCP response")
		}
	})
}

// cleanupLoop removes sessions idle for longer than ttl every interval
func cleanupLoop(ctx context.Context, sessions *session.Manager, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := sessions.CleanupExpiredSessions(ttl); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// runNgrok serves handler through an ngrok tunnel until ctx is cancelled.
// Tunnel failures are logged and leave the local server running.
func runNgrok(ctx context.Context, settings NgrokSettings, handler http.Handler) {
	if settings.AuthToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	tunnel := ngrokConfig.HTTPEndpoint()
	if settings.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.Domain))
		log.Info().Str("domain", settings.Domain).Msg("using custom ngrok domain")
	}

	log.Info().Msg("starting ngrok tunnel")
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(settings.AuthToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	log.Info().Str("url", url).Msg("ngrok tunnel established")
	log.Info().Msgf("  REST API (ngrok): %s/api", url)
	log.Info().Msgf("  WebSocket (ngrok): %s/ws?session=<session_id>", url)
	log.Info().Msgf("  MCP endpoint (ngrok): %s/mcp", url)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// apiAvailable reports whether a journey API answers at baseURL
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses the API at the configured
// address when one answers; otherwise it starts an internal API on a random
// loopback port and targets that.
func runStdioMCP(ctx context.Context, settings *Settings) error {
	baseURL := "http://" + settings.Addr()

	if apiAvailable(baseURL) {
		log.Info().Str("url", baseURL).Msg("external API server found, using it for MCP")
	} else {
		log.Info().Msg("no external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		gameService, sessions, err := initializeServices(settings, hub)
		if err != nil {
			listener.Close()
			return err
		}

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		defer httpServer.Close()

		go hub.Run(ctx)
		go cleanupLoop(ctx, sessions, settings.CleanupInterval, settings.SessionTTL)
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()

		baseURL = "http://" + listener.Addr().String()
		log.Info().Str("url", baseURL).Msg("internal HTTP server started")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}
