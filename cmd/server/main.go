// Package main provides the bot server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/npbot/internal/api"
	"github.com/osa030/npbot/internal/app/nowplaying"
	"github.com/osa030/npbot/internal/app/router"
	"github.com/osa030/npbot/internal/domain/message"
	"github.com/osa030/npbot/internal/infra/config"
	"github.com/osa030/npbot/internal/infra/logger"
	"github.com/osa030/npbot/internal/infra/queue"
	"github.com/osa030/npbot/internal/infra/slackbot"
	"github.com/osa030/npbot/internal/infra/spotify"
	"github.com/osa030/npbot/internal/infra/tokenstore"
)

var (
	app        = kingpin.New("npbot-server", "Slack now-playing bot server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger
	loggerConfig := logger.Config{Output: "stdout", Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create token store
	var tokens tokenstore.Store
	if cfg.Store.DatabaseURL != "" {
		pg, err := tokenstore.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to create token store: %w", err)
		}
		defer pg.Close()
		tokens = pg
	} else {
		zlog.Warn().Msg("No database configured, using in-memory token store")
		tokens = tokenstore.NewMemory()
	}

	// Create Spotify client
	spotifyClient, err := spotify.New(spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		Tokens:       tokens,
	})
	if err != nil {
		return fmt.Errorf("failed to create Spotify client: %w", err)
	}

	// Create Slack client
	slackClient, err := slackbot.New(slackbot.Config{BotToken: cfg.Slack.BotToken})
	if err != nil {
		return fmt.Errorf("failed to create Slack client: %w", err)
	}

	// Create the command router with its routes
	resolver := nowplaying.NewResolver(spotifyClient)
	routes := []router.Route{
		nowplaying.Route(resolver),
	}
	messageRouter := router.New(slackClient, routes)

	// Create the queue and start the consumer
	q := queue.NewMemory(cfg.Queue.Buffer)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		q.Run(ctx, func(ctx context.Context, msg queue.Message) error {
			payload, err := queue.DecodePayload(msg.Data)
			if err != nil {
				return err
			}
			return messageRouter.Dispatch(ctx, message.ChatMessage{
				Text:    payload.Text,
				Channel: payload.Channel,
			})
		})
	}()

	// Create HTTP mux
	mux := http.NewServeMux()
	mux.Handle("POST /slack/events", api.NewEventsHandler(q))
	mux.Handle("POST /tasks/refresh-token", api.NewRefreshHandler(spotifyClient))

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	// Channel to capture server startup errors
	serverErrCh := make(chan error, 1)

	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Drain in-flight requests first so every accepted event is published,
	// then stop the consumer; it delivers what is left before returning
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	cancel()
	<-consumerDone

	zlog.Info().Msg("Server stopped")

	return nil
}
