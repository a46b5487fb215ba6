package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/kiliankoe/micmate/internal/ai"
	"github.com/kiliankoe/micmate/internal/ai/ollama"
	"github.com/kiliankoe/micmate/internal/ai/openai"
	"github.com/kiliankoe/micmate/internal/config"
	"github.com/kiliankoe/micmate/internal/discord"
	"github.com/kiliankoe/micmate/internal/game"
)

const version = "v1.0.0-dev"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Ops HTTP port (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`MicMate - Discord "guess the song" party game bot

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Ops HTTP port (default: 8080 or PORT env var)

Environment Variables:
  DISCORD_TOKEN       Discord bot token (required)
  COMMAND_PREFIX      Chat command prefix (default: !)
  DEFAULT_PROVIDER    AI provider: "openai" or "ollama" (default: openai)
  OPENAI_API_KEY      OpenAI API key (required for OpenAI provider)
  OPENAI_BASE_URL     Custom OpenAI API base URL (optional)
  OPENAI_MODEL        Chat model for round generation (default: gpt-4.1-mini)
  IMAGE_MODEL         Image model for doodle rounds (default: gpt-image-1)
  OLLAMA_HOST         Ollama host URL (default: http://localhost:11434)
  PORT                Ops HTTP port (default: 8080)

Examples:
  %s                  Start the bot with default settings
  %s --port 3000      Start with the ops server on port 3000

Invite the bot to a server and type !mic in a text channel.
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("MicMate %s\n", version)
		return
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	// .env is optional, real env wins
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		zerologlog.Fatal().Err(err).Msg("config")
	}
	if *portFlag != "" {
		cfg.Port = *portFlag
	}

	var provider ai.Provider
	switch cfg.DefaultProvider {
	case "ollama":
		provider = ollama.New(cfg.OllamaHost)
	default:
		provider = openai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	}
	source := game.NewSource(provider, cfg.OpenAIModel, cfg.ImageModel)
	registry := game.NewRegistry()

	gw, err := discord.NewGateway(cfg.DiscordToken)
	if err != nil {
		zerologlog.Fatal().Err(err).Msg("discord session")
	}
	bot := discord.NewBot(gw, registry, source, cfg.CommandPrefix)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bot.Start(ctx); err != nil {
		zerologlog.Fatal().Err(err).Msg("discord connect")
	}
	zerologlog.Info().Str("prefix", cfg.CommandPrefix).Str("provider", cfg.DefaultProvider).Msg("bot running")

	// Ops HTTP server
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zerologlog.Info().
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("dur", time.Since(start)).
			Msg("http")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})
	r.GET("/api/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessions": registry.Snapshot()})
	})
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zerologlog.Fatal().Err(err).Msg("ops server")
		}
	}()
	zerologlog.Info().Str("port", cfg.Port).Msg("ops server listening")

	<-ctx.Done()
	zerologlog.Info().Msg("shutting down")
	if err := bot.Stop(); err != nil {
		zerologlog.Warn().Err(err).Msg("discord close")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
