// Command aituber runs the live-stream co-host. It:
//   - Loads configuration and initializes structured logging.
//   - Opens the conversational model session (startup-fatal without a key).
//   - Attaches the configured chat feed and the overlay/audio collaborators,
//     degrading each one to a soft no-op when unreachable.
//   - Runs the turn loop: comment (or operator) in, classified, answered,
//     spoken, and mirrored onto the overlay.
//   - Exposes a minimal HTTP server with /healthz, /status, and /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM or the configured exit keyword.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kirisaka/aituber/comment"
	"github.com/kirisaka/aituber/config"
	"github.com/kirisaka/aituber/engine"
	"github.com/kirisaka/aituber/guard"
	"github.com/kirisaka/aituber/obs"
	"github.com/kirisaka/aituber/orchestrator"
	"github.com/kirisaka/aituber/server"
	"github.com/kirisaka/aituber/telemetry"
	"github.com/kirisaka/aituber/voice"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	var handler slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()
	shutdownTracing, err := telemetry.InitTracing("aituber", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdownTracing()

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Conversation model: the one collaborator that is startup-fatal.
	if err := cfg.ValidateEngineReady(); err != nil {
		slog.Error("engine not configured", slog.Any("err", err))
		os.Exit(1)
	}
	persona := engine.DefaultPersona
	if cfg.PersonaFile != "" {
		raw, err := os.ReadFile(cfg.PersonaFile)
		if err != nil {
			slog.Error("persona file unreadable", slog.String("path", cfg.PersonaFile), slog.Any("err", err))
			os.Exit(1)
		}
		persona = string(raw)
	}
	eng, err := engine.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiFallback, persona)
	if err != nil {
		slog.Error("model session failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Overlay: connection failure degrades presentation to no-ops.
	var obsClient *obs.Client
	{
		cctx, cancel := context.WithTimeout(ctx, 8*time.Second)
		obsClient, err = obs.Connect(cctx, cfg.OBSHost, cfg.OBSPort, cfg.OBSPassword)
		cancel()
		if err != nil {
			slog.Warn("obs unreachable; overlay disabled", slog.Any("err", err))
		} else {
			defer func() { _ = obsClient.Close() }()
			if scenes, err := obsClient.Scenes(ctx); err == nil {
				slog.Info("obs scenes", slog.Any("scenes", scenes))
			}
			if inputs, err := obsClient.Inputs(ctx); err == nil {
				slog.Info("obs inputs", slog.Int("count", len(inputs)))
			}
		}
	}
	presenter := obs.NewPresenter(obsClient, cfg.OBSAnswerSource, cfg.OBSQuestionSource)

	// Audio output: a missing device falls back to the default; a dead
	// backend disables narration but not the loop.
	var player voice.AudioPlayer
	if p, err := voice.NewPlayer(cfg.AudioOutputDevice); err != nil {
		slog.Warn("audio backend unavailable; narration disabled", slog.Any("err", err))
	} else {
		defer func() { _ = p.Close() }()
		player = p
	}
	narrator := voice.NewNarrator(voice.NewSynthesizer(cfg.VoicevoxURL, cfg.VoicevoxSpeaker), player)

	// Chat feed: optional; without one the co-host answers operator input only.
	var feed comment.Feed
	if err := cfg.ValidateFeedReady(); err != nil {
		slog.Warn("chat feed not configured; keyboard input only", slog.Any("err", err))
	} else {
		switch cfg.FeedProvider {
		case config.FeedYouTube:
			yf, err := comment.NewYouTubeFeed(ctx, cfg.YouTubeAPIKey, cfg.YouTubeVideoID)
			if err != nil {
				slog.Warn("youtube feed unavailable; keyboard input only", slog.Any("err", err))
			} else {
				feed = yf
			}
		case config.FeedTwitch:
			feed = comment.NewTwitchFeed(cfg.TwitchChannel, cfg.TwitchBotUsername, cfg.TwitchOAuthToken)
		}
	}
	source := comment.NewSource(feed, cfg.FeedTimeout)
	defer func() { _ = source.Close() }()

	orch := orchestrator.New(
		source,
		guard.New(cfg.GuardKeywords),
		eng,
		narrator,
		presenter,
		orchestrator.NewStdinReader("観測対象さん: "),
		orchestrator.Options{ExitKeyword: cfg.ExitKeyword, PollInterval: cfg.PollInterval},
	)

	// HTTP server (health/status/metrics)
	go func() {
		if err := server.Start(ctx, orch, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	if err := orch.Run(ctx); err != nil {
		slog.Error("orchestrator exited with error", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("shutting down")
}
