// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// The only hard requirement is the model API key; use ValidateEngineReady before
// constructing the conversation engine.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Feed provider names accepted in FEED_PROVIDER.
const (
	FeedYouTube = "youtube"
	FeedTwitch  = "twitch"
	FeedNone    = "none"
)

type Config struct {
	// Conversation model
	GeminiAPIKey   string
	GeminiModel    string
	GeminiFallback string
	PersonaFile    string

	// Speech synthesis
	VoicevoxURL     string
	VoicevoxSpeaker int

	// Audio output
	AudioOutputDevice string

	// Overlay (obs-websocket)
	OBSHost           string
	OBSPort           int
	OBSPassword       string
	OBSAnswerSource   string
	OBSQuestionSource string

	// Chat feed
	FeedProvider      string
	YouTubeVideoID    string
	YouTubeAPIKey     string
	TwitchChannel     string
	TwitchBotUsername string
	TwitchOAuthToken  string

	// Loop behaviour
	ExitKeyword  string
	PollInterval time.Duration
	FeedTimeout  time.Duration

	// Input guard policy. Empty means the built-in default list.
	GuardKeywords []string

	// HTTP status server
	HTTPAddr string
}

// Load reads environment variables and applies defaults. It doesn't fail when feed or
// overlay settings are missing; those features degrade at startup instead. The model
// API key is validated separately via ValidateEngineReady.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getenvDefault("GEMINI_MODEL", "gemini-1.5-flash")
	cfg.GeminiFallback = getenvDefault("GEMINI_FALLBACK_MODEL", "gemini-2.0-flash")
	cfg.PersonaFile = os.Getenv("PERSONA_FILE")

	cfg.VoicevoxURL = getenvDefault("VOICEVOX_URL", "http://localhost:50021")
	speaker, err := getenvInt("VOICEVOX_SPEAKER_ID", 66)
	if err != nil {
		return nil, err
	}
	cfg.VoicevoxSpeaker = speaker

	cfg.AudioOutputDevice = getenvDefault("AUDIO_OUTPUT_DEVICE_NAME", "CABLE Input")

	cfg.OBSHost = getenvDefault("OBS_HOST", "localhost")
	port, err := getenvInt("OBS_PORT", 4455)
	if err != nil {
		return nil, err
	}
	cfg.OBSPort = port
	cfg.OBSPassword = os.Getenv("OBS_PASSWORD")
	cfg.OBSAnswerSource = getenvDefault("OBS_ANSWER_TEXT_SOURCE", "Answer")
	cfg.OBSQuestionSource = getenvDefault("OBS_QUESTION_TEXT_SOURCE", "Question")

	cfg.FeedProvider = strings.ToLower(getenvDefault("FEED_PROVIDER", FeedYouTube))
	switch cfg.FeedProvider {
	case FeedYouTube, FeedTwitch, FeedNone:
	default:
		return nil, fmt.Errorf("invalid FEED_PROVIDER %q (want youtube|twitch|none)", cfg.FeedProvider)
	}
	cfg.YouTubeVideoID = os.Getenv("YOUTUBE_LIVE_VIDEO_ID")
	cfg.YouTubeAPIKey = os.Getenv("YOUTUBE_API_KEY")
	cfg.TwitchChannel = os.Getenv("TWITCH_CHANNEL")
	cfg.TwitchBotUsername = os.Getenv("TWITCH_BOT_USERNAME")
	cfg.TwitchOAuthToken = os.Getenv("TWITCH_OAUTH_TOKEN")

	cfg.ExitKeyword = getenvDefault("EXIT_KEYWORD", "終了")
	cfg.PollInterval, err = getenvDuration("POLL_INTERVAL", 2*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.FeedTimeout, err = getenvDuration("FEED_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.GuardKeywords = splitList(os.Getenv("GUARD_KEYWORDS"))

	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", ":8080")

	return cfg, nil
}

// ValidateEngineReady checks the required model credential. A missing key is a
// startup-fatal condition; nothing downstream can run without the model.
func (c *Config) ValidateEngineReady() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("missing GEMINI_API_KEY")
	}
	return nil
}

// ValidateFeedReady checks that the configured feed provider has its settings.
func (c *Config) ValidateFeedReady() error {
	switch c.FeedProvider {
	case FeedYouTube:
		if c.YouTubeVideoID == "" || c.YouTubeAPIKey == "" {
			return fmt.Errorf("youtube feed: require YOUTUBE_LIVE_VIDEO_ID, YOUTUBE_API_KEY")
		}
	case FeedTwitch:
		if c.TwitchChannel == "" {
			return fmt.Errorf("twitch feed: require TWITCH_CHANNEL")
		}
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s (want positive duration): %v", key, v)
	}
	return d, nil
}

// splitList parses a comma- or newline-separated list, trimming blanks.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '\n' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
