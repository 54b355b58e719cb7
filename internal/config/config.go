package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "DAILY_DIGEST_CONFIG"
	discordTokenEnv   = "DISCORD_TOKEN"
	summaryChannelEnv = "SUMMARY_CHANNEL_ID"
	channelIDsEnv     = "CHANNEL_IDS"
	googleAPIKeyEnv   = "GOOGLE_API_KEY"
	transcriptKeyEnv  = "TRANSCRIPT_API_KEY"
	transcriptURLEnv  = "TRANSCRIPT_API_URL"
	serverAddrEnv     = "SERVER_ADDR"
	utcOffsetEnv      = "DAY_UTC_OFFSET_HOURS"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Discord    DiscordConfig    `yaml:"discord"`
	Day        DayConfig        `yaml:"day"`
	Links      LinksConfig      `yaml:"links"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Digest     DigestConfig     `yaml:"digest"`
}

// ServerConfig describes the trigger HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DiscordConfig wires the messaging platform credentials and channels.
type DiscordConfig struct {
	BotToken         string   `yaml:"botToken"`
	DigestChannelID  string   `yaml:"digestChannelId"`
	SourceChannelIDs []string `yaml:"sourceChannelIds"`
	MessageLimit     int      `yaml:"messageLimit"`
}

// DayConfig pins the local calendar day used for message filtering.
// The offset is a fixed hour count, deliberately not a tzdata lookup.
type DayConfig struct {
	UTCOffsetHours int `yaml:"utcOffsetHours"`
}

// LinksConfig controls candidate-URL admission.
type LinksConfig struct {
	ExcludedHosts []string `yaml:"excludedHosts"`
}

// FetchConfig controls per-URL content fetching.
type FetchConfig struct {
	VideoHosts     []string `yaml:"videoHosts"`
	SkipHosts      []string `yaml:"skipHosts"`
	UserAgent      string   `yaml:"userAgent"`
	TimeoutSeconds int      `yaml:"timeoutSeconds"`
}

// Timeout resolves the HTTP timeout for outbound content fetches.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// GeminiConfig defines how to contact the generative text API. The sampling
// knobs are applied identically on every run.
type GeminiConfig struct {
	Endpoint        string  `yaml:"endpoint"`
	Model           string  `yaml:"model"`
	APIKey          string  `yaml:"apiKey"`
	Temperature     float64 `yaml:"temperature"`
	TopK            int     `yaml:"topK"`
	TopP            float64 `yaml:"topP"`
	MaxOutputTokens int     `yaml:"maxOutputTokens"`
}

// TranscriptConfig defines the third-party transcript job API. An empty
// APIKey disables transcript extraction entirely.
type TranscriptConfig struct {
	Endpoint            string `yaml:"endpoint"`
	APIKey              string `yaml:"apiKey"`
	PollIntervalSeconds int    `yaml:"pollIntervalSeconds"`
	MaxWaitSeconds      int    `yaml:"maxWaitSeconds"`
}

// PollInterval resolves the fixed status-poll interval.
func (t TranscriptConfig) PollInterval() time.Duration {
	return time.Duration(t.PollIntervalSeconds) * time.Second
}

// MaxWait resolves the maximum time spent waiting for one job.
func (t TranscriptConfig) MaxWait() time.Duration {
	return time.Duration(t.MaxWaitSeconds) * time.Second
}

// DigestConfig groups the fixed character budgets of the digest stage.
type DigestConfig struct {
	InlineLimit     int `yaml:"inlineLimit"`
	MinTextLen      int `yaml:"minTextLen"`
	PromptTextLimit int `yaml:"promptTextLimit"`
	TranscriptLimit int `yaml:"transcriptLimit"`
	PreviewLimit    int `yaml:"previewLimit"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Validate reports the configuration gaps that must abort a run before any
// network call is made.
func (c Config) Validate() error {
	switch {
	case c.Discord.BotToken == "":
		return fmt.Errorf("discord bot token is not set (%s)", discordTokenEnv)
	case c.Discord.DigestChannelID == "":
		return fmt.Errorf("digest channel id is not set (%s)", summaryChannelEnv)
	case len(c.Discord.SourceChannelIDs) == 0:
		return fmt.Errorf("no source channel ids configured (%s)", channelIDsEnv)
	case c.Gemini.APIKey == "":
		return fmt.Errorf("generative API key is not set (%s)", googleAPIKeyEnv)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(discordTokenEnv); v != "" {
		c.Discord.BotToken = v
	}

	if v := os.Getenv(summaryChannelEnv); v != "" {
		c.Discord.DigestChannelID = v
	}

	if v := os.Getenv(channelIDsEnv); v != "" {
		c.Discord.SourceChannelIDs = splitChannelIDs(v)
	}

	if v := os.Getenv(googleAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}

	if v := os.Getenv(transcriptKeyEnv); v != "" {
		c.Transcript.APIKey = v
	}

	if v := os.Getenv(transcriptURLEnv); v != "" {
		c.Transcript.Endpoint = v
	}

	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(utcOffsetEnv); v != "" {
		if offset, err := strconv.Atoi(v); err != nil {
			log.Printf("config: invalid %s %q: %v (keeping %d)", utcOffsetEnv, v, err, c.Day.UTCOffsetHours)
		} else {
			c.Day.UTCOffsetHours = offset
		}
	}
}

func splitChannelIDs(value string) []string {
	var ids []string
	for _, part := range strings.Split(value, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Discord.BotToken != "" {
		base.Discord.BotToken = override.Discord.BotToken
	}
	if override.Discord.DigestChannelID != "" {
		base.Discord.DigestChannelID = override.Discord.DigestChannelID
	}
	if len(override.Discord.SourceChannelIDs) > 0 {
		base.Discord.SourceChannelIDs = override.Discord.SourceChannelIDs
	}
	if override.Discord.MessageLimit > 0 {
		base.Discord.MessageLimit = override.Discord.MessageLimit
	}

	if override.Day.UTCOffsetHours != 0 {
		base.Day.UTCOffsetHours = override.Day.UTCOffsetHours
	}

	if len(override.Links.ExcludedHosts) > 0 {
		base.Links.ExcludedHosts = override.Links.ExcludedHosts
	}

	if len(override.Fetch.VideoHosts) > 0 {
		base.Fetch.VideoHosts = override.Fetch.VideoHosts
	}
	if len(override.Fetch.SkipHosts) > 0 {
		base.Fetch.SkipHosts = override.Fetch.SkipHosts
	}
	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}
	if override.Fetch.TimeoutSeconds > 0 {
		base.Fetch.TimeoutSeconds = override.Fetch.TimeoutSeconds
	}

	if override.Gemini.Endpoint != "" {
		base.Gemini.Endpoint = override.Gemini.Endpoint
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.Temperature > 0 {
		base.Gemini.Temperature = override.Gemini.Temperature
	}
	if override.Gemini.TopK > 0 {
		base.Gemini.TopK = override.Gemini.TopK
	}
	if override.Gemini.TopP > 0 {
		base.Gemini.TopP = override.Gemini.TopP
	}
	if override.Gemini.MaxOutputTokens > 0 {
		base.Gemini.MaxOutputTokens = override.Gemini.MaxOutputTokens
	}

	if override.Transcript.Endpoint != "" {
		base.Transcript.Endpoint = override.Transcript.Endpoint
	}
	if override.Transcript.APIKey != "" {
		base.Transcript.APIKey = override.Transcript.APIKey
	}
	if override.Transcript.PollIntervalSeconds > 0 {
		base.Transcript.PollIntervalSeconds = override.Transcript.PollIntervalSeconds
	}
	if override.Transcript.MaxWaitSeconds > 0 {
		base.Transcript.MaxWaitSeconds = override.Transcript.MaxWaitSeconds
	}

	if override.Digest.InlineLimit > 0 {
		base.Digest.InlineLimit = override.Digest.InlineLimit
	}
	if override.Digest.MinTextLen > 0 {
		base.Digest.MinTextLen = override.Digest.MinTextLen
	}
	if override.Digest.PromptTextLimit > 0 {
		base.Digest.PromptTextLimit = override.Digest.PromptTextLimit
	}
	if override.Digest.TranscriptLimit > 0 {
		base.Digest.TranscriptLimit = override.Digest.TranscriptLimit
	}
	if override.Digest.PreviewLimit > 0 {
		base.Digest.PreviewLimit = override.Digest.PreviewLimit
	}

	return base
}

// Default returns the built-in configuration before file and env overrides.
func Default() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8000"},
		Logging: LoggingConfig{Level: "info"},
		Discord: DiscordConfig{
			MessageLimit: 100,
		},
		// America/Chicago approximated as a fixed CST offset; DST shifts
		// are knowingly ignored.
		Day: DayConfig{UTCOffsetHours: -6},
		Links: LinksConfig{
			ExcludedHosts: []string{"twitter.com"},
		},
		Fetch: FetchConfig{
			VideoHosts:     []string{"youtube.com", "youtu.be"},
			SkipHosts:      []string{"twitter.com", "x.com", "imgur.com", "giphy.com"},
			UserAgent:      "DailyDigest/1.0",
			TimeoutSeconds: 10,
		},
		Gemini: GeminiConfig{
			Endpoint:        "https://generativelanguage.googleapis.com/v1beta",
			Model:           "gemini-2.0-flash-exp",
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 8192,
		},
		Transcript: TranscriptConfig{
			Endpoint:            "https://api.supadata.ai/v1",
			PollIntervalSeconds: 5,
			MaxWaitSeconds:      60,
		},
		Digest: DigestConfig{
			InlineLimit:     1800,
			MinTextLen:      20,
			PromptTextLimit: 500,
			TranscriptLimit: 2000,
			PreviewLimit:    200,
		},
	}
}
