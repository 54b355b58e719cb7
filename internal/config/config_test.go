package config

import (
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, discordTokenEnv, summaryChannelEnv, channelIDsEnv,
		googleAPIKeyEnv, transcriptKeyEnv, transcriptURLEnv, serverAddrEnv, utcOffsetEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Server.Addr != ":8000" {
		t.Fatalf("unexpected addr: %q", cfg.Server.Addr)
	}
	if cfg.Day.UTCOffsetHours != -6 {
		t.Fatalf("unexpected offset: %d", cfg.Day.UTCOffsetHours)
	}
	if cfg.Digest.InlineLimit != 1800 {
		t.Fatalf("unexpected inline limit: %d", cfg.Digest.InlineLimit)
	}
	if cfg.Digest.TranscriptLimit != 2000 {
		t.Fatalf("unexpected transcript limit: %d", cfg.Digest.TranscriptLimit)
	}
	if cfg.Discord.MessageLimit != 100 {
		t.Fatalf("unexpected message limit: %d", cfg.Discord.MessageLimit)
	}
	if len(cfg.Links.ExcludedHosts) == 0 {
		t.Fatal("expected a default excluded host")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(discordTokenEnv, "tok")
	t.Setenv(summaryChannelEnv, "chan-out")
	t.Setenv(channelIDsEnv, "a, b,,c ")
	t.Setenv(googleAPIKeyEnv, "gkey")
	t.Setenv(transcriptKeyEnv, "tkey")
	t.Setenv(utcOffsetEnv, "3")

	cfg := Load()

	if cfg.Discord.BotToken != "tok" || cfg.Discord.DigestChannelID != "chan-out" {
		t.Fatalf("discord overrides not applied: %+v", cfg.Discord)
	}
	want := []string{"a", "b", "c"}
	if len(cfg.Discord.SourceChannelIDs) != len(want) {
		t.Fatalf("unexpected channel ids: %v", cfg.Discord.SourceChannelIDs)
	}
	for i, id := range want {
		if cfg.Discord.SourceChannelIDs[i] != id {
			t.Fatalf("unexpected channel ids: %v", cfg.Discord.SourceChannelIDs)
		}
	}
	if cfg.Gemini.APIKey != "gkey" {
		t.Fatalf("gemini key override not applied")
	}
	if cfg.Transcript.APIKey != "tkey" {
		t.Fatalf("transcript key override not applied")
	}
	if cfg.Day.UTCOffsetHours != 3 {
		t.Fatalf("offset override not applied: %d", cfg.Day.UTCOffsetHours)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Default()
	valid.Discord.BotToken = "tok"
	valid.Discord.DigestChannelID = "chan"
	valid.Discord.SourceChannelIDs = []string{"a"}
	valid.Gemini.APIKey = "key"

	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing token", func(c *Config) { c.Discord.BotToken = "" }},
		{"missing digest channel", func(c *Config) { c.Discord.DigestChannelID = "" }},
		{"missing sources", func(c *Config) { c.Discord.SourceChannelIDs = nil }},
		{"missing gemini key", func(c *Config) { c.Gemini.APIKey = "" }},
	}
	for _, tc := range cases {
		cfg := valid
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestValidateAllowsMissingTranscriptKey(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Discord.BotToken = "tok"
	cfg.Discord.DigestChannelID = "chan"
	cfg.Discord.SourceChannelIDs = []string{"a"}
	cfg.Gemini.APIKey = "key"
	cfg.Transcript.APIKey = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("transcript credential must be optional, got %v", err)
	}
}
