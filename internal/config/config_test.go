package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
timezone: Europe/Paris
evernote:
  accessToken: S=s1:U=abc
  sandbox: true
  userId: "123456"
  shardId: s1
  notebookGuid: nb-guid
moves:
  accessToken: moves_token
  clientId: client
mappiness:
  url: https://mappiness.example/me/abc.json
units:
  distance: mi
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Evernote.AccessToken != "S=s1:U=abc" {
		t.Errorf("expected access token S=s1:U=abc, got %s", cfg.Evernote.AccessToken)
	}
	if !cfg.Evernote.Sandbox {
		t.Error("expected sandbox to be true")
	}
	if cfg.Timezone != "Europe/Paris" {
		t.Errorf("expected timezone Europe/Paris, got %s", cfg.Timezone)
	}
	if cfg.Evernote.JournalNotebook != "journal" {
		t.Errorf("expected default journal notebook, got %s", cfg.Evernote.JournalNotebook)
	}
	if cfg.Moves.BaseURL != "https://api.moves-app.com/api/1.1" {
		t.Errorf("expected default moves URL, got %s", cfg.Moves.BaseURL)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("DAYBOOK_TIMEZONE", "UTC")
	t.Setenv("DAYBOOK_EVERNOTE_SANDBOX", "false")
	t.Setenv("DAYBOOK_MAPPINESS_URL", "http://localhost:9999/feed.json")

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Timezone != "UTC" {
		t.Errorf("env should override file timezone, got %s", cfg.Timezone)
	}
	if cfg.Evernote.Sandbox {
		t.Error("env should override sandbox")
	}
	if cfg.Mappiness.URL != "http://localhost:9999/feed.json" {
		t.Errorf("env should override mappiness url, got %s", cfg.Mappiness.URL)
	}
}

func TestLoadConfigFromEnvOnly(t *testing.T) {
	t.Setenv("DAYBOOK_SINK", "vault")
	t.Setenv("DAYBOOK_VAULT_PATH", "/tmp/vault")
	t.Setenv("DAYBOOK_MOVES_ACCESS_TOKEN", "t")
	t.Setenv("DAYBOOK_MAPPINESS_URL", "http://m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.Sink != SinkVault {
		t.Errorf("expected vault sink, got %s", cfg.Sink)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no evernote token", "moves: {accessToken: t}\nmappiness: {url: http://m}\nevernote: {userId: u, shardId: s}\n"},
		{"no shard", "moves: {accessToken: t}\nmappiness: {url: http://m}\nevernote: {accessToken: a, userId: u}\n"},
		{"no moves token", "mappiness: {url: http://m}\nevernote: {accessToken: a, userId: u, shardId: s}\n"},
		{"no mappiness", "moves: {accessToken: t}\nevernote: {accessToken: a, userId: u, shardId: s}\n"},
		{"vault without path", "sink: vault\nmoves: {accessToken: t}\nmappiness: {url: http://m}\n"},
		{"unknown sink", "sink: dropbox\nmoves: {accessToken: t}\nmappiness: {url: http://m}\n"},
		{"bad schedule", "schedule: {at: '6am'}\nmoves: {accessToken: t}\nmappiness: {url: http://m}\nevernote: {accessToken: a, userId: u, shardId: s}\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Error("expected error when missing required config")
			}
		})
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "evernote: [")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestLookup(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	tests := []struct {
		section, field string
		want           string
	}{
		{"units", "distance", "mi"},
		{"evernote", "userId", "123456"},
		{"evernote", "sandbox", "true"},
		{"evernote", "nope", ""},
		{"nope", "distance", ""},
		{"timezone", "x", ""},
	}

	for _, tc := range tests {
		if got := cfg.Lookup(tc.section, tc.field); got != tc.want {
			t.Errorf("Lookup(%q, %q) = %q, want %q", tc.section, tc.field, got, tc.want)
		}
	}
}

func TestNoteStoreURL(t *testing.T) {
	cfg := &Config{Evernote: EvernoteConfig{ShardID: "s1", Sandbox: true}}
	if got := cfg.NoteStoreURL(); got != "https://sandbox.evernote.com/shard/s1/notestore" {
		t.Errorf("sandbox URL = %s", got)
	}

	cfg.Evernote.Sandbox = false
	if got := cfg.NoteStoreURL(); got != "https://www.evernote.com/shard/s1/notestore" {
		t.Errorf("production URL = %s", got)
	}

	cfg.Evernote.NoteStoreURL = "http://localhost:1234/"
	if got := cfg.NoteStoreURL(); got != "http://localhost:1234" {
		t.Errorf("explicit URL = %s", got)
	}
}

func TestScheduleTime(t *testing.T) {
	cfg := &Config{Schedule: ScheduleConfig{At: "06:30"}}
	h, m, err := cfg.ScheduleTime()
	if err != nil {
		t.Fatalf("ScheduleTime: %v", err)
	}
	if h != 6 || m != 30 {
		t.Errorf("ScheduleTime() = %d:%d, want 6:30", h, m)
	}
}

func TestLoadConfigRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("DAYBOOK_TIMEZONE", "Europe/Lodnon")

	_, err := Load(writeConfig(t, sampleYAML))
	if err == nil {
		t.Fatal("expected error for unknown timezone")
	}
	if !strings.Contains(err.Error(), "Europe/Lodnon") {
		t.Errorf("expected error to name the zone, got %v", err)
	}
}

func TestLocation(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.Location().String() != "Europe/Paris" {
		t.Errorf("expected Europe/Paris, got %s", cfg.Location())
	}
}
