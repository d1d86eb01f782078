package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Note sinks.
const (
	SinkEvernote = "evernote"
	SinkVault    = "vault"
)

type Config struct {
	Env       string          `yaml:"env"`
	Timezone  string          `yaml:"timezone"`
	Template  string          `yaml:"template"`
	Sink      string          `yaml:"sink"`
	Evernote  EvernoteConfig  `yaml:"evernote"`
	Moves     MovesConfig     `yaml:"moves"`
	Mappiness MappinessConfig `yaml:"mappiness"`
	Vault     VaultConfig     `yaml:"vault"`
	Server    ServerConfig    `yaml:"server"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Transport TransportConfig `yaml:"transport"`
	Units     UnitsConfig     `yaml:"units"`
}

type EvernoteConfig struct {
	AccessToken     string `yaml:"accessToken"`
	Sandbox         bool   `yaml:"sandbox"`
	UserID          string `yaml:"userId"`
	ShardID         string `yaml:"shardId"`
	NoteStoreURL    string `yaml:"noteStoreUrl"`
	JournalNotebook string `yaml:"journalNotebook"`
	NotebookGUID    string `yaml:"notebookGuid"` // parent notebook for new notes, default notebook when empty
}

type MovesConfig struct {
	AccessToken  string `yaml:"accessToken"`
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	BaseURL      string `yaml:"baseUrl"`
}

type MappinessConfig struct {
	URL string `yaml:"url"`
}

type VaultConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Port  string `yaml:"port"`
	Token string `yaml:"token"`
}

type ScheduleConfig struct {
	At string `yaml:"at"` // HH:MM local time of the daily run
}

type TransportConfig struct {
	TimeoutSeconds    int     `yaml:"timeoutSeconds"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	MaxFailures       uint32  `yaml:"maxFailures"`
}

type UnitsConfig struct {
	Distance string `yaml:"distance"`
}

// Load builds the configuration from defaults, the YAML file at path (optional)
// and DAYBOOK_* environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Env:      "development",
		Timezone: "Europe/London",
		Sink:     SinkEvernote,
		Evernote: EvernoteConfig{
			Sandbox:         false,
			JournalNotebook: "journal",
		},
		Moves: MovesConfig{
			BaseURL: "https://api.moves-app.com/api/1.1",
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Schedule: ScheduleConfig{
			At: "06:00",
		},
		Transport: TransportConfig{
			TimeoutSeconds:    30,
			RequestsPerSecond: 2,
			MaxFailures:       3,
		},
		Units: UnitsConfig{
			Distance: "km",
		},
	}
}

func (c *Config) applyEnv() {
	c.Env = getEnv("DAYBOOK_ENV", c.Env)
	c.Timezone = getEnv("DAYBOOK_TIMEZONE", c.Timezone)
	c.Template = getEnv("DAYBOOK_TEMPLATE", c.Template)
	c.Sink = getEnv("DAYBOOK_SINK", c.Sink)

	c.Evernote.AccessToken = getEnv("DAYBOOK_EVERNOTE_ACCESS_TOKEN", c.Evernote.AccessToken)
	c.Evernote.Sandbox = getEnvBool("DAYBOOK_EVERNOTE_SANDBOX", c.Evernote.Sandbox)
	c.Evernote.UserID = getEnv("DAYBOOK_EVERNOTE_USER_ID", c.Evernote.UserID)
	c.Evernote.ShardID = getEnv("DAYBOOK_EVERNOTE_SHARD_ID", c.Evernote.ShardID)
	c.Evernote.NoteStoreURL = getEnv("DAYBOOK_EVERNOTE_NOTESTORE_URL", c.Evernote.NoteStoreURL)
	c.Evernote.NotebookGUID = getEnv("DAYBOOK_EVERNOTE_NOTEBOOK_GUID", c.Evernote.NotebookGUID)

	c.Moves.AccessToken = getEnv("DAYBOOK_MOVES_ACCESS_TOKEN", c.Moves.AccessToken)
	c.Moves.BaseURL = getEnv("DAYBOOK_MOVES_BASE_URL", c.Moves.BaseURL)

	c.Mappiness.URL = getEnv("DAYBOOK_MAPPINESS_URL", c.Mappiness.URL)
	c.Vault.Path = getEnv("DAYBOOK_VAULT_PATH", c.Vault.Path)

	c.Server.Port = getEnv("DAYBOOK_PORT", c.Server.Port)
	c.Server.Token = getEnv("DAYBOOK_TOKEN", c.Server.Token)
	c.Schedule.At = getEnv("DAYBOOK_SCHEDULE_AT", c.Schedule.At)
}

func (c *Config) validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	switch c.Sink {
	case SinkEvernote:
		if c.Evernote.AccessToken == "" {
			return fmt.Errorf("evernote.accessToken is required")
		}
		if c.Evernote.UserID == "" || c.Evernote.ShardID == "" {
			return fmt.Errorf("evernote.userId and evernote.shardId are required")
		}
	case SinkVault:
		if c.Vault.Path == "" {
			return fmt.Errorf("vault.path is required when sink is %q", SinkVault)
		}
	default:
		return fmt.Errorf("unknown sink %q", c.Sink)
	}
	if c.Moves.AccessToken == "" {
		return fmt.Errorf("moves.accessToken is required")
	}
	if c.Mappiness.URL == "" {
		return fmt.Errorf("mappiness.url is required")
	}
	if _, _, err := c.ScheduleTime(); err != nil {
		return err
	}
	return nil
}

// Location returns the configured time zone. Load rejects unknown zones;
// a Config built by hand with a bad zone gets UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ScheduleTime returns the hour and minute of the daily run.
func (c *Config) ScheduleTime() (uint, uint, error) {
	t, err := time.Parse("15:04", c.Schedule.At)
	if err != nil {
		return 0, 0, fmt.Errorf("schedule.at must be HH:MM, got %q", c.Schedule.At)
	}
	return uint(t.Hour()), uint(t.Minute()), nil
}

// NoteStoreURL returns the configured note store endpoint or the default
// one for the shard.
func (c *Config) NoteStoreURL() string {
	if c.Evernote.NoteStoreURL != "" {
		return strings.TrimRight(c.Evernote.NoteStoreURL, "/")
	}
	host := "https://www.evernote.com"
	if c.Evernote.Sandbox {
		host = "https://sandbox.evernote.com"
	}
	return host + "/shard/" + c.Evernote.ShardID + "/notestore"
}

// Lookup resolves a section/field pair by YAML key, e.g. ("units", "distance").
// Unknown keys resolve to "".
func (c *Config) Lookup(section, field string) string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return ""
	}
	fields, ok := tree[section].(map[string]any)
	if !ok {
		return ""
	}
	v, ok := fields[field]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
