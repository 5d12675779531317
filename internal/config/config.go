// Package config resolves levelup's settings from built-in defaults, a
// TOML file, a .env file and LEVELUP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/abhisek/levelup/internal/llm"
	"github.com/abhisek/levelup/internal/scheduler"
)

// Config is the resolved configuration.
type Config struct {
	// DSN is a SQLite file path or a postgres:// URL. Empty selects the
	// default database path.
	DSN string

	// Learner is the default learner for commands that take --learner.
	Learner string

	Log       LogConfig
	LLM       llm.Config
	Telegram  TelegramConfig
	Scheduler scheduler.Config

	// Path is the config file that was read, empty when none was.
	Path string
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level     slog.Level
	Format    string // "text" or "json"
	AddSource bool
}

// TelegramConfig enables the Telegram notifier when Token is set.
type TelegramConfig struct {
	Token  string
	ChatID int64
}

// Enabled reports whether Telegram delivery is configured.
func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Learner:   "me",
		Log:       LogConfig{Level: slog.LevelWarn, Format: "text"},
		LLM:       llm.DefaultConfig(),
		Scheduler: scheduler.DefaultConfig(),
	}
}

// Options control where Load looks.
type Options struct {
	// Path is an explicit config file. It must exist.
	Path string

	// EnvFile is an explicit dotenv file. It must exist. Empty means
	// ".env" in the working directory, which may be missing.
	EnvFile string

	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load resolves the configuration. Later layers win: defaults, the TOML
// file, the .env file, then the real environment. Values from .env never
// override variables that are already set.
func Load(opts Options) (*Config, error) {
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && (opts.EnvFile != "" || !errors.Is(err, fs.ErrNotExist)) {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	getenv := func(key string) string {
		if v, ok := lookup(key); ok {
			return v
		}
		return dotenv[key]
	}

	cfg := Default()

	path, required := opts.Path, true
	if path == "" {
		path = getenv("LEVELUP_CONFIG")
	}
	if path == "" {
		path, required = DefaultPath(getenv), false
	}
	if path != "" {
		if err := cfg.readFile(path, required); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/levelup/config.toml, falling back
// to ~/.config/levelup/config.toml.
func DefaultPath(getenv func(string) string) string {
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "levelup", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "levelup", "config.toml")
}

func (c *Config) readFile(path string, required bool) error {
	f, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := fc.apply(c); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	c.Path = path
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"LEVELUP_DB", &c.DSN},
		{"LEVELUP_LEARNER", &c.Learner},
		{"LEVELUP_LOG_FORMAT", &c.Log.Format},
		{"LEVELUP_TELEGRAM_TOKEN", &c.Telegram.Token},
		{"LEVELUP_SNAPSHOT_AT", &c.Scheduler.SnapshotAt},
		{"LEVELUP_REMINDER_AT", &c.Scheduler.ReminderAt},
	}
	for _, s := range strs {
		if v := getenv(s.name); v != "" {
			*s.dst = v
		}
	}

	if v := getenv("LEVELUP_LOG_LEVEL"); v != "" {
		if err := c.Log.Level.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("LEVELUP_LOG_LEVEL: %w", err)
		}
	}
	if v := getenv("LEVELUP_TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("LEVELUP_TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	if v := getenv("LEVELUP_KEEP_SNAPSHOTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LEVELUP_KEEP_SNAPSHOTS: %w", err)
		}
		c.Scheduler.KeepSnapshots = n
	}
	if v := getenv("LEVELUP_TIMEZONE"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return fmt.Errorf("LEVELUP_TIMEZONE: %w", err)
		}
		c.Scheduler.Location = loc
	}

	c.LLM.ApplyEnv(getenv)
	return nil
}

// Logger builds a slog logger writing to w.
func (l LogConfig) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.Level, AddSource: l.AddSource}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
