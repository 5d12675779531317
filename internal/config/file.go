package config

import (
	"fmt"
	"log/slog"
	"time"
)

// fileConfig mirrors config.toml:
//
//	learner = "ana"
//
//	[db]
//	dsn = "/home/ana/.local/share/levelup/levelup.db"
//
//	[log]
//	level = "info"
//	format = "json"
//
//	[llm]
//	provider = "anthropic"
//	timeout = "20s"
//	[llm.anthropic]
//	api_key = "..."
//
//	[notify.telegram]
//	token = "..."
//	chat_id = 12345
//
//	[scheduler]
//	snapshot_at = "23:55"
//	reminder_at = "18:00"
//	keep_snapshots = 30
//	timezone = "Europe/Berlin"
type fileConfig struct {
	Learner string `toml:"learner"`

	DB struct {
		DSN string `toml:"dsn"`
	} `toml:"db"`

	Log struct {
		Level     string `toml:"level"`
		Format    string `toml:"format"`
		AddSource bool   `toml:"add_source"`
	} `toml:"log"`

	LLM struct {
		Provider    string     `toml:"provider"`
		Timeout     string     `toml:"timeout"`
		MaxAttempts int        `toml:"max_attempts"`
		Anthropic   vendorFile `toml:"anthropic"`
		OpenAI      vendorFile `toml:"openai"`
		Gemini      vendorFile `toml:"gemini"`
		OpenRouter  vendorFile `toml:"openrouter"`
	} `toml:"llm"`

	Notify struct {
		Telegram struct {
			Token  string `toml:"token"`
			ChatID int64  `toml:"chat_id"`
		} `toml:"telegram"`
	} `toml:"notify"`

	Scheduler struct {
		SnapshotAt    string `toml:"snapshot_at"`
		ReminderAt    string `toml:"reminder_at"`
		KeepSnapshots int    `toml:"keep_snapshots"`
		Timezone      string `toml:"timezone"`
	} `toml:"scheduler"`
}

type vendorFile struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

func (v vendorFile) apply(key, model, baseURL *string) {
	set(key, v.APIKey)
	set(model, v.Model)
	set(baseURL, v.BaseURL)
}

// set assigns v to dst unless v is empty.
func set(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (fc *fileConfig) apply(c *Config) error {
	set(&c.Learner, fc.Learner)
	set(&c.DSN, fc.DB.DSN)

	if fc.Log.Level != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(fc.Log.Level)); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
		c.Log.Level = lvl
	}
	set(&c.Log.Format, fc.Log.Format)
	c.Log.AddSource = c.Log.AddSource || fc.Log.AddSource

	l := &c.LLM
	set(&l.Provider, fc.LLM.Provider)
	if fc.LLM.Timeout != "" {
		d, err := time.ParseDuration(fc.LLM.Timeout)
		if err != nil {
			return fmt.Errorf("llm.timeout: %w", err)
		}
		l.Timeout = d
	}
	if fc.LLM.MaxAttempts > 0 {
		l.Retry.MaxAttempts = fc.LLM.MaxAttempts
	}
	fc.LLM.Anthropic.apply(&l.Anthropic.APIKey, &l.Anthropic.Model, &l.Anthropic.BaseURL)
	fc.LLM.OpenAI.apply(&l.OpenAI.APIKey, &l.OpenAI.Model, &l.OpenAI.BaseURL)
	fc.LLM.Gemini.apply(&l.Gemini.APIKey, &l.Gemini.Model, &l.Gemini.BaseURL)
	fc.LLM.OpenRouter.apply(&l.OpenRouter.APIKey, &l.OpenRouter.Model, &l.OpenRouter.BaseURL)

	set(&c.Telegram.Token, fc.Notify.Telegram.Token)
	if fc.Notify.Telegram.ChatID != 0 {
		c.Telegram.ChatID = fc.Notify.Telegram.ChatID
	}

	s := &c.Scheduler
	set(&s.SnapshotAt, fc.Scheduler.SnapshotAt)
	set(&s.ReminderAt, fc.Scheduler.ReminderAt)
	if fc.Scheduler.KeepSnapshots > 0 {
		s.KeepSnapshots = fc.Scheduler.KeepSnapshots
	}
	if fc.Scheduler.Timezone != "" {
		loc, err := time.LoadLocation(fc.Scheduler.Timezone)
		if err != nil {
			return fmt.Errorf("scheduler.timezone: %w", err)
		}
		s.Location = loc
	}
	return nil
}
