package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/levelup/internal/llm"
	"github.com/abhisek/levelup/internal/scheduler"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sampleTOML = `
learner = "ana"

[db]
dsn = "/tmp/levelup-test.db"

[log]
level = "info"
format = "json"

[llm]
provider = "anthropic"
timeout = "20s"
max_attempts = 5

[llm.anthropic]
api_key = "file-key"
model = "claude-sonnet"

[notify.telegram]
token = "bot-token"
chat_id = 42

[scheduler]
reminder_at = "17:30"
keep_snapshots = 7
timezone = "UTC"
`

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(Options{
		EnvFile:   writeFile(t, dir, "empty.env", ""),
		LookupEnv: envMap(map[string]string{"XDG_CONFIG_HOME": dir}),
	})
	require.NoError(t, err)

	assert.Empty(t, cfg.Path)
	assert.Empty(t, cfg.DSN)
	assert.Equal(t, "me", cfg.Learner)
	assert.Equal(t, slog.LevelWarn, cfg.Log.Level)
	assert.False(t, cfg.LLM.Enabled())
	assert.False(t, cfg.Telegram.Enabled())
	assert.Equal(t, scheduler.DefaultKeepSnapshots, cfg.Scheduler.KeepSnapshots)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", sampleTOML)

	cfg, err := Load(Options{
		Path:      path,
		EnvFile:   writeFile(t, dir, "empty.env", ""),
		LookupEnv: envMap(nil),
	})
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "ana", cfg.Learner)
	assert.Equal(t, "/tmp/levelup-test.db", cfg.DSN)
	assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.Equal(t, llm.ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, 20*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, "file-key", cfg.LLM.Anthropic.APIKey)
	assert.Equal(t, "claude-sonnet", cfg.LLM.Anthropic.Model)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAI.Model)
	assert.NoError(t, cfg.LLM.Validate())

	assert.True(t, cfg.Telegram.Enabled())
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)

	assert.Equal(t, scheduler.DefaultSnapshotAt, cfg.Scheduler.SnapshotAt)
	assert.Equal(t, "17:30", cfg.Scheduler.ReminderAt)
	assert.Equal(t, 7, cfg.Scheduler.KeepSnapshots)
	assert.Equal(t, time.UTC, cfg.Scheduler.Location)
}

func TestLoadDefaultPathFromXDG(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "levelup"), 0o755))
	path := writeFile(t, filepath.Join(dir, "levelup"), "config.toml", `learner = "bo"`)

	cfg, err := Load(Options{
		EnvFile:   writeFile(t, dir, "empty.env", ""),
		LookupEnv: envMap(map[string]string{"XDG_CONFIG_HOME": dir}),
	})
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "bo", cfg.Learner)
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", sampleTOML)
	envFile := writeFile(t, dir, "test.env", strings.Join([]string{
		"LEVELUP_LEARNER=from-dotenv",
		"LEVELUP_LOG_LEVEL=debug",
		"LEVELUP_LLM_ANTHROPIC_API_KEY=dotenv-key",
		"LEVELUP_KEEP_SNAPSHOTS=9",
	}, "\n"))

	cfg, err := Load(Options{
		Path:    path,
		EnvFile: envFile,
		LookupEnv: envMap(map[string]string{
			"LEVELUP_LEARNER":          "from-env",
			"LEVELUP_DB":               "postgres://localhost/levelup",
			"LEVELUP_TELEGRAM_CHAT_ID": "-100",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Learner, "real environment beats .env")
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level, ".env beats the file")
	assert.Equal(t, "dotenv-key", cfg.LLM.Anthropic.APIKey)
	assert.Equal(t, 9, cfg.Scheduler.KeepSnapshots)
	assert.Equal(t, "postgres://localhost/levelup", cfg.DSN)
	assert.Equal(t, int64(-100), cfg.Telegram.ChatID)
}

func TestLoadConfigFromEnvVar(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.toml", `learner = "cy"`)

	cfg, err := Load(Options{
		EnvFile:   writeFile(t, dir, "empty.env", ""),
		LookupEnv: envMap(map[string]string{"LEVELUP_CONFIG": path}),
	})
	require.NoError(t, err)
	assert.Equal(t, "cy", cfg.Learner)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.env", "")

	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{
			name:    "missing explicit file",
			opts:    Options{Path: filepath.Join(dir, "nope.toml"), EnvFile: empty},
			wantErr: "open config",
		},
		{
			name:    "missing explicit env file",
			opts:    Options{EnvFile: filepath.Join(dir, "nope.env")},
			wantErr: "read env file",
		},
		{
			name:    "unknown key",
			opts:    Options{Path: writeFile(t, dir, "unknown.toml", "colour = \"red\""), EnvFile: empty},
			wantErr: "parse config",
		},
		{
			name:    "bad duration",
			opts:    Options{Path: writeFile(t, dir, "dur.toml", "[llm]\ntimeout = \"soon\""), EnvFile: empty},
			wantErr: "llm.timeout",
		},
		{
			name:    "bad timezone",
			opts:    Options{Path: writeFile(t, dir, "tz.toml", "[scheduler]\ntimezone = \"Mars/Olympus\""), EnvFile: empty},
			wantErr: "scheduler.timezone",
		},
		{
			name: "bad chat id",
			opts: Options{
				EnvFile:   empty,
				LookupEnv: envMap(map[string]string{"XDG_CONFIG_HOME": dir, "LEVELUP_TELEGRAM_CHAT_ID": "abc"}),
			},
			wantErr: "LEVELUP_TELEGRAM_CHAT_ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.opts.LookupEnv == nil {
				tt.opts.LookupEnv = envMap(map[string]string{"XDG_CONFIG_HOME": dir})
			}
			_, err := Load(tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLogConfigLogger(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: slog.LevelInfo, Format: "json"}.Logger(&buf).Info("hello", "learner", "ana")
	assert.Contains(t, buf.String(), `"learner":"ana"`)

	buf.Reset()
	logger := LogConfig{Level: slog.LevelWarn}.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}
