package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/levelup/internal/coach"
	"github.com/abhisek/levelup/internal/config"
	"github.com/abhisek/levelup/internal/llm"
	"github.com/abhisek/levelup/internal/notify"
	"github.com/abhisek/levelup/internal/progression"
	"github.com/abhisek/levelup/internal/store"
)

// env holds the dependencies a command runs against.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	events   store.EventRepo
	notifier notify.Notifier
	service  *progression.Service
}

func (e *env) Close() error {
	return e.store.Close()
}

// loadConfig resolves the configuration and applies the global flags on
// top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{Path: path})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DSN = v
	}
	if v, _ := cmd.Flags().GetString("learner"); v != "" {
		cfg.Learner = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		if err := cfg.Log.Level.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid --log-level %q: %w", v, err)
		}
	}
	return cfg, nil
}

// resolveDBPath returns the configured DSN, or the default XDG path when
// none is set.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, store.EnsureDir(cfg.DSN)
	}
	return store.DefaultDBPath()
}

// openEnv loads the configuration, opens the store and builds the
// progression service. Logs go to logOut.
func openEnv(cmd *cobra.Command, logOut io.Writer) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := cfg.Log.Logger(logOut)
	slog.SetDefault(logger)

	dsn, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	events := st.EventRepo()

	provider, err := llm.NewProvider(cmd.Context(), cfg.LLM.Discover(), events)
	if err != nil {
		logger.Warn("LLM provider not configured; using built-in level-up messages", "err", err)
		provider = nil
	}

	notifier := buildNotifier(cfg, logger)
	svc, err := progression.NewService(events, progression.Options{
		Coach:    coach.New(provider, logger),
		Notifier: notifier,
		Logger:   logger,
		Location: cfg.Scheduler.Location,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("create progression service: %w", err)
	}

	return &env{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		events:   events,
		notifier: notifier,
		service:  svc,
	}, nil
}

// buildNotifier always logs notifications and also posts them to
// Telegram when a bot is configured.
func buildNotifier(cfg *config.Config, logger *slog.Logger) notify.Notifier {
	notifiers := notify.Multi{notify.LogNotifier{Logger: logger}}
	if cfg.Telegram.Enabled() {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			logger.Warn("telegram notifications disabled", "err", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	return notifiers
}
