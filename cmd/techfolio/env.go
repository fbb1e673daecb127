package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/robertmeta/techfolio/config"
	"github.com/robertmeta/techfolio/feed"
	"github.com/robertmeta/techfolio/portfolio"
	"github.com/robertmeta/techfolio/store"
	"github.com/urfave/cli/v2"
)

// env is everything a command needs, built from config and global flags.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	store  *store.Store
	svc    *portfolio.Service
	id     portfolio.Identity
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("config error: %v", err), ExitUsageError)
	}
	if c.IsSet("db") {
		cfg.DB.Path = c.String("db")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDir(cfg.DataDir); err != nil {
		return nil, cli.Exit(err.Error(), ExitDataError)
	}
	if cfg.DB.Path != ":memory:" {
		if err := ensureDir(filepath.Dir(cfg.DB.Path)); err != nil {
			return nil, cli.Exit(err.Error(), ExitDataError)
		}
	}

	s, err := store.New(cfg.DB.Path)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("failed to open database: %v", err), ExitDataError)
	}

	svc, err := portfolio.NewService(s, portfolio.Options{
		PageSize:   cfg.Timeline.PageSize,
		StatsLimit: cfg.Stats.Limit,
		Feed: feed.Options{
			Timeout:      cfg.Feed.Timeout,
			QiitaBaseURL: cfg.Feed.QiitaBaseURL,
			QiitaToken:   cfg.Feed.QiitaToken,
			PerPage:      cfg.Feed.PerPage,
		},
		LockPath: cfg.LockPath(),
		Logger:   logger,
	})
	if err != nil {
		s.Close()
		return nil, cli.Exit(err.Error(), ExitGeneralError)
	}

	e := &env{cfg: cfg, logger: logger, store: s, svc: svc}
	e.id, err = svc.Resolve(c.Context, c.String("profile"))
	if err != nil {
		s.Close()
		return nil, exitFor(err)
	}
	return e, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("failed to close database", "error", err)
	}
}

// profileID returns the signed-in profile or an exit error in demo mode.
func (e *env) profileID() (string, error) {
	id, err := e.id.RequireProfile()
	if err != nil {
		return "", exitFor(err)
	}
	return id, nil
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// exitFor maps an error to a cli exit error: auth failures get their own code.
func exitFor(err error) error {
	if errors.Is(err, portfolio.ErrUnauthorized) {
		return cli.Exit(err.Error(), ExitAuthError)
	}
	return cli.Exit(err.Error(), ExitDataError)
}

func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
