// Command notekeeper is a terminal client for a notes backend.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nhle/notekeeper/internal/api"
	"github.com/nhle/notekeeper/internal/app"
	"github.com/nhle/notekeeper/internal/autosave"
	"github.com/nhle/notekeeper/internal/cache"
	"github.com/nhle/notekeeper/internal/credential"
	"github.com/nhle/notekeeper/internal/logger"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
	"github.com/nhle/notekeeper/internal/theme"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "notekeeper:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	flags := pflag.NewFlagSet("notekeeper", pflag.ContinueOnError)
	configPath := flags.String("config", model.DefaultConfigPath(), "path to the YAML config file")
	setToken := flags.Bool("set-token", false, "read an API token from stdin and store it in the keyring")
	clearToken := flags.Bool("clear-token", false, "remove the stored API token")
	initConfig := flags.Bool("init-config", false, "write the effective configuration to --config and exit")
	flags.String("api-url", "", "backend base URL")
	flags.String("notes-url", "", "base URL for note endpoints")
	flags.String("tags-url", "", "base URL for tag endpoints")
	flags.String("ordering", "", "overlapping mutation policy: last_resolved or last_issued")
	flags.String("theme", "", "initial theme: light or dark")
	flags.String("log-level", "", "log level")
	flags.String("log-file", "", "log file path")
	flags.String("cache-path", "", "local cache database path")
	flags.Int("max-retries", 0, "retries on HTTP 429")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := model.LoadConfig(*configPath, flags)
	if err != nil {
		return err
	}

	if *initConfig {
		if err := model.SaveConfig(*configPath, cfg); err != nil {
			return err
		}
		fmt.Println("wrote", *configPath)
		return nil
	}

	creds := credential.New()
	switch {
	case *setToken:
		return storeToken(creds)
	case *clearToken:
		return creds.SetToken("")
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	logger.SetGlobal(log)
	ctx := logger.NewContext(context.Background(), log)

	token, err := creds.Token()
	if err != nil {
		log.Warn(ctx, "reading api token", zap.Error(err))
	}

	client := api.NewClient(api.Options{
		BaseURL:      cfg.API.BaseURL,
		NotesBaseURL: cfg.API.NotesBaseURL,
		TagsBaseURL:  cfg.API.TagsBaseURL,
		Token:        token,
		Timeout:      time.Duration(cfg.API.TimeoutSec) * time.Second,
		MaxRetries:   cfg.API.MaxRetries,
	})
	s := store.New(client, client, client, store.Options{Ordering: cfg.Store.Ordering})

	themeName := cfg.Display.Theme
	var lastNotebook model.ID
	c, err := cache.Open(cfg.CachePath)
	if err != nil {
		log.Warn(ctx, "local cache unavailable", zap.String("path", cfg.CachePath), zap.Error(err))
		c = nil
	} else {
		defer c.Close()
		themeName, lastNotebook = restore(ctx, log, c, s, themeName)
	}
	theme.Apply(themeName)

	saver := autosave.New(s, time.Duration(cfg.Editor.AutosaveIntervalSec)*time.Second)

	log.Info(ctx, "starting",
		zap.String("base_url", cfg.API.BaseURL),
		zap.String("ordering", cfg.Store.Ordering))

	root := app.New(app.Options{
		Store:        s,
		Autosaver:    saver,
		Cache:        c,
		Config:       cfg,
		LastNotebook: lastNotebook,
	})
	if _, err := tea.NewProgram(root, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}

	if c != nil {
		if err := c.SaveSnapshot(ctx, s.Snapshot()); err != nil {
			log.Warn(ctx, "saving snapshot", zap.Error(err))
		}
	}
	return nil
}

// restore hydrates the store from the last snapshot and reads the saved
// preferences. It returns the theme to use and the last active notebook.
func restore(ctx context.Context, log *logger.Logger, c *cache.Cache, s *store.Store, fallback string) (string, model.ID) {
	if snap, savedAt, ok, err := c.LoadSnapshot(ctx); err != nil {
		log.Warn(ctx, "loading snapshot", zap.Error(err))
	} else if ok {
		s.Hydrate(snap)
		log.Debug(ctx, "hydrated from snapshot", zap.Time("saved_at", savedAt))
	}

	name, err := c.Theme(ctx, fallback)
	if err != nil {
		log.Warn(ctx, "reading theme preference", zap.Error(err))
		name = fallback
	}
	last, err := c.LastNotebook(ctx)
	if err != nil {
		log.Warn(ctx, "reading last notebook", zap.Error(err))
	}
	return name, last
}

func storeToken(creds *credential.Store) error {
	fmt.Fprint(os.Stderr, "API token: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading token: %w", err)
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return errors.New("empty token")
	}
	if err := creds.SetToken(token); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "token stored in the system keyring")
	return nil
}
