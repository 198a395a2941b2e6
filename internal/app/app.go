// Package app wires configuration, storage, the workspace and the HTTP
// server into one lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/joho/godotenv"

	"marginalia/internal/sweep"
	"marginalia/pkg/config"
	"marginalia/pkg/github"
	"marginalia/pkg/logger"
	"marginalia/pkg/notes"
	"marginalia/pkg/validation"
	"marginalia/pkg/workspace"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string

	store   notes.Store
	svc     *notes.Service
	tree    *workspace.Tree
	remote  *github.Client
	sweeper *sweep.Sweeper

	srv *http.Server
}

// New initializes resources that do not require a running context: logging,
// validation rules, the note store for the configured mode and, in workspace
// mode, the file tree. It does not start watchers, schedulers or the HTTP
// server; call Run for those.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	logger.Init(eff.Config.Logging.Level)

	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	runtimeCfg := &config.RuntimeConfig{EditorKeys: map[string]struct{}{}}
	for _, k := range eff.Config.Security.APIKeys.Editor {
		runtimeCfg.EditorKeys[k] = struct{}{}
	}
	config.SetRuntime(runtimeCfg)

	validation.SetRules(validation.Rules{
		MaxContentLen:  eff.Config.Validation.MaxContentLen,
		RequireContent: eff.Config.Validation.RequireContent,
	})

	a := &App{eff: eff, version: version, commit: commit, buildDate: buildDate}

	switch eff.Mode {
	case "workspace":
		tree, err := workspace.Open(eff.WorkspaceRoot)
		if err != nil {
			return nil, fmt.Errorf("open workspace %s: %w", eff.WorkspaceRoot, err)
		}
		a.tree = tree
		store, err := notes.OpenFile(eff.WorkspaceRoot)
		if err != nil {
			return nil, fmt.Errorf("open note document in %s: %w", eff.WorkspaceRoot, err)
		}
		a.store = store
	case "session":
		store, err := notes.OpenPebble(eff.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open pebble at %s: %w", eff.DBPath, err)
		}
		a.store = store
	default:
		return nil, fmt.Errorf("unknown storage mode %q", eff.Mode)
	}
	a.svc = notes.NewService(a.store)

	if gh := eff.Config.GitHub; gh.Token != "" || gh.BaseURL != "" {
		a.remote = github.New(github.Options{
			BaseURL: gh.BaseURL,
			Token:   gh.Token,
			RPS:     gh.RPS,
			Burst:   gh.Burst,
		})
	}

	// orphan sweeps only make sense with a file authority
	if a.tree != nil {
		a.sweeper = sweep.New(a.store, a.tree.Has, eff.Config.Sweep.Prune)
	}

	return a, nil
}

// Run starts the workspace watcher, the sweep scheduler and the HTTP server,
// and blocks until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if a.tree != nil {
		if err := a.tree.Watch(ctx, nil); err != nil {
			return fmt.Errorf("start workspace watcher: %w", err)
		}
	}

	if a.sweeper != nil {
		cancel, err := sweep.Start(ctx, *a.eff.Config, a.sweeper)
		if err != nil {
			return err
		}
		defer cancel()
	}

	a.printBanner()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		a.shutdownHTTP()
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (a *App) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Error("store_close_failed", "error", err)
		}
	}
}
