// Package sweep finds annotations whose file no longer exists and, when
// pruning is enabled, deletes them. Runs are scheduled by cron expression;
// the default posture is report-only so a renamed file never silently loses
// its notes.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"marginalia/pkg/config"
	"marginalia/pkg/logger"
	"marginalia/pkg/notes"
	"marginalia/pkg/telemetry"
)

// Sweeper checks stored annotations against the set of known files.
type Sweeper struct {
	store  notes.Store
	exists func(fileID string) bool
	prune  bool
}

// New builds a Sweeper. exists reports whether a fileID still resolves to a
// file; in session mode there is no file authority, so callers should not
// start a sweeper at all.
func New(store notes.Store, exists func(fileID string) bool, prune bool) *Sweeper {
	return &Sweeper{store: store, exists: exists, prune: prune}
}

// RunOnce scans every annotation and returns the orphan count. With pruning
// enabled, orphans are deleted as they are found.
func (s *Sweeper) RunOnce() (int, error) {
	all, err := s.store.ListAll()
	if err != nil {
		return 0, fmt.Errorf("list annotations: %w", err)
	}
	orphans := 0
	for _, a := range all {
		if s.exists(a.FileID) {
			continue
		}
		orphans++
		if s.prune {
			if err := s.store.Delete(a.ID); err != nil {
				return orphans, fmt.Errorf("prune annotation %s: %w", a.ID, err)
			}
			logger.Info("orphan_pruned", "id", a.ID, "file", a.FileID)
		} else {
			logger.Warn("orphan_found", "id", a.ID, "file", a.FileID, "line", a.StartLine)
		}
	}
	telemetry.SetSweepOrphans(orphans)
	logger.Info("sweep_complete", "scanned", len(all), "orphans", orphans, "pruned", s.prune)
	return orphans, nil
}

// Start runs the cron scheduler until ctx is cancelled. Returns a cancel
// func; when sweeping is disabled the cancel is a no-op.
func Start(ctx context.Context, cfg config.Config, s *Sweeper) (context.CancelFunc, error) {
	if !cfg.Sweep.Enabled {
		logger.Info("sweep_disabled")
		return func() {}, nil
	}

	cronExpr := cfg.Sweep.Cron
	if cronExpr == "" {
		cronExpr = "0 3 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("sweep_invalid_cron", "cron", cronExpr)
		return nil, fmt.Errorf("invalid sweep cron expression: %s", cronExpr)
	}

	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, s)
	logger.Info("sweep_scheduler_started", "cron", cronExpr, "prune", s.prune)
	return cancel, nil
}

// runScheduler sleeps until each next cron tick and runs a sweep.
func runScheduler(ctx context.Context, cronExpr string, s *Sweeper) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("sweep_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("sweep_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if _, err := s.RunOnce(); err != nil {
				logger.Error("sweep_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("sweep_scheduler_stopping")
			return
		}
	}
}
