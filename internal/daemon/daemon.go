// Package daemon runs the long-lived storyreel service: it owns the project
// store, the compositor, and the HTTP API, and enforces single-instance
// execution with a lock file.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"storyreel/internal/api"
	"storyreel/internal/compositor"
	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/notifications"
	"storyreel/internal/project"
	"storyreel/internal/scene"
)

type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *project.Store
	comp   *compositor.Compositor
	server *api.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
}

// New constructs a daemon with initialized dependencies. The store is opened
// here and closed by Close.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	store, err := project.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open project store: %w", err)
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    store,
		lockPath: filepath.Join(cfg.Paths.LogDir, "storyreel.lock"),
	}
	d.lock = flock.New(d.lockPath)

	d.comp = compositor.New(compositor.Options{
		Config:   cfg,
		Logger:   logger,
		Notifier: notifications.NewService(cfg),
		OnProgress: func(st compositor.Status) {
			d.persistProgress(st)
		},
		OnSceneDone: func(sc scene.Scene, actualSeconds float64) {
			if sc.ID == 0 {
				return
			}
			if err := store.SetSceneActualSeconds(context.Background(), sc.ID, actualSeconds); err != nil {
				d.logger.Warn("persist scene duration failed", logging.Error(err))
			}
		},
	})

	d.server = api.NewServer(api.ServerConfig{
		Bind:      cfg.Paths.APIBind,
		Token:     cfg.Paths.APIToken,
		Store:     store,
		Composer:  d.comp,
		Logger:    logger,
		StartTime: time.Now(),
	})

	return d, nil
}

// persistProgress mirrors composition status onto the project row. Tick
// updates arrive frequently, so write failures are logged and dropped.
func (d *Daemon) persistProgress(st compositor.Status) {
	if st.ProjectID == 0 {
		return
	}
	ctx := context.Background()
	if err := d.store.SaveJobProgress(ctx, st.ProjectID, st.JobID, string(st.State), st.Percent); err != nil {
		d.logger.Warn("persist progress failed", logging.Error(err))
		return
	}
	if st.State == compositor.StateCompleted && st.OutputPath != "" {
		if err := d.store.SetOutputPath(ctx, st.ProjectID, st.OutputPath); err != nil {
			d.logger.Warn("persist output path failed", logging.Error(err))
		}
	}
}

// Store exposes the daemon's project store.
func (d *Daemon) Store() *project.Store {
	return d.store
}

// Compositor exposes the daemon's compositor.
func (d *Daemon) Compositor() *compositor.Compositor {
	return d.comp
}

// Addr returns the API server's bound address.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

// Run acquires the instance lock and serves the API until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another storyreel instance is already running")
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("release lock failed", logging.Error(err))
		}
	}()

	d.running.Store(true)
	defer d.running.Store(false)
	d.logger.Info("storyreel daemon started",
		logging.String("lock", d.lockPath),
		logging.String("bind", d.cfg.Paths.APIBind))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- d.server.Start()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown api: %w", err)
	}
	<-serveErr
	d.logger.Info("storyreel daemon stopped")
	return nil
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	return d.store.Close()
}
