// Package compositor runs composition jobs: it filters a project's scenes,
// drives each one across the render surface on a wall-clock timeline, feeds
// narration to the audio bus, and records the surface into the output video.
package compositor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"storyreel/internal/assets"
	"storyreel/internal/config"
	"storyreel/internal/emitter"
	"storyreel/internal/logging"
	"storyreel/internal/mixbus"
	"storyreel/internal/recorder"
	"storyreel/internal/scene"
	"storyreel/internal/surface"
)

// Notifier receives lifecycle events for composition jobs. Send failures are
// logged and never affect the job. A nil Notifier disables notifications.
type Notifier interface {
	CompositionStarted(ctx context.Context, title string, sceneCount int) error
	CompositionCompleted(ctx context.Context, title, outputPath string) error
	CompositionFailed(ctx context.Context, title, reason string) error
}

// Request describes one composition job.
type Request struct {
	ProjectID int64
	Title     string
	Aspect    string
	Scenes    []scene.Scene
}

// Result summarizes a finished composition.
type Result struct {
	JobID           string
	OutputPath      string
	SceneCount      int
	DurationSeconds float64
}

// Options configures a Compositor.
type Options struct {
	Config   *config.Config
	Logger   *slog.Logger
	Notifier Notifier

	// OnProgress receives every status change, including per-tick percent
	// updates. Optional.
	OnProgress func(Status)

	// OnSceneDone receives each scene's measured wall-clock duration once
	// its wait-out completes. Optional.
	OnSceneDone func(sc scene.Scene, actualSeconds float64)
}

// captureSession is the recorder surface the driver depends on. The real
// implementation is recorder.Recorder.
type captureSession interface {
	Stop(ctx context.Context, audioLimitSeconds float64) (string, error)
	Abort()
}

// Compositor executes at most one composition at a time. A second Compose
// call while a job is running fails with ErrCompositionActive.
type Compositor struct {
	cfg      *config.Config
	logger   *slog.Logger
	notifier Notifier
	tracker  *tracker

	renderer    Renderer
	feeder      AudioFeeder
	onSceneDone func(scene.Scene, float64)

	startCapture func(ctx context.Context, source recorder.FrameSource, bus *mixbus.Bus, opts recorder.Options) (captureSession, error)
	emit         func(stagedPath, outputDir, title string) (string, error)

	mu      sync.Mutex
	running bool
}

// New builds a Compositor with the production renderer, audio feeder, and
// recorder wired in.
func New(opts Options) *Compositor {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithComponent(logger, "compositor")

	fetcher := assets.NewFetcher(time.Duration(opts.Config.Assets.RequestTimeout) * time.Second)
	return &Compositor{
		cfg:      opts.Config,
		logger:   logger,
		notifier: opts.Notifier,
		tracker:  newTracker(opts.OnProgress),
		renderer: &imageRenderer{fetcher: fetcher},
		feeder: &pcmFeeder{
			fetcher:      fetcher,
			ffmpegBinary: opts.Config.Tools.FFmpeg,
			stagingDir:   opts.Config.Paths.StagingDir,
		},
		onSceneDone: opts.OnSceneDone,
		startCapture: func(ctx context.Context, source recorder.FrameSource, bus *mixbus.Bus, ropts recorder.Options) (captureSession, error) {
			return recorder.Start(ctx, source, bus, ropts)
		},
		emit: emitter.Emit,
	}
}

// Status returns the current progress snapshot.
func (c *Compositor) Status() Status {
	return c.tracker.snapshot()
}

// Running reports whether a job is currently active.
func (c *Compositor) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Compose runs one composition to completion. It blocks until the job
// finishes, fails, or ctx is cancelled. Scenes missing a ready image, ready
// audio, or narration text are skipped; if nothing remains the job never
// starts and no resources are allocated.
func (c *Compositor) Compose(ctx context.Context, req Request) (Result, error) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return Result{}, ErrCompositionActive
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	eligible := scene.Filter(req.Scenes)
	if len(eligible) == 0 {
		c.logger.Warn("nothing to compose",
			logging.Int64(logging.FieldProjectID, req.ProjectID),
			logging.Int("scenes_submitted", len(req.Scenes)))
		return Result{}, ErrNoEligibleScenes
	}

	jobID := uuid.New().String()
	totalPlanned := scene.TotalPlannedSeconds(eligible, c.cfg.Composition.DefaultSceneSeconds)
	c.tracker.start(jobID, req.ProjectID, req.Title, len(eligible))
	c.logger.Info("composition started",
		logging.String(logging.FieldJobID, jobID),
		logging.Int64(logging.FieldProjectID, req.ProjectID),
		logging.Int("scenes", len(eligible)),
		logging.Float64("planned_seconds", totalPlanned))
	c.notifyStarted(ctx, req.Title, len(eligible))

	result, err := c.run(ctx, jobID, req, eligible, totalPlanned)
	if err != nil {
		c.tracker.fail(err)
		c.logger.Error("composition failed",
			logging.String(logging.FieldJobID, jobID),
			logging.Error(err))
		c.notifyFailed(ctx, req.Title, err.Error())
		return Result{}, err
	}

	c.tracker.complete(result.OutputPath)
	c.logger.Info("composition completed",
		logging.String(logging.FieldJobID, jobID),
		logging.String("output", result.OutputPath),
		logging.Float64("duration_seconds", result.DurationSeconds))
	c.notifyCompleted(ctx, req.Title, result.OutputPath)
	return result, nil
}

func (c *Compositor) run(ctx context.Context, jobID string, req Request, eligible []scene.Scene, totalPlanned float64) (Result, error) {
	width, height, err := surface.DimensionsForAspect(req.Aspect)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSurfaceUnavailable, err)
	}
	surf, err := surface.New(width, height)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSurfaceUnavailable, err)
	}
	defer surf.Close()

	bus := mixbus.Open()
	defer bus.Close()

	session, err := c.startCapture(ctx, surf, bus, recorder.Options{
		FFmpegBinary: c.cfg.Tools.FFmpeg,
		FrameRate:    c.cfg.Composition.FrameRate,
		StagingDir:   c.cfg.Paths.StagingDir,
		BaseName:     jobID,
		Logger:       c.logger,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRecorder, err)
	}

	elapsed := 0.0
	for i, sc := range eligible {
		planned := scene.PlannedDuration(sc, c.cfg.Composition.DefaultSceneSeconds)
		c.tracker.beginScene(i+1, sc.Title)
		c.logger.Info("scene started",
			logging.String(logging.FieldJobID, jobID),
			logging.Int(logging.FieldScene, sc.Sequence),
			logging.Float64("planned_seconds", planned))

		if err := c.renderer.Render(ctx, sc, surf); err != nil {
			session.Abort()
			return Result{}, err
		}

		if err := c.feeder.Feed(ctx, sc, bus, elapsed); err != nil {
			// Audio failures leave the scene silent but do not abort.
			c.logger.Warn("scene audio skipped",
				logging.String(logging.FieldJobID, jobID),
				logging.Int(logging.FieldScene, sc.Sequence),
				logging.Error(err))
		}

		actual, err := c.waitOut(ctx, planned, elapsed, totalPlanned)
		if err != nil {
			session.Abort()
			return Result{}, err
		}
		if c.onSceneDone != nil {
			c.onSceneDone(sc, actual)
		}
		elapsed += actual
	}

	stagedPath, err := session.Stop(ctx, elapsed)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRecorder, err)
	}

	finalPath, err := c.emit(stagedPath, c.cfg.Paths.OutputDir, req.Title)
	if err != nil {
		return Result{}, err
	}

	return Result{
		JobID:           jobID,
		OutputPath:      finalPath,
		SceneCount:      len(eligible),
		DurationSeconds: elapsed,
	}, nil
}

// waitOut holds the current scene on screen for its planned duration,
// publishing progress on every tick. Returns the measured wall-clock
// duration of the wait.
func (c *Compositor) waitOut(ctx context.Context, plannedSeconds, elapsedBefore, totalPlanned float64) (float64, error) {
	tick := time.Duration(c.cfg.Composition.ProgressTickMS) * time.Millisecond
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}

	start := time.Now()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return time.Since(start).Seconds(), ctx.Err()
		case <-ticker.C:
			sceneElapsed := time.Since(start).Seconds()
			if sceneElapsed >= plannedSeconds {
				c.tracker.setElapsed(elapsedBefore+plannedSeconds, totalPlanned)
				return sceneElapsed, nil
			}
			c.tracker.setElapsed(elapsedBefore+sceneElapsed, totalPlanned)
		}
	}
}

func (c *Compositor) notifyStarted(ctx context.Context, title string, sceneCount int) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.CompositionStarted(ctx, title, sceneCount); err != nil {
		c.logger.Warn("notification failed", logging.Error(err))
	}
}

func (c *Compositor) notifyCompleted(ctx context.Context, title, outputPath string) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.CompositionCompleted(ctx, title, outputPath); err != nil {
		c.logger.Warn("notification failed", logging.Error(err))
	}
}

func (c *Compositor) notifyFailed(ctx context.Context, title, reason string) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.CompositionFailed(ctx, title, reason); err != nil {
		c.logger.Warn("notification failed", logging.Error(err))
	}
}
