package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"storyreel/internal/compositor"
	"storyreel/internal/config"
	"storyreel/internal/notifications"
	"storyreel/internal/project"
	"storyreel/internal/scene"
)

func newComposeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "compose <project-id>",
		Short: "Compose a project's scenes into a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || projectID <= 0 {
				return fmt.Errorf("invalid project id %q", args[0])
			}

			return ctx.withStore(func(cfg *config.Config, store *project.Store) error {
				p, err := store.GetByID(cmd.Context(), projectID)
				if err != nil {
					return err
				}
				if p == nil {
					return fmt.Errorf("project %d not found", projectID)
				}
				scenes, err := store.ListScenes(cmd.Context(), p.ID)
				if err != nil {
					return err
				}

				logger, err := ctx.newLogger()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				printer := newProgressPrinter(out)
				comp := compositor.New(compositor.Options{
					Config:   cfg,
					Logger:   logger,
					Notifier: notifications.NewService(cfg),
					OnProgress: func(st compositor.Status) {
						printer.update(st)
						if st.ProjectID != 0 {
							_ = store.SaveJobProgress(context.Background(),
								st.ProjectID, st.JobID, string(st.State), st.Percent)
						}
					},
					OnSceneDone: func(sc scene.Scene, actualSeconds float64) {
						if sc.ID != 0 {
							_ = store.SetSceneActualSeconds(context.Background(), sc.ID, actualSeconds)
						}
					},
				})

				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				result, err := comp.Compose(runCtx, compositor.Request{
					ProjectID: p.ID,
					Title:     p.Title,
					Aspect:    p.Aspect,
					Scenes:    scenes,
				})
				printer.finish()
				if err != nil {
					return err
				}

				if err := store.SetOutputPath(context.Background(), p.ID, result.OutputPath); err != nil {
					return err
				}
				fmt.Fprintf(out, "Composed %d scenes in %.1fs\n", result.SceneCount, result.DurationSeconds)
				fmt.Fprintf(out, "Output: %s\n", result.OutputPath)
				return nil
			})
		},
	}
}

// progressPrinter renders composition progress. On a terminal it rewrites a
// single status line; otherwise it prints one line per scene transition.
type progressPrinter struct {
	out      io.Writer
	tty      bool
	mu       sync.Mutex
	line     bool
	scene    int
	percent  int
	reported bool
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	tty := false
	if f, ok := out.(*os.File); ok {
		fd := f.Fd()
		tty = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return &progressPrinter{out: out, tty: tty}
}

func (p *progressPrinter) update(st compositor.Status) {
	if st.State != compositor.StateRunning || st.SceneCount == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tty {
		if st.SceneIndex == p.scene && st.Percent == p.percent && p.reported {
			return
		}
		fmt.Fprintf(p.out, "\rScene %d/%d  %3d%%", st.SceneIndex, st.SceneCount, st.Percent)
		p.line = true
	} else if st.SceneIndex != p.scene || !p.reported {
		fmt.Fprintf(p.out, "Scene %d/%d started (%d%%)\n", st.SceneIndex, st.SceneCount, st.Percent)
	}
	p.scene = st.SceneIndex
	p.percent = st.Percent
	p.reported = true
}

func (p *progressPrinter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.line {
		fmt.Fprintln(p.out)
		p.line = false
	}
}
