package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"storyreel/internal/assets"
	"storyreel/internal/config"
	"storyreel/internal/project"
	"storyreel/internal/scene"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "add <manifest>",
		Short: "Create a project from a TOML or YAML manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := project.LoadManifest(args[0])
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *project.Store) error {
				if probe {
					if err := probeManifestDurations(cmd, cfg, manifest); err != nil {
						return err
					}
				}

				p, err := store.Ingest(cmd.Context(), manifest)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created project %d: %s (%d scenes)\n",
					p.ID, p.Title, len(manifest.Scenes))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "fill missing scene durations from the narration audio")
	return cmd
}

// probeManifestDurations inspects the narration audio of scenes that omit a
// duration and writes the probed length back into the manifest before ingest.
func probeManifestDurations(cmd *cobra.Command, cfg *config.Config, manifest *project.Manifest) error {
	scenes := make([]scene.Scene, len(manifest.Scenes))
	for i, ms := range manifest.Scenes {
		scenes[i] = scene.Scene{
			Sequence:       i + 1,
			AudioRef:       ms.Audio,
			PlannedSeconds: ms.Seconds,
		}
	}

	fetcher := assets.NewFetcher(time.Duration(cfg.Assets.RequestTimeout) * time.Second)
	if err := fetcher.ProbeDurations(cmd.Context(), cfg.Tools.FFprobe, cfg.Paths.StagingDir, scenes); err != nil {
		return err
	}

	for i := range scenes {
		manifest.Scenes[i].Seconds = scenes[i].PlannedSeconds
	}
	return nil
}
