package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/project"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *project.Store) error {
				projects, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(projects) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No projects")
					return nil
				}

				rows := make([][]string, 0, len(projects))
				for _, p := range projects {
					output := p.OutputPath
					if output == "" {
						output = "-"
					}
					rows = append(rows, []string{
						strconv.FormatInt(p.ID, 10),
						p.Title,
						p.Aspect,
						p.JobState,
						fmt.Sprintf("%d%%", p.JobPercent),
						output,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Aspect", "State", "Progress", "Output"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func newScenesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scenes <project-id>",
		Short: "List a project's scenes",
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
				if len(scenes) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Project %q has no scenes\n", p.Title)
					return nil
				}

				rows := make([][]string, 0, len(scenes))
				for _, sc := range scenes {
					rows = append(rows, []string{
						strconv.Itoa(sc.Sequence),
						sc.Title,
						string(sc.ImageStatus),
						string(sc.AudioStatus),
						fmt.Sprintf("%.1fs", sc.PlannedSeconds),
						yesNo(sc.Eligible()),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Seq", "Title", "Image", "Audio", "Planned", "Eligible"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
