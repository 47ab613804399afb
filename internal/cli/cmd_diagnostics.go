package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create a sample project with three stages and nine tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := newClient().Seed(cmd.Context())
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			return printOne(cmd.OutOrStdout(), res, fmt.Sprintf("Seeded project %s (%s): %d stages, %d tasks",
				res.Project.Name, res.Project.ID, res.Summary.StagesCreated, res.Summary.TasksCreated))
		},
	}
}

func newClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every task, stage and project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete all data without --yes")
			}
			res, err := newClient().ClearData(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear: %w", err)
			}
			return printOne(cmd.OutOrStdout(), res, fmt.Sprintf("Deleted %d tasks, %d stages, %d projects",
				res.TasksDeleted, res.StagesDeleted, res.ProjectsDeleted))
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all data")
	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API and database status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newClient().Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}
			return printOne(cmd.OutOrStdout(), h, fmt.Sprintf("%s: database %s (%d projects, %d stages, %d tasks)",
				h.Status, h.Database, h.Data.Projects, h.Data.Stages, h.Data.Tasks))
		},
	}
}
