package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"projecttracker/internal/model"
)

func newStagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stages",
		Aliases: []string{"stage", "s"},
		Short:   "Manage project stages",
	}
	cmd.AddCommand(newStagesListCmd())
	cmd.AddCommand(newStagesCreateCmd())
	cmd.AddCommand(newStagesUpdateCmd())
	cmd.AddCommand(newStagesDeleteCmd())
	return cmd
}

func newStagesListCmd() *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stages in creation order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stages, err := newClient().ListStages(cmd.Context(), projectID)
			if err != nil {
				return fmt.Errorf("list stages: %w", err)
			}
			return printStages(cmd.OutOrStdout(), stages)
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "only stages of this project")
	return cmd
}

func newStagesCreateCmd() *cobra.Command {
	var in model.StageInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a stage in a project",
		Long: `Create a stage in a project.

Example:
  trackctl stages create --project <project-id> --name "Design"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newClient().CreateStage(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("create stage: %w", err)
			}
			return printOne(cmd.OutOrStdout(), s, fmt.Sprintf("Created stage %s (%s)", s.Name, s.ID))
		},
	}
	cmd.Flags().StringVar(&in.ProjectID, "project", "", "owning project id")
	cmd.Flags().StringVar(&in.Name, "name", "", "stage name")
	cmd.Flags().StringVar(&in.Description, "description", "", "stage description")
	return cmd
}

func newStagesUpdateCmd() *cobra.Command {
	var in model.StageInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a stage's name and description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newClient().UpdateStage(cmd.Context(), args[0], in)
			if err != nil {
				return fmt.Errorf("update stage: %w", err)
			}
			return printOne(cmd.OutOrStdout(), s, fmt.Sprintf("Updated stage %s (%s)", s.Name, s.ID))
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "stage name")
	cmd.Flags().StringVar(&in.Description, "description", "", "stage description")
	return cmd
}

func newStagesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a stage with all of its tasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteStage(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete stage: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted stage %s\n", args[0])
			return nil
		},
	}
}
