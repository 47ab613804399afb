package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"projecttracker/internal/model"
)

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "Manage projects",
	}
	cmd.AddCommand(newProjectsListCmd())
	cmd.AddCommand(newProjectsCreateCmd())
	cmd.AddCommand(newProjectsUpdateCmd())
	cmd.AddCommand(newProjectsDeleteCmd())
	return cmd
}

func newProjectsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := newClient().ListProjects(cmd.Context())
			if err != nil {
				return fmt.Errorf("list projects: %w", err)
			}
			return printProjects(cmd.OutOrStdout(), projects)
		},
	}
}

func newProjectsCreateCmd() *cobra.Command {
	var in model.ProjectInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Long: `Create a project.

Example:
  trackctl projects create --name "Website" --description "Relaunch"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newClient().CreateProject(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("create project: %w", err)
			}
			return printOne(cmd.OutOrStdout(), p, fmt.Sprintf("Created project %s (%s)", p.Name, p.ID))
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "project name")
	cmd.Flags().StringVar(&in.Description, "description", "", "project description")
	return cmd
}

func newProjectsUpdateCmd() *cobra.Command {
	var in model.ProjectInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a project's name and description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newClient().UpdateProject(cmd.Context(), args[0], in)
			if err != nil {
				return fmt.Errorf("update project: %w", err)
			}
			return printOne(cmd.OutOrStdout(), p, fmt.Sprintf("Updated project %s (%s)", p.Name, p.ID))
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "project name")
	cmd.Flags().StringVar(&in.Description, "description", "", "project description")
	return cmd
}

func newProjectsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a project with all of its stages and tasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteProject(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete project: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
			return nil
		},
	}
}
