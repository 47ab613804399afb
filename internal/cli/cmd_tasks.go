package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"projecttracker/internal/client"
	"projecttracker/internal/model"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "Manage stage tasks",
	}
	cmd.AddCommand(newTasksListCmd())
	cmd.AddCommand(newTasksCreateCmd())
	cmd.AddCommand(newTasksUpdateCmd())
	cmd.AddCommand(newTasksToggleCmd())
	cmd.AddCommand(newTasksDeleteCmd())
	return cmd
}

func newTasksListCmd() *cobra.Command {
	var stageID string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks by deadline",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := newClient().ListTasks(cmd.Context(), stageID)
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}
			return printTasks(cmd.OutOrStdout(), tasks)
		},
	}
	cmd.Flags().StringVar(&stageID, "stage", "", "only tasks of this stage")
	return cmd
}

func newTasksCreateCmd() *cobra.Command {
	var (
		in       model.TaskInput
		deadline string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task in a stage",
		Long: `Create a task in a stage.

Example:
  trackctl tasks create --stage <stage-id> --title "Wireframes" \
    --deadline 2025-03-01 --responsible "Ana"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deadline != "" {
				d, err := model.ParseDate(deadline)
				if err != nil {
					return fmt.Errorf("invalid --deadline %q: %w", deadline, err)
				}
				in.Deadline = d
			}
			t, err := newClient().CreateTask(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("create task: %w", err)
			}
			return printOne(cmd.OutOrStdout(), t, fmt.Sprintf("Created task %s (%s)", t.Title, t.ID))
		},
	}
	cmd.Flags().StringVar(&in.StageID, "stage", "", "owning stage id")
	cmd.Flags().StringVar(&in.Title, "title", "", "task title")
	cmd.Flags().StringVar(&in.Description, "description", "", "task description")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline as YYYY-MM-DD")
	cmd.Flags().StringVar(&in.ResponsiblePerson, "responsible", "", "responsible person")
	return cmd
}

func newTasksUpdateCmd() *cobra.Command {
	var (
		title, description, deadline, responsible string
		completed                                 bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update only the given task fields",
		Long: `Update only the fields whose flags are given.

Example:
  trackctl tasks update <task-id> --completed
  trackctl tasks update <task-id> --deadline 2025-04-01 --responsible "Luis"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("deadline") {
				d, err := model.ParseDate(deadline)
				if err != nil {
					return fmt.Errorf("invalid --deadline %q: %w", deadline, err)
				}
				patch.Deadline = &d
			}
			if flags.Changed("responsible") {
				patch.ResponsiblePerson = &responsible
			}
			if flags.Changed("completed") {
				patch.Completed = &completed
			}

			t, err := newClient().UpdateTask(cmd.Context(), args[0], patch)
			if err != nil {
				return fmt.Errorf("update task: %w", err)
			}
			return printOne(cmd.OutOrStdout(), t, fmt.Sprintf("Updated task %s (%s)", t.Title, t.ID))
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "task title")
	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline as YYYY-MM-DD")
	cmd.Flags().StringVar(&responsible, "responsible", "", "responsible person")
	cmd.Flags().BoolVar(&completed, "completed", false, "completion flag")
	return cmd
}

func newTasksToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task's completion flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			task, err := findTask(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}
			board := client.NewBoard(c, newLogger())
			t, err := board.ToggleTask(cmd.Context(), *task)
			if err != nil {
				return fmt.Errorf("toggle task: %w", err)
			}
			return printOne(cmd.OutOrStdout(), t, fmt.Sprintf("%s %s", checkbox(t.Completed), t.Title))
		},
	}
}

// findTask API 没有单个任务的查询，从全量列表里找
func findTask(ctx context.Context, c *client.Client, id string) (*model.Task, error) {
	tasks, err := c.ListTasks(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, fmt.Errorf("task %s not found", id)
}

func newTasksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteTask(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		},
	}
}
