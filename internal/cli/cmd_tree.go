package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"projecttracker/internal/client"
	"projecttracker/internal/model"
)

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [project-id]",
		Short: "Print projects with their stages and tasks",
		Long: `Print a project's stages and tasks. Without an id every project is printed.

Example:
  trackctl tree
  trackctl tree <project-id>`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			board := client.NewBoard(newClient(), newLogger())
			if err := board.LoadProjects(ctx); err != nil {
				return err
			}

			var ids []string
			if len(args) == 1 {
				ids = args
			} else {
				for _, p := range board.Snapshot().Projects {
					ids = append(ids, p.ID)
				}
			}

			nodes := make([]model.ProjectNode, 0, len(ids))
			for _, id := range ids {
				if err := board.SelectProject(ctx, id); err != nil {
					return err
				}
				nodes = append(nodes, projectNode(board.Snapshot()))
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, nodes)
			}
			if len(nodes) == 0 {
				fmt.Fprintln(out, "No projects found.")
				return nil
			}
			for _, n := range nodes {
				printTree(out, n)
			}
			return nil
		},
	}
}

// projectNode 把 Board 快照转成树节点
func projectNode(snap client.Snapshot) model.ProjectNode {
	node := model.ProjectNode{Project: *snap.Selected, Stages: make([]model.StageNode, 0, len(snap.Stages))}
	for _, s := range snap.Stages {
		tasks := snap.TasksFor(s.ID)
		if tasks == nil {
			tasks = []model.Task{}
		}
		node.Stages = append(node.Stages, model.StageNode{Stage: s, Tasks: tasks})
	}
	return node
}

func printTree(w io.Writer, n model.ProjectNode) {
	fmt.Fprintf(w, "%s (%s)\n", n.Name, n.ID)
	if len(n.Stages) == 0 {
		fmt.Fprintln(w, "  (no stages)")
	}
	for _, s := range n.Stages {
		done := 0
		for _, t := range s.Tasks {
			if t.Completed {
				done++
			}
		}
		fmt.Fprintf(w, "  %s  %d/%d\n", s.Name, done, len(s.Tasks))
		for _, t := range s.Tasks {
			fmt.Fprintf(w, "    %s %s  %s  (%s)\n", checkbox(t.Completed), t.Deadline, t.Title, t.ResponsiblePerson)
		}
	}
	fmt.Fprintln(w)
}
