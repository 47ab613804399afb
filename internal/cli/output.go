package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"unicode/utf8"

	"projecttracker/internal/model"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func printProjects(w io.Writer, projects []model.Project) error {
	if jsonOut {
		return printJSON(w, projects)
	}
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects found. Create one with: trackctl projects create --name \"Website\"")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION\tCREATED")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, truncate(p.Name, 30), truncate(orDash(p.Description), 40), p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func printStages(w io.Writer, stages []model.Stage) error {
	if jsonOut {
		return printJSON(w, stages)
	}
	if len(stages) == 0 {
		fmt.Fprintln(w, "No stages found.")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPROJECT\tDESCRIPTION")
	for _, s := range stages {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, truncate(s.Name, 30), s.ProjectID, truncate(orDash(s.Description), 40))
	}
	return tw.Flush()
}

func printTasks(w io.Writer, tasks []model.Task) error {
	if jsonOut {
		return printJSON(w, tasks)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDONE\tDEADLINE\tOWNER\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, checkbox(t.Completed), t.Deadline, truncate(t.ResponsiblePerson, 20), truncate(t.Title, 40))
	}
	return tw.Flush()
}

// printOne 单个对象：--json 时输出 JSON，否则一行摘要
func printOne(w io.Writer, v any, summary string) error {
	if jsonOut {
		return printJSON(w, v)
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}
