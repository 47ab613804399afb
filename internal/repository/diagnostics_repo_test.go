package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecttracker/internal/model"
)

func seedSmall(t *testing.T, r repos) {
	t.Helper()
	ctx := context.Background()

	p, err := r.projects.Create(ctx, model.ProjectInput{Name: "P"})
	require.NoError(t, err)
	s, err := r.stages.Create(ctx, model.StageInput{Name: "S", ProjectID: p.ID})
	require.NoError(t, err)

	past := model.NewDate(time.Now().AddDate(0, 0, -3))
	future := model.NewDate(time.Now().AddDate(0, 0, 30))
	_, err = r.tasks.Insert(ctx, model.Task{Title: "overdue", Deadline: past, ResponsiblePerson: "a", StageID: s.ID})
	require.NoError(t, err)
	_, err = r.tasks.Insert(ctx, model.Task{Title: "done", Deadline: future, ResponsiblePerson: "a", StageID: s.ID, Completed: true})
	require.NoError(t, err)
	_, err = r.tasks.Insert(ctx, model.Task{Title: "open", Deadline: future, ResponsiblePerson: "a", StageID: s.ID})
	require.NoError(t, err)
}

func TestDiagnostics_CountAllAndPerformance(t *testing.T) {
	r := newRepos(t)
	seedSmall(t, r)
	ctx := context.Background()

	counts, err := r.diag.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.TableCounts{Projects: 1, Stages: 1, Tasks: 3}, counts)

	perf, err := r.diag.MeasurePerformance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, perf.Projects)
	assert.Equal(t, 1, perf.Stages)
	assert.Equal(t, 3, perf.Tasks)
	assert.Equal(t, 1, perf.CompletedTasks)
	assert.Equal(t, 1, perf.OverdueTasks)
	assert.GreaterOrEqual(t, perf.ElapsedMillis, int64(0))
}

func TestDiagnostics_ConnectionInfo(t *testing.T) {
	r := newRepos(t)

	info, err := r.diag.ConnectionInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sqlite", info.Driver)
	assert.NotEmpty(t, info.CurrentTime)
	assert.Contains(t, info.Version, "SQLite")
	assert.NotNil(t, info.Pool)
}

func TestDiagnostics_Columns(t *testing.T) {
	r := newRepos(t)

	tables, err := r.diag.Columns(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 3)

	var names []string
	for _, c := range tables["tasks"] {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"id", "title", "description", "deadline", "responsible_person", "completed", "stage_id", "created_at"}, names)

	for _, c := range tables["projects"] {
		if c.Name == "name" {
			assert.False(t, c.Nullable)
			assert.Equal(t, "TEXT", c.Type)
		}
	}
}

func TestDiagnostics_ClearAll(t *testing.T) {
	r := newRepos(t)
	seedSmall(t, r)
	ctx := context.Background()

	res, err := r.diag.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.TasksDeleted)
	assert.Equal(t, int64(1), res.StagesDeleted)
	assert.Equal(t, int64(1), res.ProjectsDeleted)

	counts, err := r.diag.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.TableCounts{}, counts)
}

func TestDiagnostics_Ping(t *testing.T) {
	r := newRepos(t)
	assert.NoError(t, r.diag.Ping(context.Background()))
}
