package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"projecttracker/internal/httpserver"
	"projecttracker/internal/model"
	"projecttracker/pkg/db"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	store := db.NewTestStore(t)
	srv := httptest.NewServer(httpserver.NewAPI(store, httpserver.APIOptions{Diagnostics: true}, zap.NewNop()))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", WithHTTPClient(srv.Client()))
}

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestNew_DefaultsAndTrimsBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("").BaseURL())
	assert.Equal(t, "http://example.com/api", New("http://example.com/api/").BaseURL())
}

func TestClient_CRUDRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	p, err := c.CreateProject(ctx, model.ProjectInput{Name: "Website", Description: "Relaunch"})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	s, err := c.CreateStage(ctx, model.StageInput{Name: "Design", ProjectID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, p.ID, s.ProjectID)

	task, err := c.CreateTask(ctx, model.TaskInput{
		Title:             "Wireframes",
		Deadline:          mustDate(t, "2030-01-15"),
		ResponsiblePerson: "Ana",
		StageID:           s.ID,
	})
	require.NoError(t, err)
	assert.False(t, task.Completed)

	tasks, err := c.ListTasks(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "2030-01-15", tasks[0].Deadline.String())

	done := true
	updated, err := c.UpdateTask(ctx, task.ID, model.TaskPatch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Wireframes", updated.Title)

	renamed, err := c.UpdateStage(ctx, s.ID, model.StageInput{Name: "UX", Description: "research"})
	require.NoError(t, err)
	assert.Equal(t, "UX", renamed.Name)
	assert.Equal(t, p.ID, renamed.ProjectID)

	p2, err := c.UpdateProject(ctx, p.ID, model.ProjectInput{Name: "Website v2"})
	require.NoError(t, err)
	assert.Equal(t, "Website v2", p2.Name)

	require.NoError(t, c.DeleteProject(ctx, p.ID))

	projects, err := c.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	tasks, err = c.ListTasks(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestClient_APIError(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.CreateProject(ctx, model.ProjectInput{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Name is required", apiErr.Message)

	err = c.DeleteTask(ctx, "00000000-0000-0000-0000-000000000000")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	_, err = c.UpdateTask(ctx, "00000000-0000-0000-0000-000000000000", model.TaskPatch{})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestClient_Diagnostics(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OK", h.Status)
	assert.Equal(t, "Connected", h.Database)

	seed, err := c.Seed(ctx)
	require.NoError(t, err)
	assert.Len(t, seed.Stages, 3)
	assert.Len(t, seed.Tasks, 9)

	tree, err := c.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, tree.Projects, 1)
	assert.Equal(t, 9, tree.Summary.TotalTasks)

	cleared, err := c.ClearData(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 9, cleared.TasksDeleted)
	assert.EqualValues(t, 3, cleared.StagesDeleted)
	assert.EqualValues(t, 1, cleared.ProjectsDeleted)
}
