package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"projecttracker/internal/model"
	"projecttracker/pkg/db"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestAPI(t *testing.T, diagnostics bool) http.Handler {
	t.Helper()
	store := db.NewTestStore(t)
	return NewAPI(store, APIOptions{Diagnostics: diagnostics}, zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

func createProject(t *testing.T, h http.Handler, name string) model.Project {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/projects", map[string]string{"name": name, "description": name + " description"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Project](t, rec)
}

func createStage(t *testing.T, h http.Handler, projectID, name string) model.Stage {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/stages", map[string]string{"name": name, "description": "...", "projectId": projectID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Stage](t, rec)
}

func createTask(t *testing.T, h http.Handler, stageID, title, deadline string) model.Task {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/tasks", map[string]string{
		"title":             title,
		"deadline":          deadline,
		"responsiblePerson": "Ana",
		"stageId":           stageID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Task](t, rec)
}

func TestExampleFlow(t *testing.T) {
	h := newTestAPI(t, false)

	rec := do(t, h, http.MethodPost, "/api/projects", map[string]string{"name": "Launch", "description": "Q1 launch"})
	require.Equal(t, http.StatusCreated, rec.Code)
	project := decode[model.Project](t, rec)
	assert.NotEmpty(t, project.ID)
	assert.Equal(t, "Launch", project.Name)
	assert.Equal(t, "Q1 launch", project.Description)

	stage := createStage(t, h, project.ID, "Planning")
	assert.Equal(t, project.ID, stage.ProjectID)

	rec = do(t, h, http.MethodPost, "/api/tasks",
		`{"title":"Draft outline","deadline":"2025-01-10","responsiblePerson":"Ana","stageId":"`+stage.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decode[model.Task](t, rec)

	rec = do(t, h, http.MethodGet, "/api/tasks?stageId="+stage.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	raw := decode[[]map[string]any](t, rec)
	require.Len(t, raw, 1)
	assert.Equal(t, task.ID, raw[0]["id"])
	assert.Equal(t, false, raw[0]["completed"])
	assert.Equal(t, "2025-01-10", raw[0]["deadline"])
	assert.Equal(t, "Ana", raw[0]["responsiblePerson"])
	assert.Equal(t, stage.ID, raw[0]["stageId"])
	assert.Equal(t, "", raw[0]["description"])
}

func TestProjects_ListNewestFirst(t *testing.T) {
	h := newTestAPI(t, false)

	rec := do(t, h, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	first := createProject(t, h, "first")
	second := createProject(t, h, "second")

	rec = do(t, h, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	projects := decode[[]model.Project](t, rec)
	require.Len(t, projects, 2)
	assert.Equal(t, second.ID, projects[0].ID)
	assert.Equal(t, first.ID, projects[1].ID)
}

func TestProjects_Validation(t *testing.T) {
	h := newTestAPI(t, false)

	tests := []struct {
		name string
		body any
		want string
	}{
		{"missing name", map[string]string{"description": "x"}, "Name is required"},
		{"blank name", map[string]string{"name": "   "}, "Name is required"},
		{"empty body", nil, "Name is required"},
		{"malformed json", `{"name":`, "Invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/projects", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, errorMessage(t, rec))
		})
	}
}

func TestProjects_UpdateAndNotFound(t *testing.T) {
	h := newTestAPI(t, false)
	p := createProject(t, h, "old")

	rec := do(t, h, http.MethodPut, "/api/projects/"+p.ID, map[string]string{"name": "new", "description": "d2"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[model.Project](t, rec)
	assert.Equal(t, "new", updated.Name)
	assert.Equal(t, "d2", updated.Description)
	assert.Equal(t, p.ID, updated.ID)

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		rec = do(t, h, http.MethodPut, "/api/projects/"+id, map[string]string{"name": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Project not found", errorMessage(t, rec))

		rec = do(t, h, http.MethodDelete, "/api/projects/"+id, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Project not found", errorMessage(t, rec))
	}

	rec = do(t, h, http.MethodDelete, "/api/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestStages_FilterByProject(t *testing.T) {
	h := newTestAPI(t, false)
	p1 := createProject(t, h, "p1")
	p2 := createProject(t, h, "p2")

	a := createStage(t, h, p1.ID, "a")
	createStage(t, h, p2.ID, "other")
	b := createStage(t, h, p1.ID, "b")

	rec := do(t, h, http.MethodGet, "/api/stages?projectId="+p1.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stages := decode[[]model.Stage](t, rec)
	require.Len(t, stages, 2)
	assert.Equal(t, a.ID, stages[0].ID)
	assert.Equal(t, b.ID, stages[1].ID)

	rec = do(t, h, http.MethodGet, "/api/stages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Stage](t, rec), 3)

	rec = do(t, h, http.MethodGet, "/api/stages?projectId=bogus", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestStages_CreateErrors(t *testing.T) {
	h := newTestAPI(t, false)

	rec := do(t, h, http.MethodPost, "/api/stages", map[string]string{"name": "s"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Project ID is required", errorMessage(t, rec))

	rec = do(t, h, http.MethodPost, "/api/stages", map[string]string{"name": "s", "projectId": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/stages", map[string]string{"projectId": uuid.NewString()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name is required", errorMessage(t, rec))

	// 外键不存在属于存储错误，只返回通用信息
	rec = do(t, h, http.MethodPost, "/api/stages", map[string]string{"name": "s", "projectId": uuid.NewString()})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to create stage", errorMessage(t, rec))
}

func TestStages_UpdateDelete(t *testing.T) {
	h := newTestAPI(t, false)
	p := createProject(t, h, "p")
	s := createStage(t, h, p.ID, "s")

	rec := do(t, h, http.MethodPut, "/api/stages/"+s.ID, map[string]string{"name": "renamed", "description": "d"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[model.Stage](t, rec)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, p.ID, updated.ProjectID)

	rec = do(t, h, http.MethodPut, "/api/stages/"+uuid.NewString(), map[string]string{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Stage not found", errorMessage(t, rec))

	rec = do(t, h, http.MethodDelete, "/api/stages/"+s.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/stages/"+s.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTasks_PartialUpdate(t *testing.T) {
	h := newTestAPI(t, false)
	p := createProject(t, h, "p")
	s := createStage(t, h, p.ID, "s")
	task := createTask(t, h, s.ID, "Draft", "2025-01-10")

	rec := do(t, h, http.MethodPut, "/api/tasks/"+task.ID, `{"completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.Task](t, rec)
	assert.True(t, updated.Completed)
	assert.Equal(t, task.Title, updated.Title)
	assert.Equal(t, task.Description, updated.Description)
	assert.Equal(t, task.Deadline.String(), updated.Deadline.String())
	assert.Equal(t, task.ResponsiblePerson, updated.ResponsiblePerson)
	assert.Equal(t, task.StageID, updated.StageID)

	rec = do(t, h, http.MethodPut, "/api/tasks/"+task.ID, `{"title":"Final","deadline":"2025-02-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated = decode[model.Task](t, rec)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, "2025-02-01", updated.Deadline.String())
	assert.True(t, updated.Completed)
}

func TestTasks_UpdateRejectsEmpty(t *testing.T) {
	h := newTestAPI(t, false)
	p := createProject(t, h, "p")
	s := createStage(t, h, p.ID, "s")
	task := createTask(t, h, s.ID, "Draft", "2025-01-10")

	tests := []struct {
		name string
		body any
		want string
	}{
		{"no body", nil, "No fields to update"},
		{"empty object", `{}`, "No fields to update"},
		{"unknown fields only", `{"stageId":"x"}`, "No fields to update"},
		{"blank title", `{"title":""}`, "title cannot be empty"},
		{"bad json", `{"title":`, "Invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPut, "/api/tasks/"+task.ID, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, errorMessage(t, rec))
		})
	}

	// 没有任何写入
	rec := do(t, h, http.MethodGet, "/api/tasks?stageId="+s.ID, nil)
	tasks := decode[[]model.Task](t, rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Draft", tasks[0].Title)
	assert.False(t, tasks[0].Completed)

	rec = do(t, h, http.MethodPut, "/api/tasks/"+uuid.NewString(), `{"completed":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", errorMessage(t, rec))
}

func TestTasks_CreateValidation(t *testing.T) {
	h := newTestAPI(t, false)
	stageID := uuid.NewString()

	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{"title", map[string]string{"deadline": "2025-01-01", "responsiblePerson": "a", "stageId": stageID}, "Title is required"},
		{"deadline", map[string]string{"title": "t", "responsiblePerson": "a", "stageId": stageID}, "Deadline is required"},
		{"person", map[string]string{"title": "t", "deadline": "2025-01-01", "stageId": stageID}, "Responsible person is required"},
		{"stage", map[string]string{"title": "t", "deadline": "2025-01-01", "responsiblePerson": "a"}, "Stage ID is required"},
		{"bad stage", map[string]string{"title": "t", "deadline": "2025-01-01", "responsiblePerson": "a", "stageId": "x"}, "Invalid stage ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/tasks", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, errorMessage(t, rec))
		})
	}

	rec := do(t, h, http.MethodPost, "/api/tasks", map[string]string{"title": "t", "deadline": "soon", "responsiblePerson": "a", "stageId": stageID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTasks_OrderedByDeadline(t *testing.T) {
	h := newTestAPI(t, false)
	p := createProject(t, h, "p")
	s := createStage(t, h, p.ID, "s")

	late := createTask(t, h, s.ID, "late", "2025-03-01")
	early := createTask(t, h, s.ID, "early", "2025-01-01")

	rec := do(t, h, http.MethodGet, "/api/tasks?stageId="+s.ID, nil)
	tasks := decode[[]model.Task](t, rec)
	require.Len(t, tasks, 2)
	assert.Equal(t, early.ID, tasks[0].ID)
	assert.Equal(t, late.ID, tasks[1].ID)

	rec = do(t, h, http.MethodGet, "/api/tasks", nil)
	assert.Len(t, decode[[]model.Task](t, rec), 2)
}

func TestCascadeDelete(t *testing.T) {
	h := newTestAPI(t, false)
	p := createProject(t, h, "p")
	s1 := createStage(t, h, p.ID, "s1")
	s2 := createStage(t, h, p.ID, "s2")
	createTask(t, h, s1.ID, "a", "2025-01-01")
	createTask(t, h, s2.ID, "b", "2025-01-01")

	rec := do(t, h, http.MethodDelete, "/api/projects/"+p.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	for _, id := range []string{s1.ID, s2.ID} {
		rec = do(t, h, http.MethodGet, "/api/tasks?stageId="+id, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/api/stages?projectId="+p.ID, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestAPI(t, false)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPatch, "/api/tasks/" + uuid.NewString()},
		{http.MethodDelete, "/api/projects"},
		{http.MethodPost, "/api/health"},
	} {
		rec := do(t, h, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, tc.method+" "+tc.path)
		assert.Equal(t, "Method not allowed", errorMessage(t, rec))
	}

	rec := do(t, h, http.MethodGet, "/api/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	h := newTestAPI(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks/"+uuid.NewString(), nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)

	req = httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Origin", "http://example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOperationalEndpoints(t *testing.T) {
	h := newTestAPI(t, false)

	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	rec = do(t, h, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_request_duration_seconds")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Trace-ID"))
}

func TestHealth(t *testing.T) {
	h := newTestAPI(t, false)
	p := createProject(t, h, "p")
	createStage(t, h, p.ID, "s")

	rec := do(t, h, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status   string            `json:"status"`
		Database string            `json:"database"`
		Data     model.TableCounts `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)
	assert.Equal(t, "Connected", body.Database)
	assert.Equal(t, model.TableCounts{Projects: 1, Stages: 1, Tasks: 0}, body.Data)
}

func TestHealth_StoreDown(t *testing.T) {
	store := db.NewTestStore(t)
	h := NewAPI(store, APIOptions{}, zap.NewNop())
	require.NoError(t, store.Close())

	rec := do(t, h, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ERROR", body["status"])
	assert.Equal(t, "Disconnected", body["database"])
	assert.NotContains(t, body, "error")

	rec = do(t, h, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to fetch projects", errorMessage(t, rec))
}
