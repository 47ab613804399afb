package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"projecttracker/internal/model"
	"projecttracker/pkg/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(body string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return c, rec
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", apperr.Validation("Name is required"), http.StatusBadRequest, `{"error":"Name is required"}`},
		{"no fields", apperr.NoFieldsToUpdate(), http.StatusBadRequest, `{"error":"No fields to update"}`},
		{"not found", apperr.NotFound("Project"), http.StatusNotFound, `{"error":"Project not found"}`},
		{"store", apperr.Store("Failed to fetch projects", errors.New("dial tcp: refused")), http.StatusInternalServerError, `{"error":"Failed to fetch projects"}`},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext("")
			writeError(c, zap.NewNop(), "Test", tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestBindBody(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		c, _ := newContext("  \n")
		var patch model.TaskPatch
		empty, err := bindBody(c, &patch)
		require.NoError(t, err)
		assert.True(t, empty)
	})

	t.Run("empty body still validated", func(t *testing.T) {
		c, _ := newContext("")
		var in model.ProjectInput
		empty, err := bindBody(c, &in)
		assert.True(t, empty)
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, "Name is required", e.Message)
	})

	t.Run("malformed", func(t *testing.T) {
		c, _ := newContext(`{"title":`)
		var patch model.TaskPatch
		_, err := bindBody(c, &patch)
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.CodeValidationFailed, e.Code)
		assert.Equal(t, "Invalid JSON body", e.Message)
	})

	t.Run("partial", func(t *testing.T) {
		c, _ := newContext(`{"completed":true}`)
		var patch model.TaskPatch
		empty, err := bindBody(c, &patch)
		require.NoError(t, err)
		assert.False(t, empty)
		require.NotNil(t, patch.Completed)
		assert.True(t, *patch.Completed)
		assert.Nil(t, patch.Title)
	})
}

func TestBindBody_TooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	c, _ := newContext(body)
	var in model.ProjectInput
	_, err := bindBody(c, &in)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeValidationFailed, e.Code)
	assert.Equal(t, "Request body too large", e.Message)
}
