package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("name is required"), 400},
		{"no fields", NoFieldsToUpdate(), 400},
		{"not found", NotFound("Project"), 404},
		{"store", Store("failed to fetch projects", errors.New("boom")), 500},
		{"wrapped not found", fmt.Errorf("update: %w", NotFound("Task")), 404},
		{"plain error", errors.New("boom"), 500},
		{"unknown code", &Error{Code: "OTHER"}, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Project not found", NotFound("Project").Error())
	assert.Equal(t, "No fields to update", NoFieldsToUpdate().Message)
	assert.Equal(t, "stageId is required", Validation("%s is required", "stageId").Message)

	cause := errors.New("connection refused")
	err := Store("failed to create task", cause)
	assert.Equal(t, "failed to create task: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to create task", err.Message)
}

func TestIsByCode(t *testing.T) {
	err := fmt.Errorf("delete stage: %w", NotFound("Stage"))
	assert.True(t, errors.Is(err, &Error{Code: CodeNotFound}))
	assert.False(t, errors.Is(err, &Error{Code: CodeStoreFailure}))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(errors.New("x")))
}
