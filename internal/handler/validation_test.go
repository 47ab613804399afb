package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecttracker/internal/model"
	"projecttracker/pkg/apperr"
)

const validStageID = "6f1c2d3e-4a5b-4c6d-8e9f-0a1b2c3d4e5f"

func TestBindBody_TaskInputValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{"deadline":"2025-01-01","responsiblePerson":"a","stageId":"` + validStageID + `"}`, "Title is required"},
		{"blank title", `{"title":" \t","deadline":"2025-01-01","responsiblePerson":"a","stageId":"` + validStageID + `"}`, "Title is required"},
		{"missing deadline", `{"title":"t","responsiblePerson":"a","stageId":"` + validStageID + `"}`, "Deadline is required"},
		{"null deadline", `{"title":"t","deadline":null,"responsiblePerson":"a","stageId":"` + validStageID + `"}`, "Deadline is required"},
		{"blank person", `{"title":"t","deadline":"2025-01-01","responsiblePerson":"  ","stageId":"` + validStageID + `"}`, "Responsible person is required"},
		{"missing stage", `{"title":"t","deadline":"2025-01-01","responsiblePerson":"a"}`, "Stage ID is required"},
		{"bad stage", `{"title":"t","deadline":"2025-01-01","responsiblePerson":"a","stageId":"42"}`, "Invalid stage ID"},
		{"bad deadline", `{"title":"t","deadline":"01/02/2025","responsiblePerson":"a","stageId":"` + validStageID + `"}`, "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(tt.body)
			var in model.TaskInput
			_, err := bindBody(c, &in)
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.CodeValidationFailed, e.Code)
			assert.Equal(t, tt.want, e.Message)
		})
	}
}

func TestBindBody_TaskInputValid(t *testing.T) {
	c, _ := newContext(`{"title":"t","deadline":"2025-01-01","responsiblePerson":"a","stageId":"` + validStageID + `"}`)
	var in model.TaskInput
	_, err := bindBody(c, &in)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", in.Deadline.String())
	assert.Empty(t, in.Description)
}

func TestBindBody_StageInputValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"blank name", `{"name":"   ","projectId":"` + validStageID + `"}`, "Name is required"},
		{"missing project", `{"name":"s"}`, "Project ID is required"},
		{"bad project", `{"name":"s","projectId":"nope"}`, "Invalid project ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(tt.body)
			var in model.StageInput
			_, err := bindBody(c, &in)
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, e.Message)
		})
	}
}
