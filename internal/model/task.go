package model

import "time"

type Task struct {
	ID                string    `json:"id" db:"id"`
	Title             string    `json:"title" db:"title"`
	Description       string    `json:"description" db:"description"`
	Deadline          Date      `json:"deadline" db:"deadline"`
	ResponsiblePerson string    `json:"responsiblePerson" db:"responsible_person"`
	Completed         bool      `json:"completed" db:"completed"`
	StageID           string    `json:"stageId" db:"stage_id"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

type TaskInput struct {
	Title             string `json:"title" binding:"required,notblank"`
	Description       string `json:"description"`
	Deadline          Date   `json:"deadline" binding:"required"`
	ResponsiblePerson string `json:"responsiblePerson" binding:"required,notblank"`
	StageID           string `json:"stageId" binding:"required,uuid"`
}
