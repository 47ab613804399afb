package model

import "time"

type Stage struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ProjectID   string    `json:"projectId" db:"project_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// StageInput 创建请求体；全量更新只使用 Name 和 Description
type StageInput struct {
	Name        string `json:"name" binding:"required,notblank"`
	Description string `json:"description"`
	ProjectID   string `json:"projectId" binding:"required,uuid"`
}
