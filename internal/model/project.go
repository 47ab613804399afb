package model

import "time"

type Project struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// ProjectInput 创建与全量更新共用的请求体
type ProjectInput struct {
	Name        string `json:"name" binding:"required,notblank"`
	Description string `json:"description"`
}
