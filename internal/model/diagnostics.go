package model

import "time"

// TableCounts 各表行数
type TableCounts struct {
	Projects int `json:"projects" db:"projects"`
	Stages   int `json:"stages" db:"stages"`
	Tasks    int `json:"tasks" db:"tasks"`
}

// ConnectionInfo 数据库连接诊断信息
type ConnectionInfo struct {
	Driver      string `json:"driver"`
	CurrentTime string `json:"currentTime"`
	Version     string `json:"version"`
	Pool        any    `json:"pool"`
}

// Column 表结构中的一列
type Column struct {
	Table    string `json:"-" db:"table_name"`
	Name     string `json:"name" db:"column_name"`
	Type     string `json:"type" db:"data_type"`
	Nullable bool   `json:"nullable" db:"is_nullable"`
}

// PerformanceResult 并发计数探测结果
type PerformanceResult struct {
	Projects       int   `json:"projects"`
	Stages         int   `json:"stages"`
	Tasks          int   `json:"tasks"`
	CompletedTasks int   `json:"completedTasks"`
	OverdueTasks   int   `json:"overdueTasks"`
	ElapsedMillis  int64 `json:"elapsedMs"`
}

// SeedResult 示例数据写入结果
type SeedResult struct {
	Project Project     `json:"project"`
	Stages  []Stage     `json:"stages"`
	Tasks   []Task      `json:"tasks"`
	Summary SeedSummary `json:"summary"`
}

type SeedSummary struct {
	ProjectsCreated int `json:"projectsCreated"`
	StagesCreated   int `json:"stagesCreated"`
	TasksCreated    int `json:"tasksCreated"`
}

// ClearResult 各表删除行数
type ClearResult struct {
	TasksDeleted    int64     `json:"tasksDeleted"`
	StagesDeleted   int64     `json:"stagesDeleted"`
	ProjectsDeleted int64     `json:"projectsDeleted"`
	ClearedAt       time.Time `json:"clearedAt"`
}
