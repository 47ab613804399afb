package model

// StageNode 阶段及其任务
type StageNode struct {
	Stage
	Tasks []Task `json:"tasks"`
}

// ProjectNode 项目及其阶段
type ProjectNode struct {
	Project
	Stages []StageNode `json:"stages"`
}

type Summary struct {
	TotalProjects  int `json:"totalProjects"`
	TotalStages    int `json:"totalStages"`
	TotalTasks     int `json:"totalTasks"`
	CompletedTasks int `json:"completedTasks"`
}

// Overview 完整的项目树和汇总计数
type Overview struct {
	Projects []ProjectNode `json:"projects"`
	Summary  Summary       `json:"summary"`
}
