package overview

import "projecttracker/internal/model"

// BuildTree 把三张平铺列表按外键组装成嵌套树
// 输入的排序会保留在每一层中；引用不存在父节点的行被忽略
func BuildTree(projects []model.Project, stages []model.Stage, tasks []model.Task) model.Overview {
	tasksByStage := make(map[string][]model.Task, len(stages))
	completed := 0
	for _, t := range tasks {
		tasksByStage[t.StageID] = append(tasksByStage[t.StageID], t)
		if t.Completed {
			completed++
		}
	}

	stagesByProject := make(map[string][]model.StageNode, len(projects))
	for _, s := range stages {
		node := model.StageNode{Stage: s, Tasks: tasksByStage[s.ID]}
		if node.Tasks == nil {
			node.Tasks = []model.Task{}
		}
		stagesByProject[s.ProjectID] = append(stagesByProject[s.ProjectID], node)
	}

	out := model.Overview{
		Projects: make([]model.ProjectNode, 0, len(projects)),
		Summary: model.Summary{
			TotalProjects:  len(projects),
			TotalStages:    len(stages),
			TotalTasks:     len(tasks),
			CompletedTasks: completed,
		},
	}
	for _, p := range projects {
		node := model.ProjectNode{Project: p, Stages: stagesByProject[p.ID]}
		if node.Stages == nil {
			node.Stages = []model.StageNode{}
		}
		out.Projects = append(out.Projects, node)
	}
	return out
}
