package overview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"projecttracker/internal/model"
)

type seedStage struct {
	name        string
	description string
}

var sampleStages = []seedStage{
	{"Planning", "Initial planning and requirements gathering"},
	{"Development", "Implementation and coding phase"},
	{"Testing", "Quality assurance and testing phase"},
}

const (
	sampleProjectName        = "Test Project"
	sampleProjectDescription = "A sample project created for testing database functionality"
	// 完成概率约 30%
	completionThreshold = 0.7
)

// Seed 写入一组示例数据：1 个项目、3 个阶段、每个阶段 2/3/4 个任务
func (s *Service) Seed(ctx context.Context) (*model.SeedResult, error) {
	s.logger.Info("Creating sample data")

	project, err := s.projects.Create(ctx, model.ProjectInput{
		Name:        sampleProjectName,
		Description: sampleProjectDescription,
	})
	if err != nil {
		return nil, err
	}

	res := &model.SeedResult{
		Project: *project,
		Stages:  make([]model.Stage, 0, len(sampleStages)),
		Tasks:   []model.Task{},
	}
	// 部分写入也需要让缓存失效
	defer s.Invalidate(ctx)

	today := model.NewDate(s.now())
	for stageIdx, def := range sampleStages {
		stage, err := s.stages.Create(ctx, model.StageInput{
			Name:        def.name,
			Description: def.description,
			ProjectID:   project.ID,
		})
		if err != nil {
			return nil, err
		}
		res.Stages = append(res.Stages, *stage)

		for taskIdx := 0; taskIdx < 2+stageIdx; taskIdx++ {
			n := taskIdx + 1
			task, err := s.tasks.Insert(ctx, model.Task{
				Title:             fmt.Sprintf("%s Task %d", def.name, n),
				Description:       fmt.Sprintf("Sample task %d for %s stage", n, strings.ToLower(def.name)),
				Deadline:          today.AddDays(7*stageIdx + 2*taskIdx),
				ResponsiblePerson: fmt.Sprintf("Team Member %d", n),
				Completed:         s.rand() > completionThreshold,
				StageID:           stage.ID,
			})
			if err != nil {
				return nil, err
			}
			res.Tasks = append(res.Tasks, *task)
		}
	}

	res.Summary = model.SeedSummary{
		ProjectsCreated: 1,
		StagesCreated:   len(res.Stages),
		TasksCreated:    len(res.Tasks),
	}
	s.logger.Info("Sample data created successfully",
		zap.String("project_id", project.ID),
		zap.Int("stages", res.Summary.StagesCreated),
		zap.Int("tasks", res.Summary.TasksCreated),
	)
	return res, nil
}
