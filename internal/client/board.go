package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"projecttracker/internal/model"
)

// API Board 依赖的服务端操作，*Client 实现了它
type API interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	CreateProject(ctx context.Context, in model.ProjectInput) (*model.Project, error)
	UpdateProject(ctx context.Context, id string, in model.ProjectInput) (*model.Project, error)
	DeleteProject(ctx context.Context, id string) error

	ListStages(ctx context.Context, projectID string) ([]model.Stage, error)
	CreateStage(ctx context.Context, in model.StageInput) (*model.Stage, error)
	UpdateStage(ctx context.Context, id string, in model.StageInput) (*model.Stage, error)
	DeleteStage(ctx context.Context, id string) error

	ListTasks(ctx context.Context, stageID string) ([]model.Task, error)
	CreateTask(ctx context.Context, in model.TaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// ErrNoProjectSelected 需要选中项目的操作在未选中时返回
var ErrNoProjectSelected = errors.New("no project selected")

// Snapshot Board 状态的只读拷贝
type Snapshot struct {
	Projects []model.Project
	Selected *model.Project
	Stages   []model.Stage
	Tasks    map[string][]model.Task
}

// TasksFor 返回某个阶段的任务
func (s Snapshot) TasksFor(stageID string) []model.Task {
	return s.Tasks[stageID]
}

type projectState struct {
	stages []model.Stage
	tasks  map[string][]model.Task
}

// Board 客户端状态：项目列表、选中项目、其阶段以及每个阶段的任务
// 每次写操作之后重新拉取受影响的列表，不在本地修补；
// 新状态先在旁边构建，成功后才替换，失败时保留旧状态
type Board struct {
	api    API
	logger *zap.Logger

	mu       sync.RWMutex
	projects []model.Project
	selected *model.Project
	stages   []model.Stage
	tasks    map[string][]model.Task
}

func NewBoard(api API, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		api:    api,
		logger: logger,
		tasks:  map[string][]model.Task{},
	}
}

// Snapshot 返回当前状态的拷贝
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := Snapshot{
		Projects: append([]model.Project(nil), b.projects...),
		Stages:   append([]model.Stage(nil), b.stages...),
		Tasks:    make(map[string][]model.Task, len(b.tasks)),
	}
	if b.selected != nil {
		p := *b.selected
		snap.Selected = &p
	}
	for id, ts := range b.tasks {
		snap.Tasks[id] = append([]model.Task(nil), ts...)
	}
	return snap
}

func (b *Board) selectedID() (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.selected == nil {
		return "", false
	}
	return b.selected.ID, true
}

// LoadProjects 重新拉取项目列表；选中项目已不存在时清空选择
func (b *Board) LoadProjects(ctx context.Context) error {
	projects, err := b.api.ListProjects(ctx)
	if err != nil {
		b.logger.Warn("Failed to load projects", zap.Error(err))
		return fmt.Errorf("load projects: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.projects = projects
	if b.selected != nil {
		var found *model.Project
		for i := range projects {
			if projects[i].ID == b.selected.ID {
				p := projects[i]
				found = &p
				break
			}
		}
		b.selected = found
		if found == nil {
			b.stages = nil
			b.tasks = map[string][]model.Task{}
		}
	}
	return nil
}

// SelectProject 选中项目并加载其阶段与任务；id 为空时取消选择
func (b *Board) SelectProject(ctx context.Context, id string) error {
	if id == "" {
		b.mu.Lock()
		b.selected = nil
		b.stages = nil
		b.tasks = map[string][]model.Task{}
		b.mu.Unlock()
		return nil
	}

	b.mu.RLock()
	var project *model.Project
	for i := range b.projects {
		if b.projects[i].ID == id {
			p := b.projects[i]
			project = &p
			break
		}
	}
	b.mu.RUnlock()
	if project == nil {
		return fmt.Errorf("project %s not loaded", id)
	}

	state, err := b.fetchProject(ctx, id)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected = project
	b.stages = state.stages
	b.tasks = state.tasks
	return nil
}

// Reload 重新拉取项目列表以及选中项目的阶段和任务
func (b *Board) Reload(ctx context.Context) error {
	if err := b.LoadProjects(ctx); err != nil {
		return err
	}
	return b.reloadSelected(ctx)
}

func (b *Board) reloadSelected(ctx context.Context) error {
	id, ok := b.selectedID()
	if !ok {
		return nil
	}
	state, err := b.fetchProject(ctx, id)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// 拉取期间选择可能已经变化
	if b.selected == nil || b.selected.ID != id {
		return nil
	}
	b.stages = state.stages
	b.tasks = state.tasks
	return nil
}

// fetchProject 拉取阶段列表，再并行拉取每个阶段的任务
func (b *Board) fetchProject(ctx context.Context, projectID string) (*projectState, error) {
	stages, err := b.api.ListStages(ctx, projectID)
	if err != nil {
		b.logger.Warn("Failed to load stages", zap.String("project_id", projectID), zap.Error(err))
		return nil, fmt.Errorf("load stages: %w", err)
	}

	lists := make([][]model.Task, len(stages))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range stages {
		g.Go(func() error {
			tasks, err := b.api.ListTasks(gctx, s.ID)
			if err != nil {
				return fmt.Errorf("load tasks for stage %s: %w", s.ID, err)
			}
			lists[i] = tasks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		b.logger.Warn("Failed to load tasks", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}

	state := &projectState{stages: stages, tasks: make(map[string][]model.Task, len(stages))}
	for i, s := range stages {
		state.tasks[s.ID] = lists[i]
	}
	return state, nil
}

// --- mutations: 每次成功后都整体重新拉取 ---

func (b *Board) CreateProject(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	p, err := b.api.CreateProject(ctx, in)
	if err != nil {
		return nil, err
	}
	return p, b.LoadProjects(ctx)
}

func (b *Board) UpdateProject(ctx context.Context, id string, in model.ProjectInput) (*model.Project, error) {
	p, err := b.api.UpdateProject(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return p, b.LoadProjects(ctx)
}

func (b *Board) DeleteProject(ctx context.Context, id string) error {
	if err := b.api.DeleteProject(ctx, id); err != nil {
		return err
	}
	return b.LoadProjects(ctx)
}

// CreateStage 在选中项目下创建阶段
func (b *Board) CreateStage(ctx context.Context, name, description string) (*model.Stage, error) {
	projectID, ok := b.selectedID()
	if !ok {
		return nil, ErrNoProjectSelected
	}
	s, err := b.api.CreateStage(ctx, model.StageInput{Name: name, Description: description, ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	return s, b.reloadSelected(ctx)
}

func (b *Board) UpdateStage(ctx context.Context, id, name, description string) (*model.Stage, error) {
	s, err := b.api.UpdateStage(ctx, id, model.StageInput{Name: name, Description: description})
	if err != nil {
		return nil, err
	}
	return s, b.reloadSelected(ctx)
}

func (b *Board) DeleteStage(ctx context.Context, id string) error {
	if err := b.api.DeleteStage(ctx, id); err != nil {
		return err
	}
	return b.reloadSelected(ctx)
}

func (b *Board) CreateTask(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	t, err := b.api.CreateTask(ctx, in)
	if err != nil {
		return nil, err
	}
	return t, b.reloadSelected(ctx)
}

func (b *Board) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	t, err := b.api.UpdateTask(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return t, b.reloadSelected(ctx)
}

func (b *Board) DeleteTask(ctx context.Context, id string) error {
	if err := b.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	return b.reloadSelected(ctx)
}

// ToggleTask 只更新 completed 一个字段
func (b *Board) ToggleTask(ctx context.Context, task model.Task) (*model.Task, error) {
	completed := !task.Completed
	return b.UpdateTask(ctx, task.ID, model.TaskPatch{Completed: &completed})
}
