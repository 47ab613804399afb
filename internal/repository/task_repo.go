package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"projecttracker/internal/model"
	"projecttracker/pkg/apperr"
	"projecttracker/pkg/db"
)

const taskColumns = `id, title, description, deadline, responsible_person, completed, stage_id, created_at`

type TaskRepository struct {
	base
	logger *zap.Logger
}

func NewTaskRepository(store *db.Store, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{
		base:   newBase(store),
		logger: logger,
	}
}

// List 按截止日期、创建时间排序；stageID 为空时返回全部任务
func (r *TaskRepository) List(ctx context.Context, stageID string) ([]model.Task, error) {
	r.logger.Debug("Listing tasks", zap.String("stage_id", stageID))

	tasks := []model.Task{}
	if stageID != "" && !validID(stageID) {
		return tasks, nil
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []any
	if stageID != "" {
		query += ` WHERE stage_id = ?`
		args = append(args, stageID)
	}
	query = r.store.Rebind(query + ` ORDER BY deadline ASC, created_at ASC, id ASC`)

	err := r.call(ctx, "select", "tasks", query, func(ctx context.Context) error {
		return r.store.SelectContext(ctx, &tasks, query, args...)
	})
	if err != nil {
		r.logger.Error("Failed to list tasks", zap.Error(err))
		return nil, apperr.Store("Failed to fetch tasks", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	if !validID(id) {
		return nil, apperr.NotFound("Task")
	}

	query := r.store.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	var t model.Task
	err := r.call(ctx, "select", "tasks", query, func(ctx context.Context) error {
		return r.store.GetContext(ctx, &t, query, id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Task")
	}
	if err != nil {
		r.logger.Error("Failed to get task", zap.String("id", id), zap.Error(err))
		return nil, apperr.Store("Failed to fetch task", err)
	}
	return &t, nil
}

// Create 插入任务，completed 初始为 false
func (r *TaskRepository) Create(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	return r.insert(ctx, model.Task{
		ID:                uuid.NewString(),
		Title:             in.Title,
		Description:       in.Description,
		Deadline:          in.Deadline,
		ResponsiblePerson: in.ResponsiblePerson,
		StageID:           in.StageID,
	})
}

// Insert 写入一条完整任务（包括 completed），用于示例数据
func (r *TaskRepository) Insert(ctx context.Context, t model.Task) (*model.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return r.insert(ctx, t)
}

func (r *TaskRepository) insert(ctx context.Context, t model.Task) (*model.Task, error) {
	t.CreatedAt = r.timestamp()
	r.logger.Debug("Inserting task",
		zap.String("title", t.Title),
		zap.String("stage_id", t.StageID),
		zap.String("deadline", t.Deadline.String()),
	)

	query := r.store.Rebind(`INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	err := r.call(ctx, "insert", "tasks", query, func(ctx context.Context) error {
		_, err := r.store.ExecContext(ctx, query,
			t.ID,
			t.Title,
			t.Description,
			t.Deadline,
			t.ResponsiblePerson,
			t.Completed,
			t.StageID,
			t.CreatedAt,
		)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to insert task", zap.Error(err))
		return nil, apperr.Store("Failed to create task", err)
	}

	r.logger.Info("Task inserted successfully",
		zap.String("id", t.ID),
		zap.String("stage_id", t.StageID),
	)
	return &t, nil
}

// Update 只改写 patch 中提供的列；空 patch 不执行写操作
func (r *TaskRepository) Update(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	assignments := patch.Assignments()
	if len(assignments) == 0 {
		return nil, apperr.NoFieldsToUpdate()
	}
	if !validID(id) {
		return nil, apperr.NotFound("Task")
	}

	sets := make([]string, 0, len(assignments))
	args := make([]any, 0, len(assignments)+1)
	fields := make([]string, 0, len(assignments))
	for _, a := range assignments {
		sets = append(sets, string(a.Column)+" = ?")
		args = append(args, a.Value)
		fields = append(fields, string(a.Column))
	}
	args = append(args, id)

	r.logger.Debug("Updating task", zap.String("id", id), zap.Strings("fields", fields))

	query := r.store.Rebind(`UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	var affected int64
	err := r.call(ctx, "update", "tasks", query, func(ctx context.Context) error {
		res, err := r.store.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		r.logger.Error("Failed to update task", zap.String("id", id), zap.Error(err))
		return nil, apperr.Store("Failed to update task", err)
	}
	if affected == 0 {
		return nil, apperr.NotFound("Task")
	}

	r.logger.Info("Task updated successfully", zap.String("id", id), zap.Strings("fields", fields))
	return r.Get(ctx, id)
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return apperr.NotFound("Task")
	}
	r.logger.Debug("Deleting task", zap.String("id", id))

	query := r.store.Rebind(`DELETE FROM tasks WHERE id = ?`)
	var affected int64
	err := r.call(ctx, "delete", "tasks", query, func(ctx context.Context) error {
		res, err := r.store.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		r.logger.Error("Failed to delete task", zap.String("id", id), zap.Error(err))
		return apperr.Store("Failed to delete task", err)
	}
	if affected == 0 {
		return apperr.NotFound("Task")
	}

	r.logger.Info("Task deleted successfully", zap.String("id", id))
	return nil
}
