package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"projecttracker/internal/model"
	"projecttracker/pkg/apperr"
	"projecttracker/pkg/db"
)

const projectColumns = `id, name, description, created_at`

type ProjectRepository struct {
	base
	logger *zap.Logger
}

func NewProjectRepository(store *db.Store, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		base:   newBase(store),
		logger: logger,
	}
}

// List 按创建时间倒序返回全部项目
func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	r.logger.Debug("Listing projects")

	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, id DESC`
	projects := []model.Project{}
	err := r.call(ctx, "select", "projects", query, func(ctx context.Context) error {
		return r.store.SelectContext(ctx, &projects, query)
	})
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, apperr.Store("Failed to fetch projects", err)
	}
	return projects, nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*model.Project, error) {
	if !validID(id) {
		return nil, apperr.NotFound("Project")
	}

	query := r.store.Rebind(`SELECT ` + projectColumns + ` FROM projects WHERE id = ?`)
	var p model.Project
	err := r.call(ctx, "select", "projects", query, func(ctx context.Context) error {
		return r.store.GetContext(ctx, &p, query, id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Project")
	}
	if err != nil {
		r.logger.Error("Failed to get project", zap.String("id", id), zap.Error(err))
		return nil, apperr.Store("Failed to fetch project", err)
	}
	return &p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	p := model.Project{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   r.timestamp(),
	}
	r.logger.Debug("Inserting project", zap.String("name", p.Name))

	query := r.store.Rebind(`INSERT INTO projects (id, name, description, created_at) VALUES (?, ?, ?, ?)`)
	err := r.call(ctx, "insert", "projects", query, func(ctx context.Context) error {
		_, err := r.store.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.CreatedAt)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return nil, apperr.Store("Failed to create project", err)
	}

	r.logger.Info("Project inserted successfully", zap.String("id", p.ID))
	return &p, nil
}

// Update 全量替换 name 和 description
func (r *ProjectRepository) Update(ctx context.Context, id string, in model.ProjectInput) (*model.Project, error) {
	if !validID(id) {
		return nil, apperr.NotFound("Project")
	}
	r.logger.Debug("Updating project", zap.String("id", id))

	query := r.store.Rebind(`UPDATE projects SET name = ?, description = ? WHERE id = ?`)
	var affected int64
	err := r.call(ctx, "update", "projects", query, func(ctx context.Context) error {
		res, err := r.store.ExecContext(ctx, query, in.Name, in.Description, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		r.logger.Error("Failed to update project", zap.String("id", id), zap.Error(err))
		return nil, apperr.Store("Failed to update project", err)
	}
	if affected == 0 {
		return nil, apperr.NotFound("Project")
	}

	r.logger.Info("Project updated successfully", zap.String("id", id))
	return r.Get(ctx, id)
}

// Delete 删除项目，阶段和任务由外键级联删除
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return apperr.NotFound("Project")
	}
	r.logger.Debug("Deleting project", zap.String("id", id))

	query := r.store.Rebind(`DELETE FROM projects WHERE id = ?`)
	var affected int64
	err := r.call(ctx, "delete", "projects", query, func(ctx context.Context) error {
		res, err := r.store.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		r.logger.Error("Failed to delete project", zap.String("id", id), zap.Error(err))
		return apperr.Store("Failed to delete project", err)
	}
	if affected == 0 {
		return apperr.NotFound("Project")
	}

	r.logger.Info("Project deleted successfully", zap.String("id", id))
	return nil
}
