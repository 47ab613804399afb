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

const stageColumns = `id, name, description, project_id, created_at`

type StageRepository struct {
	base
	logger *zap.Logger
}

func NewStageRepository(store *db.Store, logger *zap.Logger) *StageRepository {
	return &StageRepository{
		base:   newBase(store),
		logger: logger,
	}
}

// List 按创建时间正序返回阶段；projectID 为空时返回全部
func (r *StageRepository) List(ctx context.Context, projectID string) ([]model.Stage, error) {
	r.logger.Debug("Listing stages", zap.String("project_id", projectID))

	stages := []model.Stage{}
	if projectID != "" && !validID(projectID) {
		return stages, nil
	}

	query := `SELECT ` + stageColumns + ` FROM stages`
	var args []any
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query = r.store.Rebind(query + ` ORDER BY created_at ASC, id ASC`)

	err := r.call(ctx, "select", "stages", query, func(ctx context.Context) error {
		return r.store.SelectContext(ctx, &stages, query, args...)
	})
	if err != nil {
		r.logger.Error("Failed to list stages", zap.Error(err))
		return nil, apperr.Store("Failed to fetch stages", err)
	}
	return stages, nil
}

func (r *StageRepository) Get(ctx context.Context, id string) (*model.Stage, error) {
	if !validID(id) {
		return nil, apperr.NotFound("Stage")
	}

	query := r.store.Rebind(`SELECT ` + stageColumns + ` FROM stages WHERE id = ?`)
	var s model.Stage
	err := r.call(ctx, "select", "stages", query, func(ctx context.Context) error {
		return r.store.GetContext(ctx, &s, query, id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Stage")
	}
	if err != nil {
		r.logger.Error("Failed to get stage", zap.String("id", id), zap.Error(err))
		return nil, apperr.Store("Failed to fetch stage", err)
	}
	return &s, nil
}

// Create 插入阶段；project_id 不存在时外键约束失败，按存储错误处理
func (r *StageRepository) Create(ctx context.Context, in model.StageInput) (*model.Stage, error) {
	s := model.Stage{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		ProjectID:   in.ProjectID,
		CreatedAt:   r.timestamp(),
	}
	r.logger.Debug("Inserting stage",
		zap.String("name", s.Name),
		zap.String("project_id", s.ProjectID),
	)

	query := r.store.Rebind(`INSERT INTO stages (id, name, description, project_id, created_at) VALUES (?, ?, ?, ?, ?)`)
	err := r.call(ctx, "insert", "stages", query, func(ctx context.Context) error {
		_, err := r.store.ExecContext(ctx, query, s.ID, s.Name, s.Description, s.ProjectID, s.CreatedAt)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to insert stage", zap.Error(err))
		return nil, apperr.Store("Failed to create stage", err)
	}

	r.logger.Info("Stage inserted successfully",
		zap.String("id", s.ID),
		zap.String("project_id", s.ProjectID),
	)
	return &s, nil
}

// Update 全量替换 name 和 description，project_id 不可修改
func (r *StageRepository) Update(ctx context.Context, id string, in model.StageInput) (*model.Stage, error) {
	if !validID(id) {
		return nil, apperr.NotFound("Stage")
	}
	r.logger.Debug("Updating stage", zap.String("id", id))

	query := r.store.Rebind(`UPDATE stages SET name = ?, description = ? WHERE id = ?`)
	var affected int64
	err := r.call(ctx, "update", "stages", query, func(ctx context.Context) error {
		res, err := r.store.ExecContext(ctx, query, in.Name, in.Description, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		r.logger.Error("Failed to update stage", zap.String("id", id), zap.Error(err))
		return nil, apperr.Store("Failed to update stage", err)
	}
	if affected == 0 {
		return nil, apperr.NotFound("Stage")
	}

	r.logger.Info("Stage updated successfully", zap.String("id", id))
	return r.Get(ctx, id)
}

func (r *StageRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return apperr.NotFound("Stage")
	}
	r.logger.Debug("Deleting stage", zap.String("id", id))

	query := r.store.Rebind(`DELETE FROM stages WHERE id = ?`)
	var affected int64
	err := r.call(ctx, "delete", "stages", query, func(ctx context.Context) error {
		res, err := r.store.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		r.logger.Error("Failed to delete stage", zap.String("id", id), zap.Error(err))
		return apperr.Store("Failed to delete stage", err)
	}
	if affected == 0 {
		return apperr.NotFound("Stage")
	}

	r.logger.Info("Stage deleted successfully", zap.String("id", id))
	return nil
}
