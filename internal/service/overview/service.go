// Package overview 组装项目树、汇总计数以及示例数据
package overview

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"projecttracker/internal/model"
	"projecttracker/pkg/metrics"
)

type ProjectStore interface {
	List(ctx context.Context) ([]model.Project, error)
	Create(ctx context.Context, in model.ProjectInput) (*model.Project, error)
}

type StageStore interface {
	List(ctx context.Context, projectID string) ([]model.Stage, error)
	Create(ctx context.Context, in model.StageInput) (*model.Stage, error)
}

type TaskStore interface {
	List(ctx context.Context, stageID string) ([]model.Task, error)
	Insert(ctx context.Context, t model.Task) (*model.Task, error)
}

type Service struct {
	projects ProjectStore
	stages   StageStore
	tasks    TaskStore
	cache    TreeCache
	logger   *zap.Logger

	rand func() float64
	now  func() time.Time
}

type Option func(*Service)

// WithCache 使用指定的树缓存，默认不缓存
func WithCache(c TreeCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithRand 替换示例数据完成状态使用的随机源
func WithRand(f func() float64) Option {
	return func(s *Service) { s.rand = f }
}

// WithClock 替换示例数据截止日期使用的时钟
func WithClock(f func() time.Time) Option {
	return func(s *Service) { s.now = f }
}

func NewService(projects ProjectStore, stages StageStore, tasks TaskStore, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		projects: projects,
		stages:   stages,
		tasks:    tasks,
		cache:    NoopCache{},
		logger:   logger,
		rand:     rand.Float64,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Overview 返回完整项目树；缓存失败时记录日志并回退到数据库
func (s *Service) Overview(ctx context.Context) (*model.Overview, error) {
	cached, gen, err := s.cache.Get(ctx)
	cacheUsable := err == nil
	switch {
	case err != nil:
		metrics.IncrementOverviewCache("error")
		s.logger.Warn("Overview cache read failed", zap.Error(err))
	case cached != nil:
		metrics.IncrementOverviewCache("hit")
		return cached, nil
	default:
		metrics.IncrementOverviewCache("miss")
	}

	var (
		projects []model.Project
		stages   []model.Stage
		tasks    []model.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		projects, err = s.projects.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		stages, err = s.stages.List(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		tasks, err = s.tasks.List(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tree := BuildTree(projects, stages, tasks)
	if cacheUsable {
		written, err := s.cache.Set(ctx, gen, &tree)
		switch {
		case err != nil:
			s.logger.Warn("Overview cache write failed", zap.Error(err))
		case !written:
			// 构建期间有写操作，树可能已过期
			metrics.IncrementOverviewCache("stale")
			s.logger.Debug("Overview cache write skipped, invalidated during build", zap.Int64("generation", gen))
		}
	}
	return &tree, nil
}

// Invalidate 在任何写操作成功后调用
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Overview cache invalidation failed", zap.Error(err))
	}
}
