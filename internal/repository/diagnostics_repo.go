package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"projecttracker/internal/model"
	"projecttracker/pkg/apperr"
	"projecttracker/pkg/db"
)

const countAllQuery = `SELECT
	(SELECT COUNT(*) FROM projects) AS projects,
	(SELECT COUNT(*) FROM stages) AS stages,
	(SELECT COUNT(*) FROM tasks) AS tasks`

var (
	postgresConnectionQuery = `SELECT NOW()::text, version()`
	sqliteConnectionQuery   = `SELECT datetime('now'), 'SQLite ' || sqlite_version()`

	postgresColumnsQuery = `
		SELECT table_name::text AS table_name,
		       column_name::text AS column_name,
		       data_type::text AS data_type,
		       CASE WHEN is_nullable = 'YES' THEN TRUE ELSE FALSE END AS is_nullable
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		  AND table_name IN ('projects', 'stages', 'tasks')
		ORDER BY table_name, ordinal_position`
	sqliteColumnsQuery = `
		SELECT m.name AS table_name,
		       p.name AS column_name,
		       p.type AS data_type,
		       CASE WHEN p."notnull" = 0 THEN 1 ELSE 0 END AS is_nullable
		FROM sqlite_master m
		JOIN pragma_table_info(m.name) p
		WHERE m.type = 'table'
		  AND m.name IN ('projects', 'stages', 'tasks')
		ORDER BY m.name, p.cid`
)

// DiagnosticsRepository 健康检查与诊断接口使用的查询
type DiagnosticsRepository struct {
	base
	logger *zap.Logger
}

func NewDiagnosticsRepository(store *db.Store, logger *zap.Logger) *DiagnosticsRepository {
	return &DiagnosticsRepository{
		base:   newBase(store),
		logger: logger,
	}
}

// Ping 检查存储连通性
func (r *DiagnosticsRepository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// CountAll 返回三张表的行数
func (r *DiagnosticsRepository) CountAll(ctx context.Context) (model.TableCounts, error) {
	var counts model.TableCounts
	err := r.call(ctx, "select", "all", countAllQuery, func(ctx context.Context) error {
		return r.store.GetContext(ctx, &counts, countAllQuery)
	})
	if err != nil {
		r.logger.Error("Failed to count rows", zap.Error(err))
		return model.TableCounts{}, apperr.Store("Database connection failed", err)
	}
	return counts, nil
}

// ConnectionInfo 返回数据库时间、版本和连接池统计
func (r *DiagnosticsRepository) ConnectionInfo(ctx context.Context) (model.ConnectionInfo, error) {
	query := sqliteConnectionQuery
	if r.store.Dialect() == db.DialectPostgres {
		query = postgresConnectionQuery
	}

	info := model.ConnectionInfo{Driver: string(r.store.Dialect())}
	err := r.call(ctx, "select", "", query, func(ctx context.Context) error {
		return r.store.QueryRowxContext(ctx, query).Scan(&info.CurrentTime, &info.Version)
	})
	if err != nil {
		r.logger.Error("Connection test failed", zap.Error(err))
		return model.ConnectionInfo{}, apperr.Store("Database connection test failed", err)
	}
	info.Pool = r.store.PoolStats()
	return info, nil
}

// Columns 返回每张表的列定义
func (r *DiagnosticsRepository) Columns(ctx context.Context) (map[string][]model.Column, error) {
	query := sqliteColumnsQuery
	if r.store.Dialect() == db.DialectPostgres {
		query = postgresColumnsQuery
	}

	var cols []model.Column
	err := r.call(ctx, "select", "information_schema", query, func(ctx context.Context) error {
		return r.store.SelectContext(ctx, &cols, query)
	})
	if err != nil {
		r.logger.Error("Failed to fetch table information", zap.Error(err))
		return nil, apperr.Store("Failed to fetch table information", err)
	}

	tables := make(map[string][]model.Column)
	for _, c := range cols {
		tables[c.Table] = append(tables[c.Table], c)
	}
	return tables, nil
}

// MeasurePerformance 并发执行五个计数查询并返回总耗时
func (r *DiagnosticsRepository) MeasurePerformance(ctx context.Context) (model.PerformanceResult, error) {
	var res model.PerformanceResult
	countQueries := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&res.Projects, `SELECT COUNT(*) FROM projects`, nil},
		{&res.Stages, `SELECT COUNT(*) FROM stages`, nil},
		{&res.Tasks, `SELECT COUNT(*) FROM tasks`, nil},
		{&res.CompletedTasks, r.store.Rebind(`SELECT COUNT(*) FROM tasks WHERE completed = ?`), []any{true}},
		{&res.OverdueTasks, `SELECT COUNT(*) FROM tasks WHERE deadline < CURRENT_DATE`, nil},
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range countQueries {
		g.Go(func() error {
			return r.call(gctx, "select", "performance", p.query, func(ctx context.Context) error {
				return r.store.GetContext(ctx, p.dest, p.query, p.args...)
			})
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Error("Database performance test failed", zap.Error(err))
		return model.PerformanceResult{}, apperr.Store("Database performance test failed", err)
	}
	res.ElapsedMillis = time.Since(start).Milliseconds()

	r.logger.Info("Database performance test completed",
		zap.Int64("elapsed_ms", res.ElapsedMillis),
		zap.Int("queries", len(countQueries)),
	)
	return res, nil
}

// ClearAll 依次删除 tasks、stages、projects
func (r *DiagnosticsRepository) ClearAll(ctx context.Context) (model.ClearResult, error) {
	var res model.ClearResult
	steps := []struct {
		table string
		dest  *int64
	}{
		{"tasks", &res.TasksDeleted},
		{"stages", &res.StagesDeleted},
		{"projects", &res.ProjectsDeleted},
	}

	for _, s := range steps {
		query := `DELETE FROM ` + s.table
		err := r.call(ctx, "delete", s.table, query, func(ctx context.Context) error {
			result, err := r.store.ExecContext(ctx, query)
			if err != nil {
				return err
			}
			*s.dest, err = result.RowsAffected()
			return err
		})
		if err != nil {
			r.logger.Error("Failed to clear data", zap.String("table", s.table), zap.Error(err))
			return model.ClearResult{}, apperr.Store("Failed to clear data", err)
		}
	}
	res.ClearedAt = r.timestamp()

	r.logger.Warn("All data cleared",
		zap.Int64("tasks", res.TasksDeleted),
		zap.Int64("stages", res.StagesDeleted),
		zap.Int64("projects", res.ProjectsDeleted),
	)
	return res, nil
}
