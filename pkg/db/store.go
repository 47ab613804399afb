package db

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"projecttracker/pkg/config"
)

// Dialect SQL 方言
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

//go:embed schema/*.sql
var schemaFS embed.FS

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store 进程级数据库句柄，所有 repository 共享
// SQL 统一使用 ? 占位符，通过 Rebind 转换为目标方言
type Store struct {
	*sqlx.DB
	dialect Dialect
	pool    *pgxpool.Pool
	logger  *zap.Logger
}

// PoolStats 连接池统计
type PoolStats struct {
	MaxConns  int   `json:"maxConns"`
	Open      int   `json:"open"`
	InUse     int   `json:"inUse"`
	Idle      int   `json:"idle"`
	WaitCount int64 `json:"waitCount"`
}

// Open 根据 store.driver 打开数据库
func Open(storeCfg config.StoreConfig, dbCfg config.DBConfig, logger *zap.Logger) (*Store, error) {
	switch Dialect(storeCfg.Driver) {
	case DialectPostgres:
		return OpenPostgres(dbCfg, logger)
	case DialectSQLite, "":
		return OpenSQLite(storeCfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", storeCfg.Driver)
	}
}

// OpenPostgres 基于 pgxpool 创建 Store
func OpenPostgres(cfg config.DBConfig, logger *zap.Logger) (*Store, error) {
	pool, err := NewConnection(cfg, logger)
	if err != nil {
		return nil, err
	}
	sqlDB := stdlib.OpenDBFromPool(pool)
	return &Store{
		DB:      sqlx.NewDb(sqlDB, "pgx"),
		dialect: DialectPostgres,
		pool:    pool,
		logger:  logger,
	}, nil
}

// OpenSQLite 打开 SQLite 数据库文件（或 DSN）
func OpenSQLite(path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		path = "projecttracker.db"
	}
	dsn := sqliteDSN(path)

	logger.Info("Opening SQLite store", zap.String("path", path))

	sqlDB, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if strings.Contains(dsn, "mode=memory") {
		// 内存库每个连接各自独立，只保留一个连接
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &Store{DB: sqlDB, dialect: DialectSQLite, logger: logger}, nil
}

func sqliteDSN(path string) string {
	params := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + "?" + params
}

// Dialect 返回当前方言
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// System 返回 OpenTelemetry db.system 属性值
func (s *Store) System() string {
	if s.dialect == DialectPostgres {
		return "postgresql"
	}
	return "sqlite"
}

// Ping 检查数据库连通性
func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// PoolStats 返回连接池统计，PostgreSQL 取 pgxpool 的数据
func (s *Store) PoolStats() PoolStats {
	if s.pool != nil {
		st := s.pool.Stat()
		return PoolStats{
			MaxConns:  int(st.MaxConns()),
			Open:      int(st.TotalConns()),
			InUse:     int(st.AcquiredConns()),
			Idle:      int(st.IdleConns()),
			WaitCount: st.EmptyAcquireCount(),
		}
	}
	st := s.DB.Stats()
	return PoolStats{
		MaxConns:  st.MaxOpenConnections,
		Open:      st.OpenConnections,
		InUse:     st.InUse,
		Idle:      st.Idle,
		WaitCount: st.WaitCount,
	}
}

// EnsureSchema 执行当前方言的建表语句（幂等）
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl, err := schemaFS.ReadFile("schema/" + string(s.dialect) + ".sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	for _, stmt := range strings.Split(string(ddl), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	s.logger.Info("Schema ensured", zap.String("dialect", string(s.dialect)))
	return nil
}

// Close 关闭 sql.DB 以及底层 pgxpool
func (s *Store) Close() error {
	err := s.DB.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}
