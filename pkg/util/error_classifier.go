package util

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ClassifyStoreError 为存储层错误返回一个低基数的类型标签，用于日志字段
func ClassifyStoreError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, sql.ErrNoRows) {
		return "not_found"
	}

	// PostgreSQL 错误码
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return "foreign_key_violation"
		case "23505":
			return "duplicate_key"
		case "23502":
			return "not_null_violation"
		case "22P02":
			return "invalid_input"
		}
		if strings.HasPrefix(pgErr.Code, "08") {
			return "db_connection_error"
		}
		return "db_error"
	}

	// Context timeout
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "context_canceled"
	}

	// Network errors
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "network_timeout"
		}
		return "network_error"
	}

	// SQLite 只能按错误文本判断
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "FOREIGN KEY constraint failed"):
		return "foreign_key_violation"
	case strings.Contains(errStr, "UNIQUE constraint") || strings.Contains(errStr, "duplicate key"):
		return "duplicate_key"
	case strings.Contains(errStr, "NOT NULL constraint failed"):
		return "not_null_violation"
	case strings.Contains(errStr, "database is locked"):
		return "db_locked"
	case strings.Contains(errStr, "connection") || strings.Contains(errStr, "timeout"):
		return "db_connection_error"
	}

	return "unknown_error"
}
