package otel

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"projecttracker/pkg/metrics"
)

// DBSpan 为数据库操作创建 span
func DBSpan(ctx context.Context, system, operation, table, query string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", system),
			attribute.String("db.operation", operation),
			attribute.String("db.sql.table", table),
			attribute.String("db.statement", query),
		),
	)
}

// WrapDBError 记录数据库错误到 span
func WrapDBError(span trace.Span, err error) {
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(err, sql.ErrNoRows):
		span.SetStatus(codes.Ok, "no rows")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// DBCall 包装一次数据库操作：创建 span 并记录耗时指标
func DBCall(ctx context.Context, system, operation, table, query string, fn func(context.Context) error) error {
	ctx, span := DBSpan(ctx, system, operation, table, query)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	metrics.RecordDBQueryDuration(operation, table, time.Since(start))

	WrapDBError(span, err)
	return err
}
