// Package repository 每种资源一个 repository，只使用参数化 SQL
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"projecttracker/pkg/db"
	"projecttracker/pkg/otel"
)

// Clock 返回当前时间，测试中可替换
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now()
}

// base 各 repository 共用的 store、时钟和 span 包装
type base struct {
	store *db.Store
	now   Clock
}

func newBase(store *db.Store) base {
	return base{store: store, now: systemClock}
}

// SetClock 替换 created_at 使用的时钟
func (b *base) SetClock(c Clock) {
	b.now = c
}

// timestamp 统一为 UTC 微秒精度，与 PostgreSQL 的 TIMESTAMPTZ 一致
func (b *base) timestamp() time.Time {
	return b.now().UTC().Truncate(time.Microsecond)
}

func (b *base) call(ctx context.Context, operation, table, query string, fn func(context.Context) error) error {
	return otel.DBCall(ctx, b.store.System(), operation, table, query, fn)
}

// validID 非 UUID 的 id 不可能存在于库中
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
