package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewTestStore 创建带完整 schema 的内存 SQLite Store，测试结束时自动关闭
//
//	func TestSomething(t *testing.T) {
//	    store := db.NewTestStore(t)
//	    repo := repository.NewProjectRepository(store, zap.NewNop())
//	}
func NewTestStore(t testing.TB) *Store {
	t.Helper()

	path := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	store, err := OpenSQLite(path, zap.NewNop())
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure test schema: %v", err)
	}
	return store
}
