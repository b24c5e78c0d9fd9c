// Package store 提供 core.Store 的实现：内存与 Redis。
//
// 示例：
//
//	var s core.Store = store.NewMemoryStore()
//	s, err := store.Open(ctx, "redis://localhost:6379/0")
package store

import (
	"context"
	"strings"

	"github.com/rushteam/movierec/core"
)

// ErrNotFound 是 core.ErrStoreNotFound 的别名
var ErrNotFound = core.ErrStoreNotFound

// Open 按地址打开存储：空串或 "memory" 为内存存储，"redis://" 前缀为 Redis。
func Open(ctx context.Context, addr string) (core.Store, error) {
	switch {
	case addr == "" || addr == "memory":
		return NewMemoryStore(), nil
	case strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://"):
		return NewRedisStore(ctx, addr)
	default:
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported, "store: unsupported address "+addr)
	}
}
