package filter

import (
	"context"
	"encoding/json"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/rushteam/movierec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉运营下架的电影。
// 黑名单来自内存列表，或 Store 中 Key 对应的 JSON 数组（[1,2,3]）。
type BlacklistFilter struct {
	// MovieIDs 是内存中的黑名单
	MovieIDs mapset.Set[int64]

	// Store 用于从存储中读取黑名单（可选）
	Store core.Store

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(movieIDs []int64, store core.Store, key string) *BlacklistFilter {
	return &BlacklistFilter{
		MovieIDs: mapset.NewSet(movieIDs...),
		Store:    store,
		Key:      key,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.MovieIDs != nil && f.MovieIDs.Contains(item.ID) {
		return true, nil
	}
	if f.Store == nil || f.Key == "" {
		return false, nil
	}
	data, err := f.Store.Get(ctx, f.Key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return false, nil
		}
		return false, err
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == item.ID {
			return true, nil
		}
	}
	return false, nil
}
