package filter

import (
	"context"

	"github.com/rushteam/movierec/core"
)

// Filter 是过滤器的抽象接口，用于判断一个候选是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Apply 依次用 filters 检查 items，保留原有顺序。
// 过滤器返回错误时记为保留，不中断流程；返回被过滤的数量。
func Apply(ctx context.Context, rctx *core.RecommendContext, filters []Filter, items []*core.Item) ([]*core.Item, int) {
	if len(filters) == 0 {
		return items, 0
	}
	out := make([]*core.Item, 0, len(items))
	filtered := 0
	for _, item := range items {
		if item == nil {
			continue
		}
		drop := false
		for _, f := range filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				continue
			}
			if ok {
				drop = true
				break
			}
		}
		if drop {
			filtered++
			continue
		}
		out = append(out, item)
	}
	return out, filtered
}
