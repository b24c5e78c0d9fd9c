package filter

import (
	"context"

	"github.com/rushteam/movierec/core"
)

// HistoryFilter 过滤掉用户已评分的电影（历史集合 H）。
// 候选集中永远不允许出现 H 中的电影，召回合并时必须挂载该过滤器。
type HistoryFilter struct{}

func NewHistoryFilter() *HistoryFilter { return &HistoryFilter{} }

func (f *HistoryFilter) Name() string {
	return "filter.history"
}

func (f *HistoryFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return rctx.Seen(item.ID), nil
}
