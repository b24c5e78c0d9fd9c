package filter

import (
	"context"

	"go.uber.org/zap"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/log"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该候选就会被过滤掉。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}
	out, filtered := Apply(ctx, rctx, n.Filters, items)
	if filtered > 0 {
		log.Logger().Debug("candidates filtered",
			zap.Int64("user_id", rctx.UserID),
			zap.Int("filtered", filtered))
	}
	return out, nil
}
