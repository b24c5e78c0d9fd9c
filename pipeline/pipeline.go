package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/log"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链：召回 → 过滤 → 打分 → Top-K。
type Pipeline struct {
	Name  string
	Nodes []Node
}

// Run 顺序执行所有 Node，任一 Node 出错即中止并返回包装后的错误。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: node %s: %w", p.Name, node.Name(), err)
		}
		log.Logger().Debug("pipeline node done",
			zap.String("pipeline", p.Name),
			zap.String("node", node.Name()),
			zap.String("kind", string(node.Kind())),
			zap.Int("in", len(cur)),
			zap.Int("out", len(next)))
		cur = next
	}
	return cur, nil
}

// Find 返回第一个指定类型的 Node。
func (p *Pipeline) Find(kind Kind) (Node, bool) {
	for _, node := range p.Nodes {
		if node.Kind() == kind {
			return node, true
		}
	}
	return nil, false
}
