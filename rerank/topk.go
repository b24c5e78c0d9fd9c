package rerank

import (
	"cmp"
	"context"
	"slices"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
)

// SelectTopK 按分数严格降序排列，同分按 MovieID 升序，然后截取前 k 个。
// k 大于候选数时返回全部，不做填充；k <= 0 时只排序不截断。输入切片不会被修改。
func SelectTopK(items []*core.Item, k int) []*core.Item {
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b *core.Item) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// TopKNode 是 Top-K 选择节点，放在打分节点之后，决定最终返回的顺序与数量。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.Fanout{...},       // 候选
//	        &rank.ModelNode{...},      // 打分
//	        &rerank.TopKNode{K: 10},   // Top 10
//	    },
//	}
type TopKNode struct {
	// K 默认返回数量；请求上下文中的 TopK > 0 时以请求为准，两者都没有时为 10
	K int
}

func (n *TopKNode) Name() string {
	return "rerank.topk"
}

func (n *TopKNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopKNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	k := n.K
	if rctx != nil && rctx.TopK > 0 {
		k = rctx.TopK
	}
	if k <= 0 {
		k = core.DefaultTopK
	}
	return SelectTopK(items, k), nil
}
