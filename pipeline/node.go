package pipeline

import (
	"context"

	"github.com/rushteam/movierec/core"
)

// Kind 用于标记 Node 类型，方便按阶段打点与编排。
type Kind string

const (
	KindRecall Kind = "recall" // 召回阶段：生成候选集
	KindFilter Kind = "filter" // 过滤阶段：剔除不符合约束的候选
	KindRank   Kind = "rank"   // 排序阶段：特征组装 + 模型打分
	KindReRank Kind = "rerank" // 重排阶段：Top-K 截断
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用"输入 items -> 输出 items"的形态，召回生成、过滤截断、打分、Top-K 都是一个 Node。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
