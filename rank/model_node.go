package rank

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/feature"
	"github.com/rushteam/movierec/model"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/utils"
)

// ModelNode 是打分 Node：为候选组装特征矩阵，交给模型打分。
// - 列顺序以模型声明的 FeatureNames 为准，缺失特征由 Assembler 零填充
// - 写入 item.Score、item.Features 与 label rank_model
// - 不排序，顺序与 Top-K 由后续 rerank 节点决定
type ModelNode struct {
	Assembler *feature.Assembler
	Adapter   *model.Adapter
}

func (n *ModelNode) Name() string        { return "rank.model" }
func (n *ModelNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ModelNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	valid := make([]*core.Item, 0, len(items))
	movieIDs := make([]int64, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		valid = append(valid, it)
		movieIDs = append(movieIDs, it.ID)
	}

	matrix, err := n.Assembler.Assemble(rctx.UserID, movieIDs, n.Adapter.FeatureNames())
	if err != nil {
		return nil, err
	}
	scores, err := n.Adapter.ScoreAll(ctx, matrix)
	if err != nil {
		return nil, err
	}

	lbl := utils.Label{Value: n.Adapter.Name(), Source: "rank"}
	for i, it := range valid {
		it.Score = scores[i]
		if it.Features == nil {
			it.Features = make(map[string]float64, len(matrix.Columns))
		}
		for j, col := range matrix.Columns {
			it.Features[col] = matrix.Rows[i][j]
		}
		it.PutLabel(core.LabelRankModel, lbl)
	}
	return valid, nil
}
