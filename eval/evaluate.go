package eval

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/feature"
	"github.com/rushteam/movierec/model"
	"github.com/rushteam/movierec/pkg/log"
)

// DefaultK 是评估默认截断位置。
const DefaultK = 10

// Sample 是评估集中的一行：一个 (用户, 电影) 的真实相关性和预测分。
type Sample struct {
	UserID    int64
	Relevance float64
	Score     float64
}

// Report 是按用户平均后的指标。
//
// 只有行数 >= K 且至少有一条相关行的用户参与平均，其余用户计入 Skipped，不按 0 填充。
type Report struct {
	K         int     `json:"k"`
	NDCG      float64 `json:"ndcg"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	Users     int     `json:"users"`
	Skipped   int     `json:"skipped"`
}

type userMetrics struct {
	ok                      bool
	ndcg, precision, recall float64
}

// Evaluate 按用户分组计算 NDCG@k、Precision@k、Recall@k 并取平均。
// 组内保持样本的原始顺序，因此同分时按行序排序。
func Evaluate(ctx context.Context, samples []Sample, k int) (Report, error) {
	if k <= 0 {
		k = DefaultK
	}
	type group struct {
		relevance []float64
		scores    []float64
	}
	groups := make(map[int64]*group)
	var users []int64
	for _, s := range samples {
		g, ok := groups[s.UserID]
		if !ok {
			g = &group{}
			groups[s.UserID] = g
			users = append(users, s.UserID)
		}
		g.relevance = append(g.relevance, s.Relevance)
		g.scores = append(g.scores, s.Score)
	}
	slices.Sort(users)

	results := make([]userMetrics, len(users))
	eg, ctx := errgroup.WithContext(ctx)
	for i, uid := range users {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			g := groups[uid]
			if len(g.relevance) < k || !slices.ContainsFunc(g.relevance, func(r float64) bool { return r > 0 }) {
				return nil
			}
			results[i] = userMetrics{
				ok:        true,
				ndcg:      NDCGAtK(g.relevance, g.scores, k),
				precision: PrecisionAtK(g.relevance, g.scores, k),
				recall:    RecallAtK(g.relevance, g.scores, k),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Report{}, err
	}

	rep := Report{K: k}
	for _, m := range results {
		if !m.ok {
			rep.Skipped++
			continue
		}
		rep.Users++
		rep.NDCG += m.ndcg
		rep.Precision += m.precision
		rep.Recall += m.recall
	}
	if rep.Users > 0 {
		n := float64(rep.Users)
		rep.NDCG /= n
		rep.Precision /= n
		rep.Recall /= n
	}
	return rep, nil
}

// EvaluateModel 用训练模式组装 ratings 的特征，经 adapter 打分后计算指标。
// ratings 通常是 SplitByUsers 得到的测试集。
func EvaluateModel(
	ctx context.Context,
	assembler *feature.Assembler,
	adapter *model.Adapter,
	ratings []core.Rating,
	k int,
) (Report, error) {
	set, err := assembler.AssembleTraining(ratings, adapter.FeatureNames())
	if err != nil {
		return Report{}, fmt.Errorf("assemble evaluation features: %w", err)
	}
	scores, err := adapter.ScoreAll(ctx, set.Matrix)
	if err != nil {
		return Report{}, fmt.Errorf("score evaluation features: %w", err)
	}
	samples := make([]Sample, len(scores))
	for i := range scores {
		samples[i] = Sample{UserID: set.UserIDs[i], Relevance: set.Labels[i], Score: scores[i]}
	}
	rep, err := Evaluate(ctx, samples, k)
	if err != nil {
		return Report{}, err
	}
	log.Logger().Info("evaluation finished",
		zap.String("model", adapter.Name()),
		zap.Int("rows", len(samples)),
		zap.Int("users", rep.Users),
		zap.Int("skipped", rep.Skipped),
		zap.Float64("ndcg", rep.NDCG),
		zap.Float64("precision", rep.Precision),
		zap.Float64("recall", rep.Recall))
	return rep, nil
}
