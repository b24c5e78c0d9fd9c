package recall

import (
	"context"
	"slices"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
)

// PopularityBy 决定热门榜的排序依据。
type PopularityBy string

const (
	// PopularityByScore 按 rating_count × avg_rating 排序
	PopularityByScore PopularityBy = "score"
	// PopularityByCount 只按 rating_count 排序
	PopularityByCount PopularityBy = "count"
)

// Popularity 是全局热门召回源，榜单只依赖 ItemStats，构建时一次性计算。
// 与用户无关，已评分电影在 Fanout 合并时排除。
// 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Popularity struct {
	By   PopularityBy
	TopN int

	tables *core.Tables
	ranked []scored
}

// NewPopularity 按 by 对所有有统计的电影排序，同分按 MovieID 升序。topN <= 0 时使用默认值 100。
func NewPopularity(tables *core.Tables, by PopularityBy, topN int) *Popularity {
	if by == "" {
		by = PopularityByScore
	}
	if topN <= 0 {
		topN = core.DefaultPopularTopN
	}
	p := &Popularity{By: by, TopN: topN, tables: tables}
	p.ranked = rankPopular(tables, by)
	return p
}

// rankPopular 返回按热门度降序的全部电影。
func rankPopular(tables *core.Tables, by PopularityBy) []scored {
	ranked := make([]scored, 0, len(tables.ItemStats))
	for id, s := range tables.ItemStats {
		v := s.PopularityScore()
		if by == PopularityByCount {
			v = s.RatingCount
		}
		ranked = append(ranked, scored{id: id, score: v})
	}
	slices.SortFunc(ranked, byScoreThenID)
	return ranked
}

func (r *Popularity) Name() string        { return SourcePopularity }
func (r *Popularity) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Popularity) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 返回热门榜前 TopN。
func (r *Popularity) Recall(_ context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	n := min(r.TopN, len(r.ranked))
	out := make([]*core.Item, 0, n)
	for _, s := range r.ranked[:n] {
		out = append(out, newCandidate(r.tables, s.id, s.score, SourcePopularity))
	}
	return out, nil
}

// IDs 返回热门榜前 TopN 的 MovieID。
func (r *Popularity) IDs() []int64 {
	n := min(r.TopN, len(r.ranked))
	ids := make([]int64, n)
	for i, s := range r.ranked[:n] {
		ids[i] = s.id
	}
	return ids
}
