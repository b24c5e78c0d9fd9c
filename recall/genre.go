package recall

import (
	"context"
	"slices"

	"github.com/rushteam/movierec/core"
)

// GenreAffinity 是类型偏好召回源（Content-Based）。
//
// 核心思想：用户的类型偏好向量与电影类型指示向量做点积，分数越高越匹配。
// 已评分电影（H）直接排除；用户没有类型偏好时返回空列表，由热门召回兜底。
type GenreAffinity struct {
	// TopN 返回前 TopN 部电影，<= 0 时使用默认值 150
	TopN int

	tables *core.Tables
}

func NewGenreAffinity(tables *core.Tables, topN int) *GenreAffinity {
	if topN <= 0 {
		topN = core.DefaultGenreTopN
	}
	return &GenreAffinity{TopN: topN, tables: tables}
}

func (r *GenreAffinity) Name() string { return SourceGenre }

func (r *GenreAffinity) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil {
		return nil, nil
	}
	ranked := r.Rank(rctx.UserID, rctx.Seen)
	out := make([]*core.Item, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, newCandidate(r.tables, s.id, s.score, SourceGenre))
	}
	return out, nil
}

// Rank 计算用户对每部未看电影的类型匹配分，返回前 TopN。
func (r *GenreAffinity) Rank(userID int64, seen func(int64) bool) []scored {
	profile, ok := r.tables.GenreProfiles[userID]
	if !ok || len(profile.Prefs) == 0 {
		return nil
	}
	scores := make([]scored, 0, len(r.tables.Movies))
	for _, id := range r.tables.MovieIDs() {
		if seen != nil && seen(id) {
			continue
		}
		scores = append(scores, scored{id: id, score: Dot(profile.Prefs, r.tables.Movies[id].Genres)})
	}
	slices.SortFunc(scores, byScoreThenID)
	if len(scores) > r.TopN {
		scores = scores[:r.TopN]
	}
	return scores
}

// Dot 计算两个向量的点积，长度不一致时按较短者计算。
func Dot(a, b []float64) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
