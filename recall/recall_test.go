package recall

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/filter"
)

// 电影 1..6，类型维度 [Action, Comedy]。
func fixtureTables() *core.Tables {
	return core.NewTables(core.TablesInput{
		GenreNames: []string{"Action", "Comedy"},
		Movies: []core.Movie{
			{MovieID: 1, Title: "A", Genres: []float64{1, 0}},
			{MovieID: 2, Title: "B", Genres: []float64{0, 1}},
			{MovieID: 3, Title: "C", Genres: []float64{1, 1}},
			{MovieID: 4, Title: "D", Genres: []float64{1, 0}},
			{MovieID: 5, Title: "E", Genres: []float64{0, 0}},
			{MovieID: 6, Title: "F", Genres: []float64{0, 1}},
		},
		Ratings: []core.Rating{
			{UserID: 100, MovieID: 1, Value: 5},
			{UserID: 100, MovieID: 2, Value: 2},
		},
		UserStats: []core.UserStats{{UserID: 100, AvgRating: 3.5, RatingCount: 2}, {UserID: 200}},
		ItemStats: []core.ItemStats{
			{MovieID: 1, AvgRating: 4, RatingCount: 50},  // 200
			{MovieID: 2, AvgRating: 2, RatingCount: 100}, // 200
			{MovieID: 3, AvgRating: 5, RatingCount: 10},  // 50
			{MovieID: 4, AvgRating: 3, RatingCount: 30},  // 90
			{MovieID: 5, AvgRating: 1, RatingCount: 5},   // 5
		},
		GenreProfiles: []core.UserGenreProfile{{UserID: 100, Prefs: []float64{0.8, 0.2}}},
	})
}

func ids(items []*core.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestPopularityRanking(t *testing.T) {
	tables := fixtureTables()
	tests := []struct {
		name string
		by   PopularityBy
		topN int
		want []int64
	}{
		{"score ties by id", PopularityByScore, 10, []int64{1, 2, 4, 3, 5}},
		{"count", PopularityByCount, 10, []int64{2, 1, 4, 3, 5}},
		{"capped", PopularityByScore, 2, []int64{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPopularity(tables, tt.by, tt.topN)
			items, err := p.Recall(context.Background(), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(items))
			assert.Equal(t, tt.want, p.IDs())
			assert.Equal(t, SourcePopularity, items[0].Source())
		})
	}
}

func TestGenreAffinity(t *testing.T) {
	tables := fixtureTables()
	g := NewGenreAffinity(tables, 3)
	rctx := core.NewRecommendContext(tables, 100, 10)
	items, err := g.Recall(context.Background(), rctx)
	require.NoError(t, err)
	// 3: 1.0, 4: 0.8, 6: 0.2, 5: 0；1 与 2 已评分
	assert.Equal(t, []int64{3, 4, 6}, ids(items))
	assert.InDelta(t, 1.0, items[0].Score, 1e-9)
	assert.Equal(t, SourceGenre, items[0].Source())

	items, err = g.Recall(context.Background(), core.NewRecommendContext(tables, 200, 10))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFanoutExcludesHistory(t *testing.T) {
	tables := fixtureTables()
	n := &Fanout{
		Sources: []Source{NewPopularity(tables, PopularityByScore, 100), NewGenreAffinity(tables, 150)},
		Filters: []filter.Filter{filter.NewHistoryFilter()},
	}
	rctx := core.NewRecommendContext(tables, 100, 10)
	items, err := n.Process(context.Background(), rctx, nil)
	require.NoError(t, err)
	for _, it := range items {
		assert.False(t, rctx.History.Contains(it.ID), "movie %d is in history", it.ID)
	}
	// 热门优先：4,3,5 来自热门，6 只有类型召回产出
	assert.Equal(t, []int64{4, 3, 5, 6}, ids(items))
	assert.Equal(t, SourcePopularity, items[1].Source())
	assert.Equal(t, SourceGenre, items[3].Source())
}

func TestFanoutEmptyHistoryEqualsPopularity(t *testing.T) {
	tables := fixtureTables()
	pop := NewPopularity(tables, PopularityByScore, 3)
	n := &Fanout{
		Sources: []Source{pop, NewGenreAffinity(tables, 150)},
		Filters: []filter.Filter{filter.NewHistoryFilter()},
	}
	items, err := n.Process(context.Background(), core.NewRecommendContext(tables, 200, 10), nil)
	require.NoError(t, err)
	assert.Equal(t, pop.IDs(), ids(items))
}

func TestFanoutCap(t *testing.T) {
	tables := fixtureTables()
	n := &Fanout{
		Sources:  []Source{NewPopularity(tables, PopularityByScore, 100), NewGenreAffinity(tables, 150)},
		Filters:  []filter.Filter{filter.NewHistoryFilter()},
		MaxTotal: 2,
	}
	items, err := n.Process(context.Background(), core.NewRecommendContext(tables, 100, 10), nil)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }
func (failingSource) Recall(context.Context, *core.RecommendContext) ([]*core.Item, error) {
	return nil, errors.New("unavailable")
}

func TestFanoutSkipsFailingSource(t *testing.T) {
	tables := fixtureTables()
	n := &Fanout{Sources: []Source{failingSource{}, NewPopularity(tables, PopularityByScore, 2)}}
	items, err := n.Process(context.Background(), core.NewRecommendContext(tables, 200, 10), nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(items))
}

func TestFanoutExcludesHistoryWithoutFilters(t *testing.T) {
	tables := fixtureTables()
	n := &Fanout{Sources: []Source{NewPopularity(tables, PopularityByScore, 10)}, MaxTotal: 2}
	items, err := n.Process(context.Background(), core.NewRecommendContext(tables, 100, 10), nil)
	require.NoError(t, err)
	// 已评分的 1、2 在截断前排除
	assert.Equal(t, []int64{4, 3}, ids(items))
}

func TestFanoutAllSeenIsEmpty(t *testing.T) {
	tables := core.NewTables(core.TablesInput{
		Movies:    []core.Movie{{MovieID: 1}},
		Ratings:   []core.Rating{{UserID: 1, MovieID: 1, Value: 4}},
		ItemStats: []core.ItemStats{{MovieID: 1, AvgRating: 4, RatingCount: 1}},
		UserStats: []core.UserStats{{UserID: 1}},
	})
	n := &Fanout{
		Sources: []Source{NewPopularity(tables, PopularityByScore, 100)},
		Filters: []filter.Filter{filter.NewHistoryFilter()},
	}
	items, err := n.Process(context.Background(), core.NewRecommendContext(tables, 1, 10), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMaterialize(t *testing.T) {
	tables := fixtureTables()
	cands, err := Materialize(context.Background(), tables, MaterializeOptions{PopularTopN: 2, GenreTopN: 2, Workers: 2})
	require.NoError(t, err)

	type key struct{ u, m int64 }
	seen := map[key]bool{}
	for _, c := range cands {
		k := key{c.UserID, c.MovieID}
		assert.False(t, seen[k], "duplicate %v", k)
		seen[k] = true
		assert.False(t, tables.History(c.UserID).Contains(c.MovieID))
	}
	// 用户 200：热门 1,2；无类型偏好
	assert.True(t, seen[key{200, 1}])
	assert.True(t, seen[key{200, 2}])
	// 用户 100：热门全部已看，类型候选 3,4
	assert.True(t, seen[key{100, 3}])
	assert.True(t, seen[key{100, 4}])
	assert.Len(t, cands, 4)
	assert.Equal(t, int64(100), cands[0].UserID)
}

func TestMerge(t *testing.T) {
	a := []*core.Item{core.NewItem(1), core.NewItem(2)}
	b := []*core.Item{core.NewItem(2), core.NewItem(3), nil}
	assert.Equal(t, []int64{1, 2, 3}, ids(Merge(a, b)))
	assert.Same(t, a[1], Merge(a, b)[1])
}
