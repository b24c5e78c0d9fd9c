package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/movierec/coldstart"
	"github.com/rushteam/movierec/config"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/feature"
	"github.com/rushteam/movierec/model"
	"github.com/rushteam/movierec/recall"
)

// avgClassifier 对 item_avg_rating > 4 的电影给 0.9，其余给 0.2。
type avgClassifier struct{}

func (avgClassifier) Name() string           { return "avg-classifier" }
func (avgClassifier) FeatureNames() []string { return []string{feature.ItemAvgRating, feature.UserAvgRating} }
func (avgClassifier) PredictProba(_ context.Context, rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		p := 0.2
		if row[0] > 4 {
			p = 0.9
		}
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

func fixtureTables() *core.Tables {
	return core.NewTables(core.TablesInput{
		GenreNames: []string{"Action", "Comedy"},
		Movies: []core.Movie{
			{MovieID: 1, Title: "Seen One", ReleaseYear: 1995, Genres: []float64{1, 0}},
			{MovieID: 2, Title: "Seen Two", ReleaseYear: 1997, Genres: []float64{0, 1}},
			{MovieID: 10, Title: "Ten", ReleaseYear: 2000, Genres: []float64{1, 1}},
			{MovieID: 11, Title: "Eleven", ReleaseYear: 1980, Genres: []float64{0, 0}},
		},
		Users: []core.User{
			{UserID: 7, Gender: "F", Age: 25, Occupation: 4, ZipCode: "90210"},
			{UserID: 8, Gender: "M", Age: 35, Occupation: 1, ZipCode: "10001"},
		},
		Ratings: []core.Rating{
			{UserID: 7, MovieID: 1, Value: 5, Timestamp: 100},
			{UserID: 7, MovieID: 2, Value: 3, Timestamp: 200},
			{UserID: 8, MovieID: 1, Value: 4},
			{UserID: 8, MovieID: 2, Value: 4},
			{UserID: 8, MovieID: 10, Value: 5},
			{UserID: 8, MovieID: 11, Value: 2},
		},
		UserStats: []core.UserStats{
			{UserID: 7, AvgRating: 4.0, RatingCount: 2},
			{UserID: 8, AvgRating: 3.75, RatingCount: 4},
		},
		ItemStats: []core.ItemStats{
			{MovieID: 1, AvgRating: 4.5, RatingCount: 2},
			{MovieID: 2, AvgRating: 3.5, RatingCount: 2},
			{MovieID: 10, AvgRating: 4.5, RatingCount: 50},
			{MovieID: 11, AvgRating: 3.0, RatingCount: 5},
		},
		GenreProfiles: []core.UserGenreProfile{{UserID: 7, Prefs: []float64{0.6, 0.4}}},
	})
}

func newService(t *testing.T) *Service {
	t.Helper()
	tables := fixtureTables()
	adapter, err := model.NewAdapter(avgClassifier{})
	require.NoError(t, err)
	p, err := config.DefaultPipeline(config.Default(), config.Deps{
		Tables:    tables,
		Assembler: feature.NewAssembler(tables),
		Adapter:   adapter,
	})
	require.NoError(t, err)

	profiles, err := coldstart.NewBuilder().Build(context.Background(), tables)
	require.NoError(t, err)
	return NewService(tables, p, coldstart.NewHandler(profiles))
}

func TestRecommendScored(t *testing.T) {
	svc := newService(t)

	recs, err := svc.Recommend(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(10), recs[0].MovieID)
	require.NotNil(t, recs[0].Score)
	assert.InDelta(t, 0.9, *recs[0].Score, 1e-12)
	assert.Equal(t, "Ten", recs[0].Title)
	assert.Equal(t, "Action|Comedy", recs[0].Genres)
	assert.Equal(t, 50, recs[0].NumRatings)
	assert.Equal(t, recall.SourcePopularity, recs[0].Source)

	recs, err = svc.Recommend(context.Background(), 7, 0)
	require.NoError(t, err)
	ids := make([]int64, len(recs))
	for i, r := range recs {
		ids[i] = r.MovieID
		assert.NotContains(t, []int64{1, 2}, r.MovieID)
	}
	assert.Equal(t, []int64{10, 11}, ids)
	assert.Equal(t, "Movie", recs[1].Genres)
}

func TestRecommendUnknownUser(t *testing.T) {
	svc := newService(t)
	_, err := svc.Recommend(context.Background(), 999, 10)
	assert.True(t, errors.Is(err, core.ErrUnknownUser))
	assert.True(t, core.IsNotFound(err))
}

func TestRecommendNoCandidates(t *testing.T) {
	svc := newService(t)
	_, err := svc.Recommend(context.Background(), 8, 10)
	assert.True(t, errors.Is(err, core.ErrNoCandidates))
}

func TestRecommendColdStart(t *testing.T) {
	svc := newService(t)
	recs, err := svc.RecommendColdStart(context.Background(), core.Demographics{Gender: "F", Age: 45, Occupation: 3}, 3)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.LessOrEqual(t, len(recs), 3)
	for _, r := range recs {
		assert.Nil(t, r.Score)
		assert.NotEmpty(t, r.Source)
	}
	// 没有任何画像命中时按评分数降序兜底
	assert.Equal(t, int64(10), recs[0].MovieID)
	assert.Equal(t, string(coldstart.StagePopularity), recs[0].Source)
}

func TestRecommendColdStartInvalid(t *testing.T) {
	svc := newService(t)
	_, err := svc.RecommendColdStart(context.Background(), core.Demographics{Gender: "X", Age: 25}, 10)
	require.Error(t, err)
	assert.Equal(t, core.ErrorCodeInvalidInput, core.GetDomainError(err).Code)
}

func TestServiceWithoutPipeline(t *testing.T) {
	svc := NewService(fixtureTables(), nil, nil)
	_, err := svc.Recommend(context.Background(), 7, 10)
	assert.Error(t, err)
	_, err = svc.RecommendColdStart(context.Background(), core.Demographics{Gender: "F"}, 10)
	assert.Error(t, err)
}
