package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rushteam/movierec/core"
)

func fixtureTables() *core.Tables {
	return core.NewTables(core.TablesInput{
		GenreNames: []string{"Action", "Comedy"},
		Movies: []core.Movie{
			{MovieID: 1, Title: "seen-1", ReleaseYear: 1995, Genres: []float64{1, 0}},
			{MovieID: 2, Title: "seen-2", ReleaseYear: 1996, Genres: []float64{0, 1}},
			{MovieID: 10, Title: "ten", ReleaseYear: 2000, Genres: []float64{1, 0}},
			{MovieID: 11, Title: "eleven", Genres: []float64{0, 0}},
			{MovieID: 12, Title: "twelve", ReleaseYear: 1990, Genres: []float64{1, 1}},
		},
		Ratings: []core.Rating{
			{UserID: 7, MovieID: 1, Value: 5, Timestamp: 100},
			{UserID: 7, MovieID: 2, Value: 3, Timestamp: 300},
			{UserID: 8, MovieID: 1, Value: 2, Timestamp: 200},
		},
		UserStats: []core.UserStats{
			{UserID: 7, AvgRating: 4.0, RatingCount: 2, PositiveRate: 0.5, TenureDays: 1},
			{UserID: 8, AvgRating: 2.0, RatingCount: 1},
			{UserID: 9, AvgRating: 3.0},
		},
		ItemStats: []core.ItemStats{
			{MovieID: 10, AvgRating: 4.5, RatingCount: 50, PositiveRate: 0.8},
			{MovieID: 11, AvgRating: 3.0, RatingCount: 5},
		},
		GenreProfiles: []core.UserGenreProfile{{UserID: 7, Prefs: []float64{1, 0}}},
	})
}

func column(m *core.FeatureMatrix, name string) []float64 {
	idx := -1
	for i, c := range m.Columns {
		if c == name {
			idx = i
		}
	}
	out := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = row[idx]
	}
	return out
}

func TestAssembleServing(t *testing.T) {
	a := NewAssembler(fixtureTables())
	m, err := a.Assemble(7, []int64{10, 11, 12}, DefaultSchema)
	require.NoError(t, err)
	require.Equal(t, 3, m.Len())
	assert.Equal(t, DefaultSchema, m.Columns)
	assert.Equal(t, []int64{10, 11, 12}, m.MovieIDs)
	for _, row := range m.Rows {
		assert.Len(t, row, len(DefaultSchema))
	}

	assert.Equal(t, []float64{0.5, -1.0, -4.0}, column(m, RatingDeviation))
	assert.InDeltaSlice(t, []float64{math.Sqrt2, math.Sqrt2, math.Sqrt2}, column(m, UserRatingStd), 1e-9)
	assert.Equal(t, []float64{4, 4, 4}, column(m, UserRatingMedian))
	assert.InDeltaSlice(t, []float64{1, 0, 1 / math.Sqrt2}, column(m, GenreCosine), 1e-9)
	assert.Equal(t, []float64{1, 0, 1}, column(m, GenreOverlap))
	// 3 与 13 的中位数 8 填充未知年份
	assert.Equal(t, []float64{3, 8, 13}, column(m, MovieAgeYears))
	assert.Equal(t, []float64{1, 0, 0}, column(m, IsRecentMovie))
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, column(m, RatingRecency))
	assert.Equal(t, []float64{225, 15, 0}, column(m, ItemPopularity))
	assert.InDeltaSlice(t, []float64{math.Log1p(225), math.Log1p(15), 0}, column(m, ItemPopularityLog), 1e-9)
	assert.InDeltaSlice(t, []float64{math.Log1p(50), math.Log1p(5), 0}, column(m, ItemRatingCountLog), 1e-9)
	assert.InDeltaSlice(t, []float64{math.Log1p(2), math.Log1p(2), math.Log1p(2)}, column(m, UserRatingCountLog), 1e-9)
}

func TestAssembleCosineBounds(t *testing.T) {
	a := NewAssembler(fixtureTables())
	for _, uid := range []int64{7, 8, 9} {
		m, err := a.Assemble(uid, []int64{10, 11, 12}, DefaultSchema)
		require.NoError(t, err)
		for _, v := range column(m, GenreCosine) {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
	// 用户 8、9 没有类型偏好，余弦全为 0
	m, _ := a.Assemble(9, []int64{10, 12}, DefaultSchema)
	assert.Equal(t, []float64{0, 0}, column(m, GenreCosine))
}

func TestAssembleEmptyHistoryDefaults(t *testing.T) {
	m, err := NewAssembler(fixtureTables()).Assemble(9, []int64{10}, DefaultSchema)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, column(m, UserRatingStd))
	assert.Equal(t, []float64{3.0}, column(m, UserRatingMedian))
}

func TestAssembleSingleRatingStdIsZero(t *testing.T) {
	m, err := NewAssembler(fixtureTables()).Assemble(8, []int64{10}, DefaultSchema)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, column(m, UserRatingStd))
	assert.Equal(t, []float64{2}, column(m, UserRatingMedian))
}

func TestAssembleAllYearsUnknown(t *testing.T) {
	m, err := NewAssembler(fixtureTables()).Assemble(7, []int64{11, 404}, DefaultSchema)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, column(m, MovieAgeYears))
	assert.Equal(t, []float64{0, 0}, column(m, IsRecentMovie))
}

func TestAssembleReferenceYear(t *testing.T) {
	m, err := NewAssembler(fixtureTables(), WithReferenceYear(2010)).Assemble(7, []int64{10}, DefaultSchema)
	require.NoError(t, err)
	assert.Equal(t, []float64{10}, column(m, MovieAgeYears))
	assert.Equal(t, []float64{0}, column(m, IsRecentMovie))
}

func TestAssembleZeroFillsUnknownFeatures(t *testing.T) {
	observed, logs := observer.New(zapcore.WarnLevel)
	a := NewAssembler(fixtureTables(), WithLogger(zap.New(observed)))
	m, err := a.Assemble(7, []int64{10}, []string{ItemAvgRating, "director_popularity"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{4.5, 0}}, m.Rows)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, []any{"director_popularity"}, entry.ContextMap()["features"])
}

func TestAssembleEmptySchema(t *testing.T) {
	_, err := NewAssembler(fixtureTables()).Assemble(7, []int64{10}, nil)
	assert.Error(t, err)
}

func TestAssembleTraining(t *testing.T) {
	tables := fixtureTables()
	a := NewAssembler(tables)
	set, err := a.AssembleTraining(tables.Ratings(), DefaultSchema)
	require.NoError(t, err)
	require.Equal(t, 3, set.Matrix.Len())
	assert.Equal(t, []int64{7, 7, 8}, set.UserIDs)
	assert.Equal(t, []float64{1, 0, 0}, set.Labels)
	assert.Equal(t, []float64{5, 3, 2}, set.Ratings)
	assert.Equal(t, []float64{0, 1, 0.5}, column(set.Matrix, RatingRecency))
	assert.Equal(t, []float64{8, 7, 8}, column(set.Matrix, MovieAgeYears))
}

func TestAssembleTrainingConstantTimestamps(t *testing.T) {
	a := NewAssembler(fixtureTables())
	set, err := a.AssembleTraining([]core.Rating{
		{UserID: 7, MovieID: 10, Value: 4, Timestamp: 5},
		{UserID: 7, MovieID: 11, Value: 4, Timestamp: 5},
	}, []string{RatingRecency})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0}, {0}}, set.Matrix.Rows)
}
