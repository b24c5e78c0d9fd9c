package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureTables() *Tables {
	return NewTables(TablesInput{
		GenreNames: []string{"Action", "Comedy", "Drama"},
		Movies: []Movie{
			{MovieID: 2, Title: "Two", ReleaseYear: 1999, Genres: []float64{1, 0, 1}},
			{MovieID: 1, Title: "One", Genres: []float64{0, 0, 0}},
		},
		Users: []User{{UserID: 7, Gender: "F", Age: 25, Occupation: 4, ZipCode: "90210"}},
		Ratings: []Rating{
			{UserID: 7, MovieID: 2, Value: 5, Timestamp: 100},
			{UserID: 7, MovieID: 1, Value: 2, Timestamp: 200},
		},
		UserStats: []UserStats{{UserID: 7, AvgRating: 3.5, RatingCount: 2}, {UserID: 9}},
		ItemStats: []ItemStats{{MovieID: 2, AvgRating: 5, RatingCount: 1}},
	})
}

func TestNewTables(t *testing.T) {
	tables := fixtureTables()
	assert.Equal(t, []int64{1, 2}, tables.MovieIDs())
	assert.Equal(t, []int64{7, 9}, tables.UserIDs())
	assert.Len(t, tables.UserRatings(7), 2)
	assert.True(t, tables.History(7).Contains(1, 2))
	assert.Equal(t, 0, tables.History(9).Cardinality())
	assert.Equal(t, 3, tables.GenreDims())
}

func TestDescribe(t *testing.T) {
	tables := fixtureTables()
	rec := tables.Describe(2)
	assert.Equal(t, "Two", rec.Title)
	assert.Equal(t, "Action|Drama", rec.Genres)
	assert.Equal(t, 1999, rec.ReleaseYear)
	assert.Equal(t, 1, rec.NumRatings)
	assert.Nil(t, rec.Score)

	assert.Equal(t, DefaultGenreLabel, tables.Describe(1).Genres)
	assert.Equal(t, DefaultGenreLabel, tables.Describe(404).Genres)
}

func TestFillMeta(t *testing.T) {
	tables := fixtureTables()
	it := NewItem(2)
	tables.FillMeta(it)
	assert.Equal(t, []string{"Action", "Drama"}, it.Meta["genres"])
	assert.Equal(t, 1999, it.Meta["release_year"])
}

func TestRecommendContextSeen(t *testing.T) {
	rctx := NewRecommendContext(fixtureTables(), 7, 5)
	assert.True(t, rctx.Seen(2))
	assert.False(t, rctx.Seen(3))
	assert.False(t, (*RecommendContext)(nil).Seen(2))
}

func TestDomainErrorWrapping(t *testing.T) {
	err := fmt.Errorf("user 42: %w", ErrUnknownUser)
	assert.True(t, errors.Is(err, ErrUnknownUser))
	assert.False(t, errors.Is(err, ErrNoCandidates))
	assert.True(t, IsNotFound(err))
	require.NotNil(t, GetDomainError(err))
	assert.Equal(t, ModuleRecommend, GetDomainError(err).Module)

	assert.True(t, IsSchemaMismatch(fmt.Errorf("x: %w", ErrSchemaMismatch)))
	assert.True(t, IsNoCandidates(ErrNoCandidates))
	assert.True(t, IsStoreNotFound(ErrStoreNotFound))
	assert.False(t, IsStoreNotFound(ErrUnknownUser))
}

func TestRatingRelevant(t *testing.T) {
	assert.True(t, Rating{Value: 4}.Relevant())
	assert.False(t, Rating{Value: 3.5}.Relevant())
}
