package rank

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/feature"
	"github.com/rushteam/movierec/model"
)

// avgRanker 直接把 item_avg_rating 当作分数
type avgRanker struct{ features []string }

func (avgRanker) Name() string             { return "avg" }
func (r avgRanker) FeatureNames() []string { return r.features }
func (avgRanker) Predict(_ context.Context, rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row[0]
	}
	return out, nil
}

func fixture() *core.Tables {
	return core.NewTables(core.TablesInput{
		Movies:    []core.Movie{{MovieID: 10}, {MovieID: 11}},
		UserStats: []core.UserStats{{UserID: 7, AvgRating: 4.0}},
		ItemStats: []core.ItemStats{
			{MovieID: 10, AvgRating: 4.5, RatingCount: 50},
			{MovieID: 11, AvgRating: 3.0, RatingCount: 5},
		},
	})
}

func TestModelNode(t *testing.T) {
	tables := fixture()
	adapter, err := model.NewAdapter(avgRanker{features: []string{feature.ItemAvgRating, feature.RatingDeviation}})
	require.NoError(t, err)
	n := &ModelNode{Assembler: feature.NewAssembler(tables), Adapter: adapter}

	items := []*core.Item{core.NewItem(11), nil, core.NewItem(10)}
	out, err := n.Process(context.Background(), core.NewRecommendContext(tables, 7, 1), items)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 3.0, out[0].Score)
	assert.Equal(t, 4.5, out[1].Score)
	assert.Equal(t, 0.5, out[1].Features[feature.RatingDeviation])
	assert.Equal(t, "avg", out[1].Labels[core.LabelRankModel].Value)
}

type brokenSchema struct{ avgRanker }

func TestModelNodeEmptySchemaFails(t *testing.T) {
	tables := fixture()
	adapter, err := model.NewAdapter(brokenSchema{})
	require.NoError(t, err)
	n := &ModelNode{Assembler: feature.NewAssembler(tables), Adapter: adapter}
	_, err = n.Process(context.Background(), core.NewRecommendContext(tables, 7, 1), []*core.Item{core.NewItem(10)})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, core.ErrNoCandidates))
}
