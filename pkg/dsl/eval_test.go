package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/utils"
)

func newItem() *core.Item {
	it := core.NewItem(7)
	it.Meta["release_year"] = 1995
	it.Meta["genres"] = []string{"Comedy", "Drama"}
	it.PutLabel(core.LabelRecallSource, utils.Label{Value: "popular", Source: "recall"})
	return it
}

func TestProgramEval(t *testing.T) {
	rctx := &core.RecommendContext{UserID: 42}
	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{`label.recall_source == "popular"`, true},
		{`item.meta.release_year >= 2000`, false},
		{`"Comedy" in item.meta.genres`, true},
		{`rctx.user_id == 42 && item.id == 7`, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := Compile(tt.expr)
			require.NoError(t, err)
			got, err := p.Eval(newItem(), rctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileError(t *testing.T) {
	_, err := Compile("item.score >")
	assert.Error(t, err)
}

func TestEvalNonBoolean(t *testing.T) {
	_, err := Eval("item.id + 1", newItem(), nil)
	assert.Error(t, err)
}
