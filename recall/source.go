package recall

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/utils"
)

// 召回源名称，同时作为候选的 source tag。
const (
	SourcePopularity = "popularity"
	SourceGenre      = "genre_similarity"
)

// Source 表示一个可复用的召回源（热门 / 类型偏好）。
// 返回的列表已按召回源自己的分数降序排列。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

type scored struct {
	id    int64
	score float64
}

// byScoreThenID 分数降序，同分按 MovieID 升序。
func byScoreThenID(a, b scored) int {
	switch {
	case a.score > b.score:
		return -1
	case a.score < b.score:
		return 1
	case a.id < b.id:
		return -1
	case a.id > b.id:
		return 1
	}
	return 0
}

func newCandidate(tables *core.Tables, id int64, score float64, source string) *core.Item {
	it := core.NewItem(id)
	it.Score = score
	it.PutLabel(core.LabelRecallSource, utils.Label{Value: source, Source: "recall"})
	if tables != nil {
		tables.FillMeta(it)
	}
	return it
}
