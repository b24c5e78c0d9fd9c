package filter

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述需要保留的候选，表达式为 false 的候选被过滤。
// 例如 `item.meta.release_year >= 1990`、`!("Horror" in item.meta.genres)`。
type ExprFilter struct {
	prg *dsl.Program
}

// NewExprFilter 编译表达式，编译失败直接返回错误。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	keep, err := f.prg.Eval(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
