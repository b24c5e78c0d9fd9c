package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/movierec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的候选过滤表达式，使用 CEL (Common Expression Language)。
// 编译一次，可在多个 goroutine 中对不同候选重复求值。
//
// 表达式语法（CEL 标准语法）：
//   - 标签：label.recall_source == "popular"
//   - 元信息：item.meta.release_year >= 1990 / "Comedy" in item.meta.genres
//   - 统计：item.meta.num_ratings > 20 && item.meta.avg_rating >= 3.5
//   - 用户：rctx.user_id != 42
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式。空表达式永远为 true。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return &Program{}, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("dsl: cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("dsl: compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("dsl: program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Eval 对单个候选求值，返回布尔结果。
// 访问不存在的 key 会报错，调用方应使用 label.key != null 判断存在性。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if p == nil || p.prg == nil {
		return true, nil
	}
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("dsl: eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("dsl: expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// Eval 编译并求值，便于一次性调用。
func Eval(expr string, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Eval(item, rctx)
}

func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any)
	itemMap := map[string]any{}
	if item != nil {
		for k, v := range item.Labels {
			labels[k] = v.Value
		}
		itemMap = map[string]any{
			"id":       item.ID,
			"score":    item.Score,
			"features": item.Features,
			"meta":     item.Meta,
		}
	}
	rctxMap := map[string]any{}
	if rctx != nil {
		rctxMap = map[string]any{
			"user_id": rctx.UserID,
			"top_k":   rctx.TopK,
			"params":  rctx.Params,
		}
	}
	return map[string]any{
		"item":  itemMap,
		"label": labels,
		"rctx":  rctxMap,
	}
}
