package model

import (
	"context"
	"fmt"
	"slices"

	"github.com/rushteam/movierec/core"
)

// positiveClass 是二分类概率输出中相关类所在的列
const positiveClass = 1

// Adapter 把不同能力的模型统一成 ScoreAll(矩阵) → 分数 的契约。
// 能力在构建时按接口探测一次：优先概率分类器（取正类概率），其次直接排序器（取原始分）。
// 不重试，不修改模型状态；列数或列顺序不一致直接返回 ErrSchemaMismatch，不做任何填充或截断。
type Adapter struct {
	scorer Scorer
	kind   string
	score  func(ctx context.Context, rows [][]float64) ([]float64, error)
}

// NewAdapter 探测模型能力，两种能力都不具备时返回错误。
func NewAdapter(s Scorer) (*Adapter, error) {
	if s == nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "model: nil scorer")
	}
	a := &Adapter{scorer: s}
	switch m := s.(type) {
	case ProbabilisticClassifier:
		a.kind = KindClassifier
		a.score = func(ctx context.Context, rows [][]float64) ([]float64, error) {
			proba, err := m.PredictProba(ctx, rows)
			if err != nil {
				return nil, err
			}
			out := make([]float64, len(proba))
			for i, p := range proba {
				if len(p) <= positiveClass {
					return nil, fmt.Errorf("model %s: row %d has %d class probabilities", s.Name(), i, len(p))
				}
				out[i] = p[positiveClass]
			}
			return out, nil
		}
	case DirectRanker:
		a.kind = KindRanker
		a.score = m.Predict
	default:
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeNotSupported,
			fmt.Sprintf("model %s: neither a probabilistic classifier nor a direct ranker", s.Name()))
	}
	return a, nil
}

func (a *Adapter) Name() string { return a.scorer.Name() }

// Kind 返回探测到的能力类型
func (a *Adapter) Kind() string { return a.kind }

// FeatureNames 返回模型声明的特征列顺序
func (a *Adapter) FeatureNames() []string { return a.scorer.FeatureNames() }

// ScoreAll 对矩阵逐行打分，返回与行一一对应的分数。
func (a *Adapter) ScoreAll(ctx context.Context, m *core.FeatureMatrix) ([]float64, error) {
	if err := a.checkSchema(m); err != nil {
		return nil, err
	}
	if m.Len() == 0 {
		return []float64{}, nil
	}
	scores, err := a.score(ctx, m.Rows)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", a.Name(), err)
	}
	if len(scores) != m.Len() {
		return nil, fmt.Errorf("model %s: got %d scores for %d rows", a.Name(), len(scores), m.Len())
	}
	return scores, nil
}

func (a *Adapter) checkSchema(m *core.FeatureMatrix) error {
	if m == nil {
		return fmt.Errorf("%w: nil feature matrix", core.ErrSchemaMismatch)
	}
	want := a.FeatureNames()
	if !slices.Equal(m.Columns, want) {
		return fmt.Errorf("%w: model %s expects %d columns %v, got %d columns %v",
			core.ErrSchemaMismatch, a.Name(), len(want), want, len(m.Columns), m.Columns)
	}
	for i, row := range m.Rows {
		if len(row) != len(want) {
			return fmt.Errorf("%w: row %d has %d values, model %s expects %d",
				core.ErrSchemaMismatch, i, len(row), a.Name(), len(want))
		}
	}
	return nil
}
