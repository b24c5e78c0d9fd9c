package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"
)

// LRModel 实现了逻辑回归 (Logistic Regression) 模型，是一个概率分类器。
//
// 预测原理：
// 1. 线性加权求和: z = Bias + sum(Weight_i * Feature_i)
// 2. Sigmoid 变换: P = 1 / (1 + exp(-z))
//
// PredictProba 输出 [1-P, P]，P 是相关（评分 >= 4）的概率。
type LRModel struct {
	Bias     float64   // 偏置项 (Bias / Intercept)
	Features []string  // 特征列顺序
	Weights  []float64 // 与 Features 一一对应的权重
}

// NewLRModel 按特征名 → 权重构建模型，未给出 features 时按特征名排序。
func NewLRModel(bias float64, weights map[string]float64, features []string) (*LRModel, error) {
	if len(features) == 0 {
		for name := range weights {
			features = append(features, name)
		}
		slices.Sort(features)
	}
	m := &LRModel{Bias: bias, Features: features, Weights: make([]float64, len(features))}
	for i, name := range features {
		w, ok := weights[name]
		if !ok {
			return nil, fmt.Errorf("lr model: no weight for feature %s", name)
		}
		m.Weights[i] = w
	}
	return m, nil
}

// LoadLRModel 从 JSON 加载：{"bias": 0.1, "features": [...], "weights": {"name": w}}
func LoadLRModel(path string) (*LRModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Bias     float64            `json:"bias"`
		Features []string           `json:"features"`
		Weights  map[string]float64 `json:"weights"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse lr model %s: %w", path, err)
	}
	return NewLRModel(raw.Bias, raw.Weights, raw.Features)
}

func (m *LRModel) Name() string { return "lr" }

func (m *LRModel) FeatureNames() []string { return m.Features }

func (m *LRModel) PredictProba(_ context.Context, rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(m.Weights) {
			return nil, fmt.Errorf("lr model: row %d has %d values, want %d", i, len(row), len(m.Weights))
		}
		z := m.Bias
		for j, v := range row {
			z += m.Weights[j] * v
		}
		p := 1 / (1 + math.Exp(-z))
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}
