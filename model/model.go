package model

import "context"

// Scorer 是冻结的预训练相关性模型：输入按 FeatureNames 顺序排列的特征矩阵，输出分数（越高越相关）。
// 具体能力通过 ProbabilisticClassifier / DirectRanker 两个接口声明，由 Adapter 在运行时探测。
type Scorer interface {
	Name() string
	// FeatureNames 返回模型训练时的特征列顺序
	FeatureNames() []string
}

// ProbabilisticClassifier 输出每行的类别概率，第 1 列是相关（正）类的概率。
type ProbabilisticClassifier interface {
	Scorer
	PredictProba(ctx context.Context, rows [][]float64) ([][]float64, error)
}

// DirectRanker 直接输出排序分数。
type DirectRanker interface {
	Scorer
	Predict(ctx context.Context, rows [][]float64) ([]float64, error)
}

// 模型能力类型，用于日志与标签
const (
	KindClassifier = "classifier"
	KindRanker     = "ranker"
)
