package feature

import (
	"math"
	"slices"
)

// Statistics 特征统计信息
type Statistics struct {
	Count  int
	Mean   float64
	Std    float64 // 样本标准差（n-1），少于 2 个值时为 0
	Min    float64
	Max    float64
	Median float64
}

// ComputeStatistics 计算统计信息，空输入返回零值。
func ComputeStatistics(values []float64) Statistics {
	if len(values) == 0 {
		return Statistics{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	stats := Statistics{
		Count: len(values),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	stats.Mean = sum / float64(len(values))

	if len(values) > 1 {
		variance := 0.0
		for _, v := range values {
			variance += (v - stats.Mean) * (v - stats.Mean)
		}
		stats.Std = math.Sqrt(variance / float64(len(values)-1))
	}

	stats.Median = computePercentile(sorted, 0.5)
	return stats
}

// MinMax 把 v 归一化到 [0,1]，max == min 时返回 0。
func (s Statistics) MinMax(v float64) float64 {
	if s.Max == s.Min {
		return 0
	}
	return (v - s.Min) / (s.Max - s.Min)
}

// computePercentile 计算分位数（线性插值）
func computePercentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// CosineSimilarity 计算余弦相似度，任一向量范数为 0 时返回 0。
// 类型向量非负，结果截断到 [0,1] 以吸收浮点误差。
func CosineSimilarity(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		na += v * v
	}
	for _, v := range b {
		nb += v * v
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return math.Max(0, math.Min(1, dot/(math.Sqrt(na)*math.Sqrt(nb))))
}

// OverlapCount 统计两个向量同时为正的维度数。
func OverlapCount(a, b []float64) int {
	n := min(len(a), len(b))
	count := 0
	for i := 0; i < n; i++ {
		if a[i] > 0 && b[i] > 0 {
			count++
		}
	}
	return count
}
