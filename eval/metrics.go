package eval

import (
	"cmp"
	"math"
	"slices"
)

// rankOrder 返回按预测分降序的行下标，同分保持原始行顺序。
func rankOrder(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(scores[b], scores[a]) })
	return order
}

func cutoff(k, n int) int {
	if k <= 0 || k > n {
		return n
	}
	return k
}

func dcg(relevance []float64, order []int, k int) float64 {
	var sum float64
	for rank, idx := range order[:k] {
		sum += relevance[idx] / math.Log2(float64(rank)+2)
	}
	return sum
}

// DCGAtK = Σ rel_i / log2(rank_i + 1)，按预测分排序取前 k。
func DCGAtK(relevance, scores []float64, k int) float64 {
	return dcg(relevance, rankOrder(scores), cutoff(k, len(relevance)))
}

// NDCGAtK = DCG@k / IDCG@k，IDCG 为 0 时返回 0。
func NDCGAtK(relevance, scores []float64, k int) float64 {
	k = cutoff(k, len(relevance))
	ideal := dcg(relevance, rankOrder(relevance), k)
	if ideal == 0 {
		return 0
	}
	return dcg(relevance, rankOrder(scores), k) / ideal
}

func hits(relevance, scores []float64, k int) float64 {
	var n float64
	for _, idx := range rankOrder(scores)[:k] {
		if relevance[idx] > 0 {
			n++
		}
	}
	return n
}

// PrecisionAtK = 前 k 中相关的数量 / k。
func PrecisionAtK(relevance, scores []float64, k int) float64 {
	k = cutoff(k, len(relevance))
	if k == 0 {
		return 0
	}
	return hits(relevance, scores, k) / float64(k)
}

// RecallAtK = 前 k 中相关的数量 / 相关总数，没有相关项时返回 0。
func RecallAtK(relevance, scores []float64, k int) float64 {
	var total float64
	for _, r := range relevance {
		if r > 0 {
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return hits(relevance, scores, cutoff(k, len(relevance))) / total
}
