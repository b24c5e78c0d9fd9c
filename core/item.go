package core

import "github.com/rushteam/movierec/pkg/utils"

// Item 是推荐链路中的统一承载结构：一部候选电影的特征、分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	ID       int64 // MovieID
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id int64) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Source 返回召回来源标签（首个产生该电影的召回源）。
func (it *Item) Source() string {
	if it == nil || it.Labels == nil {
		return ""
	}
	return it.Labels[LabelRecallSource].Value
}

// 常用 Label key
const (
	LabelRecallSource   = "recall_source"
	LabelRankModel      = "rank_model"
	LabelColdStartStage = "coldstart_stage"
)

// Candidate 是 (UserID, MovieID, 来源) 三元组，离线批量物化时使用。
type Candidate struct {
	UserID  int64  `json:"user_id"`
	MovieID int64  `json:"movie_id"`
	Source  string `json:"candidate_source"`
}

// FeatureMatrix 是按固定列顺序排列的数值特征矩阵，一行对应一个候选。
type FeatureMatrix struct {
	Columns  []string
	MovieIDs []int64
	Rows     [][]float64
}

// Len 返回行数。
func (m *FeatureMatrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Rows)
}

// Recommendation 是对调用方返回的结果。Score 仅在打分路径上存在，冷启动路径为 nil。
type Recommendation struct {
	MovieID     int64    `json:"movie_id"`
	Score       *float64 `json:"score,omitempty"`
	Title       string   `json:"title"`
	ReleaseYear int      `json:"release_year,omitempty"`
	Genres      string   `json:"genres"`
	AvgRating   float64  `json:"avg_rating"`
	NumRatings  int      `json:"num_ratings"`
	Source      string   `json:"source,omitempty"`
}
