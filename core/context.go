package core

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/rushteam/movierec/pkg/utils"
)

// RecommendContext 承载单次请求的用户信息，贯穿整个 Pipeline 透传。
// 它在一次调用内创建并丢弃，参考表本身通过 Tables 只读共享。
type RecommendContext struct {
	UserID int64

	// Tables 是只读参考表，所有 Node 从这里读取统计与元数据
	Tables *Tables

	// History 是用户已评分电影集合 H，候选集必须排除其中的所有电影
	History mapset.Set[int64]

	// TopK 是请求级的返回数量，<= 0 时由 TopK 节点使用默认值
	TopK int

	// Labels 是用户级标签，例如 cold_start、request_id
	Labels map[string]utils.Label

	// Params 请求级上下文参数
	Params map[string]any
}

// NewRecommendContext 为用户构建请求上下文，History 取自参考表。
func NewRecommendContext(tables *Tables, userID int64, topK int) *RecommendContext {
	rctx := &RecommendContext{
		UserID: userID,
		Tables: tables,
		TopK:   topK,
	}
	if tables != nil {
		rctx.History = tables.History(userID)
	} else {
		rctx.History = mapset.NewThreadUnsafeSet[int64]()
	}
	return rctx
}

// Seen 判断电影是否已被当前用户评分。
func (rctx *RecommendContext) Seen(movieID int64) bool {
	if rctx == nil || rctx.History == nil {
		return false
	}
	return rctx.History.Contains(movieID)
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
