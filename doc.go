// Package movierec 是一个电影推荐引擎。
//
// 设计要点：
// - Pipeline-first: 打分推荐由 Node 串联（recall.fanout → rank.model → rerank.topk）
// - 特征 schema 有序：服务与训练使用同一套特征计算，列顺序以模型声明为准
// - 冷启动不经过模型：人口统计画像、大区画像与全局热门逐级兜底，结果不为空
// - 参考表构建后只读，请求之间无锁共享
package movierec

import (
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/recommend"
)

// 轻量 facade：便于直接 import "movierec" 使用核心抽象。
type (
	Service        = recommend.Service
	Recommendation = core.Recommendation
	Demographics   = core.Demographics
	Pipeline       = pipeline.Pipeline
	Node           = pipeline.Node
)

// NewService 见 recommend.NewService。
var NewService = recommend.NewService
