package coldstart

import (
	"cmp"
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/log"
	"github.com/rushteam/movierec/pkg/metrics"
)

// Stage 标记冷启动列表最终由哪一级得到。
type Stage string

const (
	StageExact      Stage = "exact"
	StageRelaxed    Stage = "relaxed"
	StageRegional   Stage = "regional"
	StageBlended    Stage = "blended"
	StagePopularity Stage = "popularity"
)

const (
	// RelaxedTopN 放宽匹配（忽略职业）时保留的电影数
	RelaxedTopN = 100
	// DemographicShare 与大区画像混合时人口统计部分的占比
	DemographicShare = 0.6
)

// resolver 是人口统计阶梯中的一级，命中时返回非空列表。
type resolver struct {
	stage   Stage
	resolve func(p *Profiles, d core.Demographics) []int64
}

// demographicLadder 按顺序尝试，第一个返回非空列表的级别胜出。
var demographicLadder = []resolver{
	{StageExact, exactMatch},
	{StageRelaxed, relaxedMatch},
}

func exactMatch(p *Profiles, d core.Demographics) []int64 {
	prof, ok := p.Exact(DemoKey{Gender: d.Gender, Age: d.Age, Occupation: d.Occupation})
	if !ok {
		return nil
	}
	return prof.MovieIDs
}

// relaxedMatch 统计同 (gender, age) 下所有职业画像中每部电影出现的次数，
// 按次数降序取前 RelaxedTopN，同次数按首次出现的顺序（职业升序遍历）。
func relaxedMatch(p *Profiles, d core.Demographics) []int64 {
	profs := p.relaxed[genderAge{d.Gender, d.Age}]
	if len(profs) == 0 {
		return nil
	}
	counts := make(map[int64]int)
	var order []int64
	for _, prof := range profs {
		for _, id := range prof.MovieIDs {
			if counts[id] == 0 {
				order = append(order, id)
			}
			counts[id]++
		}
	}
	// 稳定排序保证同次数保持首次出现顺序
	out := append([]int64(nil), order...)
	slices.SortStableFunc(out, func(a, b int64) int { return cmp.Compare(counts[b], counts[a]) })
	if len(out) > RelaxedTopN {
		out = out[:RelaxedTopN]
	}
	return out
}

// Blend 按 0.6/0.4 混合人口统计与大区列表：先取 demo 前 floor(0.6k) 个，再取 regional 前 k-floor(0.6k) 个，
// 按首次出现去重，不足 k 时用 demo 剩余部分补齐，最后截断到 k。
func Blend(demo, regional []int64, k int) []int64 {
	if k <= 0 {
		return nil
	}
	demoCount := int(float64(k) * DemographicShare)
	out := make([]int64, 0, k)
	seen := make(map[int64]struct{}, k)
	push := func(ids []int64) {
		for _, id := range ids {
			if len(out) >= k {
				return
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	push(demo[:min(demoCount, len(demo))])
	push(regional[:min(k-demoCount, len(regional))])
	push(demo)
	return out
}

// Result 是一次冷启动解析的结果。
type Result struct {
	MovieIDs []int64
	Stage    Stage
	Region   Region
}

// Handler 为没有评分历史的新用户生成推荐列表。画像构建后只读，可并发使用。
type Handler struct {
	profiles *Profiles
}

func NewHandler(p *Profiles) *Handler {
	if p.exact == nil {
		p.index()
	}
	return &Handler{profiles: p}
}

// Profiles 返回底层画像。
func (h *Handler) Profiles() *Profiles { return h.profiles }

// Resolve 依次尝试：精确人口统计匹配、放宽匹配（忽略职业）、按邮编大区混合、全局热门兜底。
// 只要热门榜非空，返回列表就不为空。k <= 0 时使用默认值 10。
func (h *Handler) Resolve(_ context.Context, d core.Demographics, k int) Result {
	if k <= 0 {
		k = core.DefaultTopK
	}
	var (
		demo  []int64
		stage Stage
	)
	// 精确画像存在但列表为空时视为未命中，继续放宽匹配（首个非空者胜出）
	for _, r := range demographicLadder {
		if ids := r.resolve(h.profiles, d); len(ids) > 0 {
			demo, stage = ids, r.stage
			break
		}
	}

	res := Result{}
	var regional []int64
	if d.ZipCode != "" {
		res.Region = RegionFromZip(d.ZipCode)
		if rp, ok := h.profiles.Region(res.Region); ok {
			regional = rp.MovieIDs
		}
	}

	switch {
	case len(demo) > 0 && len(regional) > 0:
		res.MovieIDs, res.Stage = Blend(demo, regional, k), StageBlended
	case len(demo) > 0:
		res.MovieIDs, res.Stage = demo[:min(k, len(demo))], stage
	case len(regional) > 0:
		// 没有人口统计列表时同样按混合规则取大区份额，不做补齐
		res.MovieIDs, res.Stage = Blend(nil, regional, k), StageRegional
	default:
		pop := h.profiles.Popular
		res.MovieIDs, res.Stage = pop[:min(k, len(pop))], StagePopularity
	}
	res.MovieIDs = append([]int64(nil), res.MovieIDs...)

	metrics.RecordColdStart(string(res.Stage))
	log.Logger().Debug("cold-start resolved",
		zap.String("gender", d.Gender),
		zap.Int("age", d.Age),
		zap.Int("occupation", d.Occupation),
		zap.String("region", string(res.Region)),
		zap.String("stage", string(res.Stage)),
		zap.Int("count", len(res.MovieIDs)))
	return res
}
