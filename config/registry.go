package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/feature"
	"github.com/rushteam/movierec/filter"
	"github.com/rushteam/movierec/model"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/conv"
	"github.com/rushteam/movierec/rank"
	"github.com/rushteam/movierec/recall"
	"github.com/rushteam/movierec/rerank"
)

// Deps 是 Node 构建时需要的共享依赖，全部只读。
type Deps struct {
	Tables    *core.Tables
	Assembler *feature.Assembler
	Adapter   *model.Adapter
	// Store 可选，黑名单过滤从这里读取
	Store core.Store
}

// NewFactory 返回绑定了 deps 的 NodeFactory，支持以下类型：
//
//	recall.fanout  热门 + 类型偏好召回，排除已评分电影
//	filter         额外的过滤器（history / blacklist / expr）
//	rank.model     特征组装 + 模型打分
//	rerank.topk    按分数取前 K
func NewFactory(deps Deps) *pipeline.NodeFactory {
	f := pipeline.NewNodeFactory()
	f.Register("recall.fanout", func(cfg map[string]any) (pipeline.Node, error) {
		return buildFanoutNode(deps, cfg)
	})
	f.Register("filter", func(cfg map[string]any) (pipeline.Node, error) {
		return buildFilterNode(deps, cfg)
	})
	f.Register("rank.model", func(map[string]any) (pipeline.Node, error) {
		if deps.Adapter == nil {
			return nil, fmt.Errorf("rank.model: no model configured")
		}
		return &rank.ModelNode{Assembler: deps.Assembler, Adapter: deps.Adapter}, nil
	})
	f.Register("rerank.topk", func(cfg map[string]any) (pipeline.Node, error) {
		return &rerank.TopKNode{K: conv.ConfigGetInt(cfg, "k", 0)}, nil
	})
	return f
}

func buildFanoutNode(deps Deps, cfg map[string]any) (pipeline.Node, error) {
	by := recall.PopularityBy(conv.ConfigGet(cfg, "popularity_by", string(recall.PopularityByScore)))
	if by != recall.PopularityByScore && by != recall.PopularityByCount {
		return nil, fmt.Errorf("recall.fanout: unknown popularity_by %q", by)
	}
	fanout := &recall.Fanout{
		Sources: []recall.Source{
			recall.NewPopularity(deps.Tables, by, conv.ConfigGetInt(cfg, "popular_top_n", 0)),
			recall.NewGenreAffinity(deps.Tables, conv.ConfigGetInt(cfg, "genre_top_n", 0)),
		},
		MaxTotal: conv.ConfigGetInt(cfg, "max_total", 0),
	}
	if ms := conv.ConfigGetInt(cfg, "timeout_ms", 0); ms > 0 {
		fanout.Timeout = time.Duration(ms) * time.Millisecond
	}
	filters, err := buildFilters(deps, cfg)
	if err != nil {
		return nil, fmt.Errorf("recall.fanout: %w", err)
	}
	// 已评分过滤总是第一个
	fanout.Filters = append([]filter.Filter{filter.NewHistoryFilter()}, filters...)
	return fanout, nil
}

func buildFilterNode(deps Deps, cfg map[string]any) (pipeline.Node, error) {
	filters, err := buildFilters(deps, cfg)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return &filter.FilterNode{Filters: filters}, nil
}

// buildFilters 解析 filters 列表以及 exclude_ids / expr 简写。
func buildFilters(deps Deps, cfg map[string]any) ([]filter.Filter, error) {
	var filters []filter.Filter
	if ids := conv.SliceAnyToInt64(cfg["exclude_ids"]); len(ids) > 0 {
		filters = append(filters, filter.NewBlacklistFilter(ids, nil, ""))
	}
	if expr := conv.ConfigGet(cfg, "expr", ""); expr != "" {
		f, err := filter.NewExprFilter(expr)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	raw, _ := cfg["filters"].([]any)
	for _, fc := range raw {
		fm, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		switch typ := conv.ConfigGet(fm, "type", ""); typ {
		case "history":
			filters = append(filters, filter.NewHistoryFilter())
		case "blacklist":
			filters = append(filters, filter.NewBlacklistFilter(
				conv.SliceAnyToInt64(fm["movie_ids"]),
				deps.Store,
				conv.ConfigGet(fm, "key", ""),
			))
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(fm, "expr", ""))
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", typ)
		}
	}
	return filters, nil
}

// DefaultPipeline 按 AppConfig 组装标准服务链路：fanout → rank.model → rerank.topk。
// 配置中声明了 pipeline.nodes 时按声明构建。
func DefaultPipeline(cfg *AppConfig, deps Deps) (*pipeline.Pipeline, error) {
	factory := NewFactory(deps)
	if len(cfg.Pipeline.Pipeline.Nodes) > 0 {
		if err := ValidatePipelineConfig(&cfg.Pipeline, factory); err != nil {
			return nil, err
		}
		p, err := cfg.Pipeline.BuildPipeline(factory)
		if err != nil {
			return nil, err
		}
		if p.Name == "" {
			p.Name = "movierec"
		}
		return p, nil
	}

	fanoutCfg := map[string]any{
		"popularity_by": cfg.Recall.PopularityBy,
		"popular_top_n": cfg.Recall.PopularTopN,
		"genre_top_n":   cfg.Recall.GenreTopN,
		"max_total":     cfg.Recall.MaxCandidates,
		"timeout_ms":    int(cfg.Recall.Timeout / time.Millisecond),
		"exclude_ids":   cfg.Recall.ExcludeIDs,
		"expr":          cfg.Recall.Expr,
	}
	nodes := []struct {
		typ string
		cfg map[string]any
	}{
		{"recall.fanout", fanoutCfg},
		{"rank.model", nil},
		{"rerank.topk", map[string]any{"k": cfg.Serving.TopK}},
	}
	p := &pipeline.Pipeline{Name: "movierec"}
	for _, n := range nodes {
		node, err := factory.Build(n.typ, n.cfg)
		if err != nil {
			return nil, fmt.Errorf("build node %s: %w", n.typ, err)
		}
		p.Nodes = append(p.Nodes, node)
	}
	return p, nil
}

// ValidatePipelineConfig 校验 pipeline 配置中所有 node 类型均已注册；若有未支持类型则返回包含已支持列表的错误。
func ValidatePipelineConfig(cfg *pipeline.Config, factory *pipeline.NodeFactory) error {
	if cfg == nil {
		return nil
	}
	supported := factory.Types()
	for _, nc := range cfg.Pipeline.Nodes {
		if !slices.Contains(supported, nc.Type) {
			return fmt.Errorf("unsupported node type %q (supported: %v)", nc.Type, supported)
		}
	}
	return nil
}
