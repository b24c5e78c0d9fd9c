package recall

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/filter"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/log"
	"github.com/rushteam/movierec/pkg/metrics"
)

// Fanout 是一个 Recall Node：并发执行多个召回源，并按固定优先级合并结果。
//
// 合并规则：
//   - 按 Sources 顺序拼接（热门在前，类型偏好在后）
//   - 按 MovieID 去重，先出现者胜出，source tag 保留首个产出它的召回源
//   - 排除用户已评分电影 H，再经过 Filters，最后截断到 MaxTotal
//
// 单个召回源失败或超时只记录日志并跳过，不中断其他召回源。
// 所有召回源结果为空时返回空列表，是合法结果而非错误。
type Fanout struct {
	Sources  []Source
	Filters  []filter.Filter
	MaxTotal int           // N，<= 0 时使用默认值 200
	Timeout  time.Duration // 每个召回源的超时时间，0 表示不限制
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	// 每个召回源写入自己的槽位，合并顺序与并发完成顺序无关
	results := make([][]*core.Item, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, src := range n.Sources {
		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}
			items, err := src.Recall(recallCtx, rctx)
			if err != nil {
				log.Logger().Warn("recall source failed, skipped",
					zap.String("source", src.Name()),
					zap.Int64("user_id", rctx.UserID),
					zap.Error(err))
				metrics.RecordRecallError(src.Name())
				return nil
			}
			results[i] = items
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := Merge(results...)
	merged = slices.DeleteFunc(merged, func(it *core.Item) bool { return rctx.Seen(it.ID) })
	merged, _ = filter.Apply(ctx, rctx, n.Filters, merged)

	maxTotal := n.MaxTotal
	if maxTotal <= 0 {
		maxTotal = core.DefaultMaxCandidates
	}
	if len(merged) > maxTotal {
		merged = merged[:maxTotal]
	}
	return merged, nil
}

// Merge 按参数顺序拼接多个列表并按 MovieID 去重，先出现者胜出。
func Merge(lists ...[]*core.Item) []*core.Item {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	seen := make(map[int64]struct{}, total)
	out := make([]*core.Item, 0, total)
	for _, l := range lists {
		for _, it := range l {
			if it == nil {
				continue
			}
			if _, ok := seen[it.ID]; ok {
				continue
			}
			seen[it.ID] = struct{}{}
			out = append(out, it)
		}
	}
	return out
}
