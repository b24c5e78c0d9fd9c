package coldstart

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/log"
	"github.com/rushteam/movierec/recall"
)

const (
	DefaultMinDemoCount   = 5
	DefaultDemoTopN       = 50
	DefaultMinRegionCount = 10
	DefaultRegionTopN     = 100
)

// Builder 从正样本评分（rating >= 4）离线构建冷启动画像。
//
// 每个分组内按电影聚合平均分和评分数，过滤掉评分数不足的电影，
// 以 avg × log1p(count) 打分，同分按 MovieID 升序，取前 N。
type Builder struct {
	MinDemoCount   int
	DemoTopN       int
	MinRegionCount int
	RegionTopN     int
	// Workers 并发构建分组的上限，<= 0 表示不限
	Workers int
}

// NewBuilder 返回使用默认阈值的 Builder。
func NewBuilder() *Builder {
	return &Builder{
		MinDemoCount:   DefaultMinDemoCount,
		DemoTopN:       DefaultDemoTopN,
		MinRegionCount: DefaultMinRegionCount,
		RegionTopN:     DefaultRegionTopN,
	}
}

type movieAgg struct {
	sum   float64
	count int
}

type group struct {
	movies map[int64]*movieAgg
	users  map[int64]struct{}
}

func newGroup() *group {
	return &group{movies: make(map[int64]*movieAgg), users: make(map[int64]struct{})}
}

func (g *group) add(r core.Rating) {
	a, ok := g.movies[r.MovieID]
	if !ok {
		a = &movieAgg{}
		g.movies[r.MovieID] = a
	}
	a.sum += r.Value
	a.count++
	g.users[r.UserID] = struct{}{}
}

// top 返回 count >= minCount 的电影中得分最高的 n 部。
func (g *group) top(minCount, n int) []int64 {
	type entry struct {
		id    int64
		score float64
	}
	entries := make([]entry, 0, len(g.movies))
	for id, a := range g.movies {
		if a.count < minCount {
			continue
		}
		avg := a.sum / float64(a.count)
		entries = append(entries, entry{id: id, score: avg * math.Log1p(float64(a.count))})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return lo.Map(entries, func(e entry, _ int) int64 { return e.id })
}

// Build 构建人口统计画像、大区画像和按评分数排序的热门兜底榜。
// 评分对应的用户不在 Users 表中时不参与分组。
func (b *Builder) Build(ctx context.Context, tables *core.Tables) (*Profiles, error) {
	demo := make(map[DemoKey]*group)
	regional := make(map[Region]*group)
	for _, r := range tables.Ratings() {
		if !r.Relevant() {
			continue
		}
		u, ok := tables.Users[r.UserID]
		if !ok {
			continue
		}
		key := DemoKey{Gender: u.Gender, Age: u.Age, Occupation: u.Occupation}
		g, ok := demo[key]
		if !ok {
			g = newGroup()
			demo[key] = g
		}
		g.add(r)

		region := RegionFromZip(u.ZipCode)
		rg, ok := regional[region]
		if !ok {
			rg = newGroup()
			regional[region] = rg
		}
		rg.add(r)
	}

	demoKeys := lo.Keys(demo)
	slices.SortFunc(demoKeys, compareDemoKey)
	regionKeys := lo.Keys(regional)
	slices.Sort(regionKeys)

	p := &Profiles{
		Demographic: make([]DemographicProfile, len(demoKeys)),
		Regional:    make([]RegionalProfile, len(regionKeys)),
	}

	eg, ctx := errgroup.WithContext(ctx)
	if b.Workers > 0 {
		eg.SetLimit(b.Workers)
	}
	for i, key := range demoKeys {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p.Demographic[i] = DemographicProfile{
				DemoKey:  key,
				MovieIDs: demo[key].top(b.MinDemoCount, b.DemoTopN),
			}
			return nil
		})
	}
	for i, region := range regionKeys {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			g := regional[region]
			p.Regional[i] = RegionalProfile{
				Region:   region,
				NUsers:   len(g.users),
				MovieIDs: g.top(b.MinRegionCount, b.RegionTopN),
			}
			return nil
		})
	}
	eg.Go(func() error {
		p.Popular = recall.NewPopularity(tables, recall.PopularityByCount, len(tables.ItemStats)).IDs()
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	p.index()

	log.Logger().Info("cold-start profiles built",
		zap.Int("demographic", len(p.Demographic)),
		zap.Int("regional", len(p.Regional)),
		zap.Int("popular", len(p.Popular)))
	return p, nil
}

func compareDemoKey(a, b DemoKey) int {
	if c := cmp.Compare(a.Gender, b.Gender); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Age, b.Age); c != 0 {
		return c
	}
	return cmp.Compare(a.Occupation, b.Occupation)
}
