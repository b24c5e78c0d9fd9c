package recall

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/movierec/core"
)

// MaterializeOptions 是离线批量物化候选集的参数。
type MaterializeOptions struct {
	PopularTopN  int
	GenreTopN    int
	PopularityBy PopularityBy
	// Workers 并发分区数，<= 0 时使用 GOMAXPROCS
	Workers int
}

// Materialize 离线物化所有用户的候选集：全体用户 × 热门前 P，并上每个用户的类型偏好候选。
// 按 (UserID, MovieID) 去重，同样排除用户已评分电影。
// 用户之间互不依赖，按用户分区并发计算，结果按 UserID 升序拼接。
func Materialize(ctx context.Context, tables *core.Tables, opts MaterializeOptions) ([]core.Candidate, error) {
	popular := NewPopularity(tables, opts.PopularityBy, opts.PopularTopN).IDs()
	genre := NewGenreAffinity(tables, opts.GenreTopN)

	users := tables.UserIDs()
	parts := make([][]core.Candidate, len(users))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, uid := range users {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			history := tables.History(uid)
			seen := make(map[int64]struct{}, len(popular)+genre.TopN)
			out := make([]core.Candidate, 0, len(popular)+genre.TopN)
			add := func(mid int64, source string) {
				if history.Contains(mid) {
					return
				}
				if _, ok := seen[mid]; ok {
					return
				}
				seen[mid] = struct{}{}
				out = append(out, core.Candidate{UserID: uid, MovieID: mid, Source: source})
			}
			for _, mid := range popular {
				add(mid, SourcePopularity)
			}
			for _, s := range genre.Rank(uid, func(id int64) bool { return history.Contains(id) }) {
				add(s.id, SourceGenre)
			}
			parts[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	all := make([]core.Candidate, 0, total)
	for _, p := range parts {
		all = append(all, p...)
	}
	return all, nil
}
