package dataset

import (
	"github.com/rushteam/movierec/core"
)

const secondsPerDay = 86400.0

type agg struct {
	sum      float64
	count    int
	positive int
	first    int64
	last     int64
}

func (a *agg) add(r core.Rating) {
	if a.count == 0 || r.Timestamp < a.first {
		a.first = r.Timestamp
	}
	if a.count == 0 || r.Timestamp > a.last {
		a.last = r.Timestamp
	}
	a.sum += r.Value
	a.count++
	if r.Relevant() {
		a.positive++
	}
}

func (a *agg) avg() float64          { return a.sum / float64(a.count) }
func (a *agg) positiveRate() float64 { return float64(a.positive) / float64(a.count) }
func (a *agg) tenureDays() float64   { return float64(a.last-a.first) / secondsPerDay }

// BuildTables 从原始评分和电影元数据推导用户/物品统计与用户类型偏好，然后构建 Tables。
//
//   - avg_rating、rating_count、positive_rate（评分 >= 4 的比例）
//   - tenure_days = (最后一次评分时间 - 第一次评分时间) / 86400
//   - 类型偏好 = Σ genre_i × rating / Σ rating，评分电影不在目录中时该行的类型向量按全 0 计
func BuildTables(genreNames []string, movies []core.Movie, users []core.User, ratings []core.Rating) *core.Tables {
	in := core.TablesInput{
		GenreNames: genreNames,
		Movies:     movies,
		Users:      users,
		Ratings:    ratings,
	}
	in.UserStats, in.ItemStats, in.GenreProfiles = aggregate(genreNames, movies, ratings)
	return core.NewTables(in)
}

func aggregate(genreNames []string, movies []core.Movie, ratings []core.Rating) ([]core.UserStats, []core.ItemStats, []core.UserGenreProfile) {
	genres := make(map[int64][]float64, len(movies))
	for _, m := range movies {
		genres[m.MovieID] = m.Genres
	}

	byUser := make(map[int64]*agg)
	byItem := make(map[int64]*agg)
	weighted := make(map[int64][]float64)
	var userOrder, itemOrder []int64
	for _, r := range ratings {
		u, ok := byUser[r.UserID]
		if !ok {
			u = &agg{}
			byUser[r.UserID] = u
			userOrder = append(userOrder, r.UserID)
			weighted[r.UserID] = make([]float64, len(genreNames))
		}
		u.add(r)
		it, ok := byItem[r.MovieID]
		if !ok {
			it = &agg{}
			byItem[r.MovieID] = it
			itemOrder = append(itemOrder, r.MovieID)
		}
		it.add(r)

		w := weighted[r.UserID]
		for i, g := range genres[r.MovieID] {
			if i < len(w) {
				w[i] += g * r.Value
			}
		}
	}

	userStats := make([]core.UserStats, 0, len(userOrder))
	profiles := make([]core.UserGenreProfile, 0, len(userOrder))
	for _, uid := range userOrder {
		a := byUser[uid]
		userStats = append(userStats, core.UserStats{
			UserID:       uid,
			AvgRating:    a.avg(),
			RatingCount:  float64(a.count),
			PositiveRate: a.positiveRate(),
			TenureDays:   a.tenureDays(),
		})
		prefs := weighted[uid]
		if a.sum > 0 {
			for i := range prefs {
				prefs[i] /= a.sum
			}
		}
		profiles = append(profiles, core.UserGenreProfile{UserID: uid, Prefs: prefs})
	}

	itemStats := make([]core.ItemStats, 0, len(itemOrder))
	for _, mid := range itemOrder {
		a := byItem[mid]
		itemStats = append(itemStats, core.ItemStats{
			MovieID:      mid,
			AvgRating:    a.avg(),
			RatingCount:  float64(a.count),
			PositiveRate: a.positiveRate(),
			TenureDays:   a.tenureDays(),
		})
	}
	return userStats, itemStats, profiles
}
