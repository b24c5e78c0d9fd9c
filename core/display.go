package core

import "strings"

// DefaultGenreLabel 是电影没有任何类型时展示的占位。
const DefaultGenreLabel = "Movie"

// GenreList 返回电影命中的类型名，顺序与 GenreNames 一致。
func (t *Tables) GenreList(m *Movie) []string {
	if m == nil {
		return nil
	}
	var out []string
	for i, v := range m.Genres {
		if v > 0 && i < len(t.GenreNames) {
			out = append(out, t.GenreNames[i])
		}
	}
	return out
}

// GenreString 以 "|" 连接命中的类型名，无类型时返回 "Movie"。
func (t *Tables) GenreString(m *Movie) string {
	genres := t.GenreList(m)
	if len(genres) == 0 {
		return DefaultGenreLabel
	}
	return strings.Join(genres, "|")
}

// Describe 组装展示元信息，不含分数。未知电影只带 MovieID。
func (t *Tables) Describe(movieID int64) Recommendation {
	rec := Recommendation{MovieID: movieID, Genres: DefaultGenreLabel}
	if m, ok := t.Movies[movieID]; ok {
		rec.Title = m.Title
		rec.ReleaseYear = m.ReleaseYear
		rec.Genres = t.GenreString(m)
	}
	if s, ok := t.ItemStats[movieID]; ok {
		rec.AvgRating = s.AvgRating
		rec.NumRatings = int(s.RatingCount)
	}
	return rec
}

// FillMeta 把展示元信息写入 Item.Meta，供过滤表达式与解释使用。
func (t *Tables) FillMeta(it *Item) {
	if it == nil {
		return
	}
	if it.Meta == nil {
		it.Meta = make(map[string]any)
	}
	rec := t.Describe(it.ID)
	it.Meta["title"] = rec.Title
	it.Meta["release_year"] = rec.ReleaseYear
	it.Meta["genres"] = t.GenreList(t.Movies[it.ID])
	it.Meta["avg_rating"] = rec.AvgRating
	it.Meta["num_ratings"] = rec.NumRatings
}
