package feature

// 特征列名。
const (
	UserAvgRating      = "user_avg_rating"
	UserRatingCount    = "user_rating_count"
	UserPositiveRate   = "user_positive_rate"
	UserTenureDays     = "user_tenure_days"
	ItemAvgRating      = "item_avg_rating"
	ItemRatingCount    = "item_rating_count"
	ItemPositiveRate   = "item_positive_rate"
	ItemTenureDays     = "item_tenure_days"
	UserRatingStd      = "user_rating_std"
	UserRatingMedian   = "user_rating_median"
	RatingDeviation    = "rating_deviation_from_user_avg"
	GenreCosine        = "genre_cosine_similarity"
	GenreOverlap       = "genre_overlap_count"
	MovieAgeYears      = "movie_age_years"
	IsRecentMovie      = "is_recent_movie"
	RatingRecency      = "rating_recency"
	ItemRatingCountLog = "item_rating_count_log"
	UserRatingCountLog = "user_rating_count_log"
	ItemPopularity     = "item_popularity_score"
	ItemPopularityLog  = "item_popularity_score_log"
)

// DefaultSchema 是训练与服务共用的默认特征列顺序。
// 模型声明了自己的特征列时以模型为准。
var DefaultSchema = []string{
	UserAvgRating,
	UserRatingCount,
	UserPositiveRate,
	UserTenureDays,
	ItemAvgRating,
	ItemRatingCount,
	ItemPositiveRate,
	ItemTenureDays,
	UserRatingStd,
	UserRatingMedian,
	RatingDeviation,
	GenreCosine,
	GenreOverlap,
	MovieAgeYears,
	IsRecentMovie,
	RatingRecency,
	ItemRatingCountLog,
	UserRatingCountLog,
	ItemPopularity,
	ItemPopularityLog,
}

// Project 按 schema 顺序构建特征向量。
// schema 中存在但 features 中没有的列填 0，并在 missing 中返回列名。
func Project(features map[string]float64, schema []string) (row []float64, missing []string) {
	row = make([]float64, len(schema))
	for i, col := range schema {
		if v, ok := features[col]; ok {
			row[i] = v
		} else {
			missing = append(missing, col)
		}
	}
	return row, missing
}
