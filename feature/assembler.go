package feature

import (
	"math"

	"go.uber.org/zap"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/log"
	"github.com/rushteam/movierec/pkg/metrics"
)

// ServingRatingRecency 是服务时 rating_recency 的取值：请求时待预测的评分还没有时间戳。
// 训练时该列为批内 min-max 归一化的时间戳，两者不一致，保持原样，做特征一致性校验时需要排除该列。
const ServingRatingRecency = 0.5

const (
	// DefaultReferenceYear 计算 movie_age_years 的参考年份
	DefaultReferenceYear = 2003

	recentMovieYears   = 5
	emptyHistoryMedian = 3.0
)

// Assembler 把 (用户, 候选电影, 参考表) 转换为固定列顺序的数值特征矩阵。
// 只读参考表，不修改任何状态，可在并发请求间共享。
type Assembler struct {
	tables        *core.Tables
	referenceYear int
	logger        *zap.Logger
}

// AssemblerOption 配置 Assembler
type AssemblerOption func(*Assembler)

// WithReferenceYear 设置参考年份
func WithReferenceYear(year int) AssemblerOption {
	return func(a *Assembler) {
		if year > 0 {
			a.referenceYear = year
		}
	}
}

// WithLogger 设置 Logger，默认使用进程级 Logger
func WithLogger(logger *zap.Logger) AssemblerOption {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func NewAssembler(tables *core.Tables, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		tables:        tables,
		referenceYear: DefaultReferenceYear,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Assembler) getLogger() *zap.Logger {
	if a.logger != nil {
		return a.logger
	}
	return log.Logger()
}

// Assemble 为一个用户的候选列表组装服务时特征矩阵，每个候选一行，列顺序与 schema 一致。
func (a *Assembler) Assemble(userID int64, movieIDs []int64, schema []string) (*core.FeatureMatrix, error) {
	if len(schema) == 0 {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput, "feature: empty schema")
	}
	u := a.userSide(userID)
	ages, agesOK := a.movieAges(movieIDs)

	matrix := &core.FeatureMatrix{
		Columns:  schema,
		MovieIDs: make([]int64, 0, len(movieIDs)),
		Rows:     make([][]float64, 0, len(movieIDs)),
	}
	missing := make(map[string]struct{})
	for i, mid := range movieIDs {
		f := a.rowFeatures(u, mid, ages[i], agesOK)
		f[RatingRecency] = ServingRatingRecency
		row, miss := Project(f, schema)
		for _, m := range miss {
			missing[m] = struct{}{}
		}
		matrix.MovieIDs = append(matrix.MovieIDs, mid)
		matrix.Rows = append(matrix.Rows, row)
	}
	a.reportMissing(missing, zap.Int64("user_id", userID))
	return matrix, nil
}

// userSide 是一行特征中只依赖用户的部分，同一用户的多行共享。
type userSide struct {
	stats  core.UserStats
	std    float64
	median float64
	prefs  []float64
}

func (a *Assembler) userSide(userID int64) userSide {
	u := userSide{median: emptyHistoryMedian}
	if s, ok := a.tables.UserStats[userID]; ok {
		u.stats = *s
	}
	if history := a.tables.UserRatings(userID); len(history) > 0 {
		values := make([]float64, len(history))
		for i, r := range history {
			values[i] = r.Value
		}
		st := ComputeStatistics(values)
		u.std = st.Std
		u.median = st.Median
	}
	if p, ok := a.tables.GenreProfiles[userID]; ok {
		u.prefs = p.Prefs
	}
	return u
}

// movieAges 计算每行的 movie_age_years，上映年份未知的行用本批已知值的中位数填充。
// 本批没有任何已知年份时 ok 为 false。
func (a *Assembler) movieAges(movieIDs []int64) (ages []float64, ok bool) {
	ages = make([]float64, len(movieIDs))
	known := make([]float64, 0, len(movieIDs))
	for i, mid := range movieIDs {
		ages[i] = math.NaN()
		if m, found := a.tables.Movies[mid]; found && m.HasReleaseYear() {
			ages[i] = float64(a.referenceYear - m.ReleaseYear)
			known = append(known, ages[i])
		}
	}
	if len(known) == 0 {
		for i := range ages {
			ages[i] = 0
		}
		return ages, false
	}
	median := ComputeStatistics(known).Median
	for i := range ages {
		if math.IsNaN(ages[i]) {
			ages[i] = median
		}
	}
	return ages, true
}

// rowFeatures 计算一行除 rating_recency 外的全部特征。
func (a *Assembler) rowFeatures(u userSide, movieID int64, age float64, ageOK bool) map[string]float64 {
	var item core.ItemStats
	if s, ok := a.tables.ItemStats[movieID]; ok {
		item = *s
	}
	var genres []float64
	if m, ok := a.tables.Movies[movieID]; ok {
		genres = m.Genres
	}

	recent := 0.0
	if ageOK && age <= recentMovieYears {
		recent = 1
	}
	popularity := item.PopularityScore()

	return map[string]float64{
		UserAvgRating:      u.stats.AvgRating,
		UserRatingCount:    u.stats.RatingCount,
		UserPositiveRate:   u.stats.PositiveRate,
		UserTenureDays:     u.stats.TenureDays,
		ItemAvgRating:      item.AvgRating,
		ItemRatingCount:    item.RatingCount,
		ItemPositiveRate:   item.PositiveRate,
		ItemTenureDays:     item.TenureDays,
		UserRatingStd:      u.std,
		UserRatingMedian:   u.median,
		RatingDeviation:    item.AvgRating - u.stats.AvgRating,
		GenreCosine:        CosineSimilarity(u.prefs, genres),
		GenreOverlap:       float64(OverlapCount(u.prefs, genres)),
		MovieAgeYears:      age,
		IsRecentMovie:      recent,
		ItemRatingCountLog: math.Log1p(item.RatingCount),
		UserRatingCountLog: math.Log1p(u.stats.RatingCount),
		ItemPopularity:     popularity,
		ItemPopularityLog:  math.Log1p(popularity),
	}
}

// reportMissing 记录被零填充的特征列。零填充是有意的漂移容忍策略，必须可观测。
func (a *Assembler) reportMissing(missing map[string]struct{}, fields ...zap.Field) {
	if len(missing) == 0 {
		return
	}
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
		metrics.RecordFeatureFill(name)
	}
	a.getLogger().Warn("features missing from assembler output, filled with 0",
		append(fields, zap.Strings("features", names))...)
}
