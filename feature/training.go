package feature

import (
	"go.uber.org/zap"

	"github.com/rushteam/movierec/core"
)

// TrainingSet 是训练/评估用的特征矩阵，一行对应一条评分。
type TrainingSet struct {
	Matrix  *core.FeatureMatrix
	UserIDs []int64
	Ratings []float64
	// Labels 是 relevance 标签：评分 >= 4 为 1
	Labels []float64
}

// AssembleTraining 为一批评分组装训练特征矩阵。
// 与服务时的区别只有 rating_recency：这里是本批时间戳的 min-max 归一化值，max == min 时为 0。
// movie_age_years 的中位数填充同样以本批为范围。
func (a *Assembler) AssembleTraining(ratings []core.Rating, schema []string) (*TrainingSet, error) {
	if len(schema) == 0 {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput, "feature: empty schema")
	}
	movieIDs := make([]int64, len(ratings))
	timestamps := make([]float64, len(ratings))
	for i, r := range ratings {
		movieIDs[i] = r.MovieID
		timestamps[i] = float64(r.Timestamp)
	}
	ages, agesOK := a.movieAges(movieIDs)
	recency := ComputeStatistics(timestamps)

	set := &TrainingSet{
		Matrix: &core.FeatureMatrix{
			Columns:  schema,
			MovieIDs: movieIDs,
			Rows:     make([][]float64, 0, len(ratings)),
		},
		UserIDs: make([]int64, 0, len(ratings)),
		Ratings: make([]float64, 0, len(ratings)),
		Labels:  make([]float64, 0, len(ratings)),
	}
	users := make(map[int64]userSide)
	missing := make(map[string]struct{})
	for i, r := range ratings {
		u, ok := users[r.UserID]
		if !ok {
			u = a.userSide(r.UserID)
			users[r.UserID] = u
		}
		f := a.rowFeatures(u, r.MovieID, ages[i], agesOK)
		f[RatingRecency] = recency.MinMax(timestamps[i])
		row, miss := Project(f, schema)
		for _, m := range miss {
			missing[m] = struct{}{}
		}
		label := 0.0
		if r.Relevant() {
			label = 1
		}
		set.Matrix.Rows = append(set.Matrix.Rows, row)
		set.UserIDs = append(set.UserIDs, r.UserID)
		set.Ratings = append(set.Ratings, r.Value)
		set.Labels = append(set.Labels, label)
	}
	a.reportMissing(missing, zap.Int("rows", len(ratings)))
	return set, nil
}
