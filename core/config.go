package core

// 候选生成与选择的默认参数。
const (
	DefaultPopularTopN   = 100 // P：热门召回数量
	DefaultGenreTopN     = 150 // G：类型偏好召回数量
	DefaultMaxCandidates = 200 // N：合并后候选上限
	DefaultTopK          = 10  // K：最终返回数量
)

// CandidateConfig 是候选生成相关的配置接口，用于提供默认值。
type CandidateConfig interface {
	PopularTopN() int
	GenreTopN() int
	MaxCandidates() int
	TopK() int
}

// DefaultCandidateConfig 是默认的候选配置实现。
type DefaultCandidateConfig struct{}

func (DefaultCandidateConfig) PopularTopN() int   { return DefaultPopularTopN }
func (DefaultCandidateConfig) GenreTopN() int     { return DefaultGenreTopN }
func (DefaultCandidateConfig) MaxCandidates() int { return DefaultMaxCandidates }
func (DefaultCandidateConfig) TopK() int          { return DefaultTopK }
