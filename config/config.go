package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/movierec/coldstart"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/feature"
	"github.com/rushteam/movierec/model"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/recall"
)

// AppConfig 是 movierec 的完整配置。
type AppConfig struct {
	Data      DataConfig      `yaml:"data"`
	Recall    RecallConfig    `yaml:"recall"`
	Serving   ServingConfig   `yaml:"serving"`
	ColdStart ColdStartConfig `yaml:"coldstart"`

	// Model 只有打分路径需要，冷启动和画像构建可以不配置
	Model *model.Spec `yaml:"model"`

	// Pipeline 可选，为空时使用 DefaultPipeline
	Pipeline pipeline.Config `yaml:",inline"`
}

// DataConfig 描述参考表从哪里加载。Snapshot 与 Store 至少配置一个，同时配置时优先文件。
type DataConfig struct {
	// Snapshot JSON 快照文件路径
	Snapshot string `yaml:"snapshot" validate:"required_without=Store"`
	// Store 地址："memory" 或 redis://...
	Store       string `yaml:"store" validate:"required_without=Snapshot"`
	SnapshotKey string `yaml:"snapshot_key"`
}

type RecallConfig struct {
	PopularityBy  string        `yaml:"popularity_by" validate:"oneof=score count"`
	PopularTopN   int           `yaml:"popular_top_n" validate:"gt=0"`
	GenreTopN     int           `yaml:"genre_top_n" validate:"gt=0"`
	MaxCandidates int           `yaml:"max_candidates" validate:"gt=0"`
	Timeout       time.Duration `yaml:"timeout" validate:"gte=0"`
	ExcludeIDs    []int64       `yaml:"exclude_ids"`
	// Expr 候选过滤表达式，为 false 的候选被过滤
	Expr string `yaml:"expr"`
}

type ServingConfig struct {
	TopK          int `yaml:"top_k" validate:"gt=0"`
	ReferenceYear int `yaml:"reference_year" validate:"gt=0"`
}

type ColdStartConfig struct {
	MinDemoCount   int `yaml:"min_demo_count" validate:"gt=0"`
	DemoTopN       int `yaml:"demo_top_n" validate:"gt=0"`
	MinRegionCount int `yaml:"min_region_count" validate:"gt=0"`
	RegionTopN     int `yaml:"region_top_n" validate:"gt=0"`
	// Store 为空时画像在启动时现场构建
	Store string `yaml:"store"`
}

// DefaultModelTimeout 是 RPC 模型的默认超时
const DefaultModelTimeout = 5 * time.Second

// Default 返回全部取默认值的配置（数据源除外）。
func Default() *AppConfig {
	return &AppConfig{
		Recall: RecallConfig{
			PopularityBy:  string(recall.PopularityByScore),
			PopularTopN:   core.DefaultPopularTopN,
			GenreTopN:     core.DefaultGenreTopN,
			MaxCandidates: core.DefaultMaxCandidates,
		},
		Serving: ServingConfig{
			TopK:          core.DefaultTopK,
			ReferenceYear: feature.DefaultReferenceYear,
		},
		ColdStart: ColdStartConfig{
			MinDemoCount:   coldstart.DefaultMinDemoCount,
			DemoTopN:       coldstart.DefaultDemoTopN,
			MinRegionCount: coldstart.DefaultMinRegionCount,
			RegionTopN:     coldstart.DefaultRegionTopN,
		},
	}
}

// Load 读取 YAML 配置，未设置的字段取默认值，然后校验。
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 内容。
func Parse(data []byte) (*AppConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Model != nil && cfg.Model.Timeout == 0 {
		cfg.Model.Timeout = DefaultModelTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 按 struct tag 校验配置。
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ValidateDemographics 校验冷启动请求。
func ValidateDemographics(d core.Demographics) error {
	if err := validate.Struct(d); err != nil {
		return core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput, err.Error())
	}
	return nil
}

// Builder 返回按配置设置阈值的画像构建器。
func (c *ColdStartConfig) Builder() *coldstart.Builder {
	return &coldstart.Builder{
		MinDemoCount:   c.MinDemoCount,
		DemoTopN:       c.DemoTopN,
		MinRegionCount: c.MinRegionCount,
		RegionTopN:     c.RegionTopN,
	}
}
