package model

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rushteam/movierec/feature"
)

// Spec 描述如何加载一个冻结的模型。
type Spec struct {
	// Kind 模型类型：lr / rpc
	Kind string `yaml:"kind" validate:"required,oneof=lr rpc"`
	// Path LR 模型 JSON 文件
	Path string `yaml:"path" validate:"required_if=Kind lr"`
	// Endpoint RPC 模型服务地址
	Endpoint string `yaml:"endpoint" validate:"required_if=Kind rpc"`
	// FeatureMeta 特征元数据文件，RPC 模型据此声明特征列；为空时使用默认 schema
	FeatureMeta string        `yaml:"feature_meta"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Provider 提供冻结的模型及其特征列顺序。
type Provider interface {
	Scorer(ctx context.Context) (Scorer, error)
}

// StaticProvider 直接返回内存中的模型。
type StaticProvider struct {
	S Scorer
}

func (p StaticProvider) Scorer(context.Context) (Scorer, error) { return p.S, nil }

// SpecProvider 按 Spec 加载模型。
type SpecProvider struct {
	Spec Spec
}

func (p SpecProvider) Scorer(context.Context) (Scorer, error) { return Open(p.Spec) }

// Open 按 Spec 加载模型。
func Open(spec Spec) (Scorer, error) {
	switch spec.Kind {
	case "lr":
		return LoadLRModel(spec.Path)
	case "rpc":
		features := slices.Clone(feature.DefaultSchema)
		if spec.FeatureMeta != "" {
			meta, err := feature.LoadFeatureMetadata(spec.FeatureMeta)
			if err != nil {
				return nil, err
			}
			features = meta.FeatureColumns
		}
		return NewRPCModel("rpc", spec.Endpoint, features, spec.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", spec.Kind)
	}
}
