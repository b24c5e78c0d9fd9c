package feature

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
)

// FeatureMetadata 特征元数据，对应模型旁的 feature_meta.json
type FeatureMetadata struct {
	// FeatureColumns 特征列名列表（按顺序）
	FeatureColumns []string `json:"feature_columns"`
	// LabelColumn 标签列名
	LabelColumn string `json:"label_column,omitempty"`
	// ModelVersion 模型版本
	ModelVersion string `json:"model_version,omitempty"`
	// CreatedAt 创建时间
	CreatedAt string `json:"created_at,omitempty"`
}

// DefaultMetadata 返回默认 schema 的元数据。
func DefaultMetadata() *FeatureMetadata {
	return &FeatureMetadata{
		FeatureColumns: slices.Clone(DefaultSchema),
		LabelColumn:    "relevance",
	}
}

// LoadFeatureMetadata 从文件加载特征元数据
//
// 用法：
//
//	meta, err := feature.LoadFeatureMetadata("model/feature_meta.json")
//	if err != nil {
//	    return err
//	}
//	matrix, err := assembler.Assemble(userID, movieIDs, meta.FeatureColumns)
func LoadFeatureMetadata(path string) (*FeatureMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feature metadata: %w", err)
	}
	var meta FeatureMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse feature metadata: %w", err)
	}
	if len(meta.FeatureColumns) == 0 {
		return nil, fmt.Errorf("feature metadata %s: empty feature_columns", path)
	}
	return &meta, nil
}

// Save 把元数据写入文件
func (m *FeatureMetadata) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// GetMissingFeatures 返回缺失的特征列
func (m *FeatureMetadata) GetMissingFeatures(features map[string]float64) []string {
	var missing []string
	for _, col := range m.FeatureColumns {
		if _, ok := features[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// BuildFeatureVector 按 feature_columns 顺序构建特征向量，缺失值填充为 0.0
func (m *FeatureMetadata) BuildFeatureVector(features map[string]float64) []float64 {
	row, _ := Project(features, m.FeatureColumns)
	return row
}
