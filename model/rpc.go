package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RPCModel 是通过 HTTP 调用外部模型服务的直接排序器（XGBRanker、TF Serving 等）。
type RPCModel struct {
	name     string
	Endpoint string // 例如 "http://localhost:8080/predict"
	Features []string
	Client   *http.Client
}

func NewRPCModel(name, endpoint string, features []string, timeout time.Duration) *RPCModel {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &RPCModel{
		name:     name,
		Endpoint: endpoint,
		Features: features,
		Client:   &http.Client{Timeout: timeout},
	}
}

func (m *RPCModel) Name() string { return m.name }

func (m *RPCModel) FeatureNames() []string { return m.Features }

// Predict 调用远程模型服务进行批量预测。
// 请求格式（JSON）：
//
//	{"feature_names": ["user_avg_rating", ...], "instances": [[4.1, 20, ...], ...]}
//
// 响应格式（JSON）：
//
//	{"scores": [0.85, 0.72, ...]}
func (m *RPCModel) Predict(ctx context.Context, rows [][]float64) ([]float64, error) {
	if len(rows) == 0 {
		return []float64{}, nil
	}
	body, err := json.Marshal(map[string]any{
		"feature_names": m.Features,
		"instances":     rows,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("rpc error: status=%d, read body failed: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("rpc error: status=%d, body=%s", resp.StatusCode, string(data))
	}

	var result struct {
		Scores []float64 `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Scores) != len(rows) {
		return nil, fmt.Errorf("response scores count mismatch: expected %d, got %d", len(rows), len(result.Scores))
	}
	return result.Scores, nil
}
