package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rushteam/movierec/coldstart"
	"github.com/rushteam/movierec/config"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/log"
	"github.com/rushteam/movierec/pkg/metrics"
	"github.com/rushteam/movierec/pkg/utils"
)

// LabelRequestID 是请求 id 在 RecommendContext.Labels 中的 key
const LabelRequestID = "request_id"

// Service 提供两个推荐入口：已知用户的打分推荐与新用户的冷启动推荐。
// 参考表、模型和画像在构建后只读，Service 可被任意多个请求并发调用。
type Service struct {
	tables    *core.Tables
	pipeline  *pipeline.Pipeline
	coldStart *coldstart.Handler
}

// NewService 创建 Service。p 为 nil 时打分入口不可用，cs 为 nil 时冷启动入口不可用。
func NewService(tables *core.Tables, p *pipeline.Pipeline, cs *coldstart.Handler) *Service {
	return &Service{tables: tables, pipeline: p, coldStart: cs}
}

// Recommend 为已知用户返回按分数降序的前 topK 部电影，topK <= 0 时使用默认值。
//
// 用户不在 UserStats 中时返回 core.ErrUnknownUser，不会进入打分流程；
// 排除已评分电影后候选为空时返回 core.ErrNoCandidates，不做兜底填充。
func (s *Service) Recommend(ctx context.Context, userID int64, topK int) (recs []core.Recommendation, err error) {
	start := time.Now()
	requestID := uuid.NewString()
	logger := log.RequestLogger(requestID).With(zap.Int64("user_id", userID))
	defer func() {
		metrics.RecordRequest(metrics.PathScored, outcome(err), time.Since(start))
	}()

	if s.pipeline == nil {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeNotSupported, "recommend: no scoring pipeline configured")
	}
	if _, ok := s.tables.UserStats[userID]; !ok {
		logger.Debug("unknown user")
		return nil, fmt.Errorf("user %d: %w", userID, core.ErrUnknownUser)
	}

	rctx := core.NewRecommendContext(s.tables, userID, topK)
	rctx.PutLabel(LabelRequestID, utils.Label{Value: requestID, Source: "recommend"})
	items, err := s.pipeline.Run(ctx, rctx, nil)
	if err != nil {
		logger.Error("pipeline failed", zap.Error(err))
		return nil, err
	}
	if len(items) == 0 {
		logger.Info("no candidates", zap.Int("history", rctx.History.Cardinality()))
		return nil, fmt.Errorf("user %d: %w", userID, core.ErrNoCandidates)
	}

	recs = make([]core.Recommendation, 0, len(items))
	for _, it := range items {
		rec := s.tables.Describe(it.ID)
		score := it.Score
		rec.Score = &score
		rec.Source = it.Source()
		recs = append(recs, rec)
	}
	logger.Debug("recommended", zap.Int("count", len(recs)), zap.Duration("took", time.Since(start)))
	return recs, nil
}

// RecommendColdStart 为没有评分历史的新用户返回推荐，结果不带分数。
// 只要目录中有被评分过的电影，返回列表就不为空。
func (s *Service) RecommendColdStart(ctx context.Context, d core.Demographics, topK int) (recs []core.Recommendation, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordRequest(metrics.PathColdStart, outcome(err), time.Since(start))
	}()

	if s.coldStart == nil {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeNotSupported, "recommend: cold-start profiles not loaded")
	}
	if err := config.ValidateDemographics(d); err != nil {
		return nil, err
	}
	res := s.coldStart.Resolve(ctx, d, topK)
	recs = make([]core.Recommendation, 0, len(res.MovieIDs))
	for _, id := range res.MovieIDs {
		rec := s.tables.Describe(id)
		rec.Source = string(res.Stage)
		recs = append(recs, rec)
	}
	return recs, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case core.IsNotFound(err):
		return metrics.OutcomeUnknownUser
	case core.IsNoCandidates(err):
		return metrics.OutcomeNoCandidates
	default:
		return metrics.OutcomeError
	}
}
