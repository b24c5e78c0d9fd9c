package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(RecommendRequestsTotal.WithLabelValues(PathScored, OutcomeOK))
	RecordRequest(PathScored, OutcomeOK, time.Millisecond)
	after := testutil.ToFloat64(RecommendRequestsTotal.WithLabelValues(PathScored, OutcomeOK))
	assert.Equal(t, before+1, after)
}

func TestRecordColdStart(t *testing.T) {
	before := testutil.ToFloat64(ColdStartResolutionsTotal.WithLabelValues("exact"))
	RecordColdStart("exact")
	assert.Equal(t, before+1, testutil.ToFloat64(ColdStartResolutionsTotal.WithLabelValues("exact")))
}

func TestRecordFeatureFillAndRecallError(t *testing.T) {
	RecordFeatureFill("genre_overlap")
	RecordRecallError("popular")
	assert.GreaterOrEqual(t, testutil.ToFloat64(FeatureFillTotal.WithLabelValues("genre_overlap")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(RecallSourceErrorsTotal.WithLabelValues("popular")), 1.0)
}
