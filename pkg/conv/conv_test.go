package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigGetInt(t *testing.T) {
	m := map[string]any{"a": 3, "b": 4.0, "c": "x"}
	assert.Equal(t, 3, ConfigGetInt(m, "a", 0))
	assert.Equal(t, 4, ConfigGetInt(m, "b", 0))
	assert.Equal(t, 7, ConfigGetInt(m, "c", 7))
	assert.Equal(t, 9, ConfigGetInt(nil, "a", 9))
}

func TestConfigGet(t *testing.T) {
	m := map[string]any{"by": "count"}
	assert.Equal(t, "count", ConfigGet(m, "by", "score"))
	assert.Equal(t, "score", ConfigGet(m, "missing", "score"))
	assert.Equal(t, false, ConfigGet(m, "by", false))
}

func TestSliceAnyToInt64(t *testing.T) {
	assert.Equal(t, []int64{1, 2}, SliceAnyToInt64([]any{1, 2.0, struct{}{}}))
	assert.Equal(t, []int64{7}, SliceAnyToInt64([]int64{7}))
	assert.Nil(t, SliceAnyToInt64("1"))
}
