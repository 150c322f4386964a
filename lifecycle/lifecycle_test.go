package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stayfront/frontdesk-engine/lifecycle"
)

func TestZeroValueIsIdle(t *testing.T) {
	var st lifecycle.State[int]
	assert.True(t, st.IsIdle())
	_, ok := st.Value()
	assert.False(t, ok)
	assert.Empty(t, st.Message())
}

func TestPayloadTravelsWithSuccessOnly(t *testing.T) {
	st := lifecycle.Succeeded(42)
	v, ok := st.Value()
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	st = lifecycle.Failed[int]("nope")
	assert.True(t, st.IsError())
	assert.Equal(t, "nope", st.Message())
	_, ok = st.Value()
	assert.False(t, ok)

	st = lifecycle.Loading[int]()
	assert.True(t, st.IsLoading())
	assert.Empty(t, st.Message())
}

func TestPhaseNames(t *testing.T) {
	assert.Equal(t, "idle", lifecycle.Idle[int]().Phase().String())
	assert.Equal(t, "loading", lifecycle.Loading[int]().Phase().String())
	assert.Equal(t, "success", lifecycle.Succeeded(1).Phase().String())
	assert.Equal(t, "error", lifecycle.Failed[int]("x").Phase().String())
}
