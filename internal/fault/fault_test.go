package fault

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := New(Transform, "bad literal")
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, Transform, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestWrap_NilIsNil(t *testing.T) {
	assert.NoError(t, Wrap(Load, nil, "ignored"))
	assert.NoError(t, Wrapf(Load, nil, "ignored %d", 1))
}

func TestWrap_KeepsOriginalKind(t *testing.T) {
	inner := New(Transform, "bad literal")
	outer := Wrap(Load, inner, "while loading")

	kind, ok := KindOf(outer)
	require.True(t, ok)
	assert.Equal(t, Transform, kind, "the first tag wins through re-wrapping")
}

func TestWrap_TagsUntaggedError(t *testing.T) {
	err := Wrapf(Extract, errors.New("no such file"), "open %s", "data.csv")

	assert.True(t, IsKind(err, Extract))
	assert.False(t, IsKind(err, Load))
	assert.Contains(t, err.Error(), "extract:")
	assert.Contains(t, err.Error(), "open data.csv")
}

func TestError_UnwrapChain(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(Schema, cause, "inspecting table")
	assert.ErrorIs(t, err, cause)
}
