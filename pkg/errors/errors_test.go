package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrapf(ErrNotSupported, "surface genus of item #%d", 12)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "surface genus of item #12")
	assert.True(t, Is(err, ErrNotSupported))
	assert.False(t, Is(err, ErrInvalidFilter))
}

func TestMarkKeepsMessage(t *testing.T) {
	err := Mark(Newf("unknown filter type %q", "includ"), ErrInvalidFilter)
	assert.Equal(t, `unknown filter type "includ"`, err.Error())
	assert.True(t, Is(err, ErrInvalidFilter))
}

func TestSentinelsDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotSupported,
		ErrInvalidFilter,
		ErrInvalidConfig,
		ErrNothingToConvert,
		ErrNoGeometryProduced,
		ErrParse,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestHints(t *testing.T) {
	err := WithHint(ErrNothingToConvert, "check the --include/--exclude filters")
	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "check the --include/--exclude filters", hints[0])
	assert.True(t, Is(err, ErrNothingToConvert))
}
