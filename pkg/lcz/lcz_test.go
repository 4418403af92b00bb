package lcz

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCode_RoundTrip(t *testing.T) {
	for code := MinCode; code <= MaxCode; code++ {
		z := FromCode(code)
		assert.Equal(t, code, z.Code(), "code %d did not round-trip", code)
		assert.True(t, z.Known(), "code %d should be a standard class", code)
		assert.NotEmpty(t, z.FullName())
	}
}

func TestFromCode_Unrecognized(t *testing.T) {
	for _, code := range []int{-5, 0, 18, 42, 99, 255} {
		z := FromCode(code)
		assert.False(t, z.Known(), "code %d must not be a standard class", code)
		assert.Equal(t, code, z.Code())
		assert.Equal(t, fmt.Sprintf("Unknown (code %d)", code), z.FullName())
		assert.Equal(t, Rural, z.Category())
	}
}

func TestCategory_FixedTable(t *testing.T) {
	want := map[int]Category{
		1: Urban, 2: Urban, 3: Urban, 8: Urban, 10: Urban,
		4: Suburban, 5: Suburban, 6: Suburban, 7: Suburban,
		9: Rural, 11: Rural, 12: Rural, 13: Rural, 14: Rural,
		15: Rural, 16: Rural, 17: Rural,
	}
	require.Len(t, want, 17)

	for code, cat := range want {
		assert.Equal(t, cat, FromCode(code).Category(), "code %d", code)
	}
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "Urban", Urban.String())
	assert.Equal(t, "Suburban", Suburban.String())
	assert.Equal(t, "Rural", Rural.String())
}

func TestFullName_Samples(t *testing.T) {
	assert.Equal(t, "Compact high-rise", ZoneCompactHighRise.FullName())
	assert.Equal(t, "Open low-rise", ZoneOpenLowRise.FullName())
	assert.Equal(t, "Water", ZoneWater.FullName())
	assert.Equal(t, "Unknown (code 0)", ZoneNoSample.FullName())
}

func TestNoSampleSentinel(t *testing.T) {
	assert.False(t, ZoneNoSample.Known())
	assert.Equal(t, Rural, ZoneNoSample.Category())
}
