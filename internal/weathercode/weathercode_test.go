package weathercode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var documented = []int{0, 1, 2, 3, 45, 48, 51, 53, 55, 56, 57, 61, 63, 65, 66, 67, 71, 73, 75, 77, 80, 81, 82, 85, 86, 95, 96, 99}

func TestDescribe_KnownCodes(t *testing.T) {
	for _, code := range documented {
		got := Describe(code)
		assert.NotEqual(t, Placeholder, got, "code %d", code)
		assert.NotEmpty(t, got, "code %d", code)
		assert.True(t, Known(code), "Known(%d)", code)
	}
	assert.Equal(t, "Partly cloudy", Describe(2))
	assert.Equal(t, "Clear sky", Describe(0))
}

func TestDescribe_UnknownCodes(t *testing.T) {
	known := make(map[int]bool, len(documented))
	for _, c := range documented {
		known[c] = true
	}
	for code := -10; code <= 120; code++ {
		if known[code] {
			continue
		}
		assert.Equal(t, Placeholder, Describe(code), "code %d", code)
		assert.False(t, Known(code), "Known(%d)", code)
	}
}

func TestCodes_SortedAndComplete(t *testing.T) {
	require.Equal(t, documented, Codes())
}

func TestIconFor_NightOnlyForClear(t *testing.T) {
	assert.Equal(t, iconClearDay, IconFor(0, true))
	assert.Equal(t, iconClearNight, IconFor(0, false))

	for code := -5; code <= 120; code++ {
		if code == 0 {
			continue
		}
		assert.NotEqual(t, iconClearNight, IconFor(code, false), "code %d", code)
		assert.Equal(t, IconFor(code, true), IconFor(code, false), "code %d ignores isDay", code)
	}
}

func TestIconFor_Families(t *testing.T) {
	tests := []struct {
		code int
		want Family
	}{
		{1, FamilyPartlyCloudy},
		{2, FamilyPartlyCloudy},
		{3, FamilyOvercast},
		{48, FamilyFog},
		{53, FamilyDrizzle},
		{57, FamilyFreezingRain},
		{63, FamilyRain},
		{67, FamilyFreezingRain},
		{77, FamilySnow},
		{86, FamilySnow},
		{81, FamilyShowers},
		{99, FamilyThunderstorm},
		{42, FamilyUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FamilyOf(tt.code), "FamilyOf(%d)", tt.code)
	}

	// every documented code lands in a real family with a real glyph
	for _, code := range documented {
		assert.NotEqual(t, FamilyUnknown, FamilyOf(code), "code %d", code)
		assert.NotEqual(t, iconUnknown, IconFor(code, true), "code %d", code)
	}
	assert.Equal(t, iconUnknown, IconFor(1000, true))
}
