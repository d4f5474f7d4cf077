// internal/types/ac_types_test.go

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSpeed(t *testing.T) {
	for _, raw := range []string{"HIGH", "high", " High "} {
		speed, ok := ParseSpeed(raw)
		assert.True(t, ok, "应当接受 %q", raw)
		assert.Equal(t, SpeedHigh, speed)
	}
	_, ok := ParseSpeed("TURBO")
	assert.False(t, ok)
	_, ok = ParseSpeed("")
	assert.False(t, ok)
}

func TestParseMode(t *testing.T) {
	mode, ok := ParseMode("cooling")
	assert.True(t, ok)
	assert.Equal(t, ModeCooling, mode)
	mode, ok = ParseMode(" HEATING ")
	assert.True(t, ok)
	assert.Equal(t, ModeHeating, mode)
	_, ok = ParseMode("AUTO")
	assert.False(t, ok)
}

func TestSpeedPriority(t *testing.T) {
	assert.Greater(t, SpeedHigh.Priority(), SpeedMedium.Priority())
	assert.Greater(t, SpeedMedium.Priority(), SpeedLow.Priority())
	assert.Equal(t, 0, Speed("").Priority())
}

func TestTempRangeContains(t *testing.T) {
	r := TempRange{Min: 18, Max: 28}
	assert.True(t, r.Contains(18), "下边界含")
	assert.True(t, r.Contains(28), "上边界含")
	assert.True(t, r.Contains(22.5))
	assert.False(t, r.Contains(17.9))
	assert.False(t, r.Contains(28.1))
}
