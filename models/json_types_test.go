package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUintSet(t *testing.T) {
	t.Run("add allocates lazily", func(t *testing.T) {
		var s UintSet
		s.Add(3)
		s.Add(3)
		s.Add(7)
		assert.Len(t, s, 2)
		assert.True(t, s.Contains(3))
		assert.False(t, s.Contains(4))
	})

	t.Run("round trips through the driver value", func(t *testing.T) {
		var s UintSet
		s.Add(1)
		s.Add(9)

		v, err := s.Value()
		require.NoError(t, err)

		var out UintSet
		require.NoError(t, out.Scan(v))
		assert.Equal(t, s, out)
	})

	t.Run("scan tolerates nil and empty columns", func(t *testing.T) {
		var s UintSet
		require.NoError(t, s.Scan(nil))
		require.NoError(t, s.Scan([]byte{}))
		assert.Empty(t, s)
	})
}

func TestStringIntMapScan(t *testing.T) {
	var m StringIntMap
	require.NoError(t, m.Scan(`{"2026-03":4}`))
	assert.Equal(t, 4, m["2026-03"])
}

func TestTempleValid(t *testing.T) {
	temple := Temple{CheckInRadius: 100, BlessPoints: 10}
	assert.True(t, temple.Valid())

	temple.CheckInRadius = 0
	assert.False(t, temple.Valid())

	temple.CheckInRadius = 100
	temple.BlessPoints = -1
	assert.False(t, temple.Valid())
}

func TestCheckInTypeMultiplier(t *testing.T) {
	tests := []struct {
		kind CheckInType
		mult float64
	}{
		{CheckInNormal, 1.0},
		{CheckInPrayer, 1.5},
		{CheckInFestival, 2.0},
		{CheckInFirstVisit, 2.5},
		{CheckInConsecutive, 1.2},
		{CheckInType("unknown"), 1.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.mult, tt.kind.Multiplier(), string(tt.kind))
	}
}
