package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		verified, total, want int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 2, 50},
		{1, 8, 13}, // 12.5 rounds up
		{1, 200, 1},
		{199, 200, 100},
		{1, 201, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.verified, tt.total), "%d/%d", tt.verified, tt.total)
	}
}

func TestProgress_EmptyAndComplete(t *testing.T) {
	empty := New(0, 0)
	assert.True(t, empty.IsEmpty)
	assert.Equal(t, 0, empty.Percentage)
	assert.False(t, empty.Complete())

	assert.False(t, New(1, 2).Complete())
	assert.True(t, New(2, 2).Complete())
	assert.False(t, Progress{}.Complete())
}

func TestProgress_AddSumsBeforeDividing(t *testing.T) {
	// 1/1 and 0/3 average to 50% but sum to 1/4
	got := New(1, 1).Add(New(0, 3))
	assert.Equal(t, Progress{Verified: 1, Total: 4, Percentage: 25}, got)

	// adding an empty child changes nothing
	assert.Equal(t, New(2, 3), New(2, 3).Add(New(0, 0)))
}
