package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterStore_RefillsAndForgetsIdleKeys(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewLimiterStore(60, 5*time.Minute)
	s.now = func() time.Time { return now }

	for range 60 {
		assert.True(t, s.Allow("42"))
	}
	assert.False(t, s.Allow("42"))

	now = now.Add(time.Second)
	assert.True(t, s.Allow("42"), "one token per second at 60/min")
	assert.True(t, s.Allow("43"))
	assert.Equal(t, 2, s.Len())

	now = now.Add(10 * time.Minute)
	assert.True(t, s.Allow("43"))
	assert.Equal(t, 1, s.Len(), "idle key dropped")
}
