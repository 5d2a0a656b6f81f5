package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.FixedZone("CET", 3600))
	clk := NewManual(start)

	assert.Equal(t, time.UTC, clk.Now().Location())
	assert.Equal(t, start.Truncate(time.Microsecond).UnixNano(), clk.Now().UnixNano())

	clk.Advance(90 * time.Second)
	assert.Equal(t, start.Truncate(time.Microsecond).Add(90*time.Second).UnixNano(), clk.Now().UnixNano())
}

func TestSystem(t *testing.T) {
	now := NewSystem().Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.Zero(t, now.Nanosecond()%1000)
}
