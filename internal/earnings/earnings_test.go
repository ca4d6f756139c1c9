package earnings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	assert.Equal(t, 50.0, Compute(10000, 5))
	assert.Equal(t, 0.0, Compute(0, 5))
	assert.Equal(t, 0.01, Compute(1, 5.5))
	assert.Equal(t, 2.5, Compute(500, 5))
}

func TestComputeRoundsHalfCents(t *testing.T) {
	// 12345 views at CPM 5 is 61.725, which rounds up
	assert.Equal(t, 61.73, Compute(12345, 5))
}

func TestComputeLargeViews(t *testing.T) {
	assert.Equal(t, 50000.0, Compute(10_000_000, 5))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.23, Round(1.234))
	assert.Equal(t, 1.24, Round(1.235000001))
	assert.Equal(t, 0.0, Round(0))
}
