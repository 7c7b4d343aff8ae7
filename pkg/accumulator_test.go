package flashfinder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinIndex(t *testing.T) {
	a := newAccumulator(1, 100, 10, 0)
	b := newAccumulator(2, 100, 10, 5)

	assert.Equal(t, 10, a.binIndex(2, 100))
	assert.Equal(t, 10, b.binIndex(2, 100))

	// Near a grid boundary the two accumulators disagree, which is the
	// point of the half-offset grid.
	assert.Equal(t, 0, a.binIndex(8, 0))
	assert.Equal(t, 1, b.binIndex(8, 0))
}

func TestFillFlagsBinOnce(t *testing.T) {
	a := newAccumulator(1, 10, 10, 0)

	a.fill(0, 0, 5.0, 6.0)
	assert.Empty(t, a.flagged, "below threshold, nothing flagged")

	a.fill(0, 1, 3.0, 6.0)
	assert.Equal(t, []int{0}, a.flagged, "crossing the threshold flags the bin")

	a.fill(0, 2, 2.0, 6.0)
	assert.Equal(t, []int{0}, a.flagged, "already flagged bin is not flagged again")

	assert.Equal(t, 10.0, a.binned[0])
	assert.Equal(t, []int{0, 1, 2}, a.contrib[0])
}

func TestFillSeparateBins(t *testing.T) {
	a := newAccumulator(1, 10, 10, 0)

	a.fill(2, 0, 7.0, 6.0)
	a.fill(4, 1, 9.0, 6.0)

	assert.Equal(t, []int{2, 4}, a.flagged)
	assert.Equal(t, []int{0}, a.contrib[2])
	assert.Equal(t, []int{1}, a.contrib[4])
}
