package flashfinder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lateLightTestFlash(time, pe, width float64) Flash {
	return Flash{Time: time, TimeWidth: width, PEPerChannel: []float64{pe}}
}

func TestLateLightSignificance(t *testing.T) {
	// Afterglow hypothesis for a bright flash 5 µs earlier.
	hypPE := 100 * math.Exp(-5/1.6)
	got := lateLightSignificance(100, 0, 1, 0.5, 5, 1)
	assert.InDelta(t, (0.5-hypPE)/math.Sqrt(hypPE), got, 1e-9)

	// Pairs out of time order can never be flagged.
	assert.Equal(t, 1e6, lateLightSignificance(100, 5, 1, 0.5, 0, 1))
}

func TestLateLightSignificanceGrowsWithTimeGap(t *testing.T) {
	// With PE and width held fixed, the afterglow hypothesis decays with
	// the gap, so the significance must rise strictly and removal become
	// less likely the further apart the flashes are.
	previous := math.Inf(-1)
	for _, gap := range []float64{1, 2, 4, 6, 8, 10} {
		sig := lateLightSignificance(100, 0, 1, 5, gap, 1)
		assert.Greater(t, sig, previous, "gap %.0f", gap)
		previous = sig
	}
}

func TestLateLightLargerGapCrossesRemovalBoundary(t *testing.T) {
	// The same PE/width pair is afterglow 5 µs after a bright flash but
	// stands on its own 10 µs after it.
	near := []Flash{
		lateLightTestFlash(0, 100, 1),
		lateLightTestFlash(5, 5, 1),
	}
	flashes, hitsPerFlash := removeLateLight(near, [][]int{{0}, {1}})
	require.Len(t, flashes, 1)
	assert.Equal(t, [][]int{{0}}, hitsPerFlash)

	far := []Flash{
		lateLightTestFlash(0, 100, 1),
		lateLightTestFlash(10, 5, 1),
	}
	flashes, hitsPerFlash = removeLateLight(far, [][]int{{0}, {1}})
	require.Len(t, flashes, 2)
	assert.Equal(t, [][]int{{0}, {1}}, hitsPerFlash)
}

func TestLateLightDimAfterglowRemoved(t *testing.T) {
	flashes := []Flash{
		lateLightTestFlash(0, 100, 1),
		lateLightTestFlash(5, 0.5, 1),
	}
	hitsPerFlash := [][]int{{0}, {1}}

	flashes, hitsPerFlash = removeLateLight(flashes, hitsPerFlash)

	require.Len(t, flashes, 1)
	assert.Equal(t, 0.0, flashes[0].Time)
	assert.Equal(t, [][]int{{0}}, hitsPerFlash)
}

func TestLateLightBrightSecondFlashRetained(t *testing.T) {
	flashes := []Flash{
		lateLightTestFlash(0, 100, 1),
		lateLightTestFlash(5, 50, 1),
	}
	hitsPerFlash := [][]int{{0}, {1}}

	flashes, hitsPerFlash = removeLateLight(flashes, hitsPerFlash)

	require.Len(t, flashes, 2)
	assert.Equal(t, [][]int{{0}, {1}}, hitsPerFlash)
}

func TestLateLightRemovedFlashStillRemovesLaterOnes(t *testing.T) {
	// The middle flash is afterglow of the first. The third flash is
	// bright enough to survive the first flash's hypothesis, but its
	// narrow removed neighbor still explains it away. Removal decisions
	// use the full mark set, not just survivors.
	flashes := []Flash{
		lateLightTestFlash(0, 100, 1),
		lateLightTestFlash(5, 0.01, 0.001),
		lateLightTestFlash(5.5, 9, 1),
	}
	hitsPerFlash := [][]int{{0}, {1}, {2}}

	flashes, hitsPerFlash = removeLateLight(flashes, hitsPerFlash)

	require.Len(t, flashes, 1)
	assert.Equal(t, 0.0, flashes[0].Time)
	assert.Equal(t, [][]int{{0}}, hitsPerFlash)
}

func TestLateLightSortsByTimeKeepingAssocsPaired(t *testing.T) {
	// Flashes arrive unsorted; the filter reorders them by time and the
	// association lists must follow their flashes.
	flashes := []Flash{
		lateLightTestFlash(5, 50, 1),
		lateLightTestFlash(0, 100, 1),
	}
	hitsPerFlash := [][]int{{7, 8}, {1, 2}}

	flashes, hitsPerFlash = removeLateLight(flashes, hitsPerFlash)

	require.Len(t, flashes, 2)
	assert.Equal(t, 0.0, flashes[0].Time)
	assert.Equal(t, 5.0, flashes[1].Time)
	assert.Equal(t, [][]int{{1, 2}, {7, 8}}, hitsPerFlash)
}
