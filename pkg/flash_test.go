package flashfinder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateWidth(t *testing.T) {
	// sqrt(sum2*W + sum^2) / W
	got := calculateWidth(3.6, 2.16, 8)
	assert.InDelta(t, math.Sqrt(2.16*8+3.6*3.6)/8, got, 1e-12)
}

func TestBuildFlashAggregates(t *testing.T) {
	geom := DefaultGeometry(4)
	hits := []Hit{
		{Channel: 0, PeakTime: 1, PeakTimeAbs: 101, Width: 0.5, PE: 2, Frame: 0},
		{Channel: 2, PeakTime: 3, PeakTimeAbs: 103, Width: 0.5, PE: 6, Frame: 0},
	}

	flash := buildFlash([]int{0, 1}, hits, geom, 0, 0, 2.5)

	assert.InDelta(t, 2.5, flash.Time, 1e-12, "PE-weighted mean time")
	assert.InDelta(t, 1.0, flash.TimeWidth, 1e-12, "half the peak-to-peak spread")
	assert.InDelta(t, 102.5, flash.AbsTime, 1e-12)
	assert.Equal(t, []float64{2, 0, 6, 0}, flash.PEPerChannel)
	assert.InDelta(t, 8.0, flash.TotalPE(), 1e-12)

	// Channels sit at y=0, z = 0.3*channel.
	assert.InDelta(t, 0.0, flash.YCenter, 1e-12)
	assert.InDelta(t, 0.45, flash.ZCenter, 1e-12)
	assert.InDelta(t, math.Sqrt(2.16*8+3.6*3.6)/8, flash.ZWidth, 1e-12)

	// One wire plane with pitch equal to channel spacing: nearest wires
	// are 0 and 2.
	require.Len(t, flash.WireCenters, 1)
	assert.InDelta(t, 1.5, flash.WireCenters[0], 1e-12)
	assert.InDelta(t, math.Sqrt(24*8+144)/8, flash.WireWidths[0], 1e-12)

	assert.True(t, flash.InBeamFrame, "frame matches trigger frame")
	assert.False(t, flash.OnBeamTime, "|2.5| is not strictly inside 2.5")
}

func TestBuildFlashBeamCoincidence(t *testing.T) {
	geom := DefaultGeometry(2)
	hits := []Hit{{Channel: 0, PeakTime: 1, Width: 0.5, PE: 4, Frame: 3}}

	flash := buildFlash([]int{0}, hits, geom, 2, 3, 2.5)
	assert.False(t, flash.InBeamFrame)
	assert.True(t, flash.OnBeamTime)
	assert.Equal(t, uint16(3), flash.Frame)
}

func TestBuildFlashPanicsOnZeroPE(t *testing.T) {
	geom := DefaultGeometry(2)
	hits := []Hit{{Channel: 0, PeakTime: 1, Width: 0.5, PE: 0}}

	assert.Panics(t, func() {
		buildFlash([]int{0}, hits, geom, 0, 0, 2.5)
	})
}

func TestFlashPEConsistency(t *testing.T) {
	// Regathering the hits behind a flash reproduces its per-channel PE.
	geom := DefaultGeometry(4)
	hits := []Hit{
		{Channel: 1, PeakTime: 1, Width: 0.5, PE: 2.5},
		{Channel: 1, PeakTime: 1.2, Width: 0.5, PE: 1.5},
		{Channel: 3, PeakTime: 0.9, Width: 0.5, PE: 4},
	}
	hitIDs := []int{0, 1, 2}

	flash := buildFlash(hitIDs, hits, geom, 0, 0, 2.5)

	regathered := make([]float64, geom.NChannels())
	for _, id := range hitIDs {
		regathered[hits[id].Channel] += hits[id].PE
	}
	assert.Equal(t, regathered, flash.PEPerChannel)
}
