package flashfinder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFinder(nChannels int, hitThreshold, flashThreshold float64) *FlashFinder {
	channelMap := make(map[uint16]int, nChannels)
	spe := make([]float64, nChannels)
	for i := 0; i < nChannels; i++ {
		channelMap[uint16(i)] = i
		spe[i] = 1.0
	}
	return &FlashFinder{
		Reco:       AlgoThreshold{PedSamples: 4, StartADC: 3, EndADC: 1},
		Geom:       DefaultGeometry(nChannels),
		Clock:      OpticalClock{TickPeriod: 1.0, FrameTicks: 1000, GateTicks: 0, TriggerTime: 0},
		ChannelMap: channelMap,
		SPE:        spe,
		Params: Params{
			BinWidth:       10,
			HitThreshold:   hitThreshold,
			FlashThreshold: flashThreshold,
			WidthTolerance: 10,
			TrigCoinc:      2.5,
		},
	}
}

// waveform with a single peak of the given amplitude after a flat pedestal.
func peakWaveform(amplitude int16) []int16 {
	return []int16{0, 0, 0, 0, amplitude, 0}
}

func TestRunCombinesNearbyHitsIntoOneFlash(t *testing.T) {
	finder := testFinder(4, 3, 6)

	// PE 5 and PE 3 peaks two ticks apart share an accumulator bin;
	// together they clear the flash threshold neither meets alone.
	digits := []RawDigit{
		{Channel: 0, Frame: 0, TimeSlice: 96, Waveform: peakWaveform(5)},
		{Channel: 1, Frame: 0, TimeSlice: 98, Waveform: peakWaveform(3)},
	}

	result := finder.Run(digits)

	require.Len(t, result.Hits, 2)
	require.Len(t, result.Flashes, 1)
	require.Len(t, result.HitsPerFlash, 1)
	assert.ElementsMatch(t, []int{0, 1}, result.HitsPerFlash[0])

	flash := result.Flashes[0]
	assert.InDelta(t, 8.0, flash.TotalPE(), 1e-12)
	assert.Equal(t, []float64{5, 3, 0, 0}, flash.PEPerChannel)
	assert.InDelta(t, 100.75, flash.Time, 1e-9, "PE-weighted mean of ticks 100 and 102")
}

func TestRunLoneDimHitYieldsNoFlash(t *testing.T) {
	finder := testFinder(4, 1, 6)

	digits := []RawDigit{
		{Channel: 0, Frame: 0, TimeSlice: 96, Waveform: peakWaveform(4)},
	}

	result := finder.Run(digits)

	assert.Len(t, result.Hits, 1, "the hit itself is reconstructed")
	assert.Empty(t, result.Flashes)
	assert.Empty(t, result.HitsPerFlash, "the hit appears in no association")
}

func TestRunSkipsUnknownChannels(t *testing.T) {
	finder := testFinder(4, 3, 6)

	digits := []RawDigit{
		{Channel: 99, Frame: 0, TimeSlice: 96, Waveform: peakWaveform(50)},
	}

	result := finder.Run(digits)
	assert.Empty(t, result.Hits)
	assert.Empty(t, result.Flashes)
}

func TestRunSkipsChannelsWithoutSPECalibration(t *testing.T) {
	finder := testFinder(4, 3, 6)
	finder.SPE[1] = 0

	// An uncalibrated channel would divide by zero and poison every
	// downstream PE sum with Inf; its digits are dropped instead.
	digits := []RawDigit{
		{Channel: 1, Frame: 0, TimeSlice: 96, Waveform: peakWaveform(50)},
		{Channel: 0, Frame: 0, TimeSlice: 98, Waveform: peakWaveform(8)},
	}

	result := finder.Run(digits)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, 0, result.Hits[0].Channel)
	for _, flash := range result.Flashes {
		assert.False(t, math.IsInf(flash.TotalPE(), 1))
	}
}

func TestRunSkipsOutOfRangeTimeSlices(t *testing.T) {
	finder := testFinder(4, 3, 6)

	digits := []RawDigit{
		{Channel: 0, Frame: 0, TimeSlice: 5000, Waveform: peakWaveform(50)},
	}

	result := finder.Run(digits)
	assert.Empty(t, result.Hits)
}

func TestRunMergesFramesWithRebasedAssociations(t *testing.T) {
	finder := testFinder(4, 3, 6)

	digits := []RawDigit{
		// Given out of frame order on purpose.
		{Channel: 1, Frame: 2, TimeSlice: 200, Waveform: peakWaveform(9)},
		{Channel: 0, Frame: 1, TimeSlice: 100, Waveform: peakWaveform(8)},
	}

	result := finder.Run(digits)

	require.Len(t, result.Hits, 2)
	require.Len(t, result.Flashes, 2)
	require.Len(t, result.HitsPerFlash, 2)

	// Frames are processed ascending; the second frame's association
	// indices are offset past the first frame's hits.
	assert.Equal(t, uint16(1), result.Hits[0].Frame)
	assert.Equal(t, uint16(2), result.Hits[1].Frame)
	assert.Equal(t, [][]int{{0}, {1}}, result.HitsPerFlash)
	assert.Equal(t, uint16(1), result.Flashes[0].Frame)
	assert.Equal(t, uint16(2), result.Flashes[1].Frame)
}

func TestRunHitsBelongToAtMostOneFlash(t *testing.T) {
	finder := testFinder(8, 3, 4)

	var digits []RawDigit
	for ch := 0; ch < 8; ch++ {
		digits = append(digits, RawDigit{
			Channel:   uint16(ch),
			Frame:     0,
			TimeSlice: uint32(90 + 3*ch),
			Waveform:  peakWaveform(int16(3 + ch)),
		})
	}

	result := finder.Run(digits)

	seen := make(map[int]int)
	for flash, hitIDs := range result.HitsPerFlash {
		for _, hitID := range hitIDs {
			owner, dup := seen[hitID]
			assert.False(t, dup, "hit %d claimed by flashes %d and %d", hitID, owner, flash)
			seen[hitID] = flash
		}
	}
}

func TestRunFlashPEMatchesItsHits(t *testing.T) {
	finder := testFinder(4, 3, 6)

	digits := []RawDigit{
		{Channel: 0, Frame: 0, TimeSlice: 96, Waveform: peakWaveform(5)},
		{Channel: 1, Frame: 0, TimeSlice: 98, Waveform: peakWaveform(3)},
		{Channel: 2, Frame: 0, TimeSlice: 400, Waveform: peakWaveform(7)},
	}

	result := finder.Run(digits)

	for i, flash := range result.Flashes {
		regathered := make([]float64, 4)
		for _, hitID := range result.HitsPerFlash[i] {
			hit := result.Hits[hitID]
			regathered[hit.Channel] += hit.PE
		}
		assert.Equal(t, regathered, flash.PEPerChannel, "flash %d", i)
	}
}
