package flashfinder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeHit(t *testing.T) {
	clock := OpticalClock{TickPeriod: 0.5, FrameTicks: 100, TriggerTime: 10}
	pulse := Pulse{TStart: 2, TEnd: 8, TMax: 4, Peak: 30, Area: 99}

	hit, ok := makeHit(5, 3, 10, 2, pulse, clock, 15)
	require.True(t, ok)

	assert.Equal(t, 3, hit.Channel)
	assert.Equal(t, uint16(2), hit.Frame)
	assert.InDelta(t, 107.0, hit.PeakTimeAbs, 1e-12, "(2*100+10+4)*0.5")
	assert.InDelta(t, 97.0, hit.PeakTime, 1e-12, "absolute time minus trigger")
	assert.InDelta(t, 3.0, hit.Width, 1e-12, "(8-2)*0.5")
	assert.InDelta(t, 2.0, hit.PE, 1e-12, "peak over SPE size")
	assert.Equal(t, 30.0, hit.Amplitude)
	assert.Equal(t, 99.0, hit.Area)
}

func TestMakeHitDropsBelowThreshold(t *testing.T) {
	clock := OpticalClock{TickPeriod: 0.5, FrameTicks: 100}
	pulse := Pulse{TMax: 4, Peak: 2}

	_, ok := makeHit(3, 0, 0, 0, pulse, clock, 1)
	assert.False(t, ok)
}

func TestClockConversions(t *testing.T) {
	clock := OpticalClock{
		TickPeriod:  0.015625,
		FrameTicks:  102400,
		GateTicks:   3000,
		TriggerTime: 1600.0,
	}

	// One frame spans 1600 µs, so the trigger sits in frame 1.
	assert.Equal(t, uint32(0), clock.FrameOf(800))
	assert.Equal(t, uint32(1), clock.TriggerFrame())

	assert.InDelta(t, 1600.0, clock.TickToTime(0, 0, 1), 1e-9)
	assert.InDelta(t, 0.0, clock.TickToBeamTime(0, 0, 1), 1e-9)

	assert.Equal(t, 1647, clock.AccumulatorBins(64))
}
