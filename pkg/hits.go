package flashfinder

// Hit is a single reconstructed light pulse on one optical channel.
// Hits are immutable once appended to a frame's hit list and are referred
// to by index everywhere downstream; the list is append-only while a
// frame is being processed, so indices stay valid.
type Hit struct {
	Channel     int
	PeakTime    float64 // relative to the trigger, µs
	PeakTimeAbs float64
	Frame       uint16
	Width       float64 // pulse duration, µs
	Area        float64
	Amplitude   float64
	PE          float64
	FastToTotal float64
}

// makeHit converts one pulse into a Hit. Pulses whose peak amplitude is
// below the hit threshold are dropped; the second return value reports
// whether a hit was produced.
func makeHit(hitThreshold float64, channel int, timeSlice uint32, frame uint16,
	pulse Pulse, clock OpticalClock, speSize float64) (Hit, bool) {

	if pulse.Peak < hitThreshold {
		return Hit{}, false
	}

	return Hit{
		Channel:     channel,
		PeakTime:    clock.TickToBeamTime(pulse.TMax, timeSlice, frame),
		PeakTimeAbs: clock.TickToTime(pulse.TMax, timeSlice, frame),
		Frame:       frame,
		Width:       (pulse.TEnd - pulse.TStart) * clock.TickPeriod,
		Area:        pulse.Area,
		Amplitude:   pulse.Peak,
		PE:          pulse.Peak / speSize,
		FastToTotal: 0,
	}, true
}
