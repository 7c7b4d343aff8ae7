package flashfinder

// OpticalClock converts optical readout ticks into physical times.
// Times are in microseconds; a tick is one ADC sample. Waveforms start at
// a time slice, a tick offset from the beginning of their readout frame.
type OpticalClock struct {
	TickPeriod  float64 // µs per tick
	FrameTicks  uint32  // ticks per readout frame
	GateTicks   uint32  // extra ticks past the frame end covered by the beam gate
	TriggerTime float64 // beam gate opening, µs from run start
}

// TickToTime returns the absolute time of a tick within a waveform.
func (c OpticalClock) TickToTime(tick float64, timeSlice uint32, frame uint16) float64 {
	return (float64(frame)*float64(c.FrameTicks) + float64(timeSlice) + tick) * c.TickPeriod
}

// TickToBeamTime returns the time of a tick relative to the trigger.
func (c OpticalClock) TickToBeamTime(tick float64, timeSlice uint32, frame uint16) float64 {
	return c.TickToTime(tick, timeSlice, frame) - c.TriggerTime
}

// FrameOf returns the frame number containing the given absolute time.
func (c OpticalClock) FrameOf(time float64) uint32 {
	return uint32(time / (float64(c.FrameTicks) * c.TickPeriod))
}

// TriggerFrame returns the frame containing the beam gate opening.
func (c OpticalClock) TriggerFrame() uint32 {
	return c.FrameOf(c.TriggerTime)
}

// AccumulatorBins returns the number of bins needed to cover one frame
// plus the beam gate slack past its end.
func (c OpticalClock) AccumulatorBins(binWidth int) int {
	return (int(c.FrameTicks) + int(c.GateTicks) + binWidth) / binWidth
}
