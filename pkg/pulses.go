package flashfinder

// RawDigit is one channel's waveform within a readout frame.
type RawDigit struct {
	Channel   uint16 // raw electronics channel number
	Frame     uint16
	TimeSlice uint32 // tick offset of the waveform within the frame
	Waveform  []int16
}

// Pulse is a single reconstructed pulse on one waveform. Tick values are
// relative to the start of the waveform; Peak and Area are
// baseline-subtracted ADC quantities.
type Pulse struct {
	TStart float64
	TEnd   float64
	TMax   float64
	Peak   float64
	Area   float64
}

// PulseReco turns a raw waveform into reconstructed pulses.
// Implementations must be safe for concurrent callers.
type PulseReco interface {
	Reconstruct(waveform []int16) []Pulse
}

// AlgoThreshold is a simple threshold pulse finder: the pedestal is the
// mean of the leading PedSamples samples, a pulse opens when the
// subtracted signal reaches StartADC and closes when it drops below
// EndADC.
type AlgoThreshold struct {
	PedSamples int
	StartADC   float64
	EndADC     float64
}

func (a AlgoThreshold) Reconstruct(waveform []int16) []Pulse {
	if len(waveform) == 0 {
		return nil
	}

	nPed := a.PedSamples
	if nPed <= 0 || nPed > len(waveform) {
		nPed = len(waveform)
	}
	var pedSum float64
	for _, s := range waveform[:nPed] {
		pedSum += float64(s)
	}
	pedestal := pedSum / float64(nPed)

	var pulses []Pulse
	var current Pulse
	inPulse := false

	for i, s := range waveform {
		v := float64(s) - pedestal

		if !inPulse {
			if v >= a.StartADC {
				inPulse = true
				current = Pulse{
					TStart: float64(i),
					TMax:   float64(i),
					Peak:   v,
					Area:   v,
				}
			}
			continue
		}

		if v < a.EndADC {
			current.TEnd = float64(i)
			pulses = append(pulses, current)
			inPulse = false
			continue
		}

		current.Area += v
		if v > current.Peak {
			current.Peak = v
			current.TMax = float64(i)
		}
	}

	// Pulse still open at the end of the waveform
	if inPulse {
		current.TEnd = float64(len(waveform) - 1)
		pulses = append(pulses, current)
	}

	return pulses
}
