package flashfinder

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"
)

// Params are the domain-tuned scalars supplied by the caller. None of
// them are learned or auto-tuned.
type Params struct {
	BinWidth       int     // accumulator bin width, ticks
	HitThreshold   float64 // minimum pulse peak amplitude, ADC
	FlashThreshold float64 // minimum flash PE
	WidthTolerance float64 // refinement time-width tolerance
	TrigCoinc      float64 // beam coincidence window, µs
}

// FrameResult holds one frame's reconstruction products. Hit indices in
// HitsPerFlash are local to Hits; the caller applies an offset when
// merging frames, never the frame algorithms themselves.
type FrameResult struct {
	Frame        uint16
	Hits         []Hit
	Flashes      []Flash
	HitsPerFlash [][]int
}

// Result is one processing unit's output: every frame's hits and flashes
// merged in frame order, with the association table rebased onto the
// merged hit list.
type Result struct {
	Hits         []Hit
	Flashes      []Flash
	HitsPerFlash [][]int
}

func (r *Result) merge(fr FrameResult) {
	offset := len(r.Hits)
	r.Hits = append(r.Hits, fr.Hits...)
	r.Flashes = append(r.Flashes, fr.Flashes...)
	for _, hitIDs := range fr.HitsPerFlash {
		rebased := make([]int, len(hitIDs))
		for i, hitID := range hitIDs {
			rebased[i] = hitID + offset
		}
		r.HitsPerFlash = append(r.HitsPerFlash, rebased)
	}
}

// FlashFinder runs the flash reconstruction chain over raw digits using
// the supplied detector services. The services are read-only; one
// FlashFinder may serve concurrent ProcessFrame calls as long as each
// call gets its own digit slice.
type FlashFinder struct {
	Reco       PulseReco
	Geom       Geometry
	Clock      OpticalClock
	ChannelMap map[uint16]int // raw electronics channel -> optical channel
	SPE        []float64      // single-photoelectron size per optical channel
	Params     Params
}

// Run processes all frames present in the digit stream, in ascending
// frame order, and merges their products.
func (ff *FlashFinder) Run(digits []RawDigit) Result {
	byFrame := make(map[uint16][]RawDigit)
	for _, digit := range digits {
		byFrame[digit.Frame] = append(byFrame[digit.Frame], digit)
	}

	frames := maps.Keys(byFrame)
	sort.Slice(frames, func(i, j int) bool { return frames[i] < frames[j] })

	var result Result
	for _, frame := range frames {
		result.merge(ff.ProcessFrame(frame, byFrame[frame]))
	}
	return result
}

// ProcessFrame reconstructs one readout frame in isolation: hits are
// built and binned into the two offset accumulators, flagged bins are
// claimed into coarse flashes by descending size, coarse flashes are
// refined by time-width compatibility, refined sets become flash
// records, and late light is removed. All state is frame-private.
func (ff *FlashFinder) ProcessFrame(frame uint16, digits []RawDigit) FrameResult {
	nBins := ff.Clock.AccumulatorBins(ff.Params.BinWidth)
	accums := []*accumulator{
		newAccumulator(1, nBins, ff.Params.BinWidth, 0),
		newAccumulator(2, nBins, ff.Params.BinWidth, ff.Params.BinWidth/2),
	}

	var hits []Hit
	for _, digit := range digits {
		channel, ok := ff.ChannelMap[digit.Channel]
		if !ok || channel < 0 || channel >= ff.Geom.NChannels() || channel >= len(ff.SPE) {
			logger.Error(fmt.Sprintf("unrecognized channel number %d, ignoring digit", digit.Channel))
			continue
		}
		if ff.SPE[channel] <= 0 {
			logger.Error(fmt.Sprintf("channel %d has no SPE calibration, ignoring digit", digit.Channel))
			continue
		}
		if digit.TimeSlice > ff.Clock.FrameTicks {
			logger.Error(fmt.Sprintf("time slice %d is outside the countable region, skipping", digit.TimeSlice))
			continue
		}

		for _, pulse := range ff.Reco.Reconstruct(digit.Waveform) {
			hit, ok := makeHit(ff.Params.HitThreshold, channel, digit.TimeSlice, frame,
				pulse, ff.Clock, ff.SPE[channel])
			if !ok {
				continue
			}
			hits = append(hits, hit)
			hitIndex := len(hits) - 1

			for _, acc := range accums {
				bin := acc.binIndex(pulse.TMax, digit.TimeSlice)
				if bin < 0 || bin >= len(acc.binned) {
					logger.Error(fmt.Sprintf("pulse at tick %.1f of slice %d falls outside accumulator %d, skipping",
						pulse.TMax, digit.TimeSlice, acc.id))
					continue
				}
				acc.fill(bin, hitIndex, hit.PE, ff.Params.FlashThreshold)
			}
		}
	}

	own := NewOwnership(len(hits))
	hitsPerFlash := assignHitsToFlashes(accums, hits, ff.Params.FlashThreshold, own)

	var refined [][]int
	for _, coarse := range hitsPerFlash {
		refineFlash(coarse, hits, ff.Params.WidthTolerance, ff.Params.FlashThreshold, &refined)
	}

	flashes := make([]Flash, 0, len(refined))
	trigFrame := ff.Clock.TriggerFrame()
	for _, hitIDs := range refined {
		flashes = append(flashes, buildFlash(hitIDs, hits, ff.Geom, trigFrame, frame, ff.Params.TrigCoinc))
	}

	flashes, refined = removeLateLight(flashes, refined)

	if configuration.Verbosity > 1 {
		reportOnBeamFlashes(flashes)
	}

	return FrameResult{Frame: frame, Hits: hits, Flashes: flashes, HitsPerFlash: refined}
}

// reportOnBeamFlashes logs flashes in beam coincidence.
func reportOnBeamFlashes(flashes []Flash) {
	for _, flash := range flashes {
		if flash.OnBeamTime {
			message := fmt.Sprintf("on-beam flash at time %.3f with total PE %.1f", flash.Time, flash.TotalPE())
			logger.Info(message, "frame")
		}
	}
}
