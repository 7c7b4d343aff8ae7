package flashfinder

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Flash is a reconstructed light-emission event: a burst of scintillation
// light aggregated over channels within a short time window. Immutable
// once built; the late-light filter may remove a flash but never edits it.
type Flash struct {
	Time         float64 // PE-weighted mean time relative to the trigger, µs
	TimeWidth    float64 // half the peak-to-peak spread of hit times, µs
	AbsTime      float64
	Frame        uint16
	PEPerChannel []float64 // summed PE indexed by optical channel
	InBeamFrame  bool
	OnBeamTime   bool
	FastToTotal  float64
	YCenter      float64
	YWidth       float64
	ZCenter      float64
	ZWidth       float64
	WireCenters  []float64 // per-plane PE-weighted nearest-wire centroid
	WireWidths   []float64
}

// TotalPE is the summed PE over all channels.
func (f *Flash) TotalPE() float64 {
	return floats.Sum(f.PEPerChannel)
}

// calculateWidth is the RMS-style spread used for the spatial and wire
// projections, computed from PE-weighted running sums.
func calculateWidth(sum, sumSquared, weightSum float64) float64 {
	return math.Sqrt(sumSquared*weightSum+sum*sum) / weightSum
}

// buildFlash aggregates one refined hit set into a Flash record. The set
// must carry strictly positive total PE; the threshold gates in the
// assigner and refiner guarantee it, so a zero here is an invariant
// violation and panics rather than producing NaN aggregates.
func buildFlash(hitIDs []int, hits []Hit, geom Geometry, trigFrame uint32,
	frame uint16, trigCoinc float64) Flash {

	nPlanes := geom.NPlanes()
	pes := make([]float64, geom.NChannels())
	sumw := make([]float64, nPlanes)
	sumw2 := make([]float64, nPlanes)

	times := make([]float64, 0, len(hitIDs))
	absTimes := make([]float64, 0, len(hitIDs))
	fastToTotals := make([]float64, 0, len(hitIDs))
	weights := make([]float64, 0, len(hitIDs))

	var sumy, sumy2, sumz, sumz2 float64
	minTime, maxTime := math.Inf(1), math.Inf(-1)

	for _, hitID := range hitIDs {
		hit := hits[hitID]
		pe := hit.PE

		times = append(times, hit.PeakTime)
		absTimes = append(absTimes, hit.PeakTimeAbs)
		fastToTotals = append(fastToTotals, hit.FastToTotal)
		weights = append(weights, pe)

		if hit.PeakTime > maxTime {
			maxTime = hit.PeakTime
		}
		if hit.PeakTime < minTime {
			minTime = hit.PeakTime
		}

		pes[hit.Channel] += pe

		xyz := geom.ChannelCenter(hit.Channel)
		for p := 0; p < nPlanes; p++ {
			w := float64(geom.NearestWire(xyz, p))
			sumw[p] += w * pe
			sumw2[p] += w * w * pe
		}
		sumy += xyz[1] * pe
		sumy2 += xyz[1] * xyz[1] * pe
		sumz += xyz[2] * pe
		sumz2 += xyz[2] * xyz[2] * pe
	}

	totalPE := floats.Sum(weights)
	if totalPE <= 0 {
		panic("flashfinder: flash candidate with non-positive total PE")
	}

	aveTime := stat.Mean(times, weights)

	wireCenters := make([]float64, nPlanes)
	wireWidths := make([]float64, nPlanes)
	for p := 0; p < nPlanes; p++ {
		wireCenters[p] = sumw[p] / totalPE
		wireWidths[p] = calculateWidth(sumw[p], sumw2[p], totalPE)
	}

	return Flash{
		Time:         aveTime,
		TimeWidth:    (maxTime - minTime) / 2,
		AbsTime:      stat.Mean(absTimes, weights),
		Frame:        frame,
		PEPerChannel: pes,
		InBeamFrame:  uint32(frame) == trigFrame,
		OnBeamTime:   math.Abs(aveTime) < trigCoinc,
		FastToTotal:  stat.Mean(fastToTotals, weights),
		YCenter:      sumy / totalPE,
		YWidth:       calculateWidth(sumy, sumy2, totalPE),
		ZCenter:      sumz / totalPE,
		ZWidth:       calculateWidth(sumz, sumz2, totalPE),
		WireCenters:  wireCenters,
		WireWidths:   wireWidths,
	}
}
