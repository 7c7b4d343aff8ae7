package flashfinder

// accumulator is a time-binned running PE sum used to locate candidate
// flash regions. Two instances cover each frame, the second offset by
// half a bin width, so a flash straddling one grid's bin boundary still
// lands whole in a bin of the other grid.
type accumulator struct {
	id       int // rank used by the assigner to break PE ties
	binWidth int
	offset   int // ticks, 0 or binWidth/2
	binned   []float64
	contrib  [][]int
	flagged  []int
}

func newAccumulator(id, nBins, binWidth, offset int) *accumulator {
	return &accumulator{
		id:       id,
		binWidth: binWidth,
		offset:   offset,
		binned:   make([]float64, nBins),
		contrib:  make([][]int, nBins),
	}
}

// binIndex maps a pulse peak tick to a bin of this accumulator's grid.
func (a *accumulator) binIndex(tMax float64, timeSlice uint32) int {
	return int((tMax + float64(timeSlice) + float64(a.offset)) / float64(a.binWidth))
}

// fill adds one hit's PE to a bin. Flagging is edge-triggered: the bin is
// recorded exactly once, when its sum first reaches the flash threshold,
// and never again as more PE lands in it.
func (a *accumulator) fill(bin, hitIndex int, pe, flashThreshold float64) {
	a.contrib[bin] = append(a.contrib[bin], hitIndex)
	a.binned[bin] += pe

	if a.binned[bin] >= flashThreshold && a.binned[bin]-pe < flashThreshold {
		a.flagged = append(a.flagged, bin)
	}
}
