package flashfinder

import (
	"math"
	"sort"
)

const (
	// lateLightDecay is the slow scintillation decay constant in µs
	// (1600 ns for argon).
	lateLightDecay = 1.6
	// lateLightCutoff is the significance below which a later flash is
	// attributed to late light of an earlier one.
	lateLightCutoff = 3.0
)

// lateLightSignificance tests flash j against the hypothesis that it is
// the exponential afterglow of the earlier flash i. Pairs out of time
// order can never be flagged.
func lateLightSignificance(iPE, iTime, iWidth, jPE, jTime, jWidth float64) float64 {
	if iTime > jTime {
		return 1e6
	}

	hypPE := iPE * jWidth / iWidth * math.Exp(-(jTime-iTime)/lateLightDecay)
	return (jPE - hypPE) / math.Sqrt(hypPE)
}

// markLateLight computes the full removal set before anything is deleted.
// A marked flash is never re-marked, but it keeps serving as the earlier
// flash of later pairs, so a flash removed as late light can still knock
// out an even later one.
func markLateLight(flashes []Flash) []bool {
	marked := make([]bool, len(flashes))

	for i := range flashes {
		iPE := flashes[i].TotalPE()
		for j := i + 1; j < len(flashes); j++ {
			if marked[j] {
				continue
			}
			nsigma := lateLightSignificance(
				iPE, flashes[i].Time, flashes[i].TimeWidth,
				flashes[j].TotalPE(), flashes[j].Time, flashes[j].TimeWidth)
			if nsigma < lateLightCutoff {
				marked[j] = true
			}
		}
	}
	return marked
}

// removeLateLight sorts one frame's flashes by time ascending, keeping
// association entries paired with their flashes, then removes flashes
// consistent with afterglow of a brighter, earlier flash. Marking and
// deletion are separate phases; deletion walks from the highest index
// down so pending indices stay valid.
func removeLateLight(flashes []Flash, hitsPerFlash [][]int) ([]Flash, [][]int) {
	order := make([]int, len(flashes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return flashes[order[a]].Time < flashes[order[b]].Time
	})

	sorted := make([]Flash, len(flashes))
	sortedHits := make([][]int, len(hitsPerFlash))
	for i, idx := range order {
		sorted[i] = flashes[idx]
		sortedHits[i] = hitsPerFlash[idx]
	}

	marked := markLateLight(sorted)

	for i := len(sorted) - 1; i >= 0; i-- {
		if !marked[i] {
			continue
		}
		sorted = append(sorted[:i], sorted[i+1:]...)
		sortedHits = append(sortedHits[:i], sortedHits[i+1:]...)
	}
	return sorted, sortedHits
}
