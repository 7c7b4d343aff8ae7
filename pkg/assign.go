package flashfinder

import "sort"

// binCandidate is one flagged accumulator bin awaiting hit claiming.
type binCandidate struct {
	pe    float64
	accum int
	bin   int
}

// rankCandidates gathers the flagged bins of every accumulator and sorts
// them by the assigner's total order: summed PE descending, then
// accumulator id ascending, then bin id ascending. The order is fully
// explicit so determinism never rests on map iteration.
func rankCandidates(accums []*accumulator) []binCandidate {
	var cands []binCandidate
	for _, a := range accums {
		for _, bin := range a.flagged {
			cands = append(cands, binCandidate{pe: a.binned[bin], accum: a.id, bin: bin})
		}
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].pe != cands[j].pe {
			return cands[i].pe > cands[j].pe
		}
		if cands[i].accum != cands[j].accum {
			return cands[i].accum < cands[j].accum
		}
		return cands[i].bin < cands[j].bin
	})
	return cands
}

// unclaimedHits returns the bin's contributors not yet owned by a flash.
func unclaimedHits(contrib []int, own *Ownership) []int {
	var hitsThisFlash []int
	for _, hitIndex := range contrib {
		if !own.Claimed(hitIndex) {
			hitsThisFlash = append(hitsThisFlash, hitIndex)
		}
	}
	return hitsThisFlash
}

// claimHits accepts hitsThisFlash as a coarse flash when its summed PE
// meets the threshold, claiming every hit for the new flash. Below
// threshold nothing is claimed, so the hits stay available to smaller
// candidates considered later, including the sibling accumulator's
// overlapping bins.
func claimHits(hits []Hit, hitsThisFlash []int, flashThreshold float64,
	hitsPerFlash *[][]int, own *Ownership) {

	var pe float64
	for _, hitIndex := range hitsThisFlash {
		pe += hits[hitIndex].PE
	}
	if pe < flashThreshold {
		return
	}

	*hitsPerFlash = append(*hitsPerFlash, hitsThisFlash)
	flashID := len(*hitsPerFlash) - 1
	for _, hitIndex := range hitsThisFlash {
		if !own.Claimed(hitIndex) {
			own.Claim(hitIndex, flashID)
		}
	}
}

// assignHitsToFlashes walks the flagged bins of both accumulators in
// descending-size order, greedily grouping unclaimed hits into coarse
// flashes. Processing strictly by size guarantees larger flashes get
// first claim on hits shared between overlapping bins.
func assignHitsToFlashes(accums []*accumulator, hits []Hit, flashThreshold float64,
	own *Ownership) [][]int {

	byID := make(map[int]*accumulator, len(accums))
	for _, a := range accums {
		byID[a.id] = a
	}

	var hitsPerFlash [][]int
	for _, cand := range rankCandidates(accums) {
		hitsThisFlash := unclaimedHits(byID[cand.accum].contrib[cand.bin], own)
		claimHits(hits, hitsThisFlash, flashThreshold, &hitsPerFlash, own)
	}
	return hitsPerFlash
}
