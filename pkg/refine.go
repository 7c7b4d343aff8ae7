package flashfinder

import (
	"math"
	"sort"
)

// flashWindow is the growing time window of one refined-flash candidate.
type flashWindow struct {
	pe      float64
	minTime float64
	maxTime float64
}

func (w flashWindow) center() float64 { return 0.5 * (w.maxTime + w.minTime) }

func (w flashWindow) halfWidth() float64 { return 0.5 * (w.maxTime - w.minTime) }

// refineOrder ranks a coarse flash's hits by PE descending, ties broken
// by ascending hit index.
func refineOrder(coarse []int, hits []Hit) []int {
	order := append([]int(nil), coarse...)
	sort.Slice(order, func(i, j int) bool {
		if hits[order[i]].PE != hits[order[j]].PE {
			return hits[order[i]].PE > hits[order[j]].PE
		}
		return order[i] < order[j]
	})
	return order
}

// findSeedHit starts a new refined-flash candidate from the largest
// still-unused hit. Returns false when every hit has been considered.
func findSeedHit(order []int, hits []Hit, used *Ownership, flashID int) (int, flashWindow, bool) {
	for _, hitID := range order {
		if used.Claimed(hitID) {
			continue
		}
		hit := hits[hitID]
		used.Claim(hitID, flashID)
		return hitID, flashWindow{
			pe:      hit.PE,
			minTime: hit.PeakTime - 0.5*hit.Width,
			maxTime: hit.PeakTime + 0.5*hit.Width,
		}, true
	}
	return 0, flashWindow{}, false
}

// addHitToFlash accepts a hit into the candidate when its peak time lies
// within tolerance·(halfHitWidth + halfFlashWidth) of the window center,
// expanding the window to cover it.
func addHitToFlash(hitID int, hits []Hit, used *Ownership, tolerance float64,
	group *[]int, window *flashWindow, flashID int) {

	if used.Claimed(hitID) {
		return
	}

	hit := hits[hitID]
	halfHitWidth := 0.5 * hit.Width
	if math.Abs(hit.PeakTime-window.center()) > tolerance*(halfHitWidth+window.halfWidth()) {
		return
	}

	*group = append(*group, hitID)
	window.maxTime = math.Max(window.maxTime, hit.PeakTime+halfHitWidth)
	window.minTime = math.Min(window.minTime, hit.PeakTime-halfHitWidth)
	window.pe += hit.PE
	used.Claim(hitID, flashID)
}

// checkAndStoreFlash keeps the grown candidate when it reaches the flash
// threshold. A failed multi-hit candidate releases everything but its
// seed back to the pool (the seed stays consumed so seeding terminates);
// a failed single-hit candidate is dropped outright.
func checkAndStoreFlash(group []int, window flashWindow, flashThreshold float64,
	used *Ownership, refined *[][]int) {

	if window.pe >= flashThreshold {
		*refined = append(*refined, group)
		return
	}

	if len(group) == 1 {
		return
	}

	for _, hitID := range group[1:] {
		used.Release(hitID)
	}
}

// refineFlash splits one coarse flash into refined flashes whose members
// are mutually time-compatible, appending them to refined. Each round
// seeds from the largest unused hit and grows the window until a full
// scan adds nothing new (fixed point); under-threshold leftovers are
// discarded with their non-seed hits released for reuse.
func refineFlash(coarse []int, hits []Hit, tolerance, flashThreshold float64,
	refined *[][]int) {

	order := refineOrder(coarse, hits)
	used := NewOwnership(len(hits))

	for {
		flashID := len(*refined)
		seed, window, ok := findSeedHit(order, hits, used, flashID)
		if !ok {
			return
		}
		group := []int{seed}

		for {
			before := len(group)
			for _, hitID := range order {
				addHitToFlash(hitID, hits, used, tolerance, &group, &window, flashID)
			}
			if len(group) == before {
				break
			}
		}

		checkAndStoreFlash(group, window, flashThreshold, used, refined)
	}
}
