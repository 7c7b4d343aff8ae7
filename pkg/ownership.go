package flashfinder

// Unclaimed marks a hit not owned by any flash.
const Unclaimed = -1

// Ownership records which flash, if any, owns each hit of a frame. Hit
// indices are frame-local. The table is passed by exclusive reference
// into the claiming passes; it is the only mutable state they share.
type Ownership struct {
	owner []int
}

func NewOwnership(nHits int) *Ownership {
	o := &Ownership{owner: make([]int, nHits)}
	for i := range o.owner {
		o.owner[i] = Unclaimed
	}
	return o
}

func (o *Ownership) Owner(hit int) int { return o.owner[hit] }

func (o *Ownership) Claimed(hit int) bool { return o.owner[hit] != Unclaimed }

func (o *Ownership) Claim(hit, flash int) { o.owner[hit] = flash }

func (o *Ownership) Release(hit int) { o.owner[hit] = Unclaimed }
