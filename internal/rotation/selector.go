package rotation

import "strings"

// Strategy names a rotation strategy.
type Strategy string

const (
	RoundRobin Strategy = "round_robin"
	Weighted   Strategy = "weighted"
	Sequential Strategy = "sequential"
)

// ParseStrategy normalizes a strategy name.  An empty value maps to
// RoundRobin.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return RoundRobin, nil
	case RoundRobin, Weighted, Sequential:
		return st, nil
	}
	return "", Invalid(ErrInvalidParameter, "rotation_type", "rotation_type must be one of round_robin, weighted, sequential")
}

// Item is one queue position.  Weight only matters for Weighted rotation.
type Item struct {
	ContentID uint64
	Weight    int
}

// pick chooses the index of the item that airs next, or false when no
// item is eligible.  It mutates the rotation pointer and credits, so it is
// only called on a cloned State.
func (st *State) pick() (int, bool) {
	switch st.strategy {
	case Sequential:
		return st.pickSequential()
	case Weighted:
		return st.pickWeighted()
	default:
		return st.pickRoundRobin()
	}
}

// pickRoundRobin advances the shared pointer past the next eligible item.
func (st *State) pickRoundRobin() (int, bool) {
	n := len(st.items)
	for k := 0; k < n; k++ {
		i := (st.pointer + k) % n
		if st.rerun.Eligible(st.cursors[i]) {
			st.pointer = (i + 1) % n
			return i, true
		}
	}
	return 0, false
}

// pickSequential stays on the first item with unseen episodes.  Once every
// item is exhausted, items with a rerun still due air round-robin.
func (st *State) pickSequential() (int, bool) {
	for i, c := range st.cursors {
		if !c.Exhausted() {
			return i, true
		}
	}
	return st.pickRoundRobin()
}

// pickWeighted is a smooth weighted round-robin: every eligible item earns
// its weight in credit, the richest item wins and pays back the total
// eligible weight.  With a stable eligible set the sequence is periodic
// with period Σweights, so any window of that length holds each item
// exactly weight times.  Ties go to queue order.
func (st *State) pickWeighted() (int, bool) {
	best, total := -1, 0
	for i, it := range st.items {
		if !st.rerun.Eligible(st.cursors[i]) {
			continue
		}
		st.credits[i] += it.Weight
		total += it.Weight
		if best < 0 || st.credits[i] > st.credits[best] {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	st.credits[best] -= total
	return best, true
}
