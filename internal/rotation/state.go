package rotation

import "fmt"

// State is everything the assignment loop carries from one slot to the
// next: the rotation pointer, weighted credits and per-item cursors.  It
// is a value; Step never mutates its input.
type State struct {
	strategy Strategy
	rerun    RerunPolicy
	items    []Item
	cursors  []Cursor
	pointer  int
	credits  []int
}

// NewState builds the initial state for a run.  cursors must be parallel
// to items.
func NewState(items []Item, cursors []Cursor, strategy Strategy, rerun RerunPolicy) (State, error) {
	if len(items) != len(cursors) {
		return State{}, fmt.Errorf("rotation: %d items but %d cursors", len(items), len(cursors))
	}
	st := State{
		strategy: strategy,
		rerun:    rerun,
		items:    make([]Item, len(items)),
		cursors:  make([]Cursor, len(cursors)),
		credits:  make([]int, len(items)),
	}
	for i, it := range items {
		if it.Weight <= 0 {
			it.Weight = 1
		}
		if cursors[i].ContentID != it.ContentID {
			return State{}, fmt.Errorf("rotation: cursor %d belongs to content %d, not %d", i, cursors[i].ContentID, it.ContentID)
		}
		st.items[i] = it
	}
	copy(st.cursors, cursors)
	return st, nil
}

func (st State) clone() State {
	next := st
	next.cursors = append([]Cursor(nil), st.cursors...)
	next.credits = append([]int(nil), st.credits...)
	return next
}

// Cursors returns a copy of the current per-item cursors in queue order.
func (st State) Cursors() []Cursor {
	return append([]Cursor(nil), st.cursors...)
}

// Assignment is the outcome of one slot: what airs, whether it is a rerun
// and the cursor as it was before the airing.
type Assignment struct {
	Slot         Slot
	ContentID    uint64
	Episode      *Episode
	IsRerun      bool
	CursorBefore Cursor
}

// Step fills one slot.  It returns false when no item is eligible; the
// slot is then left empty.
func Step(st State, slot Slot) (Assignment, bool, State) {
	next := st.clone()
	i, ok := next.pick()
	if !ok {
		return Assignment{}, false, next
	}
	cur := next.cursors[i]
	a := Assignment{Slot: slot, ContentID: cur.ContentID, CursorBefore: cur}
	if next.rerun.IsRerun(cur) {
		a.IsRerun = true
		if !cur.Movie {
			ep := *cur.LastAired
			a.Episode = &ep
		}
		cur.NewSinceRerun = 0
	} else {
		var ep Episode
		ep, cur = cur.Advance()
		if !cur.Movie {
			a.Episode = &ep
		}
		cur.NewSinceRerun++
	}
	next.cursors[i] = cur
	if cur.DurationMinutes > 0 && cur.DurationMinutes < slot.Minutes() {
		a.Slot.End = slot.Start.Add(cur.DurationMinutes)
	}
	return a, true, next
}

// Run walks the grid in order and fills every slot it can.  Slots for
// which blocked returns true are skipped without advancing the rotation.
// The loop stops early once nothing is eligible any more.
func Run(st State, grid *Grid, blocked func(Slot) bool) ([]Assignment, State) {
	var out []Assignment
	it := grid.Iter()
	for {
		slot, ok := it.Next()
		if !ok {
			return out, st
		}
		if blocked != nil && blocked(slot) {
			continue
		}
		a, ok, next := Step(st, slot)
		if !ok {
			return out, st
		}
		st = next
		out = append(out, a)
	}
}
