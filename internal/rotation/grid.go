package rotation

import "time"

// GridSpec describes the calendar a generation run fills.  StartDate and
// EndDate are inclusive and must be midnight values as returned by
// ParseDate.
type GridSpec struct {
	StartDate      time.Time
	EndDate        time.Time
	DailyStart     Clock
	DailyEnd       Clock
	SlotMinutes    int
	Tracks         int
	TimezoneOffset string
}

// Validate checks the bounds of the grid.  Inverted dates or times yield
// ErrInvalidRange, a non-positive slot length ErrInvalidDuration.
func (g GridSpec) Validate() error {
	if g.StartDate.After(g.EndDate) {
		return Invalid(ErrInvalidRange, "start_date", "start_date must not be after end_date")
	}
	if g.DailyStart >= g.DailyEnd {
		return Invalid(ErrInvalidRange, "daily_start_time", "daily_start_time must be before daily_end_time")
	}
	if g.DailyStart < 0 || g.DailyEnd > EndOfDay {
		return Invalid(ErrInvalidRange, "daily_end_time", "daily window must stay within one day")
	}
	if g.SlotMinutes <= 0 {
		return Invalid(ErrInvalidDuration, "slot_duration_minutes", "slot_duration_minutes must be greater than 0")
	}
	if g.Tracks < 1 {
		return Invalid(ErrInvalidParameter, "max_tracks_per_slot", "max_tracks_per_slot must be at least 1")
	}
	if !ValidOffset(g.TimezoneOffset) {
		return Invalid(ErrInvalidParameter, "timezone_offset", "timezone_offset must use ±HH:MM")
	}
	return nil
}

// Days returns the number of calendar days covered by the grid.
func (g GridSpec) Days() int {
	return int(g.EndDate.Sub(g.StartDate).Hours()/24) + 1
}

// Slot is one time window on a given date and track.
type Slot struct {
	Date           time.Time
	Track          int
	Start          Clock
	End            Clock
	TimezoneOffset string
}

// Minutes is the length of the slot.
func (s Slot) Minutes() int { return int(s.End - s.Start) }

// DateString formats the slot date as YYYY-MM-DD.
func (s Slot) DateString() string { return s.Date.Format(DateLayout) }

// Overlaps reports whether the slot shares any minute with [start, end) on
// the same date and track.
func (s Slot) Overlaps(date string, track int, start, end Clock) bool {
	if s.Track != track || s.DateString() != date {
		return false
	}
	return !(end <= s.Start || start >= s.End)
}

// Grid is a finite, restartable sequence of slots.
type Grid struct {
	spec   GridSpec
	starts []Clock
}

// NewGrid validates the spec and precomputes the daily slot starts.  The
// last slot of a day is shortened to DailyEnd when the window does not
// divide evenly.
func NewGrid(spec GridSpec) (*Grid, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	var starts []Clock
	for c := spec.DailyStart; c < spec.DailyEnd; c = c.Add(spec.SlotMinutes) {
		starts = append(starts, c)
	}
	return &Grid{spec: spec, starts: starts}, nil
}

// Spec returns the spec the grid was built from.
func (g *Grid) Spec() GridSpec { return g.spec }

// Len is the total number of slots in the grid.
func (g *Grid) Len() int { return g.spec.Days() * len(g.starts) * g.spec.Tracks }

// Iter returns a fresh iterator positioned before the first slot.
func (g *Grid) Iter() *GridIter { return &GridIter{grid: g} }

// Slots materializes the whole grid in assignment order.
func (g *Grid) Slots() []Slot {
	out := make([]Slot, 0, g.Len())
	it := g.Iter()
	for {
		s, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, s)
	}
}

// GridIter walks a grid by date, then start time, then track.
type GridIter struct {
	grid  *Grid
	day   int
	start int
	track int
}

// Next returns the next slot, or false once the grid is exhausted.
func (it *GridIter) Next() (Slot, bool) {
	g := it.grid
	if len(g.starts) == 0 || it.day >= g.spec.Days() {
		return Slot{}, false
	}
	begin := g.starts[it.start]
	end := begin.Add(g.spec.SlotMinutes)
	if end > g.spec.DailyEnd {
		end = g.spec.DailyEnd
	}
	s := Slot{
		Date:           g.spec.StartDate.AddDate(0, 0, it.day),
		Track:          it.track,
		Start:          begin,
		End:            end,
		TimezoneOffset: g.spec.TimezoneOffset,
	}
	it.track++
	if it.track == g.spec.Tracks {
		it.track = 0
		it.start++
		if it.start == len(g.starts) {
			it.start = 0
			it.day++
		}
	}
	return s, true
}
