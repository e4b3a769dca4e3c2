package rotation

import "strings"

// Frequency controls how often reruns are inserted.
type Frequency string

const (
	FrequencyNever     Frequency = "never"
	FrequencyRarely    Frequency = "rarely"
	FrequencySometimes Frequency = "sometimes"
	FrequencyOften     Frequency = "often"
)

// ParseFrequency normalizes a frequency name.  An empty value maps to
// FrequencySometimes.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FrequencySometimes, nil
	case FrequencyNever, FrequencyRarely, FrequencySometimes, FrequencyOften:
		return f, nil
	}
	return "", Invalid(ErrInvalidParameter, "rerun_frequency", "rerun_frequency must be one of never, rarely, sometimes, often")
}

// Interval is the number of new airings between two reruns, or 0 when
// reruns never happen.
func (f Frequency) Interval() int {
	switch f {
	case FrequencyRarely:
		return 10
	case FrequencySometimes:
		return 5
	case FrequencyOften:
		return 2
	}
	return 0
}

// RerunPolicy decides between a new episode and a rerun.
type RerunPolicy struct {
	Enabled   bool
	Frequency Frequency
}

// Active reports whether reruns can happen at all.
func (p RerunPolicy) Active() bool { return p.Enabled && p.Frequency.Interval() > 0 }

// IsRerun reports whether the next airing of the item is a rerun: one
// rerun is due after every Interval() new airings of that item.  An item
// that has never aired always gets a new episode.
func (p RerunPolicy) IsRerun(c Cursor) bool {
	if c.LastAired == nil || !p.Active() {
		return false
	}
	return c.NewSinceRerun >= p.Frequency.Interval()
}

// Eligible reports whether the item can fill a slot: it still has new
// episodes, or it is exhausted and its last due rerun has not aired yet.
// After that rerun an exhausted item drops out of rotation.
func (p RerunPolicy) Eligible(c Cursor) bool {
	if !c.Exhausted() {
		return true
	}
	return p.IsRerun(c)
}
