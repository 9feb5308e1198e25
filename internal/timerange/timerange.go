// Package timerange provides pure interval arithmetic over wall-clock
// minute ranges within one calendar day.
package timerange

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/stagecall/availsync"
)

const (
	// MinutesPerDay is the number of addressable minutes in a day;
	// the last minute of a day is 1439 (23:59).
	MinutesPerDay = 24 * 60

	// WorkdayStart and WorkdayEnd bound the window used when
	// computing free gaps from busy coverage.
	WorkdayStart = 9 * 60  // 09:00
	WorkdayEnd   = 23 * 60 // 23:00
)

// Range is a half-open-looking but inclusive-of-start, exclusive-of-end
// minute interval [Start, End) within one day. Start < End always holds
// for ranges produced by this package.
type Range struct {
	Start int
	End   int
}

// ToMinutes converts an HH:mm clock string to minutes since midnight.
func ToMinutes(clock string) (int, error) {
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, &availsync.ParseError{Value: clock}
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, &availsync.ParseError{Value: clock}
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, &availsync.ParseError{Value: clock}
	}
	return h*60 + m, nil
}

// ToTimeString converts minutes since midnight back to HH:mm.
func ToTimeString(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FromSlot converts a TimeSlot to a minute range.
func FromSlot(slot availsync.TimeSlot) (Range, error) {
	start, err := ToMinutes(slot.Start)
	if err != nil {
		return Range{}, err
	}
	end, err := ToMinutes(slot.End)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: start, End: end}, nil
}

// ToSlot converts a minute range back to a TimeSlot.
func (r Range) ToSlot() availsync.TimeSlot {
	return availsync.TimeSlot{Start: ToTimeString(r.Start), End: ToTimeString(r.End)}
}

// Merge sorts ranges by start and merges entries that touch or overlap
// into a minimal disjoint sorted cover. Ranges separated by a single
// minute are considered touching (10:00-11:59 and 12:00-14:00 merge).
// Merging an already-merged set returns it unchanged.
func Merge(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// Subtract removes the interval sub from each range in ranges, splitting
// a range into zero, one, or two pieces as needed.
func Subtract(ranges []Range, sub Range) []Range {
	var out []Range
	for _, r := range ranges {
		if sub.End <= r.Start || sub.Start >= r.End {
			// No overlap, keep untouched.
			out = append(out, r)
			continue
		}
		if sub.Start > r.Start {
			out = append(out, Range{Start: r.Start, End: sub.Start})
		}
		if sub.End < r.End {
			out = append(out, Range{Start: sub.End, End: r.End})
		}
	}
	return out
}

// FreeGaps returns the free intervals within the workday window that
// are not covered by the given busy ranges. The input is expected to be
// a merged cover (see Merge). With no busy ranges the whole workday is
// one free range.
func FreeGaps(busy []Range) []Range {
	free := []Range{{Start: WorkdayStart, End: WorkdayEnd}}
	for _, b := range busy {
		free = Subtract(free, b)
	}
	return free
}

// DayClass is the coarse classification of a day's busy coverage.
type DayClass string

const (
	ClassFree    DayClass = "free"
	ClassPartial DayClass = "partial"
	ClassBusy    DayClass = "busy"
)

// Classify reports whether the merged busy cover leaves the day free,
// partially covered, or fully busy. Fully busy means the cover spans
// from minute 0 through minute 1439.
func Classify(ranges []Range) DayClass {
	if len(ranges) == 0 {
		return ClassFree
	}
	merged := Merge(ranges)
	first, last := merged[0], merged[len(merged)-1]
	if len(merged) == 1 && first.Start <= 0 && last.End >= MinutesPerDay-1 {
		return ClassBusy
	}
	return ClassPartial
}

// MergeSlots is Merge lifted over TimeSlots.
func MergeSlots(slots []availsync.TimeSlot) ([]availsync.TimeSlot, error) {
	ranges := make([]Range, 0, len(slots))
	for _, s := range slots {
		r, err := FromSlot(s)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	merged := Merge(ranges)
	out := make([]availsync.TimeSlot, len(merged))
	for i, r := range merged {
		out[i] = r.ToSlot()
	}
	return out, nil
}
