// Package availability holds the per-date availability model: slot
// validation, the day-state working set, and the transformation to the
// wire entries sent to the availability store.
package availability

import (
	"github.com/stagecall/availsync"
	"github.com/stagecall/availsync/internal/timerange"
)

// ValidateSlot checks a single slot. A slot whose start is not strictly
// before its end is invalid; equal start and end is a zero-duration
// slot and rejected.
func ValidateSlot(slot availsync.TimeSlot) error {
	start, err := timerange.ToMinutes(slot.Start)
	if err != nil {
		return &availsync.ValidationError{Other: -1, Reason: err.Error()}
	}
	end, err := timerange.ToMinutes(slot.End)
	if err != nil {
		return &availsync.ValidationError{Other: -1, Reason: err.Error()}
	}
	if start >= end {
		return &availsync.ValidationError{
			Other:  -1,
			Reason: "start time must be before end time",
		}
	}
	return nil
}

// SlotsOverlap reports whether two slots overlap. Symmetric. Adjacent
// slots (a ends exactly when b starts) do not overlap.
func SlotsOverlap(a, b availsync.TimeSlot) bool {
	ra, err := timerange.FromSlot(a)
	if err != nil {
		return false
	}
	rb, err := timerange.FromSlot(b)
	if err != nil {
		return false
	}
	return ra.Start < rb.End && rb.Start < ra.End
}

// ValidateSlots checks a day's slot list. An empty list is valid. Each
// slot is validated individually first, failing on the first invalid
// slot; only then are all pairs checked for overlap, failing on the
// first overlapping pair in index order.
func ValidateSlots(slots []availsync.TimeSlot) error {
	for i, slot := range slots {
		if err := ValidateSlot(slot); err != nil {
			verr := err.(*availsync.ValidationError)
			verr.Slot = i
			return verr
		}
	}
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			if SlotsOverlap(slots[i], slots[j]) {
				return &availsync.ValidationError{
					Slot:   i,
					Other:  j,
					Reason: "slots overlap",
				}
			}
		}
	}
	return nil
}
