package availability

import (
	"errors"
	"testing"

	"github.com/stagecall/availsync"
)

func TestValidateSlot(t *testing.T) {
	tests := []struct {
		name    string
		slot    availsync.TimeSlot
		wantErr bool
	}{
		{name: "valid", slot: availsync.TimeSlot{Start: "10:00", End: "14:00"}},
		{name: "one minute", slot: availsync.TimeSlot{Start: "14:00", End: "14:01"}},
		{name: "zero duration", slot: availsync.TimeSlot{Start: "14:00", End: "14:00"}, wantErr: true},
		{name: "inverted", slot: availsync.TimeSlot{Start: "16:00", End: "10:00"}, wantErr: true},
		{name: "garbage start", slot: availsync.TimeSlot{Start: "abc", End: "10:00"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlot(tt.slot)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSlot(%+v) = %v, wantErr %t", tt.slot, err, tt.wantErr)
			}
		})
	}
}

func TestSlotsOverlap(t *testing.T) {
	a := availsync.TimeSlot{Start: "10:00", End: "14:00"}
	tests := []struct {
		name string
		b    availsync.TimeSlot
		want bool
	}{
		{name: "overlapping", b: availsync.TimeSlot{Start: "12:00", End: "16:00"}, want: true},
		{name: "contained", b: availsync.TimeSlot{Start: "11:00", End: "12:00"}, want: true},
		{name: "adjacent is not overlap", b: availsync.TimeSlot{Start: "14:00", End: "16:00"}, want: false},
		{name: "disjoint", b: availsync.TimeSlot{Start: "15:00", End: "16:00"}, want: false},
		{name: "adjacent before", b: availsync.TimeSlot{Start: "08:00", End: "10:00"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlotsOverlap(a, tt.b); got != tt.want {
				t.Errorf("SlotsOverlap(a, b) = %t, want %t", got, tt.want)
			}
			// Overlap is symmetric.
			if got := SlotsOverlap(tt.b, a); got != tt.want {
				t.Errorf("SlotsOverlap(b, a) = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestValidateSlots(t *testing.T) {
	t.Run("empty is valid", func(t *testing.T) {
		if err := ValidateSlots(nil); err != nil {
			t.Errorf("ValidateSlots(nil) = %v", err)
		}
	})

	t.Run("edge to edge chain is valid", func(t *testing.T) {
		slots := []availsync.TimeSlot{
			{Start: "09:00", End: "11:00"},
			{Start: "11:00", End: "13:00"},
			{Start: "13:00", End: "15:00"},
		}
		if err := ValidateSlots(slots); err != nil {
			t.Errorf("ValidateSlots = %v", err)
		}
	})

	t.Run("individual validity checked before overlap", func(t *testing.T) {
		slots := []availsync.TimeSlot{
			{Start: "10:00", End: "14:00"},
			{Start: "15:00", End: "15:00"}, // invalid on its own
			{Start: "10:00", End: "12:00"}, // overlaps slot 0
		}
		err := ValidateSlots(slots)
		var verr *availsync.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("err = %v, want ValidationError", err)
		}
		if verr.Slot != 1 || verr.Other != -1 {
			t.Errorf("got slot %d/other %d, want the individually-invalid slot 1 first", verr.Slot, verr.Other)
		}
	})

	t.Run("first overlapping pair in index order", func(t *testing.T) {
		slots := []availsync.TimeSlot{
			{Start: "10:00", End: "14:00"},
			{Start: "16:00", End: "18:00"},
			{Start: "12:00", End: "16:30"}, // overlaps 0 and 1
		}
		err := ValidateSlots(slots)
		var verr *availsync.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("err = %v, want ValidationError", err)
		}
		if verr.Slot != 0 || verr.Other != 2 {
			t.Errorf("got pair (%d,%d), want (0,2)", verr.Slot, verr.Other)
		}
	})
}
