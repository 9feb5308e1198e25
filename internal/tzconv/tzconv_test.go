package tzconv

import (
	"errors"
	"testing"

	"github.com/stagecall/availsync"
)

func TestLocalToUTC(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		clock     string
		timezone  string
		wantDate  string
		wantClock string
	}{
		{
			name: "utc passthrough",
			date: "2025-06-15", clock: "10:00", timezone: "UTC",
			wantDate: "2025-06-15", wantClock: "10:00",
		},
		{
			name: "berlin summer",
			date: "2025-06-15", clock: "10:00", timezone: "Europe/Berlin",
			wantDate: "2025-06-15", wantClock: "08:00",
		},
		{
			name: "berlin winter",
			date: "2025-12-15", clock: "10:00", timezone: "Europe/Berlin",
			wantDate: "2025-12-15", wantClock: "09:00",
		},
		{
			name: "cross midnight forward",
			date: "2025-06-15", clock: "23:30", timezone: "America/New_York",
			wantDate: "2025-06-16", wantClock: "03:30",
		},
		{
			name: "cross midnight backward",
			date: "2025-06-15", clock: "00:30", timezone: "Europe/Berlin",
			wantDate: "2025-06-14", wantClock: "22:30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotDate, gotClock, err := LocalToUTC(tt.date, tt.clock, tt.timezone)
			if err != nil {
				t.Fatalf("LocalToUTC: %v", err)
			}
			if gotDate != tt.wantDate || gotClock != tt.wantClock {
				t.Errorf("LocalToUTC(%s %s %s) = %s %s, want %s %s",
					tt.date, tt.clock, tt.timezone, gotDate, gotClock, tt.wantDate, tt.wantClock)
			}
		})
	}
}

func TestLocalToUTCInvalidTimezone(t *testing.T) {
	_, _, err := LocalToUTC("2025-06-15", "10:00", "Not/AZone")
	if !errors.Is(err, availsync.ErrInvalidTimezone) {
		t.Fatalf("err = %v, want ErrInvalidTimezone", err)
	}
}

func TestRoundTrip(t *testing.T) {
	// Includes dates on either side of the 2025 European DST
	// transitions (Mar 30, Oct 26).
	cases := []struct {
		date, clock, timezone string
	}{
		{"2025-03-29", "14:00", "Europe/Berlin"},
		{"2025-03-31", "14:00", "Europe/Berlin"},
		{"2025-10-25", "09:15", "Europe/Berlin"},
		{"2025-10-27", "09:15", "Europe/Berlin"},
		{"2025-07-04", "18:45", "America/New_York"},
		{"2025-01-01", "08:00", "Asia/Seoul"},
		{"2025-05-20", "23:59", "Pacific/Auckland"},
		{"2025-05-20", "00:00", "UTC"},
	}

	for _, c := range cases {
		utcDate, utcClock, err := LocalToUTC(c.date, c.clock, c.timezone)
		if err != nil {
			t.Fatalf("LocalToUTC(%v): %v", c, err)
		}
		gotDate, gotClock, err := UTCToLocal(utcDate, utcClock, c.timezone)
		if err != nil {
			t.Fatalf("UTCToLocal(%v): %v", c, err)
		}
		if gotDate != c.date || gotClock != c.clock {
			t.Errorf("round trip %s %s %s = %s %s", c.date, c.clock, c.timezone, gotDate, gotClock)
		}
	}
}

func TestConvertSlotsToUTCAllDayPinned(t *testing.T) {
	slot := availsync.AllDaySlot()
	for _, tz := range []string{"UTC", "Europe/Berlin", "America/New_York", "Pacific/Auckland"} {
		got, err := ConvertSlotsToUTC("2025-06-15", []availsync.TimeSlot{slot}, tz)
		if err != nil {
			t.Fatalf("ConvertSlotsToUTC(%s): %v", tz, err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d slots, want 1", len(got))
		}
		s := got[0]
		if s.Start != "00:00" || s.End != "23:59" || s.StartDate != "2025-06-15" || s.EndDate != "2025-06-15" || !s.AllDay {
			t.Errorf("all-day slot was timezone-shifted in %s: %+v", tz, s)
		}
	}
}

func TestConvertSlotsToUTCTimed(t *testing.T) {
	slots := []availsync.TimeSlot{{Start: "10:00", End: "14:00"}}
	got, err := ConvertSlotsToUTC("2025-06-15", slots, "Europe/Berlin")
	if err != nil {
		t.Fatalf("ConvertSlotsToUTC: %v", err)
	}
	want := Slot{StartDate: "2025-06-15", Start: "08:00", EndDate: "2025-06-15", End: "12:00"}
	if got[0] != want {
		t.Errorf("got %+v, want %+v", got[0], want)
	}

	back, err := ConvertSlotsFromUTC(got, "Europe/Berlin")
	if err != nil {
		t.Fatalf("ConvertSlotsFromUTC: %v", err)
	}
	if back[0].Start != "10:00" || back[0].End != "14:00" {
		t.Errorf("round trip = %+v", back[0])
	}
}
