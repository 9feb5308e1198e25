// Package tzconv converts between a calendar date plus local wall-clock
// time in an IANA timezone and its UTC representation.
package tzconv

import (
	"fmt"
	"time"

	"github.com/stagecall/availsync"
)

// Location resolves an IANA timezone name. An unrecognized name fails
// with availsync.ErrInvalidTimezone; "UTC" is always valid.
func Location(name string) (*time.Location, error) {
	if name == "" || name == "UTC" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", availsync.ErrInvalidTimezone, name)
	}
	return loc, nil
}

// LocalToUTC interprets clock as wall-clock time in the given timezone
// on date and returns the UTC calendar date and clock.
//
// The conversion is two-pass: build a candidate instant as if the wall
// clock were already UTC, render that instant in the target zone,
// measure how far the rendered wall clock landed from the desired one,
// and apply the discrepancy as a correction. This handles DST
// transitions without assuming a fixed offset per timezone.
func LocalToUTC(date, clock, timezone string) (utcDate, utcClock string, err error) {
	loc, err := Location(timezone)
	if err != nil {
		return "", "", err
	}
	naive, err := parseWall(date, clock)
	if err != nil {
		return "", "", err
	}

	rendered := naive.In(loc)
	renderedWall := time.Date(
		rendered.Year(), rendered.Month(), rendered.Day(),
		rendered.Hour(), rendered.Minute(), 0, 0, time.UTC,
	)
	corrected := naive.Add(naive.Sub(renderedWall))

	return corrected.Format(availsync.DateFormat), corrected.Format(availsync.ClockFormat), nil
}

// UTCToLocal formats a UTC instant in the given timezone. Single pass,
// no correction needed.
func UTCToLocal(date, clock, timezone string) (localDate, localClock string, err error) {
	loc, err := Location(timezone)
	if err != nil {
		return "", "", err
	}
	instant, err := parseWall(date, clock)
	if err != nil {
		return "", "", err
	}
	local := instant.In(loc)
	return local.Format(availsync.DateFormat), local.Format(availsync.ClockFormat), nil
}

// Slot is a converted slot. Start and end carry their own dates because
// a conversion can roll a slot across midnight.
type Slot struct {
	StartDate string
	Start     string
	EndDate   string
	End       string
	AllDay    bool
}

// ConvertSlotsToUTC lifts LocalToUTC over a day's slot list. All-day
// slots bypass conversion entirely and stay pinned to 00:00-23:59 on
// the input date: an all-day marker means "the whole calendar day",
// not a 24-hour clock-time span.
func ConvertSlotsToUTC(date string, slots []availsync.TimeSlot, timezone string) ([]Slot, error) {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if s.AllDay {
			out = append(out, allDaySlot(date))
			continue
		}
		startDate, start, err := LocalToUTC(date, s.Start, timezone)
		if err != nil {
			return nil, err
		}
		endDate, end, err := LocalToUTC(date, s.End, timezone)
		if err != nil {
			return nil, err
		}
		out = append(out, Slot{
			StartDate: startDate, Start: start,
			EndDate: endDate, End: end,
		})
	}
	return out, nil
}

// ConvertSlotsFromUTC converts UTC slots back into local wall-clock
// slots. All-day slots pass through pinned, as in ConvertSlotsToUTC.
func ConvertSlotsFromUTC(slots []Slot, timezone string) ([]Slot, error) {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if s.AllDay {
			out = append(out, allDaySlot(s.StartDate))
			continue
		}
		startDate, start, err := UTCToLocal(s.StartDate, s.Start, timezone)
		if err != nil {
			return nil, err
		}
		endDate, end, err := UTCToLocal(s.EndDate, s.End, timezone)
		if err != nil {
			return nil, err
		}
		out = append(out, Slot{
			StartDate: startDate, Start: start,
			EndDate: endDate, End: end,
		})
	}
	return out, nil
}

func allDaySlot(date string) Slot {
	return Slot{
		StartDate: date, Start: "00:00",
		EndDate: date, End: "23:59",
		AllDay: true,
	}
}

func parseWall(date, clock string) (time.Time, error) {
	t, err := time.Parse(availsync.DateFormat+" "+availsync.ClockFormat, date+" "+clock)
	if err != nil {
		return time.Time{}, &availsync.ParseError{Value: date + " " + clock}
	}
	return t, nil
}
