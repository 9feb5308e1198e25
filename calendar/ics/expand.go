package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/stagecall/availsync"
)

// expand turns one VEVENT into the concrete occurrences that overlap
// [from, to). A non-recurring event yields at most one occurrence; an
// event with an RRULE is expanded with its EXDATEs applied.
func expand(ve *ical.VEvent, from, to time.Time) ([]*availsync.ExternalEvent, error) {
	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return nil, fmt.Errorf("event without UID")
	}
	uid := uidProp.Value

	start, err := ve.GetStartAt()
	if err != nil {
		return nil, fmt.Errorf("event %q: reading DTSTART: %w", uid, err)
	}
	end, err := ve.GetEndAt()
	if err != nil || !end.After(start) {
		end = start.Add(time.Hour)
	}

	var title string
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		title = p.Value
	}
	cancelled := false
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil {
		cancelled = strings.EqualFold(p.Value, "CANCELLED")
	}
	allDay := isAllDay(ve)

	var rawRRule string
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		rawRRule = p.Value
	}

	if rawRRule == "" {
		if !start.Before(to) || !end.After(from) {
			return nil, nil
		}
		ev := newEvent(uid, title, start, end, allDay, cancelled)
		return []*availsync.ExternalEvent{ev}, nil
	}

	r, err := rrule.StrToRRule(rawRRule)
	if err != nil {
		return nil, fmt.Errorf("event %q: parsing RRULE: %w", uid, err)
	}
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range exDates(ve) {
		set.ExDate(ex.In(start.Location()))
	}

	duration := end.Sub(start)
	var events []*availsync.ExternalEvent
	for _, occStart := range set.Between(from.In(start.Location()), to.In(start.Location()), true) {
		occEnd := occStart.Add(duration)
		// Occurrences get distinct IDs so each one tracks separately.
		id := uid + "/" + occStart.UTC().Format("20060102T150405Z")
		events = append(events, newEvent(id, title, occStart, occEnd, allDay, cancelled))
	}
	return events, nil
}

func newEvent(id, title string, start, end time.Time, allDay, cancelled bool) *availsync.ExternalEvent {
	if allDay {
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		end = start.Add(24 * time.Hour)
	}
	return &availsync.ExternalEvent{
		ID:        id,
		Title:     title,
		StartsAt:  start.UTC(),
		EndsAt:    end.UTC(),
		AllDay:    allDay,
		Cancelled: cancelled,
	}
}

// isAllDay reports whether DTSTART carries VALUE=DATE or a bare date
// value.
func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if params := p.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}

func exDates(ve *ical.VEvent) []time.Time {
	var out []time.Time
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out = append(out, t)
			}
		}
	}
	return out
}

func parseICSTime(v string) (time.Time, error) {
	for _, layout := range []string{"20060102T150405Z", "20060102T150405", "20060102"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time value %q", v)
}
