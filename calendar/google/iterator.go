package google

import (
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/stagecall/availsync"
)

type eventOrError struct {
	e   *availsync.ExternalEvent
	err error
}

type eventIterator struct {
	events  chan eventOrError
	current eventOrError
}

func newEventIterator() *eventIterator {
	return &eventIterator{
		events: make(chan eventOrError),
	}
}

func (it *eventIterator) Next() (ok bool) {
	it.current, ok = <-it.events
	if it.current.err != nil {
		return false
	}
	return ok
}

func (it *eventIterator) Event() *availsync.ExternalEvent {
	c := it.current
	if c.e == nil && c.err == nil {
		panic("google: Event() called before Next()")
	}
	return c.e
}

func (it *eventIterator) Err() error {
	return it.current.err
}

func newEvent(event *calendar.Event) *availsync.ExternalEvent {
	if event.Status == "cancelled" {
		return &availsync.ExternalEvent{
			ID:        event.Id,
			Cancelled: true,
		}
	}

	// All-day events carry a bare date instead of a datetime.
	if event.Start != nil && event.Start.Date != "" {
		startsAt, _ := time.Parse(availsync.DateFormat, event.Start.Date)
		endsAt := startsAt
		if event.End != nil && event.End.Date != "" {
			endsAt, _ = time.Parse(availsync.DateFormat, event.End.Date)
		}
		return &availsync.ExternalEvent{
			ID:       event.Id,
			Title:    event.Summary,
			StartsAt: startsAt,
			EndsAt:   endsAt,
			AllDay:   true,
		}
	}

	var startsAt, endsAt time.Time
	if event.Start != nil {
		startsAt, _ = time.Parse(time.RFC3339, event.Start.DateTime)
	}
	if event.End != nil {
		endsAt, _ = time.Parse(time.RFC3339, event.End.DateTime)
	}
	return &availsync.ExternalEvent{
		ID:       event.Id,
		Title:    event.Summary,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}
}

func newGoogleEvent(draft *availsync.EventDraft) *calendar.Event {
	event := &calendar.Event{
		Summary:     draft.Title,
		Description: draft.Description,
		Reminders: &calendar.EventReminders{
			UseDefault: true,
		},
	}
	if draft.AllDay {
		event.Start = &calendar.EventDateTime{Date: draft.StartsAt.Format(availsync.DateFormat)}
		event.End = &calendar.EventDateTime{Date: draft.EndsAt.Format(availsync.DateFormat)}
		return event
	}
	event.Start = &calendar.EventDateTime{DateTime: draft.StartsAt.Format(time.RFC3339)}
	event.End = &calendar.EventDateTime{DateTime: draft.EndsAt.Format(time.RFC3339)}
	return event
}
