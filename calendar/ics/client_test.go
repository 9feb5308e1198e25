package ics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stagecall/availsync"
)

const feedBody = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//stagecall//availsync//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:single-1\r\n" +
	"DTSTART:20250616T100000Z\r\n" +
	"DTEND:20250616T110000Z\r\n" +
	"SUMMARY:Tech check\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:weekly-1\r\n" +
	"DTSTART:20250602T180000Z\r\n" +
	"DTEND:20250602T200000Z\r\n" +
	"RRULE:FREQ=WEEKLY;BYDAY=MO\r\n" +
	"SUMMARY:Band practice\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:allday-1\r\n" +
	"DTSTART;VALUE=DATE:20250618\r\n" +
	"DTEND;VALUE=DATE:20250619\r\n" +
	"SUMMARY:Festival\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func collect(t *testing.T, it availsync.Iterator) []*availsync.ExternalEvent {
	t.Helper()
	var out []*availsync.ExternalEvent
	for it.Next() {
		out = append(out, it.Event())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterating: %v", err)
	}
	return out
}

func TestEventsExpandsFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	client := NewClient([]Feed{{ID: "band", Name: "Band feed", URL: srv.URL}})

	from := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.June, 22, 0, 0, 0, 0, time.UTC)
	it, err := client.Events(context.Background(), "band", from, to)
	if err != nil {
		t.Fatalf("Events() unexpected error: %v", err)
	}
	events := collect(t, it)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	byID := make(map[string]*availsync.ExternalEvent, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
	}

	single, ok := byID["single-1"]
	if !ok {
		t.Fatal("missing single-1")
	}
	if single.Title != "Tech check" || single.AllDay {
		t.Errorf("single-1 = %+v", single)
	}
	if want := time.Date(2025, time.June, 16, 10, 0, 0, 0, time.UTC); !single.StartsAt.Equal(want) {
		t.Errorf("single-1 starts at %v, want %v", single.StartsAt, want)
	}

	occ, ok := byID["weekly-1/20250616T180000Z"]
	if !ok {
		t.Fatalf("missing weekly occurrence, have %v", keys(byID))
	}
	if want := time.Date(2025, time.June, 16, 20, 0, 0, 0, time.UTC); !occ.EndsAt.Equal(want) {
		t.Errorf("occurrence ends at %v, want %v", occ.EndsAt, want)
	}

	allDay, ok := byID["allday-1"]
	if !ok {
		t.Fatal("missing allday-1")
	}
	if !allDay.AllDay {
		t.Error("allday-1 not flagged all-day")
	}
	if want := time.Date(2025, time.June, 18, 0, 0, 0, 0, time.UTC); !allDay.StartsAt.Equal(want) {
		t.Errorf("allday-1 starts at %v, want %v", allDay.StartsAt, want)
	}
}

func TestEventsWindowExcludesOutside(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	client := NewClient([]Feed{{ID: "band", URL: srv.URL}})

	from := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.July, 2, 0, 0, 0, 0, time.UTC)
	it, err := client.Events(context.Background(), "band", from, to)
	if err != nil {
		t.Fatalf("Events() unexpected error: %v", err)
	}
	for _, ev := range collect(t, it) {
		if ev.ID == "single-1" || ev.ID == "allday-1" {
			t.Errorf("event %q should be outside the window", ev.ID)
		}
	}
}

func TestEventsFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient([]Feed{{ID: "band", URL: srv.URL}})
	_, err := client.Events(context.Background(), "band", time.Now(), time.Now().Add(time.Hour))

	var netErr *availsync.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if !strings.Contains(netErr.Op, "band") {
		t.Errorf("Op = %q, want feed id mentioned", netErr.Op)
	}
}

func TestMutationsAreRejected(t *testing.T) {
	client := NewClient(nil)
	ctx := context.Background()

	if _, err := client.CreateEvent(ctx, "band", &availsync.EventDraft{}); !errors.Is(err, availsync.ErrReadOnlyProvider) {
		t.Errorf("CreateEvent error = %v", err)
	}
	if err := client.UpdateEvent(ctx, "band", "id", &availsync.EventDraft{}); !errors.Is(err, availsync.ErrReadOnlyProvider) {
		t.Errorf("UpdateEvent error = %v", err)
	}
	if err := client.DeleteEvent(ctx, "band", "id"); !errors.Is(err, availsync.ErrReadOnlyProvider) {
		t.Errorf("DeleteEvent error = %v", err)
	}
}

func keys(m map[string]*availsync.ExternalEvent) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
