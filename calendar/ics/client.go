// Package ics implements a read-only calendar provider over ICS
// subscription feeds. Recurring events are expanded within the
// requested window; mutations are rejected.
package ics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/stagecall/availsync"
)

const Platform = "ics"

// Feed is one ICS subscription.
type Feed struct {
	ID   string
	Name string
	URL  string
}

type Client struct {
	feeds      map[string]Feed
	httpClient *http.Client

	Verbose bool
}

func NewClient(feeds []Feed) *Client {
	byID := make(map[string]Feed, len(feeds))
	for _, f := range feeds {
		byID[f.ID] = f
	}
	return &Client{
		feeds: byID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Calendars(context.Context) ([]availsync.Calendar, error) {
	cals := make([]availsync.Calendar, 0, len(c.feeds))
	for _, f := range c.feeds {
		cals = append(cals, availsync.Calendar{
			Platform: Platform,
			ID:       f.ID,
			Name:     f.Name,
		})
	}
	return cals, nil
}

func (c *Client) Events(ctx context.Context, calendarID string, from, to time.Time) (availsync.Iterator, error) {
	feed, ok := c.feeds[calendarID]
	if !ok {
		return nil, fmt.Errorf("ics: unknown feed %q", calendarID)
	}

	body, err := c.fetch(ctx, feed)
	if err != nil {
		return nil, err
	}
	cal, err := ical.ParseCalendar(body)
	if err != nil {
		return nil, fmt.Errorf("ics: parsing feed %q: %w", feed.ID, err)
	}

	var events []*availsync.ExternalEvent
	for _, ve := range cal.Events() {
		occurrences, err := expand(ve, from, to)
		if err != nil {
			c.logf(feed.ID, "skipping event: %v", err)
			continue
		}
		events = append(events, occurrences...)
	}
	return &sliceIterator{events: events}, nil
}

func (c *Client) CreateEvent(context.Context, string, *availsync.EventDraft) (string, error) {
	return "", fmt.Errorf("ics: %w", availsync.ErrReadOnlyProvider)
}

func (c *Client) UpdateEvent(context.Context, string, string, *availsync.EventDraft) error {
	return fmt.Errorf("ics: %w", availsync.ErrReadOnlyProvider)
}

func (c *Client) DeleteEvent(context.Context, string, string) error {
	return fmt.Errorf("ics: %w", availsync.ErrReadOnlyProvider)
}

func (c *Client) fetch(ctx context.Context, feed Feed) (io.Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &availsync.NetworkError{Op: "fetching feed " + feed.ID, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &availsync.NetworkError{
			Op:  "fetching feed " + feed.ID,
			Err: fmt.Errorf("unexpected status %d", res.StatusCode),
		}
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &availsync.NetworkError{Op: "fetching feed " + feed.ID, Err: err}
	}
	return bytes.NewReader(body), nil
}

func (c *Client) logf(feedID, format string, a ...any) {
	if c.Verbose {
		availsync.Logf(os.Stdout, "ics:", Platform+"/"+feedID, format, a...)
	}
}

type sliceIterator struct {
	events []*availsync.ExternalEvent
	pos    int
}

func (it *sliceIterator) Next() bool {
	if it.pos >= len(it.events) {
		return false
	}
	it.pos++
	return true
}

func (it *sliceIterator) Event() *availsync.ExternalEvent {
	if it.pos == 0 {
		panic("ics: Event() called before Next()")
	}
	return it.events[it.pos-1]
}

func (it *sliceIterator) Err() error { return nil }
