// Package google implements the calendar provider on top of the Google
// Calendar API.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/stagecall/availsync"
)

const Platform = "google"

type Client struct {
	oauthCfg  *oauth2.Config
	tokenJSON []byte

	Verbose bool
}

// NewClient builds a client from OAuth credentials and a previously
// stored token blob (see Login).
func NewClient(credJSON, tokenJSON []byte) (*Client, error) {
	oauthCfg, err := googleauth.ConfigFromJSON(credJSON, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("google: parsing credentials file: %v", err)
	}
	return &Client{
		oauthCfg:  oauthCfg,
		tokenJSON: tokenJSON,
	}, nil
}

const defaultSleep = 5 * time.Second

func (c Client) Calendars(ctx context.Context) ([]availsync.Calendar, error) {
	svc, err := c.calendarSvc(ctx)
	if err != nil {
		return nil, err
	}
	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, classify("listing calendars", err)
	}
	cals := make([]availsync.Calendar, 0, len(list.Items))
	for _, item := range list.Items {
		cals = append(cals, availsync.Calendar{
			Platform: Platform,
			ID:       item.Id,
			Name:     item.Summary,
		})
	}
	return cals, nil
}

func (c Client) Events(ctx context.Context, calendarID string, from, to time.Time) (availsync.Iterator, error) {
	svc, err := c.calendarSvc(ctx)
	if err != nil {
		return nil, err
	}
	eventsCall := svc.Events.
		List(calendarID).
		Context(ctx).
		ShowDeleted(true).
		SingleEvents(true).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339))

	it := newEventIterator()
	go c.events(calendarID, eventsCall, it.events)
	return it, nil
}

func (c Client) events(calendarID string, call *calendar.EventsListCall, eventCh chan eventOrError) {
	c.logf(calendarID, "checking for events")

	defer close(eventCh)

	var nextPageToken string
	for {
		events, err := call.PageToken(nextPageToken).Do()
		if err != nil {
			if shouldRetry(err) {
				time.Sleep(defaultSleep)
				continue
			}
			c.logf(calendarID, "unable to get list of events: %v", err)
			eventCh <- eventOrError{err: classify("listing events", err)}
			return
		}

		for _, item := range events.Items {
			eventCh <- eventOrError{e: newEvent(item)}
		}
		nextPageToken = events.NextPageToken
		if nextPageToken == "" {
			return
		}
	}
}

func (c Client) CreateEvent(ctx context.Context, calendarID string, draft *availsync.EventDraft) (string, error) {
	c.logf(calendarID, "creating event: %q on %s", draft.Title, draft.StartsAt)

	svc, err := c.calendarSvc(ctx)
	if err != nil {
		return "", err
	}
	for {
		gevent, err := svc.Events.Insert(calendarID, newGoogleEvent(draft)).Context(ctx).Do()
		if err == nil {
			return gevent.Id, nil
		}
		if shouldRetry(err) {
			time.Sleep(defaultSleep)
			continue
		}
		return "", classify("creating event", err)
	}
}

func (c Client) UpdateEvent(ctx context.Context, calendarID, eventID string, draft *availsync.EventDraft) error {
	c.logf(calendarID, "updating event %s: %q on %s", eventID, draft.Title, draft.StartsAt)

	svc, err := c.calendarSvc(ctx)
	if err != nil {
		return err
	}
	for {
		_, err := svc.Events.Update(calendarID, eventID, newGoogleEvent(draft)).Context(ctx).Do()
		if err == nil {
			return nil
		}
		if shouldRetry(err) {
			time.Sleep(defaultSleep)
			continue
		}
		return classify("updating event", err)
	}
}

func (c Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	c.logf(calendarID, "deleting event %s", eventID)

	svc, err := c.calendarSvc(ctx)
	if err != nil {
		return err
	}
	for {
		err = svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
		if err == nil || alreadyDeleted(err) {
			return nil
		}
		if shouldRetry(err) {
			time.Sleep(defaultSleep)
			continue
		}
		return classify("deleting event", err)
	}
}

// Login runs the OAuth flow and returns the token blob to be stored.
// promptURL is called with the URL the user has to open.
func (c Client) Login(ctx context.Context, promptURL func(authURL string)) ([]byte, error) {
	state := fmt.Sprintf("availsync-%d", time.Now().UTC().Nanosecond())
	authURL := c.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	promptURL(authURL)

	mux := http.NewServeMux()
	server := &http.Server{
		Addr:    ":8080",
		Handler: mux,
	}

	var (
		token   *oauth2.Token
		authErr error
	)

	mux.HandleFunc("/availsync", func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			go server.Shutdown(ctx)
		}()

		query := req.URL.Query()
		if query.Get("state") != state {
			authErr = errors.New("oauth link is not valid")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		token, authErr = c.oauthCfg.Exchange(ctx, query.Get("code"))
		if authErr != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintln(w, "Unable to retrieve token:", authErr)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "All good, you can close this window!")
	})

	serverCh := make(chan struct{})
	var svrErr error
	go func() {
		svrErr = server.ListenAndServe()
		close(serverCh)
	}()

	<-serverCh

	if svrErr != nil && svrErr != http.ErrServerClosed {
		return nil, svrErr
	}
	if authErr != nil {
		return nil, authErr
	}
	return json.Marshal(token)
}

func (c Client) calendarSvc(ctx context.Context) (*calendar.Service, error) {
	var tok *oauth2.Token
	err := json.Unmarshal(c.tokenJSON, &tok)
	if err != nil {
		return nil, fmt.Errorf("google: decoding stored token: %w", err)
	}
	httpClient := c.oauthCfg.Client(ctx, tok)
	return calendar.NewService(ctx, option.WithHTTPClient(httpClient))
}

func (c Client) logf(calendarID, format string, a ...any) {
	if c.Verbose {
		availsync.Logf(os.Stdout, "google:", Platform+"/"+calendarID, format, a...)
	}
}

// classify maps permission failures to the shared sentinel so the
// scheduler can skip the pass instead of treating it as transient.
func classify(op string, err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && (gErr.Code == http.StatusForbidden || gErr.Code == http.StatusUnauthorized) {
		return fmt.Errorf("google: %s: %w", op, availsync.ErrPermissionDenied)
	}
	return fmt.Errorf("google: %s: %w", op, err)
}

func shouldRetry(err error) bool {
	return errIsReason(err, "rateLimitExceeded")
}

func alreadyDeleted(err error) bool {
	return errIsReason(err, "deleted")
}

func errIsReason(err error, reason string) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}

	for _, err := range gErr.Errors {
		switch err.Reason {
		case reason:
			return true
		}
	}
	return false
}
