// Package remote is the HTTP client for the availability store. All
// entries cross the wire with full ISO-8601 UTC timestamps; bare local
// times are never sent.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stagecall/availsync"
)

type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

func NewClient(baseURL, authToken string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type bulkRequest struct {
	Entries []availsync.AvailabilityEntry `json:"entries"`
}

type batchDeleteRequest struct {
	EventIDs []string `json:"eventIds"`
}

// conflictBody is the structured detail the store returns on 409.
type conflictBody struct {
	Detail string   `json:"detail"`
	Dates  []string `json:"dates"`
}

// BulkUpsert sends the whole batch in one request; the store is
// responsible for applying it transactionally.
func (c *Client) BulkUpsert(ctx context.Context, entries []availsync.AvailabilityEntry) error {
	_, err := c.do(ctx, http.MethodPost, "/availability/bulk", bulkRequest{Entries: entries})
	return err
}

func (c *Client) List(ctx context.Context) ([]availsync.AvailabilityEntry, error) {
	body, err := c.do(ctx, http.MethodGet, "/availability", nil)
	if err != nil {
		return nil, err
	}
	var entries []availsync.AvailabilityEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("remote: decoding availability: %w", err)
	}
	return entries, nil
}

func (c *Client) DeleteDate(ctx context.Context, date availsync.Date) error {
	_, err := c.do(ctx, http.MethodDelete, "/availability/"+date.String(), nil)
	return err
}

func (c *Client) DeleteImportedAll(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/availability/imported/all", nil)
	return err
}

func (c *Client) DeleteImportedBatch(ctx context.Context, eventIDs []string) error {
	_, err := c.do(ctx, http.MethodDelete, "/availability/imported/batch", batchDeleteRequest{EventIDs: eventIDs})
	return err
}

// Rehearsals lists the rehearsals the authenticated user is called to.
func (c *Client) Rehearsals(ctx context.Context) ([]availsync.Rehearsal, error) {
	body, err := c.do(ctx, http.MethodGet, "/rehearsals/mine", nil)
	if err != nil {
		return nil, err
	}
	var rehearsals []availsync.Rehearsal
	if err := json.Unmarshal(body, &rehearsals); err != nil {
		return nil, fmt.Errorf("remote: decoding rehearsals: %w", err)
	}
	return rehearsals, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	op := method + " " + path

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &availsync.NetworkError{Op: op, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &availsync.NetworkError{Op: op, Err: err}
	}

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return body, nil
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w", op, availsync.ErrPermissionDenied)
	case res.StatusCode == http.StatusConflict:
		var conflict conflictBody
		if err := json.Unmarshal(body, &conflict); err != nil || conflict.Detail == "" {
			conflict.Detail = strings.TrimSpace(string(body))
		}
		return nil, &availsync.ConflictError{Detail: conflict.Detail, Dates: conflict.Dates}
	default:
		return nil, &availsync.NetworkError{
			Op:  op,
			Err: fmt.Errorf("unexpected status %d: %s", res.StatusCode, strings.TrimSpace(string(body))),
		}
	}
}
