// Package client is a typed HTTP client for the guestbook REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"guestbook/internal/dto"
)

// ErrTransport wraps failures to reach the API at all.
var ErrTransport = errors.New("transport error")

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// NotFound reports whether the entry did not exist.
func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

// Invalid reports whether the API rejected the request body.
func (e *APIError) Invalid() bool { return e.Status == http.StatusBadRequest }

type Entry = dto.EntryResponse

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the collection URL, e.g.
// http://localhost:8080/api/guestbook. A nil httpClient uses a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) List(ctx context.Context) ([]Entry, error) {
	list := []Entry{}
	if err := c.do(ctx, http.MethodGet, c.baseURL, nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []Entry{}
	}
	return list, nil
}

func (c *Client) Create(ctx context.Context, name, message string) (Entry, error) {
	var e Entry
	err := c.do(ctx, http.MethodPost, c.baseURL, dto.EntryRequest{Name: name, Message: message}, &e)
	return e, err
}

func (c *Client) Update(ctx context.Context, id int64, name, message string) (Entry, error) {
	var e Entry
	err := c.do(ctx, http.MethodPut, c.entryURL(id), dto.EntryRequest{Name: name, Message: message}, &e)
	return e, err
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	var ack dto.AckResponse
	return c.do(ctx, http.MethodDelete, c.entryURL(id), nil, &ack)
}

func (c *Client) entryURL(id int64) string {
	return c.baseURL + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var er dto.ErrorResponse
		if json.Unmarshal(data, &er) == nil && er.Error != "" {
			apiErr.Message = er.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, url, err)
	}
	return nil
}
