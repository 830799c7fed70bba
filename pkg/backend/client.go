// Package backend is a client for the winddash JSON API.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spencer-p/winddash/pkg/payload"
	"github.com/spencer-p/winddash/pkg/timetricks"
)

const maxBody = 8 << 20

// ErrMalformed is returned for successful responses that lack required
// fields.
var ErrMalformed = payload.ErrMalformed

// Error is a failed API call. Detail is the server's detail message, or a
// description of the transport failure when Status is 0.
type Error struct {
	Source string
	Status int
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Detail)
}

// Client calls a winddash backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Forecast fetches wind for one day from every model.
func (c *Client) Forecast(ctx context.Context, day time.Time) (*payload.HourlyResponse, error) {
	var resp payload.HourlyResponse
	if err := c.get(ctx, "forecast", "/api/forecast", url.Values{"date": {timetricks.FormatDay(day)}}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	return &resp, nil
}

// Weather fetches wind for an inclusive day range.
func (c *Client) Weather(ctx context.Context, start, end time.Time) (*payload.HourlyResponse, error) {
	q := url.Values{
		"start_date": {timetricks.FormatDay(start)},
		"end_date":   {timetricks.FormatDay(end)},
	}
	var resp payload.HourlyResponse
	if err := c.get(ctx, "weather", "/api/weather", q, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}
	return &resp, nil
}

func (c *Client) Tides(ctx context.Context, day time.Time) (*payload.HourlyResponse, error) {
	var resp payload.HourlyResponse
	if err := c.get(ctx, "tides", "/api/tides", url.Values{"date": {timetricks.FormatDay(day)}}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate(payload.SeaLevel); err != nil {
		return nil, fmt.Errorf("tides: %w", err)
	}
	return &resp, nil
}

func (c *Client) Observations(ctx context.Context, day time.Time) (*payload.ObservationsResponse, error) {
	var resp payload.ObservationsResponse
	if err := c.get(ctx, "observations", "/api/observations", url.Values{"date": {timetricks.FormatDay(day)}}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("observations: %w", err)
	}
	return &resp, nil
}

// GroundTruthHourly fetches the day's observations averaged per hour.
func (c *Client) GroundTruthHourly(ctx context.Context, day time.Time) (*payload.HourlyResponse, error) {
	var resp payload.HourlyResponse
	if err := c.get(ctx, "ground truth", "/api/groundtruth_hourly", url.Values{"date_str": {timetricks.FormatDay(day)}}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("ground truth: %w", err)
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, source, path string, q url.Values, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return &Error{Source: source, Detail: err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &Error{Source: source, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &Error{Source: source, Status: resp.StatusCode, Detail: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Source: source, Status: resp.StatusCode, Detail: detail(resp.StatusCode, body)}
	}

	if err := json.Unmarshal(body, into); err != nil {
		return fmt.Errorf("%s: %w: %v", source, ErrMalformed, err)
	}
	return nil
}

// detail extracts the server's detail message, falling back to the status
// text.
func detail(status int, body []byte) string {
	var e payload.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}

// Detail returns the human readable part of err: the server detail for an
// *Error, otherwise the error text.
func Detail(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Detail
	}
	return err.Error()
}
