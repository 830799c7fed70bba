// Package openmeteo queries the Open-Meteo forecast and marine APIs for
// hourly wind and sea level data at one place.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spencer-p/winddash/pkg/payload"
	"github.com/spencer-p/winddash/pkg/sunset"
	"github.com/spencer-p/winddash/pkg/timetricks"
	"github.com/spencer-p/winddash/pkg/upstream"
)

const (
	ForecastURL = "https://api.open-meteo.com/v1/forecast"
	MarineURL   = "https://marine-api.open-meteo.com/v1/marine"
)

// Client fetches hourly payloads for a fixed place.
type Client struct {
	ForecastURL string
	MarineURL   string
	Place       sunset.Place

	forecast *upstream.HTTPProvider
	marine   *upstream.HTTPProvider
	logger   *slog.Logger
}

func NewClient(place sunset.Place, client *http.Client, ttl time.Duration, logger *slog.Logger) *Client {
	return &Client{
		ForecastURL: ForecastURL,
		MarineURL:   MarineURL,
		Place:       place,
		forecast:    upstream.NewHTTPProvider("open-meteo forecast", client, ttl, logger),
		marine:      upstream.NewHTTPProvider("open-meteo marine", client, ttl, logger),
		logger:      logger,
	}
}

// Forecast returns hourly wind speed and direction per model for the
// inclusive day range.
func (c *Client) Forecast(ctx context.Context, start, end time.Time) (*payload.HourlyResponse, error) {
	vals := c.baseQuery(start, end)
	vals.Set("hourly", "windspeed_10m,winddirection_10m")
	vals.Set("models", strings.Join(payload.Models, ","))
	vals.Set("windspeed_unit", "kmh")

	resp, err := c.get(ctx, c.forecast, c.ForecastURL, vals)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Tides returns the hourly sea level relative to mean sea level.
func (c *Client) Tides(ctx context.Context, start, end time.Time) (*payload.HourlyResponse, error) {
	vals := c.baseQuery(start, end)
	vals.Set("hourly", payload.SeaLevel)

	resp, err := c.get(ctx, c.marine, c.MarineURL, vals)
	if err != nil {
		return nil, err
	}
	if err := resp.Validate(payload.SeaLevel); err != nil {
		return nil, fmt.Errorf("open-meteo marine: %w", err)
	}
	return resp, nil
}

func (c *Client) baseQuery(start, end time.Time) url.Values {
	vals := make(url.Values)
	vals.Set("latitude", strconv.FormatFloat(c.Place.Lat, 'f', -1, 64))
	vals.Set("longitude", strconv.FormatFloat(c.Place.Long, 'f', -1, 64))
	vals.Set("start_date", timetricks.FormatDay(start))
	vals.Set("end_date", timetricks.FormatDay(end))
	vals.Set("timezone", c.Place.Location.String())
	return vals
}

// apiError is the body Open-Meteo sends with a 400.
type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

func (c *Client) get(ctx context.Context, p *upstream.HTTPProvider, base string, vals url.Values) (*payload.HourlyResponse, error) {
	addr, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	addr.RawQuery = vals.Encode()

	body, err := p.Get(ctx, addr.String())
	if err != nil {
		var se *upstream.StatusError
		if errors.As(err, &se) {
			var ae apiError
			if json.Unmarshal(se.Body, &ae) == nil && ae.Reason != "" {
				return nil, fmt.Errorf("%s: %s", p.Source, ae.Reason)
			}
		}
		return nil, err
	}

	var resp payload.HourlyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: decoding: %w", p.Source, err)
	}
	return &resp, nil
}
