// Package dashboard holds the state of one viewer's charts and orchestrates
// fetching, rendering and threshold changes.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spencer-p/winddash/pkg/backend"
	"github.com/spencer-p/winddash/pkg/crossing"
	"github.com/spencer-p/winddash/pkg/meta"
	"github.com/spencer-p/winddash/pkg/metrics"
	"github.com/spencer-p/winddash/pkg/payload"
	"github.com/spencer-p/winddash/pkg/series"
	"github.com/spencer-p/winddash/pkg/sunset"
	"github.com/spencer-p/winddash/pkg/visualize"
)

// ErrStale is returned by a refresh that was overtaken by a newer one. Its
// results are discarded.
var ErrStale = errors.New("refresh superseded by a newer one")

// Fetcher loads one day of each data set. Both the remote backend client and
// the in-process api.Service implement it.
type Fetcher interface {
	Forecast(ctx context.Context, day time.Time) (*payload.HourlyResponse, error)
	Observations(ctx context.Context, day time.Time) (*payload.ObservationsResponse, error)
	Tides(ctx context.Context, day time.Time) (*payload.HourlyResponse, error)
}

var _ Fetcher = &backend.Client{}

// Options configure new sessions.
type Options struct {
	Fetcher   Fetcher
	Place     sunset.Place
	Policy    series.NullPolicy
	Threshold float64
	Size      visualize.Size
}

// Data is the series behind the charts.
type Data struct {
	Speeds     []series.Series
	Directions []series.Series
	Tide       series.Series
}

// Session is one viewer's dashboard. It is safe for concurrent use.
type Session struct {
	ID string

	opts     Options
	debounce *Debouncer
	now      func() time.Time

	mu         sync.Mutex
	query      Query
	generation uint64
	busy       bool
	status     string
	threshold  float64
	size       visualize.Size
	data       *Data
	sun        sunset.SunEvents
	crossings  []crossing.Crossing
	windows    []meta.Window
	speed      *visualize.WindSpeed
	direction  *visualize.WindDirection
	tide       *visualize.Tide
}

func NewSession(id string, opts Options) *Session {
	if opts.Place.Location == nil {
		opts.Place.Location = time.Local
	}
	return &Session{
		ID:        id,
		opts:      opts,
		debounce:  NewDebouncer(ResizeQuiet),
		now:       time.Now,
		threshold: opts.Threshold,
		size:      opts.Size,
		crossings: []crossing.Crossing{},
	}
}

// sourceError names which fetch failed.
type sourceError struct {
	source string
	err    error
}

func (e *sourceError) Error() string { return fmt.Sprintf("%s: %v", e.source, e.err) }
func (e *sourceError) Unwrap() error { return e.err }

type fetched struct {
	forecasts    []*payload.HourlyResponse
	observations []*payload.ObservationsResponse
	tides        []*payload.HourlyResponse
}

// Refresh fetches and renders q. A query without dates only sets a prompt.
// On any failure the previous charts stay on screen and the status says what
// went wrong.
func (s *Session) Refresh(ctx context.Context, q Query) error {
	s.mu.Lock()
	s.query = q
	// Any refresh still in flight is superseded, even by a bare prompt.
	s.generation++
	gen := s.generation
	days, err := q.Days(s.opts.Place.Location)
	if err != nil {
		s.status = q.prompt(err)
		s.busy = false
		s.mu.Unlock()
		return err
	}
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation == gen {
			s.busy = false
		}
	}()

	got, err := s.fetch(ctx, days)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		metrics.ObserveStaleRefresh()
		return ErrStale
	}
	if err != nil {
		var se *sourceError
		if errors.As(err, &se) {
			s.status = errorStatus(se.source, backend.Detail(se.err))
		} else {
			s.status = errorStatus(err.Error())
		}
		log.Printf("Refresh of %v failed: %v", q, err)
		return err
	}

	data, err := s.assemble(got)
	if err != nil {
		s.status = errorStatus(err.Error())
		log.Printf("Refresh of %v returned bad data: %v", q, err)
		return err
	}

	sun := sunset.GetSunEvents(days[0], len(days), s.opts.Place)
	if err := s.render(data, sun); err != nil {
		s.status = errorStatus(err.Error())
		return err
	}
	s.status = ""
	return nil
}

func (s *Session) fetch(ctx context.Context, days []time.Time) (*fetched, error) {
	got := &fetched{
		forecasts:    make([]*payload.HourlyResponse, len(days)),
		observations: make([]*payload.ObservationsResponse, len(days)),
		tides:        make([]*payload.HourlyResponse, len(days)),
	}
	f := s.opts.Fetcher

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for i, day := range days {
			resp, err := f.Forecast(ctx, day)
			if err != nil {
				return &sourceError{"forecast", err}
			}
			got.forecasts[i] = resp
		}
		return nil
	})
	g.Go(func() error {
		for i, day := range days {
			resp, err := f.Observations(ctx, day)
			if err != nil {
				return &sourceError{"observations", err}
			}
			got.observations[i] = resp
		}
		return nil
	})
	g.Go(func() error {
		for i, day := range days {
			resp, err := f.Tides(ctx, day)
			if err != nil {
				return &sourceError{"tides", err}
			}
			got.tides[i] = resp
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return got, nil
}

// assemble joins the per day payloads into series and applies the null
// policy.
func (s *Session) assemble(got *fetched) (*Data, error) {
	loc := s.opts.Place.Location
	policy := s.opts.Policy
	data := &Data{}

	for _, model := range payload.Models {
		speed, err := joinHourly(got.forecasts, payload.WindSpeedPrefix+model, "km/h", loc)
		if errors.Is(err, payload.ErrMissingColumn) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("forecast: %w", err)
		}
		dir, err := joinHourly(got.forecasts, payload.WindDirectionPrefix+model, "°", loc)
		if err != nil && !errors.Is(err, payload.ErrMissingColumn) {
			return nil, fmt.Errorf("forecast: %w", err)
		}
		data.Speeds = append(data.Speeds, policy.Apply(speed))
		if err == nil {
			data.Directions = append(data.Directions, policy.Apply(dir))
		}
	}

	var speeds, dirs []series.Series
	for _, obs := range got.observations {
		speed, dir, err := obs.Columns(loc)
		if err != nil {
			return nil, fmt.Errorf("observations: %w", err)
		}
		speeds, dirs = append(speeds, speed), append(dirs, dir)
	}
	speed, err := join(speeds)
	if err != nil {
		return nil, fmt.Errorf("observations: %w", err)
	}
	dir, err := join(dirs)
	if err != nil {
		return nil, fmt.Errorf("observations: %w", err)
	}
	data.Speeds = append(data.Speeds, policy.Apply(speed))
	data.Directions = append(data.Directions, policy.Apply(dir))

	tide, err := joinHourly(got.tides, payload.SeaLevel, "m", loc)
	if err != nil {
		return nil, fmt.Errorf("tides: %w", err)
	}
	data.Tide = policy.Apply(tide)
	return data, nil
}

func joinHourly(resps []*payload.HourlyResponse, column, unit string, loc *time.Location) (series.Series, error) {
	parts := make([]series.Series, 0, len(resps))
	for _, resp := range resps {
		if err := resp.Validate(); err != nil {
			return series.Series{}, err
		}
		part, err := resp.Hourly.Series(column, unit, loc)
		if err != nil {
			return series.Series{}, err
		}
		parts = append(parts, part)
	}
	return join(parts)
}

// join concatenates consecutive days of one series.
func join(parts []series.Series) (series.Series, error) {
	if len(parts) == 0 {
		return series.Series{}, nil
	}
	var samples []series.Sample
	for _, p := range parts {
		samples = append(samples, p.Samples...)
	}
	s, err := series.New(parts[0].Name, parts[0].Unit, samples)
	if err != nil {
		return s, fmt.Errorf("%w: %v", payload.ErrMalformed, err)
	}
	return s, nil
}

// render replaces the charts. Old charts are destroyed only once every new
// one was built. Must hold s.mu.
func (s *Session) render(data *Data, sun sunset.SunEvents) error {
	speed, err := visualize.NewWindSpeed(s.size, data.Speeds...)
	if err != nil {
		return fmt.Errorf("wind speed chart: %w", err)
	}
	direction, err := visualize.NewWindDirection(s.size.Width, visualize.WindowOf(data.Speeds...), data.Directions...)
	if err != nil {
		speed.Destroy()
		return fmt.Errorf("wind direction chart: %w", err)
	}
	tide, err := visualize.NewTide(s.size, data.Tide, sun, s.threshold)
	if err != nil {
		speed.Destroy()
		direction.Destroy()
		return fmt.Errorf("tide chart: %w", err)
	}

	s.destroyCharts()
	s.speed, s.direction, s.tide = speed, direction, tide
	s.data = data
	s.sun = sun
	s.syncCrossings()
	return nil
}

// syncCrossings recomputes crossings and windows for the current threshold
// and pushes them onto the tide chart. Must hold s.mu.
func (s *Session) syncCrossings() {
	s.crossings = crossing.Find(s.data.Tide.Samples, s.threshold)
	s.windows = meta.Windows(s.data.Tide.Samples, s.crossings, s.sun, s.threshold)
	crossing.Now(s.tide, s.data.Tide, s.now())
	crossing.Sync(s.tide, s.crossings, s.opts.Place.Location)
}

func (s *Session) destroyCharts() {
	if s.speed != nil {
		s.speed.Destroy()
	}
	if s.direction != nil {
		s.direction.Destroy()
	}
	if s.tide != nil {
		s.tide.Destroy()
	}
	s.speed, s.direction, s.tide = nil, nil, nil
}

// SetThreshold moves the threshold line and returns the new crossings. It is
// the end of a drag: the chart redraws once, without animation.
func (s *Session) SetThreshold(height float64) []crossing.Crossing {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threshold = height
	if s.tide == nil || s.data == nil {
		return []crossing.Crossing{}
	}
	s.tide.SetThreshold(height)
	s.syncCrossings()
	return append([]crossing.Crossing{}, s.crossings...)
}

// Step moves the query by days and refreshes.
func (s *Session) Step(ctx context.Context, days int) error {
	s.mu.Lock()
	q := s.query.Step(days, s.opts.Place.Location)
	s.mu.Unlock()
	return s.Refresh(ctx, q)
}

// Resize redraws the charts at a new size once resizing settles.
func (s *Session) Resize(width, height int) {
	s.debounce.Trigger(func() {
		s.resize(visualize.Size{Width: width, Height: height})
	})
}

func (s *Session) resize(size visualize.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.size = size
	var errs []error
	if s.speed != nil {
		errs = append(errs, s.speed.Resize(size))
	}
	if s.direction != nil {
		errs = append(errs, s.direction.Resize(size))
	}
	if s.tide != nil {
		errs = append(errs, s.tide.Resize(size))
	}
	if err := errors.Join(errs...); err != nil {
		log.Printf("Failed to resize charts: %v", err)
	}
}

// Close stops pending work and destroys the charts.
func (s *Session) Close() {
	s.debounce.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyCharts()
}

// Snapshot is a consistent copy of what the session shows.
type Snapshot struct {
	Query     Query
	Status    string
	Busy      bool
	Threshold float64
	Crossings []crossing.Crossing
	Windows   []meta.Window

	WindSpeedSVG     []byte
	WindDirectionSVG []byte
	TideSVG          []byte
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Query:     s.query,
		Status:    s.status,
		Busy:      s.busy,
		Threshold: s.threshold,
		Crossings: append([]crossing.Crossing{}, s.crossings...),
		Windows:   append([]meta.Window{}, s.windows...),
	}
	if s.speed != nil {
		snap.WindSpeedSVG = encode(s.speed)
	}
	if s.direction != nil {
		snap.WindDirectionSVG = encode(s.direction)
	}
	if s.tide != nil {
		snap.TideSVG = encode(s.tide)
	}
	return snap
}

// TideSVG is the current tide chart, or nil.
func (s *Session) TideSVG() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tide == nil {
		return nil
	}
	return encode(s.tide)
}

// Data returns the series behind the current charts, or nil.
func (s *Session) Data() *Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

func encode(c visualize.Chart) []byte {
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		log.Printf("Failed to encode chart: %v", err)
		return nil
	}
	return buf.Bytes()
}
