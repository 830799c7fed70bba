package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"

	"github.com/spencer-p/winddash/pkg/api"
	"github.com/spencer-p/winddash/pkg/dashboard"
	"github.com/spencer-p/winddash/pkg/handlers"
	"github.com/spencer-p/winddash/pkg/metrics"
	"github.com/spencer-p/winddash/pkg/noaa"
	"github.com/spencer-p/winddash/pkg/openmeteo"
	"github.com/spencer-p/winddash/pkg/series"
	"github.com/spencer-p/winddash/pkg/sunset"
)

type Config struct {
	Port   string `default:"8080"`
	Prefix string `default:"/"`

	Latitude  float64 `default:"46.244"`
	Longitude float64 `default:"-1.561"`
	Timezone  string  `default:"Europe/Paris"`

	TideSource  string        `split_words:"true" default:"openmeteo"`
	NOAAStation noaa.Station  `envconfig:"NOAA_STATION"`
	CacheTTL    time.Duration `split_words:"true" default:"1h"`

	NullPolicy       series.NullPolicy `split_words:"true" default:"keep"`
	DefaultThreshold float64           `split_words:"true" default:"1.0"`
	SessionTTL       time.Duration     `split_words:"true" default:"24h"`

	SessionKey      string `split_words:"true"`
	EncryptionKey   string `split_words:"true"`
	InsecureCookies bool   `split_words:"true"`
}

func main() {
	var env Config
	if err := envconfig.Process("", &env); err != nil {
		log.Fatal(err.Error())
	}

	place, err := sunset.NewPlace(env.Latitude, env.Longitude, env.Timezone)
	if err != nil {
		log.Fatal(err.Error())
	}

	svc, err := newService(env, place)
	if err != nil {
		log.Fatal(err.Error())
	}

	registry := dashboard.NewRegistry(env.SessionTTL, dashboard.Options{
		Fetcher:   svc,
		Place:     place,
		Policy:    env.NullPolicy,
		Threshold: env.DefaultThreshold,
	})
	go sweep(registry, env.SessionTTL)

	r := mux.NewRouter().StrictSlash(true)
	r.Use(metrics.LatencyHandler)
	r.Handle("/metrics", metrics.Handler())

	s := r.PathPrefix(env.Prefix).Subrouter()
	api.Register(s, svc)
	handlers.Register(s, handlers.Config{
		Registry:         registry,
		Location:         place.Location,
		DefaultThreshold: env.DefaultThreshold,
		Prefix:           env.Prefix,
		SessionKey:       env.SessionKey,
		EncryptionKey:    env.EncryptionKey,
		Insecure:         env.InsecureCookies,
	})

	srv := &http.Server{
		Handler:      r,
		Addr:         "0.0.0.0:" + env.Port,
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	log.Printf("Listening and serving on %s/%s", srv.Addr, env.Prefix[1:])
	log.Fatal(srv.ListenAndServe())
}

// newService wires the upstreams. Forecasts always come from Open-Meteo,
// tides from either. Observations need a NOAA station near the place and are
// empty without one.
func newService(env Config, place sunset.Place) (*api.Service, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client := &http.Client{Timeout: 20 * time.Second}

	meteo := openmeteo.NewClient(place, client, env.CacheTTL, logger)
	var coops *noaa.Client
	var observations api.ObservationSource = api.NoObservations{}
	if env.NOAAStation != 0 {
		coops = noaa.NewClient(env.NOAAStation, place, client, env.CacheTTL, logger)
		observations = coops
	}

	var tides api.TideSource
	switch env.TideSource {
	case "openmeteo":
		tides = meteo
	case "noaa":
		if coops == nil {
			return nil, fmt.Errorf("TIDE_SOURCE=noaa needs NOAA_STATION")
		}
		tides = coops
	default:
		return nil, fmt.Errorf("unknown TIDE_SOURCE %q, want openmeteo or noaa", env.TideSource)
	}
	if coops == nil {
		log.Printf("Serving %.3f,%.3f (%s) with tides from %s, no observation station",
			place.Lat, place.Long, place.Location, env.TideSource)
	} else {
		log.Printf("Serving %.3f,%.3f (%s) with tides from %s, NOAA station %d",
			place.Lat, place.Long, place.Location, env.TideSource, env.NOAAStation)
	}

	return api.NewService(meteo, tides, observations, place.Location), nil
}

func sweep(registry *dashboard.Registry, ttl time.Duration) {
	for range time.Tick(ttl / 2) {
		if n := registry.Sweep(); n > 0 {
			log.Printf("Dropped %d idle dashboards", n)
		}
	}
}
