package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/spencer-p/winddash/pkg/payload"
	"github.com/spencer-p/winddash/pkg/timetricks"
)

const jsonContentType = "application/json"

// Register mounts the backend endpoints on r.
func Register(r *mux.Router, svc *Service) {
	r.Handle("/api/forecast", makeDayHandler(svc, "date", "forecast", func(req *http.Request, day time.Time) (any, error) {
		return svc.Forecast(req.Context(), day)
	})).Methods(http.MethodGet)
	r.Handle("/api/tides", makeDayHandler(svc, "date", "tides", func(req *http.Request, day time.Time) (any, error) {
		return svc.Tides(req.Context(), day)
	})).Methods(http.MethodGet)
	r.Handle("/api/observations", makeDayHandler(svc, "date", "observations", func(req *http.Request, day time.Time) (any, error) {
		return svc.Observations(req.Context(), day)
	})).Methods(http.MethodGet)
	r.Handle("/api/groundtruth_hourly", makeDayHandler(svc, "date_str", "ground truth", func(req *http.Request, day time.Time) (any, error) {
		return svc.GroundTruthHourly(req.Context(), day)
	})).Methods(http.MethodGet)
	r.Handle("/api/weather", makeWeatherHandler(svc)).Methods(http.MethodGet)
}

type dayFunc func(r *http.Request, day time.Time) (any, error)

func makeDayHandler(svc *Service, param, what string, fetch dayFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		day, err := timetricks.ParseDay(r.FormValue(param), svc.Location())
		if err != nil {
			renderDetail(w, http.StatusBadRequest, dateDetail(param, err))
			return
		}
		result, err := fetch(r, day)
		if err != nil {
			renderFailure(w, what, err)
			return
		}
		renderJSON(w, result)
	})
}

func makeWeatherHandler(svc *Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, err := timetricks.ParseDay(r.FormValue("start_date"), svc.Location())
		if err != nil {
			renderDetail(w, http.StatusBadRequest, dateDetail("start_date", err))
			return
		}

		var end time.Time
		if period := r.FormValue("period"); period != "" && r.FormValue("end_date") == "" {
			end, err = timetricks.PeriodEnd(start, period)
			if err != nil {
				renderDetail(w, http.StatusBadRequest, err.Error())
				return
			}
		} else {
			end, err = timetricks.ParseDay(r.FormValue("end_date"), svc.Location())
			if err != nil {
				renderDetail(w, http.StatusBadRequest, dateDetail("end_date", err))
				return
			}
		}

		log.Printf("Fetching weather from %s to %s", timetricks.FormatDay(start), timetricks.FormatDay(end))
		result, err := svc.Weather(r.Context(), start, end)
		if err != nil {
			renderFailure(w, "weather", err)
			return
		}
		renderJSON(w, result)
	})
}

func dateDetail(param string, err error) string {
	if errors.Is(err, timetricks.ErrMissingDate) {
		return fmt.Sprintf("Missing %s parameter in YYYY-MM-DD format", param)
	}
	return fmt.Sprintf("Invalid %s: %v", param, err)
}

func renderFailure(w http.ResponseWriter, what string, err error) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		renderDetail(w, http.StatusBadRequest, reqErr.Detail)
		return
	}
	log.Printf("Failed to fetch %s: %v", what, err)
	renderDetail(w, http.StatusBadGateway, fmt.Sprintf("Error fetching %s: %v", what, err))
}

func renderDetail(w http.ResponseWriter, code int, detail string) {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload.ErrorResponse{Detail: detail}); err != nil {
		log.Printf("Failed to encode error detail: %v", err)
	}
}

func renderJSON(w http.ResponseWriter, data any) {
	buf, err := json.Marshal(data)
	if err != nil {
		renderDetail(w, http.StatusInternalServerError, fmt.Sprintf("failed to marshal data: %v", err))
		return
	}
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}
