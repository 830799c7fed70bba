package handlers

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"math"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/spencer-p/winddash/pkg/crossing"
	"github.com/spencer-p/winddash/pkg/dashboard"
	"github.com/spencer-p/winddash/pkg/payload"
)

const jsonContentType = "application/json"

type TemplateInput struct {
	Prefix          string
	ThresholdAction string

	Date     string
	PrevDate string
	NextDate string
	Busy     bool
	Status   string

	Threshold float64
	Crossings []string
	Windows   []windowView

	WindSpeed     template.HTML
	WindDirection template.HTML
	Tide          template.HTML
}

// makeServerSideIndex serves the dashboard fully rendered on the server.
func (s *server) makeServerSideIndex(content embed.FS) http.HandlerFunc {
	indexTemplate := template.Must(template.ParseFS(content, "static/index.template.html"))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.store.Get(r, sessionName)
		dash := s.dashboardFor(session)

		threshold := s.threshold(session)
		if h, err := parseHeight(r.FormValue("threshold")); err == nil {
			threshold = h
			session.Values[thresholdKey] = h
		}
		session.Values[sessionLastViewed] = withoutThreshold(r.URL)
		if err := session.Save(r, w); err != nil {
			log.Println("save session err", err)
		}

		// No date at all means today. An empty date is left for the
		// dashboard to ask for.
		q := dashboard.Query{Date: r.FormValue("date"), Start: r.FormValue("start"), End: r.FormValue("end")}
		if _, set := r.Form["date"]; !set && !q.Ranged() {
			q.Date = time.Now().In(s.Location).Format("2006-01-02")
		}

		dash.SetThreshold(threshold)
		if err := dash.Refresh(r.Context(), q); err != nil && !errors.Is(err, dashboard.ErrStale) {
			log.Printf("Failed to refresh dashboard %s for %v: %v", dash.ID, q, err)
		}
		snap := dash.Snapshot()

		tinput := TemplateInput{
			Prefix:          s.Prefix,
			ThresholdAction: pathJoinPreservePrefix(s.Prefix, "/threshold"),
			Date:            q.Date,
			Busy:            snap.Busy,
			Status:          snap.Status,
			Threshold:       snap.Threshold,
			Windows:         windowViews(snap.Windows),
			WindSpeed:       template.HTML(snap.WindSpeedSVG),
			WindDirection:   template.HTML(snap.WindDirectionSVG),
			Tide:            template.HTML(snap.TideSVG),
		}
		if q.Date != "" {
			tinput.PrevDate = q.Step(-1, s.Location).Date
			tinput.NextDate = q.Step(1, s.Location).Date
		}
		tinput.Crossings = crossingTimes(snap.Crossings, q, s.Location)

		w.Header().Add("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if err := indexTemplate.Execute(w, tinput); err != nil {
			log.Printf("Failed to execute template: %v", err)
		}
	})
}

// makeSetThreshold stores the threshold from the form and sends the viewer
// back to the page they came from.
func (s *server) makeSetThreshold() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.store.Get(r, sessionName)

		if err := r.ParseForm(); err != nil {
			msg := fmt.Sprintf("Failed to parse form: %v", err)
			log.Println(msg)
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, msg)
			return
		}
		h, err := parseHeight(r.PostForm.Get("height"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "Invalid threshold: %v", err)
			return
		}

		session.Values[thresholdKey] = h
		s.dashboardFor(session).SetThreshold(h)
		if err := session.Save(r, w); err != nil {
			log.Println("save session err", err)
		}

		// Redirect to whatever they saw last, or the index.
		referredFrom, ok := session.Values[sessionLastViewed].(string)
		if !ok {
			referredFrom = "/"
		}
		http.Redirect(w, r, pathJoinPreservePrefix(s.Prefix, referredFrom), http.StatusFound)
	}
}

// ThresholdResponse is the result of moving the threshold.
type ThresholdResponse struct {
	Threshold float64             `json:"threshold"`
	Crossings []crossing.Crossing `json:"crossings"`
	TideSVG   string              `json:"tide_svg,omitempty"`
}

// makeThresholdAPI is the end of a drag on the threshold line: it returns
// the new crossings and the redrawn tide chart.
func (s *server) makeThresholdAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.store.Get(r, sessionName)

		h, err := parseHeight(r.FormValue("height"))
		if err != nil {
			renderDetail(w, http.StatusBadRequest, fmt.Sprintf("Invalid height: %v", err))
			return
		}

		dash := s.dashboardFor(session)
		session.Values[thresholdKey] = h
		if err := session.Save(r, w); err != nil {
			log.Println("save session err", err)
		}

		crossings := dash.SetThreshold(h)
		renderJSON(w, ThresholdResponse{
			Threshold: h,
			Crossings: crossings,
			TideSVG:   string(dash.TideSVG()),
		})
	}
}

// makeResize redraws the viewer's charts at the viewport size, once resizing
// settles.
func (s *server) makeResize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.store.Get(r, sessionName)
		width, werr := strconv.Atoi(r.FormValue("width"))
		height, herr := strconv.Atoi(r.FormValue("height"))
		if werr != nil || herr != nil || width <= 0 || height <= 0 {
			renderDetail(w, http.StatusBadRequest, "width and height must be positive integers")
			return
		}
		dash := s.dashboardFor(session)
		if err := session.Save(r, w); err != nil {
			log.Println("save session err", err)
		}
		dash.Resize(width, height)
		w.WriteHeader(http.StatusAccepted)
	}
}

func parseHeight(s string) (float64, error) {
	h, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, fmt.Errorf("%q is not a height", s)
	}
	return h, nil
}

// withoutThreshold is u as a path and query, minus the threshold parameter
// so that redirects do not undo a newer threshold.
func withoutThreshold(u *url.URL) string {
	q := u.Query()
	q.Del("threshold")
	out := url.URL{Path: u.Path, RawQuery: q.Encode()}
	return out.String()
}

func pathJoinPreservePrefix(prefix string, suffix string) string {
	trimmedPrefix := path.Join(prefix, "")
	result := path.Join(prefix, suffix)
	if result == trimmedPrefix {
		return prefix
	}
	if u, err := url.Parse(suffix); err == nil && u.RawQuery != "" {
		return path.Join(prefix, u.Path) + "?" + u.RawQuery
	}
	return result
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

// crossingTimes labels crossings by clock time, adding the day when the query
// covers several.
func crossingTimes(crossings []crossing.Crossing, q dashboard.Query, loc *time.Location) []string {
	layout := "15:04"
	if days, err := q.Days(loc); err == nil && len(days) > 1 {
		layout = "Mon Jan 2 15:04"
	}
	var labels []string
	for _, c := range crossings {
		labels = append(labels, c.Time.In(loc).Format(layout))
	}
	return labels
}
