// Package handlers serves the server-rendered dashboard page and its small
// JSON companions.
package handlers

import (
	"bytes"
	"crypto/sha1"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/pbkdf2"

	"github.com/spencer-p/winddash/pkg/cache"
	"github.com/spencer-p/winddash/pkg/dashboard"
	"github.com/spencer-p/winddash/pkg/meta"
	"github.com/spencer-p/winddash/pkg/timetricks"
)

const (
	sessionName       = "winddash"
	sessionLastViewed = "last-viewed-referrer"
	sessionID         = "dashboard-id"
	thresholdKey      = "threshold"
	// See https://developer.chrome.com/blog/cookie-max-age-expires.
	defaultMaxAge = 60 * 60 * 24 * 400 // 400 days in seconds.

	windowsCacheTTL = 23 * time.Hour
)

//go:embed static
var content embed.FS

// Config wires the page to the dashboard sessions.
type Config struct {
	Registry         *dashboard.Registry
	Location         *time.Location
	DefaultThreshold float64
	// Prefix is where the router is mounted, used for links and redirects.
	Prefix        string
	SessionKey    string
	EncryptionKey string
	// Insecure allows the session cookie over plain http.
	Insecure bool
}

type server struct {
	Config
	store *sessions.CookieStore
	now   func() time.Time
}

func Register(r *mux.Router, cfg Config) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "/"
	}
	s := &server{Config: cfg, store: newStore(cfg), now: time.Now}

	r.Handle("/", s.makeServerSideIndex(content)).Methods(http.MethodGet)
	r.Handle("/threshold", s.makeSetThreshold()).Methods(http.MethodPost)
	r.Handle("/api/v1/threshold", s.makeThresholdAPI()).Methods(http.MethodGet, http.MethodPost)
	r.Handle("/api/v1/resize", s.makeResize()).Methods(http.MethodPost)
	r.Handle("/api/v1/windows", s.makeServeWindows()).Methods(http.MethodGet)
}

func newStore(cfg Config) *sessions.CookieStore {
	store := &sessions.CookieStore{
		Codecs: securecookie.CodecsFromPairs(
			sessionKey(cfg.SessionKey),
			encryptionKey(cfg.EncryptionKey),
		),
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   defaultMaxAge,
			Secure:   !cfg.Insecure,
			HttpOnly: true,
		},
	}
	store.MaxAge(defaultMaxAge)
	return store
}

// sessionKey authenticates session cookies. Without one configured it uses
// a compile-time default.
func sessionKey(key string) []byte {
	if key == "" {
		key = "deadbeef"
	}
	return []byte(key)
}

func encryptionKey(password string) []byte {
	if password == "" {
		password = "deadbeef"
	}
	return pbkdf2.Key([]byte(password), []byte{}, 4096, 32, sha1.New)
}

// dashboardFor finds the viewer's dashboard through the cookie session,
// starting a new one when needed.
func (s *server) dashboardFor(session *sessions.Session) *dashboard.Session {
	id, _ := session.Values[sessionID].(string)
	dash := s.Registry.Lookup(id)
	session.Values[sessionID] = dash.ID
	return dash
}

// threshold is the viewer's saved threshold, or the default.
func (s *server) threshold(session *sessions.Session) float64 {
	if h, ok := session.Values[thresholdKey].(float64); ok {
		return h
	}
	return s.DefaultThreshold
}

// makeServeWindows lists the windows of a day as text, or JSON with o=json.
// Responses are cached by the resolved query and the day they were rendered
// on, since labels like "Today" change at midnight.
func (s *server) makeServeWindows() http.Handler {
	timeCache := cache.NewTimed[[]byte](windowsCacheTTL)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType := "text/plain"
		if r.FormValue("o") == "json" {
			contentType = jsonContentType
		}
		threshold := s.DefaultThreshold
		if h, err := parseHeight(r.FormValue("threshold")); err == nil {
			threshold = h
		}
		today := timetricks.FormatDay(s.now().In(s.Location))
		q := dashboard.Query{Date: r.FormValue("date")}
		if q.Date == "" {
			q.Date = today
		}

		key := fmt.Sprintf("%s %s %g %s", today, q.Date, threshold, contentType)
		if cached, ok := timeCache.Get(key); ok {
			w.Header().Add("Content-Type", contentType)
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}

		dash := s.Registry.Transient()
		defer dash.Close()
		dash.SetThreshold(threshold)
		if err := dash.Refresh(r.Context(), q); err != nil {
			log.Printf("Failed to get windows: %v", err)
			renderDetail(w, http.StatusBadGateway, dash.Snapshot().Status)
			return
		}
		windows := dash.Snapshot().Windows

		// duplicate the http response onto a buffer for the cache
		var toCache bytes.Buffer
		mw := io.MultiWriter(w, &toCache)

		w.Header().Add("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		if contentType == jsonContentType {
			if err := json.NewEncoder(mw).Encode(windows); err != nil {
				log.Printf("Failed to encode JSON result: %+v", err)
			}
		} else {
			for i := range windows {
				fmt.Fprintf(mw, "%s", windows[i].String())
				if i+1 < len(windows) {
					fmt.Fprintf(mw, "\n")
				}
			}
		}

		timeCache.Set(key, toCache.Bytes())
	})
}

type windowView struct {
	Text  string
	Below bool
}

func windowViews(windows []meta.Window) []windowView {
	views := make([]windowView, len(windows))
	for i := range windows {
		views[i] = windowView{Text: windows[i].String(), Below: windows[i].Below}
	}
	return views
}
