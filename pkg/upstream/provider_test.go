package upstream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider("test", srv.Client(), time.Hour, discardLogger())
	for i := 0; i < 3; i++ {
		body, err := p.Get(context.Background(), srv.URL+"/x")
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(body))
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":true,"reason":"bad date"}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider("test", srv.Client(), time.Hour, discardLogger())
	_, err := p.Get(context.Background(), srv.URL)

	var se *StatusError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Contains(t, string(se.Body), "bad date")

	// failures are not cached
	_, err = p.Get(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestGetNotReady(t *testing.T) {
	var p *HTTPProvider
	_, err := p.Get(context.Background(), "http://example.invalid")
	assert.ErrorIs(t, err, ErrNotReady)
}
