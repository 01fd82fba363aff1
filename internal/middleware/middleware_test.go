package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recorded struct {
	method, path string
	status       int
}

type fakeRecorder struct {
	calls []recorded
}

func (f *fakeRecorder) RecordHTTPRequest(method, path string, status int, _ time.Duration) {
	f.calls = append(f.calls, recorded{method, path, status})
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}

func TestCaseInsensitive(t *testing.T) {
	var path string
	h := CaseInsensitive(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/API/BOXES/BOX00001", nil))
	assert.Equal(t, "/api/boxes/box00001", path)
}

func TestAccessLogUsesRouteTemplate(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	fr := &fakeRecorder{}

	r := mux.NewRouter()
	r.Use(AccessLog(zap.New(core), fr))
	r.HandleFunc("/api/boxes/{number}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/boxes/BOX00001", nil))

	require.Len(t, fr.calls, 1)
	assert.Equal(t, recorded{http.MethodGet, "/api/boxes/{number}", http.StatusNotFound}, fr.calls[0])

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, int64(http.StatusNotFound), entries[0].ContextMap()["status"])
}
