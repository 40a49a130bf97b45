package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"safepost/internal/assessment"
	"safepost/internal/handler"
	"safepost/internal/pipeline"
)

type stubAssessor struct {
	calls int
}

func (s *stubAssessor) Analyze(context.Context, pipeline.AnalyzeRequest) (*assessment.Result, error) {
	s.calls++
	return &assessment.Result{ParseStatus: assessment.ParseUnparseable}, nil
}

func (s *stubAssessor) AssessRisk(context.Context, pipeline.RiskRequest) (*assessment.Result, error) {
	s.calls++
	return &assessment.Result{ParseStatus: assessment.ParseUnparseable}, nil
}

func newTestMux(stub *stubAssessor) http.Handler {
	return NewMux(handler.New(stub, zerolog.Nop()), zerolog.Nop())
}

// A preflight is answered by the middleware itself; the route handler must
// never see it.
func TestMux_PreflightShortCircuits(t *testing.T) {
	stub := &stubAssessor{}
	mux := newTestMux(stub)

	req := httptest.NewRequest(http.MethodOptions, "/risk_assess", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	require.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	require.Zero(t, stub.calls)
}

func TestMux_CORSWithoutOrigin(t *testing.T) {
	mux := newTestMux(&stubAssessor{})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMux_RequestIDOnEveryResponse(t *testing.T) {
	mux := newTestMux(&stubAssessor{})

	seen := map[string]bool{}
	for _, path := range []string{"/", "/ping"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		id := w.Header().Get("X-Request-Id")
		require.NotEmpty(t, id, "path %s", path)
		require.False(t, seen[id], "request id reused")
		seen[id] = true
	}
}

func TestMux_Routes(t *testing.T) {
	stub := &stubAssessor{}
	mux := newTestMux(stub)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"pong":true}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}
