package server

import (
	"net/http"

	"github.com/rs/zerolog"

	"safepost/internal/handler"
	"safepost/internal/middleware"
)

func NewMux(h *handler.Handler, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", h.Home)
	mux.HandleFunc("/ping", h.Ping)
	mux.HandleFunc("/analyze", h.Analyze)
	mux.HandleFunc("/risk_assess", h.AssessRisk)

	// Middleware
	return middleware.CORS(middleware.RequestID(log)(mux))
}
