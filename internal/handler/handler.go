// Package handler is the JSON HTTP boundary. It binds and validates inbound
// payloads, hands them to the pipeline, and maps the pipeline's error
// taxonomy onto status codes. No assessment logic lives here.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"safepost/internal/assessment"
	"safepost/internal/pipeline"
)

// Assessor is what the handler needs from the pipeline.
type Assessor interface {
	Analyze(ctx context.Context, req pipeline.AnalyzeRequest) (*assessment.Result, error)
	AssessRisk(ctx context.Context, req pipeline.RiskRequest) (*assessment.Result, error)
}

type Handler struct {
	pipe     Assessor
	validate *validator.Validate
	log      zerolog.Logger
}

func New(pipe Assessor, log zerolog.Logger) *Handler {
	return &Handler{
		pipe:     pipe,
		validate: validator.New(),
		log:      log,
	}
}

type analyzeRequest struct {
	Caption string `json:"caption"`
	Image   string `json:"image" validate:"required"`
}

type riskRequest struct {
	Caption      string `json:"caption"`
	Image        string `json:"image" validate:"required"`
	TargetUserID string `json:"target_user_id" validate:"required"`
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("SafePost API is running!"))
}

func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"pong": true})
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "image missing")
		return
	}
	image, err := decodeImage(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image is not valid base64")
		return
	}

	res, err := h.pipe.Analyze(r.Context(), pipeline.AnalyzeRequest{
		Caption: req.Caption,
		Image:   image,
	})
	if err != nil {
		h.writePipelineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) AssessRisk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req riskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "image or target_user_id missing")
		return
	}
	image, err := decodeImage(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image is not valid base64")
		return
	}

	res, err := h.pipe.AssessRisk(r.Context(), pipeline.RiskRequest{
		Caption:      req.Caption,
		Image:        image,
		TargetHandle: req.TargetUserID,
	})
	if err != nil {
		h.writePipelineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	var mce *pipeline.ModelCallError
	switch {
	case errors.Is(err, pipeline.ErrPrecondition):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &mce):
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("model call failed")
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("assessment failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeImage accepts bare base64 as well as full data URLs
// ("data:image/jpeg;base64,...") since browser clients send both.
func decodeImage(s string) ([]byte, error) {
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
