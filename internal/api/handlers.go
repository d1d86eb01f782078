package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mrwolf/daybook/internal/config"
	"github.com/mrwolf/daybook/internal/dates"
	"github.com/mrwolf/daybook/internal/pipeline"
	"github.com/mrwolf/daybook/internal/render"
	"github.com/mrwolf/daybook/internal/storyline"
	"go.uber.org/zap"
)

const version = "1.0.0"

// Service builds daily notes.
type Service interface {
	Preview(ctx context.Context, now time.Time) (*pipeline.Document, error)
	Run(ctx context.Context, now time.Time) (*pipeline.Result, error)
}

// NextRunner reports the next scheduled run. Optional.
type NextRunner interface {
	NextRun() (time.Time, error)
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Sink    string `json:"sink"`
	NextRun string `json:"next_run,omitempty"`
	Version string `json:"version"`
}

// DocumentResponse is returned by GET /api/v1/preview
type DocumentResponse struct {
	RunID string `json:"run_id"`
	Day   string `json:"day"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// RunRequest is the optional body of POST /api/v1/run
type RunRequest struct {
	Date string `json:"date,omitempty"`
}

// RunResponse is returned by POST /api/v1/run
type RunResponse struct {
	RunID  string `json:"run_id"`
	Day    string `json:"day"`
	Title  string `json:"title"`
	NoteID string `json:"note_id"`
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type Handlers struct {
	cfg    *config.Config
	svc    Service
	sched  NextRunner
	logger *zap.Logger
	now    func() time.Time
}

func NewHandlers(cfg *config.Config, svc Service, sched NextRunner, logger *zap.Logger) *Handlers {
	return &Handlers{
		cfg:    cfg,
		svc:    svc,
		sched:  sched,
		logger: logger,
		now:    time.Now,
	}
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Sink:    h.cfg.Sink,
		Version: version,
	}
	if h.sched != nil {
		if next, err := h.sched.NextRun(); err == nil && !next.IsZero() {
			resp.NextRun = next.Format(time.RFC3339)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, http.StatusOK, resp)
}

// Preview handles GET /api/v1/preview?date=YYYY-MM-DD
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	now, ok := h.referenceTime(w, r.URL.Query().Get("date"))
	if !ok {
		return
	}

	doc, err := h.svc.Preview(r.Context(), now)
	if err != nil {
		h.writeRunError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DocumentResponse{
		RunID: doc.RunID,
		Day:   doc.Day.String(),
		Title: doc.Title,
		Body:  doc.Body,
	})
}

// Run handles POST /api/v1/run
func (h *Handlers) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
			return
		}
	}

	now, ok := h.referenceTime(w, req.Date)
	if !ok {
		return
	}

	res, err := h.svc.Run(r.Context(), now)
	if err != nil {
		h.writeRunError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, RunResponse{
		RunID:  res.RunID,
		Day:    res.Day.String(),
		Title:  res.Title,
		NoteID: res.NoteID,
	})
}

// referenceTime turns an optional reference date into the run's "now".
func (h *Handlers) referenceTime(w http.ResponseWriter, date string) (time.Time, bool) {
	if date == "" {
		return h.now(), true
	}
	d, err := dates.Parse(date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", "INVALID_DATE")
		return time.Time{}, false
	}
	return d.Noon(h.cfg.Location()), true
}

func (h *Handlers) writeRunError(w http.ResponseWriter, err error) {
	h.logger.Error("run failed", zap.Error(err))

	var fe *pipeline.FetchError
	switch {
	case errors.Is(err, storyline.ErrNoStorylineData):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "NO_STORYLINE")
	case errors.As(err, &fe):
		writeError(w, http.StatusBadGateway, err.Error(), "FETCH_FAILED")
	case errors.Is(err, pipeline.ErrNoteCreate):
		writeError(w, http.StatusBadGateway, err.Error(), "NOTE_CREATE_FAILED")
	case errors.Is(err, render.ErrRender):
		writeError(w, http.StatusInternalServerError, err.Error(), "RENDER_FAILED")
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
	}
}
