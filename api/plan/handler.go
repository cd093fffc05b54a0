// Package plan exposes rollout plans and planning sessions over HTTP.
package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/rolloutplan/config"
	coremetrics "github.com/kilianp07/rolloutplan/core/metrics"
	coremon "github.com/kilianp07/rolloutplan/core/monitoring"
	"github.com/kilianp07/rolloutplan/core/palette"
	"github.com/kilianp07/rolloutplan/core/rollout"
	"github.com/kilianp07/rolloutplan/core/session"
	"github.com/kilianp07/rolloutplan/infra/logger"
	"github.com/kilianp07/rolloutplan/pkg/export"
)

var errBadRequest = errors.New("bad request")

// Handler serves the plan API.
type Handler struct {
	store    session.Store
	defaults config.PlanConfig
	sink     coremetrics.MetricsSink
	mon      coremon.Monitor
	log      logger.Logger
}

// NewHandler creates a Handler. Nil sink, monitor or logger fall back to
// no-op implementations.
func NewHandler(store session.Store, defaults config.PlanConfig, sink coremetrics.MetricsSink, mon coremon.Monitor, log logger.Logger) *Handler {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	if mon == nil {
		mon = coremon.NopMonitor{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{store: store, defaults: defaults, sink: sink, mon: mon, log: log}
}

// Register mounts the routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("GET /api/plan", h.getPlan)
	mux.HandleFunc("GET /api/plan/export", h.exportPlan)
	mux.HandleFunc("GET /api/plan/pages", h.pages)
	mux.HandleFunc("POST /api/sessions", h.createSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.getSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.deleteSession)
	mux.HandleFunc("PUT /api/sessions/{id}/config", h.updateSession)
	mux.HandleFunc("PUT /api/sessions/{id}/weeks/{week}/date-range", h.setDateRange)
	mux.HandleFunc("POST /api/sessions/{id}/weeks/{week}/toggle", h.toggleColor)
	mux.HandleFunc("GET /api/sessions/{id}/search", h.search)
	mux.HandleFunc("GET /api/sessions/{id}/export", h.exportSession)
}

// PlanResponse is the body of GET /api/plan.
type PlanResponse struct {
	Branches int                `json:"branches"`
	Summary  rollout.Summary    `json:"summary"`
	Weeks    []rollout.WeekData `json:"weeks"`
}

func (h *Handler) generate(r *http.Request) (int, []rollout.WeekData, error) {
	n := h.defaults.Branches
	if v := r.URL.Query().Get("branches"); v != "" {
		var err error
		if n, err = rollout.ParseBranches(v); err != nil {
			return 0, nil, err
		}
	}
	start := time.Now()
	weeks := rollout.Generate(n)
	ev := coremetrics.GenerationEvent{Source: "api", Branches: n, Weeks: len(weeks), Duration: time.Since(start)}
	if err := h.sink.RecordGeneration(ev); err != nil {
		h.log.Warnf("record generation: %v", err)
	}
	return n, weeks, nil
}

func (h *Handler) getPlan(w http.ResponseWriter, r *http.Request) {
	n, weeks, err := h.generate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PlanResponse{Branches: n, Summary: rollout.Summarize(weeks), Weeks: weeks})
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	_, weeks, err := h.generate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeExport(w, export.HTML, h.document(weeks), false)
}

func (h *Handler) exportPlan(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(formatParam(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	_, weeks, err := h.generate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeExport(w, f, h.document(weeks), true)
}

// pages returns the A4 tiling of a captured plan image of the given pixel
// size.
func (h *Handler) pages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, werr := strconv.Atoi(q.Get("width"))
	height, herr := strconv.Atoi(q.Get("height"))
	if werr != nil || herr != nil {
		h.writeError(w, fmt.Errorf("%w: width and height must be integers", errBadRequest))
		return
	}
	l, err := export.PageLayout(width, height)
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *Handler) document(weeks []rollout.WeekData) export.Document {
	return export.Document{
		CompanyName:     h.defaults.CompanyName,
		ProjectName:     h.defaults.ProjectName,
		ShowCompanyName: h.defaults.ShowCompanyName,
		Weeks:           weeks,
	}
}

// settingsRequest carries optional fields; absent fields keep their value.
type settingsRequest struct {
	CompanyName     *string `json:"company_name"`
	ProjectName     *string `json:"project_name"`
	ShowCompanyName *bool   `json:"show_company_name"`
	Branches        *int    `json:"branches"`
}

func (s settingsRequest) apply(base session.Settings) session.Settings {
	if s.CompanyName != nil {
		base.CompanyName = *s.CompanyName
	}
	if s.ProjectName != nil {
		base.ProjectName = *s.ProjectName
	}
	if s.ShowCompanyName != nil {
		base.ShowCompanyName = *s.ShowCompanyName
	}
	if s.Branches != nil {
		base.Branches = *s.Branches
	}
	return base
}

func decodeSettings(r *http.Request) (settingsRequest, error) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "branches" {
			return req, fmt.Errorf("%w: %v", rollout.ErrInvalidBranches, err)
		}
		return req, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return req, nil
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSettings(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	base := session.Settings{
		Header: session.Header{
			CompanyName:     h.defaults.CompanyName,
			ProjectName:     h.defaults.ProjectName,
			ShowCompanyName: h.defaults.ShowCompanyName,
		},
		Branches: h.defaults.Branches,
	}
	v, err := h.store.Create(req.apply(base))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.log.Infof("session %s created with %d branches", v.ID, v.Branches)
	h.recordSessions()
	writeJSON(w, http.StatusCreated, v)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.recordSessions()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateSession(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSettings(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	v, err := h.store.Patch(r.PathValue("id"), func(cur *session.Settings) { *cur = req.apply(*cur) })
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) setDateRange(w http.ResponseWriter, r *http.Request) {
	week, err := weekParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var body struct {
		DateRange string `json:"date_range"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	v, err := h.store.SetDateRange(r.PathValue("id"), week, body.DateRange)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) toggleColor(w http.ResponseWriter, r *http.Request) {
	week, err := weekParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	c, err := palette.Parse(r.URL.Query().Get("color"))
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	v, err := h.store.ToggleColor(r.PathValue("id"), week, c)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.store.Search(r.PathValue("id"), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if weeks == nil {
		weeks = []rollout.WeekData{}
	}
	writeJSON(w, http.StatusOK, weeks)
}

func (h *Handler) exportSession(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(formatParam(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	v, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	doc := export.Document{
		CompanyName:     v.Header.CompanyName,
		ProjectName:     v.Header.ProjectName,
		ShowCompanyName: v.Header.ShowCompanyName,
		Weeks:           v.Weeks,
		DateRanges:      v.DateRanges,
	}
	h.writeExport(w, f, doc, true)
}

// writeExport renders into a buffer first so a failed export never sends a
// partial document.
func (h *Handler) writeExport(w http.ResponseWriter, f export.Format, doc export.Document, attachment bool) {
	var buf bytes.Buffer
	err := export.Write(&buf, f, doc)
	if rerr := h.sink.RecordExport(coremetrics.ExportEvent{Format: string(f), Bytes: buf.Len(), Err: err}); rerr != nil {
		h.log.Warnf("record export: %v", rerr)
	}
	if err != nil {
		h.log.Errorf("export %s: %v", f, err)
		h.mon.CaptureException(err, map[string]string{"format": string(f)})
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "export failed"})
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	if attachment {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(doc.CompanyName, f.Extension())))
	}
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Warnf("write export: %v", err)
	}
}

func (h *Handler) recordSessions() {
	rec, ok := h.sink.(coremetrics.SessionRecorder)
	if !ok {
		return
	}
	if err := rec.RecordActiveSessions(h.store.Len()); err != nil {
		h.log.Warnf("record sessions: %v", err)
	}
}

func formatParam(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return string(export.JSON)
}

func weekParam(r *http.Request) (int, error) {
	n, err := strconv.Atoi(r.PathValue("week"))
	if err != nil {
		return 0, fmt.Errorf("%w: week %q", errBadRequest, r.PathValue("week"))
	}
	return n, nil
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, rollout.ErrInvalidBranches),
		errors.Is(err, session.ErrUnknownColor),
		errors.Is(err, export.ErrUnsupportedFormat),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrUnknownWeek):
		status = http.StatusNotFound
	default:
		h.log.Errorf("request failed: %v", err)
		h.mon.CaptureException(err, nil)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
