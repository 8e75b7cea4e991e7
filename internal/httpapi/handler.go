// Package httpapi HTTP транспорт для инструментов и сессий калькулятора.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/cloud-ru/mcp-emi-go/internal/export"
	"github.com/cloud-ru/mcp-emi-go/internal/form"
	"github.com/cloud-ru/mcp-emi-go/internal/metrics"
	"github.com/cloud-ru/mcp-emi-go/internal/session"
	"github.com/cloud-ru/mcp-emi-go/internal/tools"
)

const maxBodyBytes = 1 << 20

// Handler общие зависимости HTTP обработчиков
type Handler struct {
	tools    map[string]tools.ToolHandler
	sessions *session.Service
}

func New(registry map[string]tools.ToolHandler, sessions *session.Service) *Handler {
	return &Handler{tools: registry, sessions: sessions}
}

// Routes собирает роутер со всеми маршрутами и middleware
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/tools", h.ListTools)
	r.Post("/tools/{name}", h.CallTool)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/{id}", h.GetSession)
		r.Patch("/{id}", h.UpdateSession)
		r.Delete("/{id}", h.DeleteSession)
		r.Post("/{id}/reset", h.ResetSession)
		r.Get("/{id}/export", h.ExportSession)
	})

	return r
}

// ─── helpers ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("writeJSON encode error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeDocument(w http.ResponseWriter, doc tools.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		log.Error().Err(err).Str("file", doc.FileName).Msg("write document")
	}
}

func parseBody(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tools.ErrInvalidParams), errors.Is(err, form.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, tools.ErrUnknownTool), errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tools.ErrSkipped):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		metrics.APICalls.WithLabelValues("http", chi.RouteContext(r.Context()).RoutePattern(), http.StatusText(status)).Inc()
		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// ─── GET /healthz ────────────────────────────────────────

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─── tools ───────────────────────────────────────────────

func (h *Handler) ListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tools": tools.Names(h.tools)})
}

func (h *Handler) CallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	params := map[string]interface{}{}
	if err := parseBody(w, r, &params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	out, err := tools.Call(r.Context(), h.tools, name, params)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	if doc, ok := out.(tools.Document); ok {
		writeDocument(w, doc)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ─── sessions ────────────────────────────────────────────

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.sessions.Create(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("create session")
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var updates []session.Update
	if err := parseBody(w, r, &updates); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	st, err := h.sessions.Apply(r.Context(), chi.URLParam(r, "id"), updates)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.sessions.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportSession выгружает PDF по последнему результату формы
func (h *Handler) ExportSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if st.Result == nil {
		writeError(w, http.StatusConflict, "nothing to export: form is incomplete")
		return
	}

	data, err := export.ScheduleDocument(st.Result)
	if err != nil {
		log.Error().Err(err).Str("session_id", st.ID).Msg("export schedule")
		writeError(w, http.StatusInternalServerError, "failed to export schedule")
		return
	}
	metrics.ExportBytes.Observe(float64(len(data)))

	writeDocument(w, tools.Document{
		FileName:    export.FileName(st.Result.Input.IncludeTax),
		ContentType: "application/pdf",
		Data:        data,
	})
}
