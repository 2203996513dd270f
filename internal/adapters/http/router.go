package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/kirillkom/consent-tracker/internal/config"
	"github.com/kirillkom/consent-tracker/internal/core/domain"
	"github.com/kirillkom/consent-tracker/internal/core/ports"
	"github.com/kirillkom/consent-tracker/internal/infrastructure/report"
	"github.com/kirillkom/consent-tracker/internal/observability/metrics"
)

const serviceName = "tracker"

// multipart parts beyond this size spill to temporary files.
const multipartMemory = 8 << 20

type Router struct {
	cfg      config.Config
	workflow ports.DocumentWorkflow
	logger   *slog.Logger

	httpMetrics    *metrics.HTTPServerMetrics
	metricsHandler http.Handler
}

func NewRouter(cfg config.Config, workflow ports.DocumentWorkflow, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		cfg:      cfg,
		workflow: workflow,
		logger:   logger,
	}
}

// WithMetrics instruments every route and serves handler on /metrics.
func (rt *Router) WithMetrics(httpMetrics *metrics.HTTPServerMetrics, handler http.Handler) *Router {
	rt.httpMetrics = httpMetrics
	rt.metricsHandler = handler
	return rt
}

func (rt *Router) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", rt.healthz).Methods(http.MethodGet)
	if rt.metricsHandler != nil {
		r.Handle("/metrics", rt.metricsHandler).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/analysis/upload", rt.uploadDocument).Methods(http.MethodPost)
	v1.HandleFunc("/analysis/paste", rt.pasteText).Methods(http.MethodPost)
	v1.HandleFunc("/analysis", rt.getAnalysis).Methods(http.MethodGet)
	v1.HandleFunc("/analysis", rt.resetAnalysis).Methods(http.MethodDelete)
	v1.HandleFunc("/analysis/high-risk", rt.getHighRisk).Methods(http.MethodGet)
	v1.HandleFunc("/stats", rt.getStats).Methods(http.MethodGet)
	v1.HandleFunc("/stats/refresh", rt.refreshStats).Methods(http.MethodPost)

	// Subrouters do not inherit these handlers.
	for _, router := range []*mux.Router{r, v1} {
		router.NotFoundHandler = http.HandlerFunc(notFound)
		router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	}

	var handler http.Handler = r
	if rt.httpMetrics != nil {
		handler = rt.httpMetrics.Middleware(serviceName, handler)
	}
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.onRateLimited)
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	limit := rt.cfg.MaxUploadBytes()
	if r.ContentLength > limit {
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload limit")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload limit")
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			writeError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
	}

	var upload *domain.FileUpload
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		upload = &domain.FileUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// The workflow reports the missing file.
	default:
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	rt.respondSubmission(w, rt.workflow.SubmitFile(r.Context(), upload))
}

func (rt *Router) pasteText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	rt.respondSubmission(w, rt.workflow.SubmitPastedText(r.Context(), req.Content))
}

func (rt *Router) getAnalysis(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, report.NewView(rt.workflow.Snapshot()))
}

func (rt *Router) getHighRisk(w http.ResponseWriter, _ *http.Request) {
	view := report.NewView(rt.workflow.Snapshot())
	writeJSON(w, http.StatusOK, map[string]any{
		"documentId":      view.DocumentID,
		"count":           len(view.HighRisk),
		"highRiskClauses": view.HighRisk,
	})
}

func (rt *Router) resetAnalysis(w http.ResponseWriter, _ *http.Request) {
	if err := rt.workflow.Reset(); err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report.NewView(rt.workflow.Snapshot()))
}

func (rt *Router) getStats(w http.ResponseWriter, _ *http.Request) {
	writeStats(w, rt.workflow.Snapshot())
}

func (rt *Router) refreshStats(w http.ResponseWriter, r *http.Request) {
	rt.workflow.RefreshGlobalStats(r.Context())
	writeStats(w, rt.workflow.Snapshot())
}

func (rt *Router) onRateLimited(r *http.Request) {
	if rt.httpMetrics != nil {
		rt.httpMetrics.RecordRateLimited(serviceName, r.URL.Path)
	}
}

// respondSubmission answers with the resulting analysis. Failures carry the
// same message the workflow shows in its snapshot.
func (rt *Router) respondSubmission(w http.ResponseWriter, err error) {
	snap := rt.workflow.Snapshot()
	if err == nil {
		writeJSON(w, http.StatusOK, report.NewView(snap))
		return
	}

	message := snap.Error
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		message = validation.Message
	case domain.IsKind(err, domain.ErrBusy):
		message = "another submission is in progress"
	case strings.TrimSpace(message) == "":
		message = err.Error()
	}

	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		rt.logger.Warn("submission_failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]any{
		"error":    message,
		"analysis": report.NewView(snap),
	})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeStats(w http.ResponseWriter, snap domain.Snapshot) {
	writeJSON(w, http.StatusOK, map[string]any{
		"document": snap.DocumentStats(),
		"global":   snap.GlobalStats,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
