// Package api serves the job service over JSON/HTTP under /api/v1/jobs.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"jobbots/common/errors"
	"jobbots/services/ingestion/internal/models"
	"jobbots/services/ingestion/internal/service"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const Prefix = "/api/v1/jobs"

// JobService is what the handlers need from service.JobService.
type JobService interface {
	Search(ctx context.Context, platform string, opts models.SearchOptions) ([]models.JobInfo, error)
	Detail(ctx context.Context, platform, jobID string) (*models.JobInfo, error)
	CompanyJobs(ctx context.Context, platform string, opts models.CompanyJobsOptions) ([]models.JobInfo, error)
	Analyze(ctx context.Context, platform, jobID string) (*models.Analysis, error)
}

var _ JobService = (*service.JobService)(nil)

type Handler struct {
	svc    JobService
	logger *zap.Logger
}

func NewHandler(svc JobService, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Keyword     string `json:"keyword"`
	City        string `json:"city,omitempty"`
	Experience  string `json:"experience,omitempty"`
	Education   string `json:"education,omitempty"`
	SalaryRange string `json:"salary_range,omitempty"`
	Platform    string `json:"platform,omitempty"`
	Page        int    `json:"page,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	JobID    string `json:"job_id"`
	Platform string `json:"platform"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Routes returns the traced router.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+Prefix+"/search", h.search)
	mux.HandleFunc("GET "+Prefix+"/detail/{platform}/{job_id}", h.detail)
	mux.HandleFunc("GET "+Prefix+"/company/{platform}/{company_id}/jobs", h.companyJobs)
	mux.HandleFunc("POST "+Prefix+"/analyze", h.analyze)
	mux.HandleFunc("GET /healthz", h.health)

	return otelhttp.NewHandler(h.logRequests(mux), "ingestion-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.InvalidInput("invalid request body", err))
		return
	}
	if req.Keyword == "" {
		h.writeError(w, errors.InvalidInput("keyword is required", nil))
		return
	}

	jobs, err := h.svc.Search(r.Context(), req.Platform, models.SearchOptions{
		Keyword:     req.Keyword,
		City:        req.City,
		Experience:  req.Experience,
		Education:   req.Education,
		SalaryRange: req.SalaryRange,
		Page:        req.Page,
		PageSize:    req.PageSize,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, jobs)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.Detail(r.Context(), r.PathValue("platform"), r.PathValue("job_id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, job)
}

func (h *Handler) companyJobs(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", models.DefaultPage)
	if err != nil {
		h.writeError(w, err)
		return
	}
	pageSize, err := queryInt(r, "page_size", models.DefaultPageSize)
	if err != nil {
		h.writeError(w, err)
		return
	}

	opts := models.CompanyJobsOptions{
		CompanyID: r.PathValue("company_id"),
		Page:      page,
		PageSize:  pageSize,
	}
	// an explicit page=0 is an error here, not a request for the default
	if err := opts.Validate(); err != nil {
		h.writeError(w, errors.InvalidInput(err.Error(), err))
		return
	}

	jobs, err := h.svc.CompanyJobs(r.Context(), r.PathValue("platform"), opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, jobs)
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.InvalidInput("invalid request body", err))
		return
	}
	if req.JobID == "" || req.Platform == "" {
		h.writeError(w, errors.InvalidInput("job_id and platform are required", nil))
		return
	}

	analysis, err := h.svc.Analyze(r.Context(), req.Platform, req.JobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, analysis)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.InvalidInput(name+" must be an integer", err)
	}
	return v, nil
}

// StatusFor maps an error's kind to the response status.
func StatusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.ErrTypeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrTypeNotFound:
		return http.StatusNotFound
	case errors.ErrTypeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	h.writeJSON(w, status, errorResponse{Detail: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to write response", zap.Error(err))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Info("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
