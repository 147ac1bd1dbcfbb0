package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Jobs
	mux.Handle("GET /api/v1/jobs", chain(http.HandlerFunc(h.ListJobs)))
	mux.Handle("POST /api/v1/jobs", chain(http.HandlerFunc(h.CreateJob)))
	mux.Handle("GET /api/v1/jobs/{id}", chain(http.HandlerFunc(h.GetJob)))
	mux.Handle("POST /api/v1/jobs/{id}/submit", chain(http.HandlerFunc(h.SubmitJob)))
	mux.Handle("POST /api/v1/jobs/{id}/cancel", chain(http.HandlerFunc(h.CancelJob)))

	// Callbacks external trainer'а
	mux.Handle("POST /api/v1/jobs/{id}/progress", chain(http.HandlerFunc(h.ReportProgress)))
	mux.Handle("POST /api/v1/jobs/{id}/complete", chain(http.HandlerFunc(h.CompleteJob)))

	// Training data
	mux.Handle("POST /api/v1/data", chain(http.HandlerFunc(h.CreateDataPoint)))
	mux.Handle("GET /api/v1/data", chain(http.HandlerFunc(h.QueryDataPoints)))

	// Model registry
	mux.Handle("GET /api/v1/models/{id}", chain(http.HandlerFunc(h.GetModel)))
	mux.Handle("GET /api/v1/models/{id}/versions/{versionId}", chain(http.HandlerFunc(h.GetModelVersion)))

	// Pipeline status (только процесс pipeline)
	if h.pipeline != nil {
		mux.Handle("GET /api/v1/pipeline/status", chain(http.HandlerFunc(h.PipelineStatus)))
	}
}
