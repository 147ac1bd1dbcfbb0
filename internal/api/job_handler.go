package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Modelka/internal/domain"
	"github.com/shaiso/Modelka/internal/repo"
)

// CreateJob создаёт новый training job в статусе PENDING.
// POST /api/v1/jobs
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.ModelID == uuid.Nil {
		BadRequest(w, "model_id is required")
		return
	}

	job := &domain.TrainingJob{
		ID:           uuid.New(),
		ModelID:      req.ModelID,
		Status:       domain.JobStatusPending,
		TotalEpochs:  req.TotalEpochs,
		DataQuery:    req.DataQuery,
		DataPointIDs: req.DataPointIDs,
		Config:       req.Config,
		CreatedBy:    req.CreatedBy,
		CreatedAt:    time.Now(),
	}

	if err := h.jobRepo.Create(r.Context(), job); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, JobFromDomain(*job))
}

// ListJobs возвращает список jobs с фильтрацией.
// GET /api/v1/jobs?model_id=...&status=...&limit=...&offset=...
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	filter := repo.JobFilter{
		Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
		Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
	}

	if modelIDStr := r.URL.Query().Get("model_id"); modelIDStr != "" {
		modelID, err := uuid.Parse(modelIDStr)
		if err != nil {
			BadRequest(w, "invalid model_id")
			return
		}
		filter.ModelID = &modelID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.JobStatus(status)
	}

	jobs, err := h.jobRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]JobResponse, len(jobs))
	for i, job := range jobs {
		result[i] = JobFromDomain(job)
	}

	List(w, result, len(result))
}

// GetJob возвращает job по ID.
// GET /api/v1/jobs/{id}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	job, err := h.jobRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}

	Success(w, JobFromDomain(*job))
}

// SubmitJob отправляет job в очередь pipeline'а.
// POST /api/v1/jobs/{id}/submit
func (h *Handler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	job, err := h.jobRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}
	if job.Status != domain.JobStatusPending {
		InvalidState(w, "job is not in PENDING status")
		return
	}

	if h.publisher == nil {
		Unavailable(w, "message broker is not available")
		return
	}
	if err := h.publisher.PublishJobSubmitted(r.Context(), job.ID); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	JSON(w, http.StatusAccepted, DataResponse{Data: JobFromDomain(*job)})
}

// CancelJob отправляет команду на отмену job.
// POST /api/v1/jobs/{id}/cancel
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	job, err := h.jobRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}
	if job.IsFinished() {
		InvalidState(w, "job is already finished")
		return
	}

	if h.publisher == nil {
		Unavailable(w, "message broker is not available")
		return
	}
	if err := h.publisher.PublishJobCancel(r.Context(), job.ID); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	JSON(w, http.StatusAccepted, DataResponse{Data: JobFromDomain(*job)})
}

// ReportProgress принимает отчёт о прогрессе от external trainer'а.
// POST /api/v1/jobs/{id}/progress
//
// Отчёт по job, который уже не в RUNNING, молча игнорируется:
// trainer может отставать от отмены.
func (h *Handler) ReportProgress(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	var req ReportProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Progress < 0 || req.Progress > 100 {
		BadRequest(w, "progress must be within 0-100")
		return
	}

	_, err = h.jobRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}

	err = h.jobRepo.UpdateProgress(r.Context(), id, req.Progress, req.CurrentEpoch, req.TotalEpochs, req.Metrics)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}

	job, err := h.jobRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}

	Success(w, JobFromDomain(*job))
}

// CompleteJob принимает финальный отчёт от external trainer'а.
// POST /api/v1/jobs/{id}/complete
//
// Success=true создаёт версию модели (если передан artifact_path)
// и переводит job в COMPLETED; success=false — в FAILED.
func (h *Handler) CompleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	var req CompleteJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	job, err := h.jobRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}
	if job.Status != domain.JobStatusRunning {
		InvalidState(w, "job is not in RUNNING status")
		return
	}

	if !req.Success {
		message := req.Error
		if message == "" {
			message = "training failed"
		}
		if err := h.jobRepo.Fail(r.Context(), id, message); err != nil {
			InternalError(w, h.logger, err)
			return
		}
		h.respondWithJob(w, r, id)
		return
	}

	var versionID *uuid.UUID
	if req.ArtifactPath != "" {
		version := &domain.ModelVersion{
			ID:           uuid.New(),
			ModelID:      job.ModelID,
			ArtifactPath: req.ArtifactPath,
			Metrics:      req.ValidationMetrics,
			CreatedAt:    time.Now(),
		}
		if err := h.modelRepo.CreateVersion(r.Context(), version); err != nil {
			InternalError(w, h.logger, err)
			return
		}
		versionID = &version.ID
	}

	err = h.jobRepo.Complete(r.Context(), id, req.TrainingMetrics, req.ValidationMetrics, versionID)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}

	h.respondWithJob(w, r, id)
}

// respondWithJob отвечает актуальным состоянием job.
func (h *Handler) respondWithJob(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	job, err := h.jobRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}
	Success(w, JobFromDomain(*job))
}

// parseIntDefault парсит строку в int с дефолтным значением.
func parseIntDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return n
}
