package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Modelka/internal/domain"
)

// CreateDataPoint добавляет data point в обучающий набор.
// POST /api/v1/data
func (h *Handler) CreateDataPoint(w http.ResponseWriter, r *http.Request) {
	var req CreateDataPointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.ModelID == uuid.Nil {
		BadRequest(w, "model_id is required")
		return
	}

	dp := &domain.DataPoint{
		ID:        uuid.New(),
		ModelID:   req.ModelID,
		Label:     req.Label,
		Payload:   req.Payload,
		CreatedAt: time.Now(),
	}

	if err := h.dataRepo.Create(r.Context(), dp); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, DataPointFromDomain(*dp))
}

// QueryDataPoints разрешает DataQuery из query-параметров.
// GET /api/v1/data?model_id=...&label=...&limit=...
func (h *Handler) QueryDataPoints(w http.ResponseWriter, r *http.Request) {
	query := domain.DataQuery{
		Limit: parseIntDefault(r.URL.Query().Get("limit"), 100),
	}

	if modelIDStr := r.URL.Query().Get("model_id"); modelIDStr != "" {
		modelID, err := uuid.Parse(modelIDStr)
		if err != nil {
			BadRequest(w, "invalid model_id")
			return
		}
		query.ModelID = &modelID
	}
	if labels, ok := r.URL.Query()["label"]; ok {
		query.Labels = labels
	}

	points, err := h.dataRepo.ResolveQuery(r.Context(), query)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]DataPointResponse, len(points))
	for i, dp := range points {
		result[i] = DataPointFromDomain(dp)
	}

	List(w, result, len(result))
}
