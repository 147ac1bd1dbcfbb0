package api

import (
	"net/http"

	"github.com/google/uuid"
)

// GetModel возвращает запись registry по model ID.
// GET /api/v1/models/{id}
func (h *Handler) GetModel(w http.ResponseWriter, r *http.Request) {
	modelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid model id")
		return
	}

	entry, err := h.modelRepo.GetModel(r.Context(), modelID)
	if HandleRepoError(w, h.logger, err, "model not found") {
		return
	}

	Success(w, ModelFromDomain(entry))
}

// GetModelVersion возвращает версию модели.
// GET /api/v1/models/{id}/versions/{versionId}
func (h *Handler) GetModelVersion(w http.ResponseWriter, r *http.Request) {
	modelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid model id")
		return
	}
	versionID, err := uuid.Parse(r.PathValue("versionId"))
	if err != nil {
		BadRequest(w, "invalid version id")
		return
	}

	version, err := h.modelRepo.GetVersion(r.Context(), versionID)
	if HandleRepoError(w, h.logger, err, "model version not found") {
		return
	}
	if version.ModelID != modelID {
		NotFound(w, "model version not found")
		return
	}

	Success(w, ModelVersionFromDomain(version))
}
