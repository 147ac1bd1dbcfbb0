package api

import (
	"net/http"
)

// PipelineStatus возвращает снимок очереди pipeline'а.
// GET /api/v1/pipeline/status (только процесс modelka-pipeline)
func (h *Handler) PipelineStatus(w http.ResponseWriter, r *http.Request) {
	Success(w, h.pipeline.Status())
}
