package api

import (
	"log/slog"

	"github.com/shaiso/Modelka/internal/mq"
	"github.com/shaiso/Modelka/internal/pipeline"
	"github.com/shaiso/Modelka/internal/repo"
)

// PipelineStatus — источник снимка состояния pipeline'а.
// Реализуется pipeline.Controller в процессе modelka-pipeline.
type PipelineStatus interface {
	Status() pipeline.Status
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	jobRepo   *repo.JobRepo
	dataRepo  *repo.DataRepo
	modelRepo *repo.ModelRepo
	publisher *mq.Publisher
	pipeline  PipelineStatus
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	JobRepo   *repo.JobRepo
	DataRepo  *repo.DataRepo
	ModelRepo *repo.ModelRepo

	// Publisher — публикация команд submit/cancel. Nil — команды
	// отклоняются с 503.
	Publisher *mq.Publisher

	// Pipeline — локальный pipeline controller. Устанавливается
	// только в процессе modelka-pipeline.
	Pipeline PipelineStatus

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		jobRepo:   cfg.JobRepo,
		dataRepo:  cfg.DataRepo,
		modelRepo: cfg.ModelRepo,
		publisher: cfg.Publisher,
		pipeline:  cfg.Pipeline,
		logger:    cfg.Logger,
	}
}
