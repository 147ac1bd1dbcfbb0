package pipeline

import (
	"log/slog"
	"time"

	"github.com/shaiso/Modelka/internal/mq"
)

// Значения конфигурации по умолчанию.
const (
	// DefaultMaxConcurrentJobs — максимум одновременно выполняющихся jobs.
	DefaultMaxConcurrentJobs = 3

	// DefaultPollInterval — интервал поллинга прогресса.
	DefaultPollInterval = 5 * time.Second

	// DefaultMaxWait — максимальное время ожидания завершения обучения.
	DefaultMaxWait = time.Hour
)

// Config — конфигурация pipeline controller'а.
type Config struct {
	// Jobs — job record store. Обязателен.
	Jobs JobStore

	// Data — источник обучающих данных. Обязателен.
	Data DataSource

	// Versions — чтение версий моделей. Обязателен.
	Versions VersionSource

	// Registry — model registry. Обязателен.
	Registry ModelRegistry

	// Conn — соединение с RabbitMQ для consumer'ов команд.
	// Nil — controller работает только через прямые вызовы.
	Conn *mq.Connection

	// Publisher — публикация событий progress/finished.
	// Nil — события не публикуются.
	Publisher *mq.Publisher

	// Runner — подмена executor'а. Nil — собирается штатный Executor.
	Runner Runner

	// MaxConcurrentJobs — лимит выполняющихся jobs. <=0 — default.
	MaxConcurrentJobs int

	// PollInterval — интервал поллинга монитора. <=0 — default.
	PollInterval time.Duration

	// MaxWait — максимум ожидания обучения. <=0 — default.
	MaxWait time.Duration

	// AutoValidation — валидировать ли метрики после обучения.
	// Nil — включено.
	AutoValidation *bool

	// Thresholds — пороги валидации. Нулевые поля — defaults.
	Thresholds Thresholds

	// Logger — логгер. Nil — slog.Default().
	Logger *slog.Logger
}

// autoValidation возвращает эффективное значение флага.
func (c *Config) autoValidation() bool {
	if c.AutoValidation == nil {
		return true
	}
	return *c.AutoValidation
}
