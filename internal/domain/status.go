package domain

// JobStatus — статус training job.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → COMPLETED
//	                  ↘ FAILED
//	          (или) → CANCELLED (из PENDING или RUNNING)
//
// Терминальные статусы write-once: оркестратор никогда не
// "воскрешает" завершённый job.
type JobStatus string

const (
	// JobStatusPending — job создан, но ещё не запущен.
	JobStatusPending JobStatus = "PENDING"

	// JobStatusRunning — job обучается внешним executor'ом.
	JobStatusRunning JobStatus = "RUNNING"

	// JobStatusCompleted — обучение успешно завершено.
	JobStatusCompleted JobStatus = "COMPLETED"

	// JobStatusFailed — обучение завершилось с ошибкой.
	JobStatusFailed JobStatus = "FAILED"

	// JobStatusCancelled — job отменён пользователем.
	JobStatusCancelled JobStatus = "CANCELLED"
)

// IsTerminal возвращает true, если статус финальный.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}
