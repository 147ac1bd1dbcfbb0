package pipeline

import "errors"

// Ошибки pipeline'а.
var (
	// ErrJobNotFound — job не существует в record store.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobNotPending — submit по job, который не в PENDING.
	ErrJobNotPending = errors.New("job is not in PENDING status")

	// ErrAlreadyQueued — job уже в очереди или выполняется.
	ErrAlreadyQueued = errors.New("job is already queued or running")

	// ErrNoTrainingData — для job не нашлось ни одного data point.
	ErrNoTrainingData = errors.New("no training data resolved")

	// ErrMonitoringTimeout — обучение не завершилось за максимальное
	// время ожидания.
	ErrMonitoringTimeout = errors.New("monitoring timed out")

	// ErrExecutionFailed — external executor завершил job со статусом
	// FAILED.
	ErrExecutionFailed = errors.New("training execution failed")

	// ErrJobCancelled — job был отменён во время выполнения.
	ErrJobCancelled = errors.New("job cancelled")

	// ErrStopped — controller остановлен и не принимает jobs.
	ErrStopped = errors.New("pipeline controller is stopped")
)
