package domain

// ValidationResult — результат проверки метрик завершённого job.
//
// Эфемерный: pipeline не персистит его. Ошибки (Errors) означают
// passed=false; warnings только снижают score.
type ValidationResult struct {
	// Passed — прошёл ли job валидацию.
	Passed bool `json:"passed"`

	// Score — суммарная оценка 0–100.
	Score int `json:"score"`

	// Metrics — объединённые training+validation метрики,
	// по которым считалась оценка.
	Metrics map[string]float64 `json:"metrics,omitempty"`

	// Errors — блокирующие замечания (passed=false).
	Errors []string `json:"errors,omitempty"`

	// Warnings — не блокирующие замечания.
	Warnings []string `json:"warnings,omitempty"`
}
