package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики pipeline'а. Регистрируются в default registry,
// экспортируются через promhttp в main каждого процесса.
var (
	// QueueDepth — текущая длина очереди admission.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "modelka_pipeline_queue_depth",
		Help: "Number of jobs waiting for a free execution slot",
	})

	// RunningJobs — количество jobs внутри pipeline'а.
	RunningJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "modelka_pipeline_running_jobs",
		Help: "Number of jobs currently executing in the pipeline",
	})

	// JobsSubmitted — принятые в очередь jobs.
	JobsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modelka_pipeline_jobs_submitted_total",
		Help: "Total jobs accepted into the admission queue",
	})

	// JobsFinished — завершённые pipeline'ом jobs по статусу.
	JobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelka_pipeline_jobs_finished_total",
		Help: "Total jobs that left the pipeline, by terminal status",
	}, []string{"status"})

	// JobDuration — длительность прохождения pipeline'а.
	JobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "modelka_pipeline_job_duration_seconds",
		Help:    "Wall-clock time a job spends inside the pipeline",
		Buckets: []float64{1, 5, 15, 60, 300, 900, 1800, 3600},
	})

	// ValidationScore — распределение оценок валидации.
	ValidationScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "modelka_pipeline_validation_score",
		Help:    "Validation score of completed jobs (0-100)",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})
)
