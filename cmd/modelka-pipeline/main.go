// Modelka Pipeline — управляет выполнением training jobs.
//
// Pipeline:
//   - Получает команды submit/cancel из RabbitMQ
//   - Держит FIFO очередь и ограниченное множество выполняющихся jobs
//   - Мониторит прогресс external trainer'а и финализирует jobs
//   - Валидирует метрики и синхронизирует model registry
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Modelka/internal/api"
	"github.com/shaiso/Modelka/internal/mq"
	"github.com/shaiso/Modelka/internal/pipeline"
	"github.com/shaiso/Modelka/internal/repo"
	"github.com/shaiso/Modelka/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting modelka-pipeline")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// Создаём репозитории
	jobRepo := repo.NewJobRepo(pool)
	dataRepo := repo.NewDataRepo(pool)
	modelRepo := repo.NewModelRepo(pool)

	// RabbitMQ
	var publisher *mq.Publisher
	var mqConn *mq.Connection
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err = mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, accepting commands via HTTP only", "error", err)
		mqConn = nil
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")
		publisher = mq.NewPublisher(mqConn, logger)
	}

	// Создаём pipeline controller
	ctrl := pipeline.NewController(pipeline.Config{
		Jobs:              jobRepo,
		Data:              dataRepo,
		Versions:          modelRepo,
		Registry:          modelRepo,
		Conn:              mqConn,
		Publisher:         publisher,
		MaxConcurrentJobs: envInt("MAX_CONCURRENT_JOBS", 0),
		PollInterval:      envDuration("PIPELINE_POLL_INTERVAL", 0),
		MaxWait:           envDuration("PIPELINE_MAX_WAIT", 0),
		AutoValidation:    envBool("AUTO_VALIDATION"),
		Thresholds: pipeline.Thresholds{
			MinAccuracy: envFloat("MIN_ACCURACY", 0),
			MaxLoss:     envFloat("MAX_LOSS", 0),
		},
		Logger: logger,
	})

	if err := ctrl.Start(ctx); err != nil {
		logger.Error("failed to start pipeline controller", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics + статус pipeline'а
	statusHandler := api.NewHandler(api.Config{
		Pipeline: ctrl,
		Logger:   logger,
	})
	chain := api.Chain(
		api.Recovery(logger),
		api.Logging(logger),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("GET /api/v1/pipeline/status", chain(http.HandlerFunc(statusHandler.PipelineStatus)))

	port := ":8083"
	if v := os.Getenv("PIPELINE_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем controller
	ctrl.Stop()
	logger.Info("modelka-pipeline stopped")
}

// envInt читает int из переменной окружения.
func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// envFloat читает float64 из переменной окружения.
func envFloat(name string, def float64) float64 {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// envDuration читает duration ("30s", "1h") из переменной окружения.
func envDuration(name string, def time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// envBool читает bool из переменной окружения.
// Возвращает nil, если переменная не задана.
func envBool(name string) *bool {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}
