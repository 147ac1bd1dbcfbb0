// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (репозитории, publisher, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - job_handler.go      — обработчики для /jobs, включая callbacks
//     external trainer'а (progress/complete)
//   - model_handler.go    — обработчики для /models
//   - data_handler.go     — обработчики для /data
//   - pipeline_handler.go — статус pipeline'а (только процесс pipeline)
//
// API предоставляет REST endpoints для управления training jobs,
// обучающими данными и model registry. Команды submit/cancel уходят
// в pipeline-процесс через RabbitMQ.
package api
