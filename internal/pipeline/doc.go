// Package pipeline — ядро оркестрации training jobs.
//
// Компоненты:
//   - Controller — admission: FIFO очередь + ограниченное множество
//     выполняющихся jobs (controller.go)
//   - Executor — последовательные шаги выполнения одного job
//     (executor.go)
//   - Monitor — поллинг прогресса до терминального статуса
//     (monitor.go)
//   - Validator — пороговая оценка метрик завершённого job
//     (validator.go)
//   - RegistrySync — идемпотентная регистрация модели в registry
//     (registry.go)
//
// Controller — единственная точка входа: команды submit/cancel
// приходят по HTTP (прямой вызов) или через RabbitMQ (handlers.go).
// Состояние очереди живёт только в памяти процесса; персистентные
// статусы jobs хранит job record store (internal/repo).
package pipeline
