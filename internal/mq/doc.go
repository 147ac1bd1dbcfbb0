// Package mq — обмен событиями жизненного цикла jobs через RabbitMQ.
//
// Топология:
//   - modelka.jobs (direct) — команды pipeline'у: job.submitted, job.cancel
//   - modelka.events (fanout) — телеметрия наружу: job.progress, job.finished
//   - modelka.dlq (direct) — dead letter queue
//
// API-процесс публикует команды, pipeline-процесс их потребляет.
// События телеметрии никем внутри системы не потребляются —
// они предназначены для внешних подписчиков.
//
// Брокер опционален: при недоступном RabbitMQ процессы работают
// без событийной шины (API вызывает оркестратор недоступен — jobs
// остаются PENDING до его появления).
package mq
