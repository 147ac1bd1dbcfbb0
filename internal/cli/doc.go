// Package cli реализует инструмент командной строки Modelka.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Modelka API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для управления training jobs, обучающими данными
// и просмотра model registry.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Modelka API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	jobs, err := client.ListJobs(cli.ListJobsOpts{})
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: modelka job list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - job: list, create, show, submit, cancel, progress, complete
//   - data: add, list
//   - model: show, version
//   - pipeline: status
//
// Каждая группа создаётся через фабричную функцию (NewJobCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
