package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Modelka/internal/domain"
)

// DataRepo — репозиторий обучающих данных (data availability checker).
//
// Разрешает декларативный DataQuery или явный список ID
// в конкретный набор data points. Пустой результат — валидный
// ответ; решение о hard stop принимает pipeline.
type DataRepo struct {
	pool *pgxpool.Pool
}

// NewDataRepo создаёт новый DataRepo.
func NewDataRepo(pool *pgxpool.Pool) *DataRepo {
	return &DataRepo{pool: pool}
}

const dataPointColumns = `id, model_id, label, payload, created_at`

// Create добавляет data point.
func (r *DataRepo) Create(ctx context.Context, dp *domain.DataPoint) error {
	var payloadJSON []byte
	if dp.Payload != nil {
		var err error
		payloadJSON, err = json.Marshal(dp.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
	}

	query := `
		INSERT INTO training_data (id, model_id, label, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, dp.ID, dp.ModelID, nullString(dp.Label), payloadJSON, dp.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert data point: %w", err)
	}
	return nil
}

// GetByIDs возвращает ровно указанные data points.
// Отсутствующие ID молча пропускаются.
func (r *DataRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.DataPoint, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + dataPointColumns + `
		FROM training_data
		WHERE id = ANY($1)
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get data points: %w", err)
	}
	defer rows.Close()

	return scanDataPoints(rows)
}

// ResolveQuery разрешает DataQuery в набор data points.
func (r *DataRepo) ResolveQuery(ctx context.Context, q domain.DataQuery) ([]domain.DataPoint, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 10000
	}

	query := `
		SELECT ` + dataPointColumns + `
		FROM training_data
		WHERE ($1::uuid IS NULL OR model_id = $1)
		  AND ($2::text[] IS NULL OR label = ANY($2))
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at <= $4)
		ORDER BY created_at ASC
		LIMIT $5
	`
	var labels []string
	if len(q.Labels) > 0 {
		labels = q.Labels
	}

	rows, err := r.pool.Query(ctx, query, q.ModelID, labels, q.From, q.To, limit)
	if err != nil {
		return nil, fmt.Errorf("resolve data query: %w", err)
	}
	defer rows.Close()

	return scanDataPoints(rows)
}

// scanDataPoints сканирует строки в data points.
func scanDataPoints(rows pgx.Rows) ([]domain.DataPoint, error) {
	var points []domain.DataPoint
	for rows.Next() {
		var dp domain.DataPoint
		var label *string
		var payloadJSON []byte

		if err := rows.Scan(&dp.ID, &dp.ModelID, &label, &payloadJSON, &dp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan data point: %w", err)
		}
		if label != nil {
			dp.Label = *label
		}
		if payloadJSON != nil {
			if err := json.Unmarshal(payloadJSON, &dp.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal payload: %w", err)
			}
		}
		points = append(points, dp)
	}
	return points, rows.Err()
}
