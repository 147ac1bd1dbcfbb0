package domain

import (
	"time"

	"github.com/google/uuid"
)

// DataPoint — единица обучающих данных.
type DataPoint struct {
	// ID — уникальный идентификатор data point.
	ID uuid.UUID `json:"id"`

	// ModelID — модель, к которой относятся данные.
	ModelID uuid.UUID `json:"model_id"`

	// Label — метка/класс данных.
	Label string `json:"label,omitempty"`

	// Payload — само содержимое (фичи, текст, ссылка на blob).
	Payload map[string]any `json:"payload,omitempty"`

	// CreatedAt — время добавления.
	CreatedAt time.Time `json:"created_at"`
}

// DataQuery — декларативный запрос на выборку обучающих данных.
//
// Пустые поля не ограничивают выборку. Разрешается в конкретный
// набор data points через DataRepo.ResolveQuery.
type DataQuery struct {
	// ModelID — ограничение по модели.
	ModelID *uuid.UUID `json:"model_id,omitempty"`

	// Labels — ограничение по меткам (OR).
	Labels []string `json:"labels,omitempty"`

	// From / To — временное окно по created_at.
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`

	// Limit — максимальный размер выборки (0 — без лимита).
	Limit int `json:"limit,omitempty"`
}
