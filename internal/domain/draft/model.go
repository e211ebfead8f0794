package draft

import (
	"encoding/json"
	"time"
)

// Kind определяет тип мастера, к которому относится черновик.
// Тип фиксируется при создании и не меняется.
type Kind string

const (
	KindProperty Kind = "property"
	KindLand     Kind = "land"
	KindBlog     Kind = "blog"
)

func (k Kind) Valid() bool {
	switch k {
	case KindProperty, KindLand, KindBlog:
		return true
	}
	return false
}

// Status статус черновика. Отброшенный черновик исключается из списков,
// попытка загрузки завершается ErrNotFound.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusDiscarded Status = "discarded"
)

// Draft — серверная (авторитетная) запись черновика мастера.
// Payload — непрозрачный документ формы, может быть неполным и невалидным:
// черновик никогда не обязан проходить полную валидацию формы.
//
// Конфликт одновременного редактирования одного черновика из двух локальных
// кэшей разрешается как last-write-wins на уровне целого черновика:
// последняя успешная запись целиком перезаписывает payload и current_step.
type Draft struct {
	ID          string          `json:"id"`
	OwnerID     int             `json:"owner_id"`
	Kind        Kind            `json:"kind"`
	Title       string          `json:"title,omitempty"`
	CurrentStep int             `json:"current_step"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
