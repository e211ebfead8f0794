package analytics

import (
	"time"
)

const EventDraftSaved = "draft_saved"

// Event — строка аналитического события. Таблица append-only,
// никакая базовая логика от нее не зависит.
type Event struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	OwnerID     int       `json:"owner_id"`
	DraftID     string    `json:"draft_id"`
	Kind        string    `json:"kind"`
	CurrentStep int       `json:"current_step"`
	CreatedAt   time.Time `json:"created_at"`
}
