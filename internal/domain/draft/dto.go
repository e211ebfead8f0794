package draft

import (
	"encoding/json"
	"time"
)

type CreateRequest struct {
	ID          string          `json:"id,omitempty"`
	Kind        Kind            `json:"kind"`
	Title       string          `json:"title,omitempty"`
	CurrentStep int             `json:"current_step"`
	Payload     json.RawMessage `json:"payload"`
}

type UpdateRequest struct {
	Title       string          `json:"title,omitempty"`
	CurrentStep int             `json:"current_step"`
	Payload     json.RawMessage `json:"payload"`
}

type Item struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	CurrentStep int       `json:"current_step"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListResponse struct {
	Drafts []Item `json:"drafts"`
	Total  int    `json:"total"`
}
