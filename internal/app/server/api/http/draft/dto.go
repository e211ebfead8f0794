package draft

import (
	"encoding/json"
	"time"

	"inmodraft/internal/domain/draft"
)

type createInput struct {
	Body createRequest
}

type createRequest struct {
	ID          string          `json:"id,omitempty" doc:"ID черновика (клиентский UUID, опционально)"`
	Kind        draft.Kind      `json:"kind" doc:"Тип мастера: property, land или blog"`
	Title       string          `json:"title,omitempty" doc:"Заголовок для списка черновиков"`
	CurrentStep int             `json:"current_step" minimum:"0" doc:"Текущий шаг мастера"`
	Payload     json.RawMessage `json:"payload" doc:"Частично заполненные данные формы"`
}

type updateInput struct {
	ID   string `path:"id" doc:"ID черновика"`
	Body updateRequest
}

type updateRequest struct {
	Title       string          `json:"title,omitempty"`
	CurrentStep int             `json:"current_step" minimum:"0"`
	Payload     json.RawMessage `json:"payload"`
}

type idInput struct {
	ID string `path:"id" doc:"ID черновика"`
}

type listInput struct {
	Kind draft.Kind `query:"kind" doc:"Фильтр по типу мастера" required:"false"`
}

type output struct {
	Body response
}

type response struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type findOutput struct {
	Body findResponse
}

type findResponse struct {
	ID          string          `json:"id"`
	Kind        draft.Kind      `json:"kind"`
	Title       string          `json:"title"`
	CurrentStep int             `json:"current_step"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type listOutput struct {
	Body draft.ListResponse
}
