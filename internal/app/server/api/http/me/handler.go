package me

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"inmodraft/internal/app/server/api/http/middleware/auth"
)

type Handler struct {
	log        *slog.Logger
	middleware huma.Middlewares
}

type Output struct {
	Body Response
}

type Response struct {
	OwnerID int `json:"owner_id" doc:"Идентификатор текущего владельца"`
}

func NewHandler(log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.meOp(), h.me)
}

// me позволяет клиенту узнать ownerID своего токена: локальный кэш
// черновиков секционируется по владельцу
func (h *Handler) me(ctx context.Context, _ *struct{}) (*Output, error) {
	ownerID, ok := auth.GetOwnerID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	return &Output{
		Body: Response{OwnerID: ownerID},
	}, nil
}

func (h *Handler) meOp() huma.Operation {
	return huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/api/me",
		Summary:     "Текущий владелец",
		Tags:        []string{"session"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
