package draft

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"inmodraft/internal/app/server/api/http/middleware/auth"
	"inmodraft/internal/domain/draft"
)

type Handler struct {
	service    draft.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service draft.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	ownerID, ok := auth.GetOwnerID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	drafts, err := h.service.List(ctx, ownerID, input.Kind)
	if err != nil {
		if errors.Is(err, draft.ErrInvalidKind) {
			return nil, huma.Error422UnprocessableEntity("invalid kind")
		}
		return nil, err
	}

	return &listOutput{
		Body: drafts,
	}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*output, error) {
	ownerID, ok := auth.GetOwnerID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	draftID, err := h.service.Create(ctx, ownerID, draft.CreateRequest{
		ID:          input.Body.ID,
		Kind:        input.Body.Kind,
		Title:       input.Body.Title,
		CurrentStep: input.Body.CurrentStep,
		Payload:     input.Body.Payload,
	})
	if err != nil {
		if errors.Is(err, draft.ErrInvalidKind) || errors.Is(err, draft.ErrInvalidData) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return &output{
			Body: response{Status: "Error"},
		}, err
	}

	return &output{
		Body: response{
			ID:     draftID,
			Status: "Ok",
		},
	}, nil
}

func (h *Handler) find(ctx context.Context, input *idInput) (*findOutput, error) {
	ownerID, ok := auth.GetOwnerID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	d, err := h.service.Load(ctx, ownerID, input.ID)
	if err != nil {
		if errors.Is(err, draft.ErrNotFound) {
			// Чужой и несуществующий черновик неразличимы для клиента
			return nil, huma.Error404NotFound("draft not found")
		}
		return nil, err
	}

	return &findOutput{
		Body: findResponse{
			ID:          d.ID,
			Kind:        d.Kind,
			Title:       d.Title,
			CurrentStep: d.CurrentStep,
			Payload:     d.Payload,
			CreatedAt:   d.CreatedAt,
			UpdatedAt:   d.UpdatedAt,
		},
	}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*output, error) {
	ownerID, ok := auth.GetOwnerID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	err := h.service.Update(ctx, ownerID, input.ID, draft.UpdateRequest{
		Title:       input.Body.Title,
		CurrentStep: input.Body.CurrentStep,
		Payload:     input.Body.Payload,
	})
	if err != nil {
		if errors.Is(err, draft.ErrNotFound) {
			return nil, huma.Error404NotFound("draft not found")
		}
		if errors.Is(err, draft.ErrInvalidData) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return &output{
			Body: response{ID: input.ID, Status: "Error"},
		}, err
	}

	return &output{
		Body: response{
			ID:     input.ID,
			Status: "Ok",
		},
	}, nil
}

func (h *Handler) delete(ctx context.Context, input *idInput) (*output, error) {
	ownerID, ok := auth.GetOwnerID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.Delete(ctx, ownerID, input.ID); err != nil {
		return &output{
			Body: response{Status: "Error"},
		}, err
	}

	return &output{
		Body: response{
			ID:     input.ID,
			Status: "Ok",
		},
	}, nil
}
