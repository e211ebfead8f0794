package analytics

import (
	"context"
	"time"

	"golang.org/x/exp/slog"

	"inmodraft/internal/domain/draft"
)

// Service пишет события в аналитическую таблицу. Доставка fire-and-forget:
// ошибка записи логируется и никогда не доходит до вызывающего —
// сохранение черновика не должно падать из-за аналитики.
type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "analytics_service"),
	}
}

func (s *Service) DraftSaved(ctx context.Context, ownerID int, draftID string, kind draft.Kind, currentStep int) {
	e := &Event{
		Name:        EventDraftSaved,
		OwnerID:     ownerID,
		DraftID:     draftID,
		Kind:        string(kind),
		CurrentStep: currentStep,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Append(ctx, e); err != nil {
		s.log.Warn("failed to append analytics event",
			"event", e.Name,
			"draft_id", draftID,
			"error", err,
		)
	}
}
