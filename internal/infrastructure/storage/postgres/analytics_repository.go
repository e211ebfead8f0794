package postgres

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"inmodraft/internal/domain/analytics"
)

type AnalyticsRepository struct {
	storage *Storage
	log     *slog.Logger
}

func NewAnalyticsRepository(storage *Storage, log *slog.Logger) *AnalyticsRepository {
	return &AnalyticsRepository{
		storage: storage,
		log:     log.With("component", "analytics_repository"),
	}
}

func (r *AnalyticsRepository) Append(ctx context.Context, e *analytics.Event) error {
	const query = `
		INSERT INTO draft_events (name, owner_id, draft_id, kind, current_step, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.storage.Pool().Exec(ctx, query,
		e.Name, e.OwnerID, e.DraftID, e.Kind, e.CurrentStep, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	return nil
}
