package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"inmodraft/internal/domain/draft"
)

type DraftRepository struct {
	storage *Storage
	log     *slog.Logger
}

func NewDraftRepository(storage *Storage, log *slog.Logger) *DraftRepository {
	return &DraftRepository{
		storage: storage,
		log:     log.With("component", "draft_repository"),
	}
}

func (r *DraftRepository) Create(ctx context.Context, d *draft.Draft) error {
	const query = `
		INSERT INTO drafts (id, owner_id, kind, title, current_step, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.storage.Pool().Exec(ctx, query,
		d.ID, d.OwnerID, d.Kind, d.Title, d.CurrentStep, d.Payload, d.Status, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		r.log.Error("failed to insert draft", "draft_id", d.ID, "error", err)
		return fmt.Errorf("insert draft: %w", err)
	}

	return nil
}

// Update перезаписывает черновик целиком. Владелец и статус проверяются
// в самом UPDATE: чужая или отброшенная строка просто не матчится,
// и нулевой RowsAffected превращается в ErrNotFound.
func (r *DraftRepository) Update(ctx context.Context, d *draft.Draft) error {
	const query = `
		UPDATE drafts
		SET title = $3, current_step = $4, payload = $5, updated_at = $6
		WHERE id = $1 AND owner_id = $2 AND status = 'draft'`

	tag, err := r.storage.Pool().Exec(ctx, query,
		d.ID, d.OwnerID, d.Title, d.CurrentStep, d.Payload, d.UpdatedAt)
	if err != nil {
		r.log.Error("failed to update draft", "draft_id", d.ID, "error", err)
		return fmt.Errorf("update draft: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return draft.ErrNotFound
	}

	return nil
}

func (r *DraftRepository) Get(ctx context.Context, ownerID int, id string) (*draft.Draft, error) {
	const query = `
		SELECT id, owner_id, kind, title, current_step, payload, status, created_at, updated_at
		FROM drafts
		WHERE id = $1 AND owner_id = $2 AND status = 'draft'`

	var d draft.Draft
	err := r.storage.Pool().QueryRow(ctx, query, id, ownerID).Scan(
		&d.ID, &d.OwnerID, &d.Kind, &d.Title, &d.CurrentStep, &d.Payload, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, draft.ErrNotFound
		}
		r.log.Error("failed to get draft", "draft_id", id, "error", err)
		return nil, fmt.Errorf("get draft: %w", err)
	}

	return &d, nil
}

func (r *DraftRepository) Discard(ctx context.Context, ownerID int, id string) error {
	const query = `
		UPDATE drafts
		SET status = 'discarded', updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND status = 'draft'`

	// RowsAffected не проверяется: повторный discard и discard
	// отсутствующего черновика не являются ошибкой
	_, err := r.storage.Pool().Exec(ctx, query, id, ownerID)
	if err != nil {
		r.log.Error("failed to discard draft", "draft_id", id, "error", err)
		return fmt.Errorf("discard draft: %w", err)
	}

	return nil
}

func (r *DraftRepository) List(ctx context.Context, ownerID int, kind draft.Kind) ([]draft.Draft, error) {
	query := `
		SELECT id, owner_id, kind, title, current_step, payload, status, created_at, updated_at
		FROM drafts
		WHERE owner_id = $1 AND status = 'draft'`
	args := []interface{}{ownerID}

	if kind != "" {
		query += ` AND kind = $2`
		args = append(args, kind)
	}

	query += ` ORDER BY updated_at DESC`

	rows, err := r.storage.Pool().Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list drafts", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []draft.Draft
	for rows.Next() {
		var d draft.Draft
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Kind, &d.Title, &d.CurrentStep,
			&d.Payload, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}

	return drafts, nil
}
