package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const untitledDraft = "Borrador sin título"

// Tracker — приемник аналитических событий. Доставка fire-and-forget:
// реализация не возвращает ошибку и не должна влиять на исход сохранения.
type Tracker interface {
	DraftSaved(ctx context.Context, ownerID int, draftID string, kind Kind, currentStep int)
}

type Servicer interface {
	Create(ctx context.Context, ownerID int, req CreateRequest) (string, error)
	Update(ctx context.Context, ownerID int, draftID string, req UpdateRequest) error
	Load(ctx context.Context, ownerID int, draftID string) (*Draft, error)
	Delete(ctx context.Context, ownerID int, draftID string) error
	List(ctx context.Context, ownerID int, kind Kind) (ListResponse, error)
}

// Service реализует бизнес-логику серверного хранилища черновиков
type Service struct {
	repo    Repository
	tracker Tracker
	log     *slog.Logger
}

func NewService(repo Repository, tracker Tracker, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		tracker: tracker,
		log:     log.With("component", "draft_service"),
	}
}

// Create вставляет новую строку черновика со статусом draft.
// ID может прийти от клиента (черновик, созданный офлайн); если его нет,
// идентификатор выделяется здесь.
func (s *Service) Create(ctx context.Context, ownerID int, req CreateRequest) (string, error) {
	if !req.Kind.Valid() {
		return "", ErrInvalidKind
	}
	if len(req.Payload) == 0 {
		return "", ErrInvalidData
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now()
	d := &Draft{
		ID:          id,
		OwnerID:     ownerID,
		Kind:        req.Kind,
		Title:       deriveTitle(req.Title, req.Payload),
		CurrentStep: req.CurrentStep,
		Payload:     req.Payload,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		s.log.Error("failed to create draft", "owner_id", ownerID, "kind", req.Kind, "error", err)
		return "", fmt.Errorf("create draft: %w", err)
	}

	s.tracker.DraftSaved(ctx, ownerID, id, req.Kind, req.CurrentStep)
	s.log.Info("draft created", "draft_id", id, "owner_id", ownerID, "kind", req.Kind)

	return id, nil
}

// Update целиком перезаписывает payload и current_step (last-write-wins).
func (s *Service) Update(ctx context.Context, ownerID int, draftID string, req UpdateRequest) error {
	if len(req.Payload) == 0 {
		return ErrInvalidData
	}

	current, err := s.repo.Get(ctx, ownerID, draftID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get draft for update: %w", err)
	}

	d := &Draft{
		ID:          draftID,
		OwnerID:     ownerID,
		Kind:        current.Kind,
		Title:       deriveTitle(req.Title, req.Payload),
		CurrentStep: req.CurrentStep,
		Payload:     req.Payload,
		Status:      StatusDraft,
		UpdatedAt:   time.Now(),
	}

	if err := s.repo.Update(ctx, d); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.log.Error("failed to update draft", "draft_id", draftID, "owner_id", ownerID, "error", err)
		return fmt.Errorf("update draft: %w", err)
	}

	s.tracker.DraftSaved(ctx, ownerID, draftID, current.Kind, req.CurrentStep)

	return nil
}

// Load возвращает активный черновик владельца
func (s *Service) Load(ctx context.Context, ownerID int, draftID string) (*Draft, error) {
	d, err := s.repo.Get(ctx, ownerID, draftID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error("failed to load draft", "draft_id", draftID, "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("load draft: %w", err)
	}

	return d, nil
}

// Delete отбрасывает черновик. С точки зрения вызывающего идемпотентен.
func (s *Service) Delete(ctx context.Context, ownerID int, draftID string) error {
	if err := s.repo.Discard(ctx, ownerID, draftID); err != nil {
		s.log.Error("failed to discard draft", "draft_id", draftID, "owner_id", ownerID, "error", err)
		return fmt.Errorf("discard draft: %w", err)
	}

	s.log.Info("draft discarded", "draft_id", draftID, "owner_id", ownerID)
	return nil
}

// List возвращает активные черновики владельца, свежие первыми
func (s *Service) List(ctx context.Context, ownerID int, kind Kind) (ListResponse, error) {
	if kind != "" && !kind.Valid() {
		return ListResponse{}, ErrInvalidKind
	}

	drafts, err := s.repo.List(ctx, ownerID, kind)
	if err != nil {
		s.log.Error("failed to list drafts", "owner_id", ownerID, "error", err)
		return ListResponse{}, fmt.Errorf("list drafts: %w", err)
	}

	items := make([]Item, len(drafts))
	for i, d := range drafts {
		items[i] = Item{
			ID:          d.ID,
			Kind:        d.Kind,
			Title:       d.Title,
			CurrentStep: d.CurrentStep,
			UpdatedAt:   d.UpdatedAt,
		}
	}

	return ListResponse{
		Drafts: items,
		Total:  len(items),
	}, nil
}

// deriveTitle берет явный заголовок, иначе поле title из payload,
// иначе заглушку для списка черновиков
func deriveTitle(title string, payload json.RawMessage) string {
	if title != "" {
		return title
	}

	var probe struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(payload, &probe); err == nil && probe.Title != "" {
		return probe.Title
	}

	return untitledDraft
}
