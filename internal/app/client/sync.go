package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"inmodraft/internal/domain/draft"
)

// SyncError — ошибка переноса одной локальной записи на сервер
type SyncError struct {
	DraftID   string    `json:"draft_id"`
	Operation string    `json:"operation"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncResult — итог одного прохода реконсиляции
type SyncResult struct {
	Attempted int         `json:"attempted"`
	Synced    int         `json:"synced"`
	Errors    []SyncError `json:"errors,omitempty"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time"`
}

func (r SyncResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Reconciler доигрывает на сервер локальные записи, накопившиеся за время
// офлайна. Повторный запуск безвреден: перенесенная запись удаляется
// локально и в следующий проход не попадает.
type Reconciler struct {
	local  LocalStore
	remote RemoteClient
	log    *slog.Logger

	mu        sync.Mutex
	isSyncing bool
}

func NewReconciler(local LocalStore, remote RemoteClient, log *slog.Logger) *Reconciler {
	return &Reconciler{
		local:  local,
		remote: remote,
		log:    log.With("component", "reconciler"),
	}
}

var ErrSyncInProgress = errors.New("синхронизация уже выполняется")

// Reconcile переносит все pending-записи владельца на сервер, старые
// первыми. Сбой одной записи не прерывает проход: запись остается
// pending до следующего запуска, остальные обрабатываются дальше.
func (r *Reconciler) Reconcile(ctx context.Context, ownerID int) (SyncResult, error) {
	r.mu.Lock()
	if r.isSyncing {
		r.mu.Unlock()
		return SyncResult{}, ErrSyncInProgress
	}
	r.isSyncing = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.isSyncing = false
		r.mu.Unlock()
	}()

	result := SyncResult{StartTime: time.Now()}

	pending := r.local.ListPending(ownerID)
	result.Attempted = len(pending)

	if len(pending) == 0 {
		result.EndTime = time.Now()
		return result, nil
	}

	r.log.Info("reconciliation started", "owner_id", ownerID, "pending", len(pending))

	for _, rec := range pending {
		if err := ctx.Err(); err != nil {
			result.EndTime = time.Now()
			return result, fmt.Errorf("reconcile interrupted: %w", err)
		}

		op, err := r.replay(ctx, rec)
		if err != nil {
			result.Errors = append(result.Errors, SyncError{
				DraftID:   rec.DraftID,
				Operation: op,
				Error:     err.Error(),
				Timestamp: time.Now(),
			})
			r.log.Warn("replay failed", "draft_id", rec.DraftID, "operation", op, "error", err)
			continue
		}

		// Сервер подтвердил запись, локальная копия больше не нужна
		r.local.Delete(rec.Kind, rec.OwnerID, rec.DraftID)
		result.Synced++
	}

	result.EndTime = time.Now()
	r.log.Info("reconciliation finished",
		"owner_id", ownerID,
		"synced", result.Synced,
		"failed", len(result.Errors),
		"duration", result.Duration(),
	)

	return result, nil
}

// replay отправляет одну запись: сначала Update, при 404 — Create с тем же
// идентификатором (черновик был создан офлайн и на сервере еще не существует)
func (r *Reconciler) replay(ctx context.Context, rec *LocalRecord) (string, error) {
	err := r.remote.UpdateDraft(ctx, rec.DraftID, draft.UpdateRequest{
		Title:       rec.Title,
		CurrentStep: rec.CurrentStep,
		Payload:     rec.Payload,
	})
	if err == nil {
		return "update", nil
	}
	if !errors.Is(err, draft.ErrNotFound) {
		return "update", err
	}

	_, err = r.remote.CreateDraft(ctx, draft.CreateRequest{
		ID:          rec.DraftID,
		Kind:        rec.Kind,
		Title:       rec.Title,
		CurrentStep: rec.CurrentStep,
		Payload:     rec.Payload,
	})
	if err != nil {
		return "create", err
	}
	return "create", nil
}
