package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"inmodraft/internal/domain/draft"
)

// SaveState — состояние сохранения черновика:
// Idle -> Saving -> {Saved, SavedOffline, Failed} -> Idle
type SaveState int

const (
	SaveStateIdle SaveState = iota
	SaveStateSaving
	SaveStateSaved
	SaveStateSavedOffline
	SaveStateFailed
)

func (s SaveState) String() string {
	switch s {
	case SaveStateIdle:
		return "idle"
	case SaveStateSaving:
		return "saving"
	case SaveStateSaved:
		return "saved"
	case SaveStateSavedOffline:
		return "saved_offline"
	case SaveStateFailed:
		return "failed"
	}
	return "unknown"
}

// SaveSource — куда реально легла запись с точки зрения вызывающего
type SaveSource string

const (
	SourceDatabase SaveSource = "database"
	SourceLocal    SaveSource = "local"
)

type SaveRequest struct {
	Kind        draft.Kind
	OwnerID     int
	DraftID     string
	Title       string
	CurrentStep int
	Payload     json.RawMessage
}

type SaveResult struct {
	DraftID string
	Source  SaveSource
}

type LoadResult struct {
	DraftID     string
	Kind        draft.Kind
	Title       string
	CurrentStep int
	Payload     json.RawMessage
	Source      SaveSource
}

// Facade — единая точка входа мастеров в персистентность черновиков.
// Запись всегда сначала ложится в локальный кэш, затем делается попытка
// удаленной записи; при офлайне или сбое сервера вызов все равно успешен
// для пользователя (source="local"), а запись остается pending до
// реконсиляции.
//
// Удаленные записи одного черновика сериализованы: второй Save по тому же
// draft_id ждет завершения первого, иначе старый in-flight запрос мог бы
// завершиться после нового и затереть его (stale write).
type Facade struct {
	local  LocalStore
	remote RemoteClient
	log    *slog.Logger

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
	states   map[string]SaveState
}

func NewFacade(local LocalStore, remote RemoteClient, log *slog.Logger) *Facade {
	return &Facade{
		local:    local,
		remote:   remote,
		log:      log.With("component", "draft_facade"),
		inflight: make(map[string]*sync.Mutex),
		states:   make(map[string]SaveState),
	}
}

// SaveDraft сохраняет черновик по явному действию пользователя
func (f *Facade) SaveDraft(ctx context.Context, req SaveRequest) (SaveResult, error) {
	return f.save(ctx, req, false)
}

// AutoSaveDraft — тот же контракт, что у SaveDraft, но для фонового
// сохранения: сбои логируются тише и не должны дергать пользователя
func (f *Facade) AutoSaveDraft(ctx context.Context, req SaveRequest) (SaveResult, error) {
	return f.save(ctx, req, true)
}

func (f *Facade) save(ctx context.Context, req SaveRequest, quiet bool) (SaveResult, error) {
	if !req.Kind.Valid() {
		return SaveResult{}, draft.ErrInvalidKind
	}
	if len(req.Payload) == 0 {
		return SaveResult{}, draft.ErrInvalidData
	}

	hadID := req.DraftID != ""
	if !hadID {
		// ID выделяется клиентом при первом сохранении: у офлайн-черновика
		// должен быть стабильный идентификатор до первого обращения к серверу
		req.DraftID = uuid.NewString()
	}

	lock := f.draftLock(req.DraftID)
	lock.Lock()
	defer lock.Unlock()

	f.setState(req.DraftID, SaveStateSaving)

	// Локальная запись всегда первая: дешево и не зависит от сети
	f.local.Save(&LocalRecord{
		DraftID:     req.DraftID,
		OwnerID:     req.OwnerID,
		Kind:        req.Kind,
		Title:       req.Title,
		CurrentStep: req.CurrentStep,
		Payload:     req.Payload,
		Synced:      false,
	})

	if err := f.saveRemote(ctx, req, hadID); err != nil {
		// Сбой сети не фатален: запись осталась локально и ждет реконсиляции
		if quiet {
			f.log.Debug("autosave degraded to local", "draft_id", req.DraftID, "error", err)
		} else {
			f.log.Warn("save degraded to local", "draft_id", req.DraftID, "error", err)
		}
		f.setState(req.DraftID, SaveStateSavedOffline)
		return SaveResult{DraftID: req.DraftID, Source: SourceLocal}, nil
	}

	// Локальная копия остается до подтвержденной реконсиляции или discard,
	// снимается только флаг pending
	f.local.MarkSynced(req.Kind, req.OwnerID, req.DraftID)
	f.setState(req.DraftID, SaveStateSaved)

	return SaveResult{DraftID: req.DraftID, Source: SourceDatabase}, nil
}

func (f *Facade) saveRemote(ctx context.Context, req SaveRequest, hadID bool) error {
	if hadID {
		err := f.remote.UpdateDraft(ctx, req.DraftID, draft.UpdateRequest{
			Title:       req.Title,
			CurrentStep: req.CurrentStep,
			Payload:     req.Payload,
		})
		// Известный клиенту ID еще не существует на сервере:
		// черновик был создан офлайн и не успел синхронизироваться
		if !errors.Is(err, draft.ErrNotFound) {
			return err
		}
	}

	_, err := f.remote.CreateDraft(ctx, draft.CreateRequest{
		ID:          req.DraftID,
		Kind:        req.Kind,
		Title:       req.Title,
		CurrentStep: req.CurrentStep,
		Payload:     req.Payload,
	})
	return err
}

// LoadDraft загружает черновик: сначала сервер (источник истины), при его
// недоступности или отсутствии — локальный кэш. Если пусто и там и там —
// ErrDraftUnavailable.
//
// Устаревшая локальная копия после удаления черновика на сервере —
// документированное поведение, не баг.
func (f *Facade) LoadDraft(ctx context.Context, kind draft.Kind, ownerID int, draftID string) (LoadResult, error) {
	d, err := f.remote.GetDraft(ctx, draftID)
	if err == nil {
		return LoadResult{
			DraftID:     d.ID,
			Kind:        d.Kind,
			Title:       d.Title,
			CurrentStep: d.CurrentStep,
			Payload:     d.Payload,
			Source:      SourceDatabase,
		}, nil
	}

	f.log.Debug("remote load missed, trying local cache", "draft_id", draftID, "error", err)

	if rec := f.local.Load(kind, ownerID, draftID); rec != nil {
		return LoadResult{
			DraftID:     rec.DraftID,
			Kind:        rec.Kind,
			Title:       rec.Title,
			CurrentStep: rec.CurrentStep,
			Payload:     rec.Payload,
			Source:      SourceLocal,
		}, nil
	}

	return LoadResult{}, ErrDraftUnavailable
}

// DeleteDraft удаляет черновик: на сервере best-effort, локально — строго.
// Ментальная модель пользователя — «черновика больше нет», поэтому
// обязательна только локальная очистка.
func (f *Facade) DeleteDraft(ctx context.Context, kind draft.Kind, ownerID int, draftID string) error {
	lock := f.draftLock(draftID)
	lock.Lock()
	defer lock.Unlock()

	if err := f.remote.DeleteDraft(ctx, draftID); err != nil {
		f.log.Warn("remote delete failed, draft removed locally only", "draft_id", draftID, "error", err)
	}

	f.local.Delete(kind, ownerID, draftID)
	f.setState(draftID, SaveStateIdle)

	return nil
}

// State возвращает текущее состояние сохранения черновика
func (f *Facade) State(draftID string) SaveState {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.states[draftID]
}

func (f *Facade) setState(draftID string, state SaveState) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if state == SaveStateIdle {
		delete(f.states, draftID)
		return
	}
	f.states[draftID] = state
}

func (f *Facade) draftLock(draftID string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()

	lock, ok := f.inflight[draftID]
	if !ok {
		lock = &sync.Mutex{}
		f.inflight[draftID] = lock
	}
	return lock
}
