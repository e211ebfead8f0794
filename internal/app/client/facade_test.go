package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inmodraft/internal/domain/draft"
)

// fakeRemote — in-memory сервер для тестов фасада, реконсиляции и
// автосохранения. Переключатель offline имитирует потерю сети.
type fakeRemote struct {
	mu          sync.Mutex
	drafts      map[string]*draft.Draft
	offline     bool
	failDraftID string
	createCalls int
	updateCalls int
	latency     time.Duration
	steps       []int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{drafts: make(map[string]*draft.Draft)}
}

func (f *fakeRemote) setOffline(offline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = offline
}

func (f *fakeRemote) get(id string) *draft.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drafts[id]
}

func (f *fakeRemote) CreateDraft(_ context.Context, req draft.CreateRequest) (string, error) {
	time.Sleep(f.latency)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.offline {
		return "", ErrRemoteUnavailable
	}
	if req.ID == f.failDraftID && f.failDraftID != "" {
		return "", ErrRemoteUnavailable
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	f.drafts[id] = &draft.Draft{
		ID:          id,
		Kind:        req.Kind,
		Title:       req.Title,
		CurrentStep: req.CurrentStep,
		Payload:     req.Payload,
	}
	f.steps = append(f.steps, req.CurrentStep)
	return id, nil
}

func (f *fakeRemote) UpdateDraft(_ context.Context, draftID string, req draft.UpdateRequest) error {
	time.Sleep(f.latency)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.updateCalls++
	if f.offline {
		return ErrRemoteUnavailable
	}
	if draftID == f.failDraftID {
		return ErrRemoteUnavailable
	}

	d, ok := f.drafts[draftID]
	if !ok {
		return draft.ErrNotFound
	}
	d.Title = req.Title
	d.CurrentStep = req.CurrentStep
	d.Payload = req.Payload
	f.steps = append(f.steps, req.CurrentStep)
	return nil
}

func (f *fakeRemote) GetDraft(_ context.Context, draftID string) (*draft.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.offline {
		return nil, ErrRemoteUnavailable
	}
	d, ok := f.drafts[draftID]
	if !ok {
		return nil, draft.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRemote) DeleteDraft(_ context.Context, draftID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.offline {
		return ErrRemoteUnavailable
	}
	delete(f.drafts, draftID)
	return nil
}

func (f *fakeRemote) ListDrafts(_ context.Context, kind draft.Kind) (draft.ListResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.offline {
		return draft.ListResponse{}, ErrRemoteUnavailable
	}

	var resp draft.ListResponse
	for _, d := range f.drafts {
		if kind != "" && d.Kind != kind {
			continue
		}
		resp.Drafts = append(resp.Drafts, draft.Item{
			ID: d.ID, Kind: d.Kind, Title: d.Title, CurrentStep: d.CurrentStep,
		})
	}
	resp.Total = len(resp.Drafts)
	return resp, nil
}

func (f *fakeRemote) HealthCheck(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.offline {
		return ErrRemoteUnavailable
	}
	return nil
}

func (f *fakeRemote) Me(_ context.Context) (int, error) {
	return 7, nil
}

func (f *fakeRemote) SetToken(_ string) {}

func newTestFacade(t *testing.T) (*Facade, *MemoryStore, *fakeRemote) {
	t.Helper()

	local := NewMemoryStore()
	remote := newFakeRemote()
	return NewFacade(local, remote, testLogger()), local, remote
}

func TestFacade_SaveOnline(t *testing.T) {
	facade, local, remote := newTestFacade(t)

	result, err := facade.SaveDraft(context.Background(), SaveRequest{
		Kind:        draft.KindProperty,
		OwnerID:     7,
		Title:       "Ático con terraza",
		CurrentStep: 2,
		Payload:     []byte(`{"rooms":3}`),
	})

	require.NoError(t, err)
	assert.Equal(t, SourceDatabase, result.Source)
	require.NotEmpty(t, result.DraftID)

	// Черновик существует на сервере под тем же ID
	require.NotNil(t, remote.get(result.DraftID))

	// Локальная копия осталась, но уже не pending
	assert.True(t, local.Has(draft.KindProperty, 7, result.DraftID))
	assert.Empty(t, local.ListPending(7))

	assert.Equal(t, SaveStateSaved, facade.State(result.DraftID))
}

func TestFacade_FirstSaveAssignsID(t *testing.T) {
	facade, _, remote := newTestFacade(t)

	first, err := facade.SaveDraft(context.Background(), SaveRequest{
		Kind: draft.KindBlog, OwnerID: 7, Payload: []byte(`{"body":"..."}`),
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.DraftID)

	// Повторное сохранение с тем же ID — update, а не второй черновик
	second, err := facade.SaveDraft(context.Background(), SaveRequest{
		Kind: draft.KindBlog, OwnerID: 7, DraftID: first.DraftID,
		CurrentStep: 1, Payload: []byte(`{"body":"más texto"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, first.DraftID, second.DraftID)

	remote.mu.Lock()
	defer remote.mu.Unlock()
	assert.Len(t, remote.drafts, 1)
	assert.Equal(t, 1, remote.createCalls)
	assert.Equal(t, 1, remote.updateCalls)
}

func TestFacade_SaveOfflineDegradesToLocal(t *testing.T) {
	facade, local, remote := newTestFacade(t)
	remote.setOffline(true)

	result, err := facade.SaveDraft(context.Background(), SaveRequest{
		Kind:    draft.KindProperty,
		OwnerID: 7,
		Payload: []byte(`{"rooms":2}`),
	})

	// Для пользователя сохранение успешно, хотя сервер недоступен
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, result.Source)
	assert.Equal(t, SaveStateSavedOffline, facade.State(result.DraftID))

	// Запись ждет реконсиляции
	pending := local.ListPending(7)
	require.Len(t, pending, 1)
	assert.Equal(t, result.DraftID, pending[0].DraftID)

	assert.Nil(t, remote.get(result.DraftID))
}

func TestFacade_SaveValidation(t *testing.T) {
	facade, _, _ := newTestFacade(t)

	_, err := facade.SaveDraft(context.Background(), SaveRequest{
		Kind: "garage", OwnerID: 7, Payload: []byte(`{}`),
	})
	assert.ErrorIs(t, err, draft.ErrInvalidKind)

	_, err = facade.SaveDraft(context.Background(), SaveRequest{
		Kind: draft.KindProperty, OwnerID: 7,
	})
	assert.ErrorIs(t, err, draft.ErrInvalidData)
}

func TestFacade_SaveOfflineCreatedDraftReachesServer(t *testing.T) {
	facade, _, remote := newTestFacade(t)

	// Первое сохранение офлайн: ID выделен локально
	remote.setOffline(true)
	offline, err := facade.SaveDraft(context.Background(), SaveRequest{
		Kind: draft.KindLand, OwnerID: 7, Payload: []byte(`{"surface":800}`),
	})
	require.NoError(t, err)

	// Сеть вернулась, ручное сохранение того же черновика: сервера с таким
	// ID нет, фасад проваливается из update в create с тем же ID
	remote.setOffline(false)
	online, err := facade.SaveDraft(context.Background(), SaveRequest{
		Kind: draft.KindLand, OwnerID: 7, DraftID: offline.DraftID,
		Payload: []byte(`{"surface":800}`),
	})
	require.NoError(t, err)
	assert.Equal(t, SourceDatabase, online.Source)
	assert.Equal(t, offline.DraftID, online.DraftID)
	require.NotNil(t, remote.get(offline.DraftID))
}

func TestFacade_LoadPrefersRemote(t *testing.T) {
	facade, local, remote := newTestFacade(t)

	local.Save(&LocalRecord{
		DraftID: "d-1", OwnerID: 7, Kind: draft.KindProperty,
		Payload: []byte(`{"v":"stale"}`),
	})
	remote.drafts["d-1"] = &draft.Draft{
		ID: "d-1", Kind: draft.KindProperty, CurrentStep: 5,
		Payload: []byte(`{"v":"fresh"}`),
	}

	result, err := facade.LoadDraft(context.Background(), draft.KindProperty, 7, "d-1")
	require.NoError(t, err)
	assert.Equal(t, SourceDatabase, result.Source)
	assert.JSONEq(t, `{"v":"fresh"}`, string(result.Payload))
	assert.Equal(t, 5, result.CurrentStep)
}

func TestFacade_LoadFallsBackToLocal(t *testing.T) {
	facade, local, remote := newTestFacade(t)
	remote.setOffline(true)

	local.Save(&LocalRecord{
		DraftID: "d-1", OwnerID: 7, Kind: draft.KindProperty,
		CurrentStep: 2, Payload: []byte(`{"v":"cached"}`),
	})

	result, err := facade.LoadDraft(context.Background(), draft.KindProperty, 7, "d-1")
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, result.Source)
	assert.JSONEq(t, `{"v":"cached"}`, string(result.Payload))
}

func TestFacade_LoadUnavailable(t *testing.T) {
	facade, _, remote := newTestFacade(t)
	remote.setOffline(true)

	_, err := facade.LoadDraft(context.Background(), draft.KindProperty, 7, "missing")
	assert.ErrorIs(t, err, ErrDraftUnavailable)
}

func TestFacade_LoadServesStaleLocalAfterRemoteDelete(t *testing.T) {
	facade, local, _ := newTestFacade(t)

	// Черновик удален на сервере, но локальная копия еще не протухла:
	// отдаем ее как локальный результат
	local.Save(&LocalRecord{
		DraftID: "d-1", OwnerID: 7, Kind: draft.KindProperty,
		Payload: []byte(`{"v":"ghost"}`),
	})

	result, err := facade.LoadDraft(context.Background(), draft.KindProperty, 7, "d-1")
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, result.Source)
}

func TestFacade_DeleteBestEffort(t *testing.T) {
	facade, local, remote := newTestFacade(t)

	local.Save(&LocalRecord{
		DraftID: "d-1", OwnerID: 7, Kind: draft.KindProperty, Payload: []byte(`{}`),
	})
	remote.setOffline(true)

	// Сбой удаленного удаления не мешает локальной очистке
	err := facade.DeleteDraft(context.Background(), draft.KindProperty, 7, "d-1")
	require.NoError(t, err)
	assert.False(t, local.Has(draft.KindProperty, 7, "d-1"))
}
