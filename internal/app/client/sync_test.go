package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inmodraft/internal/domain/draft"
)

func TestReconciler_ReplaysPendingOldestFirst(t *testing.T) {
	facade, local, remote := newTestFacade(t)
	reconciler := NewReconciler(local, remote, testLogger())

	remote.setOffline(true)

	first, err := facade.SaveDraft(context.Background(), SaveRequest{
		Kind: draft.KindProperty, OwnerID: 7, CurrentStep: 1, Payload: []byte(`{"v":"a"}`),
	})
	require.NoError(t, err)
	second, err := facade.SaveDraft(context.Background(), SaveRequest{
		Kind: draft.KindLand, OwnerID: 7, CurrentStep: 2, Payload: []byte(`{"v":"b"}`),
	})
	require.NoError(t, err)

	remote.setOffline(false)

	result, err := reconciler.Reconcile(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 2, result.Synced)
	assert.Empty(t, result.Errors)

	// Сервер сошелся с локальным состоянием
	require.NotNil(t, remote.get(first.DraftID))
	require.NotNil(t, remote.get(second.DraftID))
	assert.JSONEq(t, `{"v":"a"}`, string(remote.get(first.DraftID).Payload))
	assert.JSONEq(t, `{"v":"b"}`, string(remote.get(second.DraftID).Payload))

	// Перенесенные записи удалены локально
	assert.False(t, local.Has(draft.KindProperty, 7, first.DraftID))
	assert.False(t, local.Has(draft.KindLand, 7, second.DraftID))
	assert.Empty(t, local.ListPending(7))
}

func TestReconciler_SecondRunIsNoop(t *testing.T) {
	facade, local, remote := newTestFacade(t)
	reconciler := NewReconciler(local, remote, testLogger())

	remote.setOffline(true)
	_, err := facade.SaveDraft(context.Background(), SaveRequest{
		Kind: draft.KindProperty, OwnerID: 7, Payload: []byte(`{"v":1}`),
	})
	require.NoError(t, err)
	remote.setOffline(false)

	_, err = reconciler.Reconcile(context.Background(), 7)
	require.NoError(t, err)

	remote.mu.Lock()
	callsAfterFirst := remote.createCalls + remote.updateCalls
	remote.mu.Unlock()

	result, err := reconciler.Reconcile(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Attempted)
	assert.Equal(t, 0, result.Synced)

	remote.mu.Lock()
	defer remote.mu.Unlock()
	assert.Equal(t, callsAfterFirst, remote.createCalls+remote.updateCalls)
}

func TestReconciler_FailureOfOneRecordDoesNotBlockOthers(t *testing.T) {
	facade, local, remote := newTestFacade(t)
	reconciler := NewReconciler(local, remote, testLogger())

	remote.setOffline(true)
	bad, err := facade.SaveDraft(context.Background(), SaveRequest{
		Kind: draft.KindProperty, OwnerID: 7, Payload: []byte(`{"v":"bad"}`),
	})
	require.NoError(t, err)
	good, err := facade.SaveDraft(context.Background(), SaveRequest{
		Kind: draft.KindLand, OwnerID: 7, Payload: []byte(`{"v":"good"}`),
	})
	require.NoError(t, err)

	remote.setOffline(false)
	remote.failDraftID = bad.DraftID

	result, err := reconciler.Reconcile(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 1, result.Synced)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, bad.DraftID, result.Errors[0].DraftID)

	// Удачная запись ушла и стерта локально, неудачная осталась pending
	require.NotNil(t, remote.get(good.DraftID))
	assert.False(t, local.Has(draft.KindLand, 7, good.DraftID))
	pending := local.ListPending(7)
	require.Len(t, pending, 1)
	assert.Equal(t, bad.DraftID, pending[0].DraftID)
}

func TestReconciler_UpdatesDraftKnownToServer(t *testing.T) {
	_, local, remote := newTestFacade(t)
	reconciler := NewReconciler(local, remote, testLogger())

	// Черновик уже есть на сервере, офлайн-правка должна лечь как update
	remote.drafts["d-1"] = &draft.Draft{
		ID: "d-1", Kind: draft.KindProperty, Payload: []byte(`{"v":"old"}`),
	}
	local.Save(&LocalRecord{
		DraftID: "d-1", OwnerID: 7, Kind: draft.KindProperty,
		CurrentStep: 3, Payload: []byte(`{"v":"edited"}`),
	})

	result, err := reconciler.Reconcile(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)

	remote.mu.Lock()
	defer remote.mu.Unlock()
	assert.Equal(t, 1, remote.updateCalls)
	assert.Equal(t, 0, remote.createCalls)
	assert.JSONEq(t, `{"v":"edited"}`, string(remote.drafts["d-1"].Payload))
}

func TestReconciler_EmptyQueue(t *testing.T) {
	_, local, remote := newTestFacade(t)
	reconciler := NewReconciler(local, remote, testLogger())

	result, err := reconciler.Reconcile(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Attempted)
	assert.Empty(t, result.Errors)
}

func TestReconciler_RejectsConcurrentRun(t *testing.T) {
	_, local, remote := newTestFacade(t)
	reconciler := NewReconciler(local, remote, testLogger())

	reconciler.mu.Lock()
	reconciler.isSyncing = true
	reconciler.mu.Unlock()

	_, err := reconciler.Reconcile(context.Background(), 7)
	assert.ErrorIs(t, err, ErrSyncInProgress)
}

func TestMonitor_ReconnectTriggersReconciliation(t *testing.T) {
	facade, local, remote := newTestFacade(t)
	reconciler := NewReconciler(local, remote, testLogger())

	remote.setOffline(true)
	saved, err := facade.SaveDraft(context.Background(), SaveRequest{
		Kind: draft.KindProperty, OwnerID: 7, Payload: []byte(`{"v":"offline"}`),
	})
	require.NoError(t, err)
	assert.Nil(t, remote.get(saved.DraftID))

	monitor := NewMonitor(remote, func(ctx context.Context) {
		_, _ = reconciler.Reconcile(ctx, 7)
	}, testLogger())
	monitor.interval = 10 * time.Millisecond

	monitor.Start(context.Background())
	defer monitor.Stop()

	require.Eventually(t, func() bool {
		return !monitor.Online()
	}, time.Second, 5*time.Millisecond)

	// Сеть вернулась: монитор замечает переход и доигрывает накопленное
	remote.setOffline(false)

	require.Eventually(t, func() bool {
		return remote.get(saved.DraftID) != nil
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, local.ListPending(7))
	assert.True(t, monitor.Online())
}
