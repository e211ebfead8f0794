package client

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"inmodraft/internal/domain/draft"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "drafts.db")
	store, err := NewSQLiteStore(path, testLogger())
	require.NoError(t, err)

	t.Cleanup(func() { store.Close() })

	return store, path
}

func TestSQLiteStore_SaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	store.Save(&LocalRecord{
		DraftID:     "d-1",
		OwnerID:     7,
		Kind:        draft.KindProperty,
		Title:       "Piso en Malasaña",
		CurrentStep: 3,
		Payload:     []byte(`{"title":"Piso en Malasaña","price":420000}`),
	})

	rec := store.Load(draft.KindProperty, 7, "d-1")
	require.NotNil(t, rec)
	assert.Equal(t, "d-1", rec.DraftID)
	assert.Equal(t, 7, rec.OwnerID)
	assert.Equal(t, draft.KindProperty, rec.Kind)
	assert.Equal(t, "Piso en Malasaña", rec.Title)
	assert.Equal(t, 3, rec.CurrentStep)
	assert.JSONEq(t, `{"title":"Piso en Malasaña","price":420000}`, string(rec.Payload))
	assert.False(t, rec.Synced)
}

func TestSQLiteStore_SurvivesRestart(t *testing.T) {
	store, path := newTestStore(t)

	store.Save(&LocalRecord{
		DraftID: "d-1",
		OwnerID: 7,
		Kind:    draft.KindLand,
		Payload: []byte(`{"surface":1200}`),
	})
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path, testLogger())
	require.NoError(t, err)
	defer reopened.Close()

	rec := reopened.Load(draft.KindLand, 7, "d-1")
	require.NotNil(t, rec)
	assert.JSONEq(t, `{"surface":1200}`, string(rec.Payload))
}

func TestSQLiteStore_OverwriteIsLastWriteWins(t *testing.T) {
	store, _ := newTestStore(t)

	store.Save(&LocalRecord{
		DraftID: "d-1", OwnerID: 7, Kind: draft.KindBlog,
		CurrentStep: 1, Payload: []byte(`{"v":1}`),
	})
	store.Save(&LocalRecord{
		DraftID: "d-1", OwnerID: 7, Kind: draft.KindBlog,
		CurrentStep: 4, Payload: []byte(`{"v":2}`), Synced: true,
	})

	rec := store.Load(draft.KindBlog, 7, "d-1")
	require.NotNil(t, rec)
	assert.Equal(t, 4, rec.CurrentStep)
	assert.JSONEq(t, `{"v":2}`, string(rec.Payload))
	assert.True(t, rec.Synced)
}

func TestSQLiteStore_ExpiredRecordLazilyDropped(t *testing.T) {
	store, _ := newTestStore(t)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	store.Save(&LocalRecord{
		DraftID: "d-old", OwnerID: 7, Kind: draft.KindProperty,
		Payload: []byte(`{}`),
	})

	// За минуту до порога запись еще жива
	store.now = func() time.Time { return base.Add(localTTL - time.Minute) }
	require.NotNil(t, store.Load(draft.KindProperty, 7, "d-old"))

	// После порога протухла и стерта
	store.now = func() time.Time { return base.Add(localTTL + time.Minute) }
	assert.Nil(t, store.Load(draft.KindProperty, 7, "d-old"))

	// Запись удалена физически, а не только скрыта
	store.now = func() time.Time { return base }
	assert.False(t, store.Has(draft.KindProperty, 7, "d-old"))
}

func TestSQLiteStore_SweepExpired(t *testing.T) {
	store, _ := newTestStore(t)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base.Add(-30 * time.Hour) }
	store.Save(&LocalRecord{DraftID: "d-old", OwnerID: 7, Kind: draft.KindProperty, Payload: []byte(`{}`)})

	store.now = func() time.Time { return base.Add(-time.Hour) }
	store.Save(&LocalRecord{DraftID: "d-fresh", OwnerID: 7, Kind: draft.KindProperty, Payload: []byte(`{}`)})

	store.now = func() time.Time { return base }
	store.SweepExpired()

	assert.False(t, store.Has(draft.KindProperty, 7, "d-old"))
	assert.True(t, store.Has(draft.KindProperty, 7, "d-fresh"))
}

func TestSQLiteStore_ListPending(t *testing.T) {
	store, _ := newTestStore(t)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base.Add(-2 * time.Hour) }
	store.Save(&LocalRecord{DraftID: "d-first", OwnerID: 7, Kind: draft.KindProperty, Payload: []byte(`{}`)})

	store.now = func() time.Time { return base.Add(-time.Hour) }
	store.Save(&LocalRecord{DraftID: "d-second", OwnerID: 7, Kind: draft.KindLand, Payload: []byte(`{}`)})
	store.Save(&LocalRecord{DraftID: "d-synced", OwnerID: 7, Kind: draft.KindBlog, Payload: []byte(`{}`), Synced: true})
	store.Save(&LocalRecord{DraftID: "d-other", OwnerID: 99, Kind: draft.KindProperty, Payload: []byte(`{}`)})

	store.now = func() time.Time { return base }
	pending := store.ListPending(7)

	// Только несинхронизированные записи владельца, старые первыми
	require.Len(t, pending, 2)
	assert.Equal(t, "d-first", pending[0].DraftID)
	assert.Equal(t, "d-second", pending[1].DraftID)
}

func TestSQLiteStore_MarkSynced(t *testing.T) {
	store, _ := newTestStore(t)

	store.Save(&LocalRecord{DraftID: "d-1", OwnerID: 7, Kind: draft.KindProperty, Payload: []byte(`{"a":1}`)})
	require.Len(t, store.ListPending(7), 1)

	store.MarkSynced(draft.KindProperty, 7, "d-1")

	assert.Empty(t, store.ListPending(7))

	// Данные записи не тронуты
	rec := store.Load(draft.KindProperty, 7, "d-1")
	require.NotNil(t, rec)
	assert.JSONEq(t, `{"a":1}`, string(rec.Payload))
	assert.True(t, rec.Synced)
}

func TestSQLiteStore_DeleteIdempotent(t *testing.T) {
	store, _ := newTestStore(t)

	store.Save(&LocalRecord{DraftID: "d-1", OwnerID: 7, Kind: draft.KindProperty, Payload: []byte(`{}`)})
	store.Delete(draft.KindProperty, 7, "d-1")
	assert.False(t, store.Has(draft.KindProperty, 7, "d-1"))

	// Повторное удаление не паникует и не ошибается
	store.Delete(draft.KindProperty, 7, "d-1")
	store.Delete(draft.KindProperty, 7, "never-existed")
}

func TestMemoryStore_PendingOrderAndExpiry(t *testing.T) {
	store := NewMemoryStore()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base.Add(-30 * time.Hour) }
	store.Save(&LocalRecord{DraftID: "d-expired", OwnerID: 7, Kind: draft.KindProperty, Payload: []byte(`{}`)})

	store.now = func() time.Time { return base.Add(-time.Hour) }
	store.Save(&LocalRecord{DraftID: "d-late", OwnerID: 7, Kind: draft.KindLand, Payload: []byte(`{}`)})

	store.now = func() time.Time { return base.Add(-2 * time.Hour) }
	store.Save(&LocalRecord{DraftID: "d-early", OwnerID: 7, Kind: draft.KindBlog, Payload: []byte(`{}`)})

	store.now = func() time.Time { return base }

	pending := store.ListPending(7)
	require.Len(t, pending, 2)
	assert.Equal(t, "d-early", pending[0].DraftID)
	assert.Equal(t, "d-late", pending[1].DraftID)

	assert.Nil(t, store.Load(draft.KindProperty, 7, "d-expired"))
}
