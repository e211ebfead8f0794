package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"inmodraft/internal/domain/draft"
)

// localTTL — срок жизни локальной записи черновика. Записи старше
// считаются протухшими и удаляются лениво при чтении либо при Sweep.
const localTTL = 24 * time.Hour

// LocalRecord — локальная копия черновика, ключ (kind, owner_id, draft_id).
// Synced=false означает pending-sync: последняя удаленная запись не удалась
// или была пропущена (офлайн), и запись ждет реконсиляции.
type LocalRecord struct {
	DraftID     string          `json:"draft_id"`
	OwnerID     int             `json:"owner_id"`
	Kind        draft.Kind      `json:"kind"`
	Title       string          `json:"title,omitempty"`
	CurrentStep int             `json:"current_step"`
	Payload     json.RawMessage `json:"payload"`
	Synced      bool            `json:"synced"`
	SavedAt     time.Time       `json:"saved_at"`
}

// LocalStore — локальный кэш черновиков. Кэширование — оптимизация, а не
// требование корректности, поэтому операции записи и чтения не возвращают
// ошибок: любой сбой нижележащего хранилища поглощается и логируется,
// а операция считается не случившейся.
type LocalStore interface {
	Save(rec *LocalRecord)
	// Load возвращает nil, если записи нет или она старше localTTL
	// (протухшая запись попутно удаляется).
	Load(kind draft.Kind, ownerID int, draftID string) *LocalRecord
	Delete(kind draft.Kind, ownerID int, draftID string)
	Has(kind draft.Kind, ownerID int, draftID string) bool
	// MarkSynced снимает с записи статус pending-sync, не трогая данные.
	MarkSynced(kind draft.Kind, ownerID int, draftID string)
	// ListPending возвращает несинхронизированные записи владельца,
	// старые первыми.
	ListPending(ownerID int) []*LocalRecord
	// SweepExpired удаляет все записи старше localTTL; вызывается
	// один раз при старте.
	SweepExpired()
	Close() error
}

func localKey(kind draft.Kind, ownerID int, draftID string) string {
	return fmt.Sprintf("%s/%d/%s", kind, ownerID, draftID)
}

// MemoryStore — in-memory реализация LocalStore. Используется как фолбэк,
// когда SQLite недоступен, и как фейк в тестах.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*LocalRecord
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*LocalRecord),
		now:     time.Now,
	}
}

func (m *MemoryStore) Save(rec *LocalRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *rec
	cp.SavedAt = m.now()
	m.records[localKey(rec.Kind, rec.OwnerID, rec.DraftID)] = &cp
}

func (m *MemoryStore) Load(kind draft.Kind, ownerID int, draftID string) *LocalRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := localKey(kind, ownerID, draftID)
	rec, ok := m.records[key]
	if !ok {
		return nil
	}
	if m.now().Sub(rec.SavedAt) > localTTL {
		delete(m.records, key)
		return nil
	}

	cp := *rec
	return &cp
}

func (m *MemoryStore) Delete(kind draft.Kind, ownerID int, draftID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, localKey(kind, ownerID, draftID))
}

func (m *MemoryStore) Has(kind draft.Kind, ownerID int, draftID string) bool {
	return m.Load(kind, ownerID, draftID) != nil
}

func (m *MemoryStore) MarkSynced(kind draft.Kind, ownerID int, draftID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.records[localKey(kind, ownerID, draftID)]; ok {
		rec.Synced = true
	}
}

func (m *MemoryStore) ListPending(ownerID int) []*LocalRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pending []*LocalRecord
	for _, rec := range m.records {
		if rec.OwnerID != ownerID || rec.Synced {
			continue
		}
		if m.now().Sub(rec.SavedAt) > localTTL {
			continue
		}
		cp := *rec
		pending = append(pending, &cp)
	}

	for i := 1; i < len(pending); i++ {
		for j := i; j > 0 && pending[j].SavedAt.Before(pending[j-1].SavedAt); j-- {
			pending[j], pending[j-1] = pending[j-1], pending[j]
		}
	}

	return pending
}

func (m *MemoryStore) SweepExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, rec := range m.records {
		if m.now().Sub(rec.SavedAt) > localTTL {
			delete(m.records, key)
		}
	}
}

func (m *MemoryStore) Close() error {
	return nil
}
