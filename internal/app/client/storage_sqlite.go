package client

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"inmodraft/internal/domain/draft"
)

// SQLiteStore — локальный кэш черновиков на SQLite. Переживает перезапуск
// клиента и не зависит от сети.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

func NewSQLiteStore(path string, log *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	storage := &SQLiteStore{
		db:  db,
		log: log.With("component", "local_store"),
		now: time.Now,
	}

	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, err
	}

	return storage, nil
}

func (s *SQLiteStore) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS local_drafts (
			kind TEXT NOT NULL,
			owner_id INTEGER NOT NULL,
			draft_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			current_step INTEGER NOT NULL DEFAULT 0,
			payload TEXT NOT NULL,
			synced BOOLEAN NOT NULL DEFAULT 0,
			saved_at DATETIME NOT NULL,
			PRIMARY KEY (kind, owner_id, draft_id)
		);

		CREATE INDEX IF NOT EXISTS idx_local_drafts_owner_synced ON local_drafts(owner_id, synced);
		CREATE INDEX IF NOT EXISTS idx_local_drafts_saved ON local_drafts(saved_at);
	`)

	return err
}

// Save перезаписывает запись целиком (last-write-wins, без слияния)
func (s *SQLiteStore) Save(rec *LocalRecord) {
	_, err := s.db.Exec(`
		INSERT INTO local_drafts (kind, owner_id, draft_id, title, current_step, payload, synced, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, owner_id, draft_id) DO UPDATE SET
			title = excluded.title,
			current_step = excluded.current_step,
			payload = excluded.payload,
			synced = excluded.synced,
			saved_at = excluded.saved_at
	`, rec.Kind, rec.OwnerID, rec.DraftID, rec.Title, rec.CurrentStep,
		string(rec.Payload), rec.Synced, s.now().Format(time.RFC3339))

	if err != nil {
		// Переполнение локального хранилища не должно ронять автосохранение:
		// запись считается пропущенной
		s.log.Warn("local save skipped", "draft_id", rec.DraftID, "error", err)
	}
}

func (s *SQLiteStore) Load(kind draft.Kind, ownerID int, draftID string) *LocalRecord {
	var rec LocalRecord
	var payload, savedAt string

	err := s.db.QueryRow(`
		SELECT kind, owner_id, draft_id, title, current_step, payload, synced, saved_at
		FROM local_drafts
		WHERE kind = ? AND owner_id = ? AND draft_id = ?
	`, kind, ownerID, draftID).Scan(&rec.Kind, &rec.OwnerID, &rec.DraftID, &rec.Title,
		&rec.CurrentStep, &payload, &rec.Synced, &savedAt)

	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		s.log.Warn("local load failed", "draft_id", draftID, "error", err)
		return nil
	}

	rec.Payload = []byte(payload)
	rec.SavedAt, err = time.Parse(time.RFC3339, savedAt)
	if err != nil {
		s.log.Warn("local record has bad timestamp", "draft_id", draftID, "error", err)
		s.Delete(kind, ownerID, draftID)
		return nil
	}

	// Ленивое протухание: запись старше localTTL удаляется при чтении
	if s.now().Sub(rec.SavedAt) > localTTL {
		s.Delete(kind, ownerID, draftID)
		return nil
	}

	return &rec
}

// Delete идемпотентен: отсутствие ключа не является ошибкой
func (s *SQLiteStore) Delete(kind draft.Kind, ownerID int, draftID string) {
	_, err := s.db.Exec(`
		DELETE FROM local_drafts WHERE kind = ? AND owner_id = ? AND draft_id = ?
	`, kind, ownerID, draftID)

	if err != nil {
		s.log.Warn("local delete failed", "draft_id", draftID, "error", err)
	}
}

func (s *SQLiteStore) Has(kind draft.Kind, ownerID int, draftID string) bool {
	return s.Load(kind, ownerID, draftID) != nil
}

func (s *SQLiteStore) MarkSynced(kind draft.Kind, ownerID int, draftID string) {
	_, err := s.db.Exec(`
		UPDATE local_drafts SET synced = 1
		WHERE kind = ? AND owner_id = ? AND draft_id = ?
	`, kind, ownerID, draftID)

	if err != nil {
		s.log.Warn("local mark synced failed", "draft_id", draftID, "error", err)
	}
}

func (s *SQLiteStore) ListPending(ownerID int) []*LocalRecord {
	cutoff := s.now().Add(-localTTL).Format(time.RFC3339)

	rows, err := s.db.Query(`
		SELECT kind, owner_id, draft_id, title, current_step, payload, synced, saved_at
		FROM local_drafts
		WHERE owner_id = ? AND synced = 0 AND saved_at > ?
		ORDER BY saved_at ASC
	`, ownerID, cutoff)
	if err != nil {
		s.log.Warn("local pending scan failed", "owner_id", ownerID, "error", err)
		return nil
	}
	defer rows.Close()

	var pending []*LocalRecord
	for rows.Next() {
		var rec LocalRecord
		var payload, savedAt string

		if err := rows.Scan(&rec.Kind, &rec.OwnerID, &rec.DraftID, &rec.Title,
			&rec.CurrentStep, &payload, &rec.Synced, &savedAt); err != nil {
			s.log.Warn("local pending scan failed", "error", err)
			return pending
		}

		rec.Payload = []byte(payload)
		rec.SavedAt, _ = time.Parse(time.RFC3339, savedAt)
		pending = append(pending, &rec)
	}

	if err := rows.Err(); err != nil {
		s.log.Warn("local pending scan failed", "error", err)
	}

	return pending
}

func (s *SQLiteStore) SweepExpired() {
	cutoff := s.now().Add(-localTTL).Format(time.RFC3339)

	res, err := s.db.Exec(`DELETE FROM local_drafts WHERE saved_at <= ?`, cutoff)
	if err != nil {
		s.log.Warn("local sweep failed", "error", err)
		return
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.log.Debug("swept expired local drafts", "count", n)
	}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
