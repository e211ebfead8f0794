package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"inmodraft/internal/app/client/config"
)

// AppState — состояние клиента между запусками (state.json в ConfigDir)
type AppState struct {
	OwnerID  int       `json:"owner_id"`
	LastSync time.Time `json:"last_sync,omitempty"`
}

// App собирает клиентскую часть: локальный кэш, HTTP-клиент, фасад
// сохранения, планировщик автосохранения, реконсилятор и монитор связи.
type App struct {
	cfg *config.Config
	log *slog.Logger

	Local      LocalStore
	Remote     RemoteClient
	Facade     *Facade
	Scheduler  *Scheduler
	Reconciler *Reconciler
	Monitor    *Monitor

	state AppState
}

func NewApp(cfg *config.Config, log *slog.Logger) *App {
	remote := NewHTTPClient(cfg, log)

	// SQLite — основное локальное хранилище; при сбое открытия работаем
	// на in-memory кэше, теряя только переживаемость перезапуска
	var local LocalStore
	sqliteStore, err := NewSQLiteStore(cfg.DataPath, log)
	if err != nil {
		log.Warn("local sqlite store unavailable, falling back to memory", "path", cfg.DataPath, "error", err)
		local = NewMemoryStore()
	} else {
		local = sqliteStore
	}

	facade := NewFacade(local, remote, log)
	reconciler := NewReconciler(local, remote, log)

	app := &App{
		cfg:        cfg,
		log:        log,
		Local:      local,
		Remote:     remote,
		Facade:     facade,
		Scheduler:  NewScheduler(facade, time.Duration(cfg.AutoSaveInterval)*time.Second, log),
		Reconciler: reconciler,
	}

	app.Monitor = NewMonitor(remote, app.onReconnect, log)

	app.loadState()
	app.loadToken()
	local.SweepExpired()

	return app
}

// Login проверяет токен обращением к /api/me, сохраняет его и запоминает
// идентификатор владельца для партиционирования локального кэша
func (a *App) Login(ctx context.Context, token string) error {
	a.Remote.SetToken(token)

	ownerID, err := a.Remote.Me(ctx)
	if err != nil {
		return fmt.Errorf("проверка токена: %w", err)
	}

	if err := os.WriteFile(a.cfg.TokenPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("сохранение токена: %w", err)
	}

	a.state.OwnerID = ownerID
	a.saveState()

	a.log.Info("authenticated", "owner_id", ownerID)
	return nil
}

// Logout удаляет токен; локальный кэш не трогаем, записи доживут свой TTL
func (a *App) Logout() error {
	if err := os.Remove(a.cfg.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("удаление токена: %w", err)
	}
	a.Remote.SetToken("")
	return nil
}

func (a *App) IsAuthenticated() bool {
	_, err := os.Stat(a.cfg.TokenPath)
	return err == nil && a.state.OwnerID != 0
}

func (a *App) OwnerID() int {
	return a.state.OwnerID
}

func (a *App) LastSync() time.Time {
	return a.state.LastSync
}

// Sync запускает проход реконсиляции вручную
func (a *App) Sync(ctx context.Context) (SyncResult, error) {
	if !a.IsAuthenticated() {
		return SyncResult{}, ErrNotAuthenticated
	}

	result, err := a.Reconciler.Reconcile(ctx, a.state.OwnerID)
	if err != nil {
		return result, err
	}

	a.state.LastSync = result.EndTime
	a.saveState()

	return result, nil
}

// PendingCount — сколько локальных записей ждут отправки на сервер
func (a *App) PendingCount() int {
	return len(a.Local.ListPending(a.state.OwnerID))
}

func (a *App) Close() error {
	a.Monitor.Stop()
	return a.Local.Close()
}

// onReconnect — реакция на восстановление связи: доигрываем накопленное
func (a *App) onReconnect(ctx context.Context) {
	if !a.IsAuthenticated() {
		return
	}

	result, err := a.Reconciler.Reconcile(ctx, a.state.OwnerID)
	if err != nil {
		a.log.Warn("reconnect sync failed", "error", err)
		return
	}

	if result.Synced > 0 {
		a.state.LastSync = result.EndTime
		a.saveState()
	}
}

func (a *App) statePath() string {
	return filepath.Join(a.cfg.ConfigDir, "state.json")
}

func (a *App) loadState() {
	data, err := os.ReadFile(a.statePath())
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, &a.state); err != nil {
		a.log.Warn("corrupt state file ignored", "path", a.statePath(), "error", err)
		a.state = AppState{}
	}
}

func (a *App) saveState() {
	data, err := json.Marshal(a.state)
	if err != nil {
		return
	}
	if err := os.WriteFile(a.statePath(), data, 0600); err != nil {
		a.log.Warn("state file write failed", "path", a.statePath(), "error", err)
	}
}

func (a *App) loadToken() {
	data, err := os.ReadFile(a.cfg.TokenPath)
	if err != nil {
		return
	}
	token := strings.TrimSpace(string(data))
	if token != "" {
		a.Remote.SetToken(token)
	}
}
