package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

const defaultProbeInterval = 15 * time.Second

// Monitor следит за доступностью сервера и дергает колбэк на переходе
// офлайн→онлайн. Колбэк вызывается только по фронту перехода, а не на
// каждую удачную пробу, чтобы реконсиляция не запускалась вхолостую.
type Monitor struct {
	remote   RemoteClient
	log      *slog.Logger
	interval time.Duration
	onOnline func(ctx context.Context)

	mu     sync.Mutex
	online bool
	stop   chan struct{}
	done   chan struct{}
}

func NewMonitor(remote RemoteClient, onOnline func(ctx context.Context), log *slog.Logger) *Monitor {
	return &Monitor{
		remote:   remote,
		log:      log.With("component", "connectivity"),
		interval: defaultProbeInterval,
		onOnline: onOnline,
	}
}

// Online возвращает результат последней пробы
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.stop != nil {
		m.mu.Unlock()
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	stop, done := m.stop, m.done
	m.mu.Unlock()

	go m.run(ctx, stop, done)
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	stop := m.stop
	done := m.done
	m.stop = nil
	m.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (m *Monitor) run(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	// Первая проба сразу, чтобы не ждать целый интервал после старта
	m.probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	err := m.remote.HealthCheck(ctx)
	nowOnline := err == nil

	m.mu.Lock()
	wasOnline := m.online
	m.online = nowOnline
	m.mu.Unlock()

	switch {
	case nowOnline && !wasOnline:
		m.log.Info("server reachable, connection restored")
		if m.onOnline != nil {
			m.onOnline(ctx)
		}
	case !nowOnline && wasOnline:
		m.log.Warn("server unreachable, switching to offline mode", "error", err)
	}
}
