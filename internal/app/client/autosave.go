package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

const (
	defaultDebounce = 2 * time.Second
	defaultCeiling  = 30 * time.Second
)

// autoSaver — часть фасада, нужная планировщику
type autoSaver interface {
	AutoSaveDraft(ctx context.Context, req SaveRequest) (SaveResult, error)
}

type schedulerState int

const (
	schedIdle schedulerState = iota
	schedArmed
	schedFiring
)

// Scheduler периодически сбрасывает текущее состояние мастера в фасад без
// явного действия пользователя.
//
// Схема — trailing-edge debounce с потолком: каждое изменение формы
// перезапускает короткий debounce-таймер, но не позже чем через ceiling
// после первого несохраненного изменения запись уходит в любом случае.
// Быстрая печать не порождает запись на каждый keystroke, и при этом
// состояние не бывает молча устаревшим дольше ~30 секунд.
//
// Вся логика крутится в одной горутине, и автосохранение выполняется в ней
// же синхронно: два пересекающихся фоновых сохранения одного черновика
// невозможны конструктивно, а не по счастливому стечению таймингов.
type Scheduler struct {
	saver    autoSaver
	log      *slog.Logger
	debounce time.Duration
	ceiling  time.Duration

	mu      sync.Mutex
	enabled bool
	changes chan struct{}
	stop    chan struct{}
	done    chan struct{}
	draftID string
}

func NewScheduler(saver autoSaver, interval time.Duration, log *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultCeiling
	}

	debounce := defaultDebounce
	if debounce > interval {
		debounce = interval
	}

	return &Scheduler{
		saver:    saver,
		log:      log.With("component", "autosave"),
		debounce: debounce,
		ceiling:  interval,
	}
}

// Enable взводит планировщик для одного экземпляра мастера. Геттеры
// вызываются в момент сохранения, поэтому записывается всегда последнее
// известное состояние формы (latest-state-wins).
func (s *Scheduler) Enable(ctx context.Context, base SaveRequest, getPayload func() json.RawMessage, getStep func() int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enabled {
		return
	}

	s.enabled = true
	s.changes = make(chan struct{}, 1)
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.draftID = base.DraftID

	go s.run(ctx, base, getPayload, getStep)
}

// Change сообщает планировщику, что состояние мастера изменилось
func (s *Scheduler) Change() {
	s.mu.Lock()
	changes := s.changes
	enabled := s.enabled
	s.mu.Unlock()

	if !enabled {
		return
	}

	select {
	case changes <- struct{}{}:
	default:
		// Сигнал уже ждет обработки, схлопываем
	}
}

// Disable гасит планировщик: таймеры снимаются, несохраненные изменения
// не досохраняются, последующие Change игнорируются до нового Enable.
// Вызывается при уходе с экрана мастера.
func (s *Scheduler) Disable() {
	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return
	}
	s.enabled = false
	stop := s.stop
	done := s.done
	s.mu.Unlock()

	close(stop)
	<-done
}

// DraftID возвращает идентификатор черновика, выделенный при первом
// автосохранении (пустая строка, если сохранений еще не было)
func (s *Scheduler) DraftID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draftID
}

func (s *Scheduler) run(ctx context.Context, base SaveRequest, getPayload func() json.RawMessage, getStep func() int) {
	defer close(s.done)

	state := schedIdle
	var debounceC, ceilingC <-chan time.Time

	fire := func() {
		state = schedFiring
		debounceC, ceilingC = nil, nil

		req := base
		req.DraftID = s.DraftID()
		req.Payload = getPayload()
		req.CurrentStep = getStep()

		result, err := s.saver.AutoSaveDraft(ctx, req)
		if err != nil {
			// Фоновые сбои не должны прерывать набор текста:
			// только лог, никаких тостов
			s.log.Warn("autosave failed", "draft_id", req.DraftID, "error", err)
			state = schedIdle
			return
		}

		s.mu.Lock()
		s.draftID = result.DraftID
		s.mu.Unlock()

		s.log.Debug("autosave completed", "draft_id", result.DraftID, "source", result.Source)
		state = schedIdle
	}

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-s.changes:
			if state == schedIdle {
				state = schedArmed
				ceilingC = time.After(s.ceiling)
			}
			// Каждое изменение перезапускает debounce, потолок не трогается
			debounceC = time.After(s.debounce)
		case <-debounceC:
			fire()
		case <-ceilingC:
			fire()
		}
	}
}
