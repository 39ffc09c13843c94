// internal/app/client/offline/scheduler.go
package offline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// DefaultSyncInterval период автоматической синхронизации
const DefaultSyncInterval = 30 * time.Second

// Syncer точка входа цикла синхронизации
type Syncer interface {
	Sync(ctx context.Context) (Outcome, error)
}

// Connectivity источник состояния сети.
// Subscribe отдает сигнал на каждый переход offline -> online.
type Connectivity interface {
	Online() bool
	Subscribe() <-chan struct{}
}

// SchedulerConfig настройки планировщика
type SchedulerConfig struct {
	// PurgeInterval период очистки synced записей, 0 отключает очистку
	PurgeInterval time.Duration
}

// Scheduler запускает синхронизацию по таймеру и при восстановлении сети
type Scheduler struct {
	queue   Syncer
	records *Manager
	conn    Connectivity
	log     *slog.Logger
	config  SchedulerConfig

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewScheduler создает планировщик. conn может быть nil: тогда сеть
// считается доступной всегда, а событий восстановления нет.
func NewScheduler(queue Syncer, records *Manager, conn Connectivity, log *slog.Logger, cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		queue:   queue,
		records: records,
		conn:    conn,
		log:     log.With("component", "sync_scheduler"),
		config:  cfg,
	}
}

// StartAutoSync запускает фоновый цикл до отмены ctx.
// Повторный вызов во время работы возвращает ErrAlreadyStarted.
func (s *Scheduler) StartAutoSync(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.running = true
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	var online <-chan struct{}
	if s.conn != nil {
		online = s.conn.Subscribe()
	}

	go func() {
		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			close(done)
		}()
		s.loop(ctx, interval, online)
	}()

	return nil
}

// Running проверяет, запущен ли фоновый цикл
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Wait блокируется до завершения фонового цикла
func (s *Scheduler) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, online <-chan struct{}) {
	s.log.Info("Запуск автоматической синхронизации", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var purge <-chan time.Time
	if s.config.PurgeInterval > 0 && s.records != nil {
		purgeTicker := time.NewTicker(s.config.PurgeInterval)
		defer purgeTicker.Stop()
		purge = purgeTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Автоматическая синхронизация остановлена")
			return
		case <-ticker.C:
			if !s.online() {
				s.log.Debug("Нет сети, синхронизация пропущена")
				continue
			}
			s.run(ctx, "timer")
		case <-online:
			s.log.Info("Сеть восстановлена")
			s.run(ctx, "online")
		case <-purge:
			if _, err := s.records.PurgeSynced(ctx); err != nil {
				s.log.Error("Ошибка очистки синхронизированных записей", "error", err)
			}
		}
	}
}

func (s *Scheduler) run(ctx context.Context, trigger string) {
	outcome, err := s.queue.Sync(ctx)
	if err != nil {
		s.log.Error("Ошибка автоматической синхронизации", "error", err, "trigger", trigger)
		return
	}
	s.log.Debug("Цикл синхронизации завершен", "outcome", outcome, "trigger", trigger)
}

func (s *Scheduler) online() bool {
	return s.conn == nil || s.conn.Online()
}
