// internal/app/client/connectivity/watcher.go
package connectivity

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/exp/slog"
)

const (
	DefaultInterval = 10 * time.Second
	DefaultTimeout  = 5 * time.Second
)

// Prober проверяет доступность сервера
type Prober interface {
	HealthCheck(ctx context.Context) error
}

// Config настройки наблюдателя
type Config struct {
	Interval     time.Duration
	Timeout      time.Duration
	AssumeOnline bool
}

// Watcher следит за доступностью сервера и сообщает подписчикам
// о каждом переходе offline -> online
type Watcher struct {
	prober Prober
	log    *slog.Logger
	config Config

	online atomic.Bool

	mu   sync.Mutex
	subs []chan struct{}
}

func NewWatcher(prober Prober, log *slog.Logger, cfg Config) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	w := &Watcher{
		prober: prober,
		log:    log.With("component", "connectivity"),
		config: cfg,
	}
	w.online.Store(cfg.AssumeOnline)
	return w
}

// Online текущее состояние сети
func (w *Watcher) Online() bool {
	return w.online.Load()
}

// Subscribe возвращает канал сигналов восстановления сети.
// Сигналы не копятся: медленный подписчик получит один.
func (w *Watcher) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)

	w.mu.Lock()
	w.subs = append(w.subs, ch)
	w.mu.Unlock()

	return ch
}

// Report выставляет состояние сети и уведомляет подписчиков при переходе в online
func (w *Watcher) Report(online bool) {
	was := w.online.Swap(online)
	if was == online {
		return
	}

	if !online {
		w.log.Warn("Сервер недоступен, работаем офлайн")
		return
	}

	w.log.Info("Соединение с сервером восстановлено")

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Probe выполняет одну проверку и возвращает результат
func (w *Watcher) Probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	err := w.prober.HealthCheck(probeCtx)
	if err != nil {
		// отмена родительского ctx не означает потерю сети
		if ctx.Err() != nil {
			return w.Online()
		}
		w.log.Debug("Проверка соединения не прошла", "error", err)
	}

	online := err == nil
	w.Report(online)
	return online
}

// Run проверяет соединение сразу и затем по таймеру до отмены ctx
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info("Запуск наблюдения за соединением", "interval", w.config.Interval)

	w.Probe(ctx)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Probe(ctx)
		}
	}
}
