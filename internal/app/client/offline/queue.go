// internal/app/client/offline/queue.go
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/exp/slog"
)

// SyncFunc доставляет пачку payload на удаленную сторону.
// Ошибка означает неудачу всей пачки.
type SyncFunc func(ctx context.Context, payloads []json.RawMessage) error

// Outcome итог одного вызова Sync
type Outcome string

const (
	OutcomeBusy       Outcome = "busy"
	OutcomeNoSink     Outcome = "no_sink"
	OutcomeEmpty      Outcome = "empty"
	OutcomeDelivered  Outcome = "delivered"
	OutcomeRolledBack Outcome = "rolled_back"
)

// QueueConfig настройки очереди
type QueueConfig struct {
	// PurgeAfterSync удаляет synced записи в конце успешного цикла
	PurgeAfterSync bool
	// Lock исключает одновременные циклы разных процессов над одним
	// хранилищем. nil допустим для хранилища, доступного одному процессу.
	Lock CycleLock
}

// Queue доставляет pending записи в зарегистрированный приемник.
// Одновременно выполняется не более одного цикла.
type Queue struct {
	records *Manager
	log     *slog.Logger
	config  QueueConfig

	syncing atomic.Bool

	mu   sync.RWMutex
	sink SyncFunc
}

func NewQueue(records *Manager, log *slog.Logger, cfg QueueConfig) *Queue {
	return &Queue{
		records: records,
		log:     log.With("component", "sync_queue"),
		config:  cfg,
	}
}

// SetSyncCallback регистрирует приемник. nil снимает регистрацию.
func (q *Queue) SetSyncCallback(fn SyncFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sink = fn
}

func (q *Queue) callback() SyncFunc {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.sink
}

// Syncing проверяет, выполняется ли цикл синхронизации
func (q *Queue) Syncing() bool {
	return q.syncing.Load()
}

// Sync выполняет один цикл синхронизации. Ошибки приемника не возвращаются:
// они приводят к откату записей в pending. Ошибка возвращается только
// при сбое хранилища.
func (q *Queue) Sync(ctx context.Context) (Outcome, error) {
	sink := q.callback()
	if sink == nil {
		return OutcomeNoSink, nil
	}
	if !q.syncing.CompareAndSwap(false, true) {
		q.log.Debug("Синхронизация уже выполняется")
		return OutcomeBusy, nil
	}
	defer q.syncing.Store(false)

	if lock := q.config.Lock; lock != nil {
		locked, err := lock.TryLock()
		if err != nil {
			return "", fmt.Errorf("ошибка захвата блокировки синхронизации: %w", err)
		}
		if !locked {
			q.log.Debug("Синхронизация выполняется другим процессом")
			return OutcomeBusy, nil
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				q.log.Warn("Не удалось снять блокировку синхронизации", "error", err)
			}
		}()
	}

	start := time.Now()

	if err := q.recoverOrphans(ctx); err != nil {
		return "", err
	}

	pending, err := q.records.ListByStatus(ctx, StatusPending)
	if err != nil {
		return "", fmt.Errorf("ошибка получения pending записей: %w", err)
	}
	if len(pending) == 0 {
		return OutcomeEmpty, nil
	}

	payloads := make([]json.RawMessage, 0, len(pending))
	for _, rec := range pending {
		if err := q.records.SetStatus(ctx, rec.ID, StatusSyncing); err != nil {
			_ = q.rollback(ctx)
			return "", fmt.Errorf("ошибка пометки записи %s: %w", rec.ID, err)
		}
		payloads = append(payloads, rec.Payload)
	}

	q.log.Info("Начало синхронизации", "count", len(pending))

	if err := deliver(ctx, sink, payloads); err != nil {
		q.log.Error("Ошибка доставки записей", "error", err, "count", len(pending))
		if rbErr := q.rollback(ctx); rbErr != nil {
			return OutcomeRolledBack, rbErr
		}
		return OutcomeRolledBack, nil
	}

	for _, rec := range pending {
		if err := q.records.SetStatus(ctx, rec.ID, StatusSynced); err != nil {
			return OutcomeDelivered, fmt.Errorf("ошибка пометки записи %s как synced: %w", rec.ID, err)
		}
	}

	q.log.Info("Синхронизация успешно завершена",
		"count", len(pending),
		"duration", time.Since(start),
	)

	if q.config.PurgeAfterSync {
		if _, err := q.records.PurgeSynced(ctx); err != nil {
			q.log.Warn("Не удалось удалить синхронизированные записи", "error", err)
		}
	}

	return OutcomeDelivered, nil
}

// deliver вызывает приемник, превращая панику в ошибку
func deliver(ctx context.Context, sink SyncFunc, payloads []json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("паника в приемнике: %v", r)
		}
	}()
	return sink(ctx, payloads)
}

// rollback возвращает в pending все записи в статусе syncing, включая
// оставшиеся от прошлых циклов. Выполняется даже при отмененном ctx.
func (q *Queue) rollback(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	inFlight, err := q.records.ListByStatus(ctx, StatusSyncing)
	if err != nil {
		q.log.Error("Ошибка отката записей", "error", err)
		return fmt.Errorf("ошибка отката записей: %w", err)
	}

	var firstErr error
	for _, rec := range inFlight {
		if err := q.records.SetStatus(ctx, rec.ID, StatusPending); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("ошибка отката записи %s: %w", rec.ID, err)
		}
	}
	if firstErr != nil {
		q.log.Error("Откат выполнен не полностью", "error", firstErr)
		return firstErr
	}

	q.log.Warn("Записи возвращены в очередь", "count", len(inFlight))
	return nil
}

// recoverOrphans возвращает в pending записи, застрявшие в syncing после сбоя.
// Вызывается под флагом и межпроцессной блокировкой, поэтому живого цикла
// с такими записями быть не может. Без Lock это верно только для
// единственного процесса над хранилищем.
func (q *Queue) recoverOrphans(ctx context.Context) error {
	orphans, err := q.records.ListByStatus(ctx, StatusSyncing)
	if err != nil {
		return fmt.Errorf("ошибка поиска зависших записей: %w", err)
	}
	for _, rec := range orphans {
		if err := q.records.SetStatus(ctx, rec.ID, StatusPending); err != nil {
			return fmt.Errorf("ошибка восстановления записи %s: %w", rec.ID, err)
		}
	}
	if len(orphans) > 0 {
		q.log.Warn("Восстановлены зависшие записи", "count", len(orphans))
	}
	return nil
}
