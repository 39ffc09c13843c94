// internal/app/client/offline/manager.go
package offline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

// Manager управляет жизненным циклом записей поверх Store
type Manager struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

func NewManager(store Store, log *slog.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log.With("component", "offline_manager"),
		now:   time.Now,
	}
}

// Save сохраняет запись в статусе pending. Пустые временные метки проставляются.
func (m *Manager) Save(ctx context.Context, rec Record) (Record, error) {
	now := m.now().UnixMilli()
	rec.Status = StatusPending
	if rec.CreatedAt == 0 {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt < rec.CreatedAt {
		rec.UpdatedAt = max(now, rec.CreatedAt)
	}

	if err := m.store.Put(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("ошибка сохранения записи %s: %w", rec.ID, err)
	}

	m.log.Debug("Запись сохранена", "id", rec.ID, "group", rec.GroupKey)
	return rec, nil
}

// Get возвращает запись или ErrNotFound
func (m *Manager) Get(ctx context.Context, id string) (Record, error) {
	return m.store.Get(ctx, id)
}

func (m *Manager) ListByStatus(ctx context.Context, status Status) ([]Record, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return m.store.List(ctx, status)
}

func (m *Manager) ListByGroup(ctx context.Context, groupKey string) ([]Record, error) {
	return m.store.ListByGroup(ctx, groupKey)
}

// SetStatus меняет статус записи. Отсутствующая запись пропускается без ошибки.
func (m *Manager) SetStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	rec, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	rec.Status = status
	rec.UpdatedAt = max(m.now().UnixMilli(), rec.CreatedAt)

	if err := m.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("ошибка смены статуса записи %s: %w", id, err)
	}
	return nil
}

// PurgeSynced удаляет все записи в статусе synced одним DeleteMany
func (m *Manager) PurgeSynced(ctx context.Context) (int, error) {
	synced, err := m.store.List(ctx, StatusSynced)
	if err != nil {
		return 0, err
	}
	if len(synced) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(synced))
	for _, rec := range synced {
		ids = append(ids, rec.ID)
	}

	if err := m.store.DeleteMany(ctx, ids); err != nil {
		return 0, fmt.Errorf("ошибка очистки синхронизированных записей: %w", err)
	}

	m.log.Info("Синхронизированные записи удалены", "count", len(ids))
	return len(ids), nil
}

// Counts возвращает количество записей по каждому статусу
func (m *Manager) Counts(ctx context.Context) (map[Status]int, error) {
	counts := make(map[Status]int, len(Statuses))
	for _, st := range Statuses {
		n, err := m.store.Count(ctx, st)
		if err != nil {
			return nil, err
		}
		counts[st] = n
	}
	return counts, nil
}
