// internal/app/client/offline/record.go
package offline

import (
	"context"
	"encoding/json"
	"errors"
)

// Status состояние записи в очереди синхронизации
type Status string

const (
	StatusPending  Status = "pending"
	StatusSyncing  Status = "syncing"
	StatusSynced   Status = "synced"
	StatusConflict Status = "conflict"
)

// Statuses перечисляет все состояния в порядке жизненного цикла
var Statuses = []Status{StatusPending, StatusSyncing, StatusSynced, StatusConflict}

// Valid проверяет, что статус известен
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSyncing, StatusSynced, StatusConflict:
		return true
	}
	return false
}

var (
	ErrNotFound       = errors.New("запись не найдена")
	ErrInvalidRecord  = errors.New("некорректная запись")
	ErrInvalidStatus  = errors.New("неизвестный статус")
	ErrStoreClosed    = errors.New("хранилище закрыто")
	ErrAlreadyStarted = errors.New("автосинхронизация уже запущена")
)

// Record буферизованная запись, ожидающая доставки.
// Временные метки в миллисекундах с начала эпохи.
type Record struct {
	ID        string          `json:"id"`
	GroupKey  string          `json:"group_key"`
	Payload   json.RawMessage `json:"payload"`
	Status    Status          `json:"status"`
	CreatedAt int64           `json:"created_at"`
	UpdatedAt int64           `json:"updated_at"`
}

// Clone возвращает копию записи с собственным буфером payload
func (r Record) Clone() Record {
	if r.Payload != nil {
		p := make(json.RawMessage, len(r.Payload))
		copy(p, r.Payload)
		r.Payload = p
	}
	return r
}

func (r Record) validate() error {
	if r.ID == "" {
		return errors.Join(ErrInvalidRecord, errors.New("пустой id"))
	}
	if !r.Status.Valid() {
		return errors.Join(ErrInvalidRecord, ErrInvalidStatus)
	}
	return nil
}

// Store долговременное хранилище записей.
// List возвращает записи в порядке вставки; пустой статус означает все записи.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, status Status) ([]Record, error)
	ListByGroup(ctx context.Context, groupKey string) ([]Record, error)
	Count(ctx context.Context, status Status) (int, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
	Close() error
}
