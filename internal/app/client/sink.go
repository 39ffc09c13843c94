// internal/app/client/sink.go
package client

import (
	"context"
	"encoding/json"
	"fmt"

	"gradebook/internal/app/client/offline"
	"gradebook/internal/domain/mark"
)

// MarksAPI удаленная сторона, принимающая пачки оценок
type MarksAPI interface {
	BatchUpdateMarks(ctx context.Context, entries []mark.Entry) (mark.BatchResponse, error)
}

// NewMarksSink возвращает приемник очереди, отправляющий оценки одной пачкой.
// Любая ошибка декодирования или ответа сервера проваливает всю пачку.
func NewMarksSink(api MarksAPI) offline.SyncFunc {
	return func(ctx context.Context, payloads []json.RawMessage) error {
		entries := make([]mark.Entry, 0, len(payloads))
		for i, p := range payloads {
			var e mark.Entry
			if err := json.Unmarshal(p, &e); err != nil {
				return fmt.Errorf("ошибка декодирования оценки %d: %w", i, err)
			}
			entries = append(entries, e)
		}

		resp, err := api.BatchUpdateMarks(ctx, entries)
		if err != nil {
			return fmt.Errorf("ошибка отправки оценок: %w", err)
		}
		if resp.Processed != len(entries) {
			return fmt.Errorf("сервер обработал %d из %d оценок", resp.Processed, len(entries))
		}
		return nil
	}
}
