// internal/app/client/offline/store_sqlite.go
package offline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
	CREATE TABLE IF NOT EXISTS offline_records (
		id TEXT PRIMARY KEY,
		group_key TEXT NOT NULL DEFAULT '',
		payload BLOB NOT NULL,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_offline_records_status ON offline_records(status);
	CREATE INDEX IF NOT EXISTS idx_offline_records_group ON offline_records(group_key);
`

// SQLiteStore хранилище записей в файле SQLite.
// Соединение открывается лениво при первом обращении.
type SQLiteStore struct {
	path   string
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// conn возвращает открытое соединение, при необходимости создавая схему.
// Конкурентные вызовы ждут одну и ту же инициализацию; при ошибке
// следующий вызов повторяет попытку.
func (s *SQLiteStore) conn(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if s.db != nil {
		return s.db, nil
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("ошибка создания директории хранилища: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", s.path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	s.db = db
	return db, nil
}

func (s *SQLiteStore) Put(ctx context.Context, rec Record) error {
	if err := rec.validate(); err != nil {
		return err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	payload := rec.Payload
	if payload == nil {
		payload = []byte("null")
	}

	const query = `
		INSERT INTO offline_records (id, group_key, payload, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			group_key = excluded.group_key,
			payload = excluded.payload,
			status = excluded.status,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`
	_, err = db.ExecContext(ctx, query, rec.ID, rec.GroupKey, []byte(payload),
		string(rec.Status), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения записи: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return Record{}, err
	}

	const query = `
		SELECT id, group_key, payload, status, created_at, updated_at
		FROM offline_records
		WHERE id = ?
	`
	rec, err := scanRecord(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("ошибка получения записи: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context, status Status) ([]Record, error) {
	query := "SELECT id, group_key, payload, status, created_at, updated_at FROM offline_records"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY rowid"

	return s.query(ctx, query, args...)
}

func (s *SQLiteStore) ListByGroup(ctx context.Context, groupKey string) ([]Record, error) {
	const query = `
		SELECT id, group_key, payload, status, created_at, updated_at
		FROM offline_records
		WHERE group_key = ?
		ORDER BY rowid
	`
	return s.query(ctx, query, groupKey)
}

func (s *SQLiteStore) Count(ctx context.Context, status Status) (int, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	query := "SELECT COUNT(*) FROM offline_records"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}

	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка подсчета записей: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM offline_records WHERE id = ?", id); err != nil {
		return fmt.Errorf("ошибка удаления записи: %w", err)
	}
	return nil
}

// DeleteMany удаляет записи одной транзакцией
func (s *SQLiteStore) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM offline_records WHERE id = ?")
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("ошибка удаления записи %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// Close закрывает соединение; после закрытия операции возвращают ErrStoreClosed
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса записей: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения записей: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec     Record
		payload []byte
		status  string
	)
	if err := row.Scan(&rec.ID, &rec.GroupKey, &payload, &status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	rec.Status = Status(strings.TrimSpace(status))
	rec.Payload = payload
	return rec, nil
}
