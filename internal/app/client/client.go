package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"gradebook/internal/app/client/config"
	"gradebook/internal/app/client/connectivity"
	"gradebook/internal/app/client/offline"
	"gradebook/internal/domain/mark"
)

type App struct {
	config     *config.Config
	log        *slog.Logger
	httpClient *httpClient
	store      offline.Store
	records    *offline.Manager
	queue      *offline.Queue
	watcher    *connectivity.Watcher
	scheduler  *offline.Scheduler
}

// LocalMark оценка из локального буфера вместе с ее статусом
type LocalMark struct {
	ID        string         `json:"id"`
	Status    offline.Status `json:"status"`
	Mark      mark.Entry     `json:"mark"`
	Grade     string         `json:"grade"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// MarkFilter фильтр локальных оценок; пустые поля не ограничивают выборку
type MarkFilter struct {
	Status       offline.Status
	AssessmentID string
}

// SyncStatus состояние локальной очереди
type SyncStatus struct {
	Online  bool                   `json:"online"`
	Syncing bool                   `json:"syncing"`
	Counts  map[offline.Status]int `json:"counts"`
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	httpCl := NewHTTPClient(cfg, log)

	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации хранилища: %w", err)
	}

	records := offline.NewManager(store, log)
	queueCfg := offline.QueueConfig{PurgeAfterSync: cfg.PurgeAfterSync}
	if cfg.StorageDriver != config.StorageMemory {
		// daemon и ручной sync - разные процессы над одной базой
		queueCfg.Lock = offline.NewFileLock(offline.LockPath(cfg.DataPath))
	}
	queue := offline.NewQueue(records, log, queueCfg)
	queue.SetSyncCallback(NewMarksSink(httpCl))

	watcher := connectivity.NewWatcher(httpCl, log, connectivity.Config{
		Interval: cfg.ProbeEvery(),
		Timeout:  min(cfg.Timeout(), connectivity.DefaultTimeout),
	})

	app := &App{
		config:     cfg,
		log:        log,
		httpClient: httpCl,
		store:      store,
		records:    records,
		queue:      queue,
		watcher:    watcher,
		scheduler: offline.NewScheduler(queue, records, watcher, log, offline.SchedulerConfig{
			PurgeInterval: cfg.PurgeEvery(),
		}),
	}

	// Токен из окружения имеет приоритет над сохраненным
	token := cfg.APIToken
	if token == "" {
		if saved, err := app.GetToken(); err == nil {
			token = saved
		}
	}
	if token != "" {
		httpCl.SetToken(token)
		log.Debug("Токен доступа загружен")
	}

	return app, nil
}

func openStore(cfg *config.Config) (offline.Store, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return offline.NewMemoryStore(), nil
	case config.StorageSQLite, "":
		return offline.NewSQLiteStore(cfg.DataPath), nil
	default:
		return nil, fmt.Errorf("неизвестный драйвер хранилища: %s", cfg.StorageDriver)
	}
}

// Run запускает наблюдение за сетью и автосинхронизацию до отмены ctx
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	// планировщик подписывается до первой проверки сети, чтобы не пропустить
	// переход в online при старте
	if err := a.scheduler.StartAutoSync(gctx, a.config.SyncEvery()); err != nil {
		return err
	}
	g.Go(func() error {
		a.scheduler.Wait()
		return nil
	})

	g.Go(func() error {
		return a.watcher.Run(gctx)
	})

	a.log.Info("Клиент запущен",
		"server", a.config.ServerAddress,
		"env", a.config.Env,
		"storage", a.config.StorageDriver,
	)

	return g.Wait()
}

// Close закрывает локальное хранилище
func (a *App) Close() error {
	return a.store.Close()
}

// SaveMark сохраняет оценку в локальный буфер в статусе pending
func (a *App) SaveMark(ctx context.Context, entry mark.Entry) (LocalMark, error) {
	if err := entry.Validate(); err != nil {
		return LocalMark{}, err
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return LocalMark{}, fmt.Errorf("ошибка сериализации оценки: %w", err)
	}

	rec, err := a.records.Save(ctx, offline.Record{
		ID:       uuid.NewString(),
		GroupKey: entry.AssessmentID,
		Payload:  payload,
	})
	if err != nil {
		return LocalMark{}, err
	}

	a.log.Info("Оценка сохранена локально",
		"id", rec.ID,
		"assessment_id", entry.AssessmentID,
		"student_id", entry.StudentID,
	)

	return toLocalMark(rec)
}

// ListMarks возвращает оценки из локального буфера
func (a *App) ListMarks(ctx context.Context, filter MarkFilter) ([]LocalMark, error) {
	var (
		records []offline.Record
		err     error
	)
	if filter.AssessmentID != "" {
		records, err = a.records.ListByGroup(ctx, filter.AssessmentID)
	} else {
		records, err = a.records.ListByStatus(ctx, filter.Status)
	}
	if err != nil {
		return nil, err
	}

	marks := make([]LocalMark, 0, len(records))
	for _, rec := range records {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		m, err := toLocalMark(rec)
		if err != nil {
			a.log.Warn("Пропущена поврежденная запись", "id", rec.ID, "error", err)
			continue
		}
		marks = append(marks, m)
	}
	return marks, nil
}

// PurgeSynced удаляет уже доставленные оценки
func (a *App) PurgeSynced(ctx context.Context) (int, error) {
	return a.records.PurgeSynced(ctx)
}

// SyncNow выполняет один цикл синхронизации
func (a *App) SyncNow(ctx context.Context) (offline.Outcome, error) {
	a.log.Info("Запуск принудительной синхронизации")
	return a.queue.Sync(ctx)
}

// Status возвращает количество записей по статусам и доступность сервера
func (a *App) Status(ctx context.Context) (*SyncStatus, error) {
	counts, err := a.records.Counts(ctx)
	if err != nil {
		return nil, err
	}

	return &SyncStatus{
		Online:  a.watcher.Probe(ctx),
		Syncing: a.queue.Syncing(),
		Counts:  counts,
	}, nil
}

// Counts возвращает количество записей по статусам без обращения к серверу
func (a *App) Counts(ctx context.Context) (map[offline.Status]int, error) {
	return a.records.Counts(ctx)
}

// RemoteMarks читает сохраненные на сервере оценки по контрольной
// или по ученику. Ровно один из идентификаторов должен быть задан.
func (a *App) RemoteMarks(ctx context.Context, assessmentID, studentID string) (mark.ListResponse, error) {
	switch {
	case assessmentID != "" && studentID != "":
		return mark.ListResponse{}, errors.New("укажите либо контрольную, либо ученика")
	case assessmentID != "":
		return a.httpClient.ListAssessmentMarks(ctx, assessmentID)
	case studentID != "":
		return a.httpClient.ListStudentMarks(ctx, studentID)
	default:
		return mark.ListResponse{}, errors.New("не указана контрольная или ученик")
	}
}

// CheckConnection проверяет соединение с сервером
func (a *App) CheckConnection(ctx context.Context) error {
	return a.httpClient.HealthCheck(ctx)
}

// GetToken читает сохраненный токен доступа
func (a *App) GetToken() (string, error) {
	data, err := os.ReadFile(a.config.TokenPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveToken сохраняет токен доступа и сразу начинает им пользоваться
func (a *App) SaveToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("пустой токен")
	}
	if err := os.WriteFile(a.config.TokenPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}
	a.httpClient.SetToken(token)
	return nil
}

// ClearToken удаляет сохраненный токен
func (a *App) ClearToken() error {
	a.httpClient.SetToken("")
	if err := os.Remove(a.config.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления токена: %w", err)
	}
	return nil
}

func toLocalMark(rec offline.Record) (LocalMark, error) {
	var entry mark.Entry
	if err := json.Unmarshal(rec.Payload, &entry); err != nil {
		return LocalMark{}, fmt.Errorf("ошибка декодирования оценки %s: %w", rec.ID, err)
	}

	return LocalMark{
		ID:        rec.ID,
		Status:    rec.Status,
		Mark:      entry,
		Grade:     mark.Grade(entry.MarksObtained),
		CreatedAt: time.UnixMilli(rec.CreatedAt),
		UpdatedAt: time.UnixMilli(rec.UpdatedAt),
	}, nil
}
