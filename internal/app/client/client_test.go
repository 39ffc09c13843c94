package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"gradebook/internal/app/client/config"
	"gradebook/internal/app/client/connectivity"
	"gradebook/internal/app/client/offline"
	"gradebook/internal/domain/mark"
)

// fakeMarksServer имитирует REST API сервера оценок
type fakeMarksServer struct {
	mu      sync.Mutex
	batches [][]mark.Entry
	tokens  []string
	down    atomic.Bool
	failing atomic.Bool
}

func (f *fakeMarksServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		if f.down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	})
	mux.HandleFunc("/api/v1/marks/batch", func(w http.ResponseWriter, r *http.Request) {
		if f.down.Load() || f.failing.Load() {
			w.Header().Set("Content-Type", "application/problem+json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":503,"detail":"maintenance"}`))
			return
		}
		var req mark.BatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.batches = append(f.batches, req.Marks)
		f.tokens = append(f.tokens, r.Header.Get("Authorization"))
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(mark.BatchResponse{Status: "ok", Processed: len(req.Marks)})
	})
	mux.HandleFunc("GET /api/v1/assessments/{id}/marks", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokens = append(f.tokens, r.Header.Get("Authorization"))
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(mark.ListResponse{Marks: []mark.Mark{
			mark.Mark{ID: "1", AssessmentID: r.PathValue("id"), StudentID: "s1", MarksObtained: 66}.WithGrade(),
		}})
	})
	mux.HandleFunc("GET /api/v1/students/{id}/marks", func(w http.ResponseWriter, r *http.Request) {
		marks := []mark.Mark{
			mark.Mark{ID: "1", AssessmentID: "math", StudentID: r.PathValue("id"), MarksObtained: 80}.WithGrade(),
			mark.Mark{ID: "2", AssessmentID: "eng", StudentID: r.PathValue("id"), MarksObtained: 60}.WithGrade(),
		}
		_ = json.NewEncoder(w).Encode(mark.ListResponse{Marks: marks, Summary: mark.Summarize(marks)})
	})
	return mux
}

func (f *fakeMarksServer) received() [][]mark.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]mark.Entry(nil), f.batches...)
}

func newTestApp(t *testing.T, srv *httptest.Server, driver string) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Env:           "test",
		ServerAddress: strings.TrimPrefix(srv.URL, "http://"),
		ConfigDir:     dir,
		TokenPath:     filepath.Join(dir, "token"),
		DataPath:      filepath.Join(dir, "offline.db"),
		StorageDriver: driver,
		SyncInterval:  3600,
		ProbeInterval: 3600,
		HTTPTimeout:   5,
	}

	app, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestApp_SaveAndSync(t *testing.T) {
	ctx := context.Background()
	fake := &fakeMarksServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	app := newTestApp(t, srv, config.StorageSQLite)
	require.NoError(t, app.SaveToken("secret-token"))

	m1, err := app.SaveMark(ctx, mark.Entry{AssessmentID: "asm-1", StudentID: "s1", MarksObtained: 72})
	require.NoError(t, err)
	assert.Equal(t, offline.StatusPending, m1.Status)
	assert.Equal(t, "B", m1.Grade)

	_, err = app.SaveMark(ctx, mark.Entry{AssessmentID: "asm-1", StudentID: "s2", MarksObtained: 40, TeacherComment: "retake"})
	require.NoError(t, err)

	outcome, err := app.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, offline.OutcomeDelivered, outcome)

	batches := fake.received()
	require.Len(t, batches, 1)
	assert.Equal(t, []mark.Entry{
		{AssessmentID: "asm-1", StudentID: "s1", MarksObtained: 72},
		{AssessmentID: "asm-1", StudentID: "s2", MarksObtained: 40, TeacherComment: "retake"},
	}, batches[0])
	assert.Equal(t, []string{"Bearer secret-token"}, fake.tokens)

	synced, err := app.ListMarks(ctx, MarkFilter{Status: offline.StatusSynced})
	require.NoError(t, err)
	assert.Len(t, synced, 2)

	purged, err := app.PurgeSynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, purged)

	counts, err := app.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts[offline.StatusSynced])
}

func TestApp_ServerErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	fake := &fakeMarksServer{}
	fake.failing.Store(true)
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	app := newTestApp(t, srv, config.StorageMemory)

	_, err := app.SaveMark(ctx, mark.Entry{AssessmentID: "asm-1", StudentID: "s1", MarksObtained: 10})
	require.NoError(t, err)

	outcome, err := app.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, offline.OutcomeRolledBack, outcome)

	pending, err := app.ListMarks(ctx, MarkFilter{Status: offline.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	fake.failing.Store(false)
	outcome, err = app.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, offline.OutcomeDelivered, outcome)
}

func TestApp_SaveMarkValidates(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	app := newTestApp(t, srv, config.StorageMemory)
	_, err := app.SaveMark(context.Background(), mark.Entry{AssessmentID: "asm-1", StudentID: "s1", MarksObtained: 120})
	assert.ErrorIs(t, err, mark.ErrInvalidEntry)
}

func TestApp_ListMarksByAssessment(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	app := newTestApp(t, srv, config.StorageMemory)
	for _, e := range []mark.Entry{
		{AssessmentID: "asm-1", StudentID: "s1", MarksObtained: 50},
		{AssessmentID: "asm-2", StudentID: "s1", MarksObtained: 60},
		{AssessmentID: "asm-1", StudentID: "s2", MarksObtained: 70},
	} {
		_, err := app.SaveMark(ctx, e)
		require.NoError(t, err)
	}

	marks, err := app.ListMarks(ctx, MarkFilter{AssessmentID: "asm-1"})
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, "s1", marks[0].Mark.StudentID)
	assert.Equal(t, "s2", marks[1].Mark.StudentID)

	none, err := app.ListMarks(ctx, MarkFilter{AssessmentID: "asm-1", Status: offline.StatusSynced})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestApp_Status(t *testing.T) {
	ctx := context.Background()
	fake := &fakeMarksServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	app := newTestApp(t, srv, config.StorageMemory)
	_, err := app.SaveMark(ctx, mark.Entry{AssessmentID: "asm-1", StudentID: "s1", MarksObtained: 50})
	require.NoError(t, err)

	status, err := app.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Online)
	assert.False(t, status.Syncing)
	assert.Equal(t, 1, status.Counts[offline.StatusPending])

	fake.down.Store(true)
	status, err = app.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.Online)
}

func TestApp_RunFlushesWhenServerComesBack(t *testing.T) {
	fake := &fakeMarksServer{}
	fake.down.Store(true)
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	app := newTestApp(t, srv, config.StorageMemory)

	// наблюдатель с частыми проверками для теста
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app.watcher = connectivity.NewWatcher(app.httpClient, log, connectivity.Config{
		Interval: 20 * time.Millisecond,
		Timeout:  time.Second,
	})
	app.scheduler = offline.NewScheduler(app.queue, app.records, app.watcher, log, offline.SchedulerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	for _, s := range []string{"s1", "s2", "s3"} {
		_, err := app.SaveMark(ctx, mark.Entry{AssessmentID: "asm-1", StudentID: s, MarksObtained: 55})
		require.NoError(t, err)
	}

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, fake.received())

	fake.down.Store(false)

	assert.Eventually(t, func() bool {
		synced, err := app.ListMarks(ctx, MarkFilter{Status: offline.StatusSynced})
		return err == nil && len(synced) == 3
	}, 2*time.Second, 10*time.Millisecond)

	batches := fake.received()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 3)

	cancel()
	require.NoError(t, <-done)
}

func TestApp_RemoteMarks(t *testing.T) {
	ctx := context.Background()
	fake := &fakeMarksServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	app := newTestApp(t, srv, config.StorageMemory)
	require.NoError(t, app.SaveToken("secret-token"))

	byAssessment, err := app.RemoteMarks(ctx, "asm 7", "")
	require.NoError(t, err)
	require.Len(t, byAssessment.Marks, 1)
	assert.Equal(t, "asm 7", byAssessment.Marks[0].AssessmentID)
	assert.Equal(t, "B", byAssessment.Marks[0].Grade)
	assert.Nil(t, byAssessment.Summary)
	assert.Equal(t, []string{"Bearer secret-token"}, fake.tokens)

	byStudent, err := app.RemoteMarks(ctx, "", "s1")
	require.NoError(t, err)
	require.Len(t, byStudent.Marks, 2)
	require.NotNil(t, byStudent.Summary)
	assert.Equal(t, 70.0, byStudent.Summary.Average)
	assert.Equal(t, "B", byStudent.Summary.Grade)

	_, err = app.RemoteMarks(ctx, "", "")
	assert.Error(t, err)
	_, err = app.RemoteMarks(ctx, "asm-1", "s1")
	assert.Error(t, err)
}

func TestApp_Token(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	app := newTestApp(t, srv, config.StorageMemory)

	_, err := app.GetToken()
	assert.Error(t, err)

	assert.Error(t, app.SaveToken("  "))
	require.NoError(t, app.SaveToken("abc\n"))

	token, err := app.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, app.ClearToken())
	require.NoError(t, app.ClearToken())
	_, err = app.GetToken()
	assert.Error(t, err)
}
