package mark

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) UpsertBatch(ctx context.Context, entries []Entry) (int, error) {
	args := m.Called(ctx, entries)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ListByAssessment(ctx context.Context, assessmentID string) ([]Mark, error) {
	args := m.Called(ctx, assessmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Mark), args.Error(1)
}

func (m *MockRepository) ListByStudent(ctx context.Context, studentID string) ([]Mark, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Mark), args.Error(1)
}

func newTestService(repo Repository) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_SubmitBatch(t *testing.T) {
	ctx := context.Background()

	valid := []Entry{
		{AssessmentID: "asm-1", StudentID: "s1", MarksObtained: 72},
		{AssessmentID: "asm-1", StudentID: "s2", MarksObtained: 0, TeacherComment: "absent"},
	}

	t.Run("stores a valid batch", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("UpsertBatch", ctx, valid).Return(2, nil)

		resp, err := newTestService(repo).SubmitBatch(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, BatchResponse{Status: "ok", Processed: 2}, resp)
		repo.AssertExpectations(t)
	})

	t.Run("rejects the whole batch on one invalid entry", func(t *testing.T) {
		repo := new(MockRepository)
		batch := append([]Entry{}, valid...)
		batch = append(batch, Entry{AssessmentID: "asm-1", StudentID: "s3", MarksObtained: 101})

		_, err := newTestService(repo).SubmitBatch(ctx, batch)
		assert.ErrorIs(t, err, ErrInvalidEntry)
		repo.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
	})

	t.Run("empty batch", func(t *testing.T) {
		repo := new(MockRepository)
		_, err := newTestService(repo).SubmitBatch(ctx, nil)
		assert.ErrorIs(t, err, ErrEmptyBatch)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("UpsertBatch", ctx, valid).Return(0, errors.New("connection reset"))

		_, err := newTestService(repo).SubmitBatch(ctx, valid)
		assert.Error(t, err)
		repo.AssertExpectations(t)
	})
}

func TestService_ListByAssessment(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("ListByAssessment", ctx, "asm-1").Return([]Mark{
		{ID: "1", AssessmentID: "asm-1", StudentID: "s1", MarksObtained: 81},
		{ID: "2", AssessmentID: "asm-1", StudentID: "s2", MarksObtained: 34.5},
	}, nil)

	resp, err := newTestService(repo).ListByAssessment(ctx, "asm-1")
	require.NoError(t, err)
	require.Len(t, resp.Marks, 2)
	assert.Equal(t, "A", resp.Marks[0].Grade)
	assert.Equal(t, "Excellent", resp.Marks[0].Remark)
	assert.Equal(t, "E", resp.Marks[1].Grade)
	assert.Equal(t, "Needs Improvement", resp.Marks[1].Remark)
	assert.Nil(t, resp.Summary)
}

func TestService_ListByStudentSummary(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("ListByStudent", ctx, "s1").Return([]Mark{
		{ID: "1", AssessmentID: "math", StudentID: "s1", MarksObtained: 90},
		{ID: "2", AssessmentID: "eng", StudentID: "s1", MarksObtained: 49},
	}, nil)
	repo.On("ListByStudent", ctx, "s2").Return([]Mark{}, nil)

	svc := newTestService(repo)

	resp, err := svc.ListByStudent(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, resp.Marks, 2)
	assert.Equal(t, "D", resp.Marks[1].Grade)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, 2, resp.Summary.Count)
	assert.Equal(t, 139.0, resp.Summary.Total)
	assert.Equal(t, 69.5, resp.Summary.Average)
	assert.Equal(t, "B", resp.Summary.Grade)

	empty, err := svc.ListByStudent(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, empty.Marks)
	assert.Nil(t, empty.Summary)
}

func TestService_ListByStudentError(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("ListByStudent", ctx, "s1").Return(nil, errors.New("boom"))

	_, err := newTestService(repo).ListByStudent(ctx, "s1")
	assert.Error(t, err)
}
