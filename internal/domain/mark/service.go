package mark

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"
)

// Service defines the business logic for mark operations
type Service struct {
	repo Repository
	log  *slog.Logger
}

type Servicer interface {
	SubmitBatch(ctx context.Context, entries []Entry) (BatchResponse, error)
	ListByAssessment(ctx context.Context, assessmentID string) (ListResponse, error)
	ListByStudent(ctx context.Context, studentID string) (ListResponse, error)
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "mark_service"),
	}
}

// SubmitBatch validates every entry before writing anything; one invalid
// entry rejects the batch.
func (s *Service) SubmitBatch(ctx context.Context, entries []Entry) (BatchResponse, error) {
	if len(entries) == 0 {
		return BatchResponse{}, ErrEmptyBatch
	}

	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return BatchResponse{}, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	processed, err := s.repo.UpsertBatch(ctx, entries)
	if err != nil {
		s.log.Error("failed to upsert marks", "error", err, "count", len(entries))
		return BatchResponse{}, fmt.Errorf("upsert marks: %w", err)
	}

	s.log.Info("marks batch stored", "processed", processed)
	return BatchResponse{Status: "ok", Processed: processed}, nil
}

func (s *Service) ListByAssessment(ctx context.Context, assessmentID string) (ListResponse, error) {
	marks, err := s.repo.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return ListResponse{}, fmt.Errorf("list marks by assessment: %w", err)
	}
	return ListResponse{Marks: graded(marks)}, nil
}

func (s *Service) ListByStudent(ctx context.Context, studentID string) (ListResponse, error) {
	marks, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return ListResponse{}, fmt.Errorf("list marks by student: %w", err)
	}
	out := graded(marks)
	return ListResponse{Marks: out, Summary: Summarize(out)}, nil
}

func graded(marks []Mark) []Mark {
	out := make([]Mark, 0, len(marks))
	for _, m := range marks {
		out = append(out, m.WithGrade())
	}
	return out
}
