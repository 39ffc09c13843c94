package mark

import (
	"context"
)

// Repository persists marks. UpsertBatch is keyed by (assessment_id, student_id)
// and applies the whole batch or nothing.
type Repository interface {
	UpsertBatch(ctx context.Context, entries []Entry) (int, error)
	ListByAssessment(ctx context.Context, assessmentID string) ([]Mark, error)
	ListByStudent(ctx context.Context, studentID string) ([]Mark, error)
}
