package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"gradebook/internal/domain/mark"
)

type MarkRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewMarkRepository(pool *pgxpool.Pool, log *slog.Logger) *MarkRepository {
	return &MarkRepository{
		pool: pool,
		log:  log.With("component", "mark_repository"),
	}
}

// UpsertBatch writes all entries in one transaction.
func (r *MarkRepository) UpsertBatch(ctx context.Context, entries []mark.Entry) (int, error) {
	const query = `
		INSERT INTO marks (assessment_id, student_id, marks_obtained, teacher_comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (assessment_id, student_id) DO UPDATE SET
			marks_obtained = EXCLUDED.marks_obtained,
			teacher_comment = EXCLUDED.teacher_comment,
			updated_at = now()`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query, e.AssessmentID, e.StudentID, e.MarksObtained, e.TeacherComment)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range entries {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			r.log.Error("failed to upsert mark",
				"assessment_id", entries[i].AssessmentID,
				"student_id", entries[i].StudentID,
				"error", err,
			)
			return 0, fmt.Errorf("upsert mark %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return len(entries), nil
}

func (r *MarkRepository) ListByAssessment(ctx context.Context, assessmentID string) ([]mark.Mark, error) {
	const query = `
		SELECT id::text, assessment_id, student_id, marks_obtained::float8,
		       teacher_comment, entered_at, updated_at
		FROM marks
		WHERE assessment_id = $1
		ORDER BY student_id`

	rows, err := r.pool.Query(ctx, query, assessmentID)
	if err != nil {
		r.log.Error("failed to list marks", "assessment_id", assessmentID, "error", err)
		return nil, fmt.Errorf("list marks by assessment: %w", err)
	}

	return r.scanMarks(rows)
}

func (r *MarkRepository) ListByStudent(ctx context.Context, studentID string) ([]mark.Mark, error) {
	const query = `
		SELECT id::text, assessment_id, student_id, marks_obtained::float8,
		       teacher_comment, entered_at, updated_at
		FROM marks
		WHERE student_id = $1
		ORDER BY entered_at`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		r.log.Error("failed to list marks", "student_id", studentID, "error", err)
		return nil, fmt.Errorf("list marks by student: %w", err)
	}

	return r.scanMarks(rows)
}

func (r *MarkRepository) scanMarks(rows pgx.Rows) ([]mark.Mark, error) {
	marks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (mark.Mark, error) {
		var m mark.Mark
		err := row.Scan(&m.ID, &m.AssessmentID, &m.StudentID, &m.MarksObtained,
			&m.TeacherComment, &m.EnteredAt, &m.UpdatedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan marks: %w", err)
	}
	return marks, nil
}
