package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kolass2004/PrepmyExam-sub000/internal/exam"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExamRepository handles exam catalog data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, title, description, category, duration_minutes, question_count, status, created_at, updated_at`

// GetByID retrieves a single exam. Returns exam.ErrExamNotFound when absent.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.Description, &e.Category, &e.DurationMinutes, &e.QuestionCount, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, exam.ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListPublished retrieves all published exams, newest first.
func (r *ExamRepository) ListPublished(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams
		 WHERE status = $1
		 ORDER BY created_at DESC`, model.ExamStatusPublished,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Category, &e.DurationMinutes, &e.QuestionCount, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// GetStats retrieves the aggregate attempt stats for an exam, or nil when
// no attempt has been recorded yet.
func (r *ExamRepository) GetStats(ctx context.Context, examID uuid.UUID) (*model.ExamStats, error) {
	s := &model.ExamStats{ExamID: examID}
	var totalScore float64
	err := r.pool.QueryRow(ctx,
		`SELECT attempt_count, total_score FROM exam_stats WHERE exam_id = $1`, examID,
	).Scan(&s.AttemptCount, &totalScore)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	if s.AttemptCount > 0 {
		s.AverageScore = totalScore / float64(s.AttemptCount)
	}
	return s, nil
}
