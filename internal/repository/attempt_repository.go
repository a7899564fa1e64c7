package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Kolass2004/PrepmyExam-sub000/internal/exam"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptRepository is the production exam.AttemptLedger on PostgreSQL.
// Appends are keyed by the controller's client-generated attempt ID with
// ON CONFLICT DO NOTHING, which makes submit retries idempotent at the
// storage layer too.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

var _ exam.AttemptLedger = (*AttemptRepository)(nil)

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// AppendAttempt writes one completed attempt. Re-appending an existing ID
// is a no-op returning the same ID.
func (r *AttemptRepository) AppendAttempt(ctx context.Context, record *exam.AttemptRecord) (uuid.UUID, error) {
	rawAnswers, err := json.Marshal(record.Answers)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode answers: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO attempts (id, exam_id, user_id, answers, score, correct_count, skipped_count, status, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`,
		record.ID, record.ExamID, record.UserID, rawAnswers,
		record.Score, record.CorrectCount, record.SkippedCount,
		record.Status, record.CompletedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert attempt: %w", err)
	}

	return record.ID, nil
}

// ListAttempts retrieves a user's attempts for an exam, newest first.
func (r *AttemptRepository) ListAttempts(ctx context.Context, userID int, examID uuid.UUID) ([]exam.AttemptRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, user_id, answers, score, correct_count, skipped_count, status, completed_at
		 FROM attempts
		 WHERE user_id = $1 AND exam_id = $2
		 ORDER BY completed_at DESC`,
		userID, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []exam.AttemptRecord
	for rows.Next() {
		var (
			a          exam.AttemptRecord
			rawAnswers []byte
		)
		if err := rows.Scan(&a.ID, &a.ExamID, &a.UserID, &rawAnswers, &a.Score, &a.CorrectCount, &a.SkippedCount, &a.Status, &a.CompletedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rawAnswers, &a.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// BestScore returns the user's highest score on an exam, or nil when the
// user has no completed attempts.
func (r *AttemptRepository) BestScore(ctx context.Context, userID int, examID uuid.UUID) (*float64, error) {
	var best *float64
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(score) FROM attempts WHERE user_id = $1 AND exam_id = $2`,
		userID, examID,
	).Scan(&best)
	if err != nil {
		return nil, err
	}
	return best, nil
}
