package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Kolass2004/PrepmyExam-sub000/internal/exam"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository loads ordered question sets from PostgreSQL. It is the
// production exam.QuestionSetProvider: the ORDER BY position clause is what
// makes question indexes stable across loads.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

var _ exam.QuestionSetProvider = (*QuestionRepository)(nil)

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// LoadQuestions retrieves the exam's questions ordered by position and
// validates them into an immutable set. A missing or unpublished exam maps
// to exam.ErrExamNotFound.
func (r *QuestionRepository) LoadQuestions(ctx context.Context, examID uuid.UUID) (*exam.QuestionSet, error) {
	var status string
	err := r.pool.QueryRow(ctx,
		`SELECT status FROM exams WHERE id = $1`, examID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, exam.ErrExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("check exam: %w", err)
	}
	if status != "PUBLISHED" {
		return nil, exam.ErrExamNotFound
	}

	rows, err := r.pool.Query(ctx,
		`SELECT content, options, correct_key
		 FROM questions WHERE exam_id = $1
		 ORDER BY position`, examID,
	)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []exam.Question
	for rows.Next() {
		var (
			q       exam.Question
			rawOpts []byte
		)
		if err := rows.Scan(&q.Content, &rawOpts, &q.CorrectKey); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(rawOpts, &q.Options); err != nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exam.NewQuestionSet(examID, questions)
}
