package exam

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus is the lifecycle marker on a ledger entry. Only completed
// attempts are ever written, so this is a single-value enum kept for the
// wire contract.
type AttemptStatus string

const AttemptStatusCompleted AttemptStatus = "completed"

// ProgressRecord is the persisted snapshot of an in-flight attempt, keyed by
// (UserID, ExamID). At most one record exists per key; writes are idempotent
// upserts with last-write-wins semantics.
type ProgressRecord struct {
	UserID       int       `json:"user_id"`
	ExamID       uuid.UUID `json:"exam_id"`
	Answers      AnswerMap `json:"answers"`
	CurrentIndex int       `json:"current_index"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AttemptRecord is one completed, scored pass through an exam. Records are
// append-only and immutable once written.
type AttemptRecord struct {
	ID           uuid.UUID     `json:"id"`
	ExamID       uuid.UUID     `json:"exam_id"`
	UserID       int           `json:"user_id"`
	Answers      AnswerMap     `json:"answers"`
	Score        float64       `json:"score"`
	CorrectCount int           `json:"correct_count"`
	SkippedCount int           `json:"skipped_count"`
	CompletedAt  time.Time     `json:"completed_at"`
	Status       AttemptStatus `json:"status"`
}
