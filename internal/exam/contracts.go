package exam

import (
	"context"

	"github.com/google/uuid"
)

// QuestionSetProvider loads the ordered question set for an exam. The order
// must be stable and deterministic across loads — it defines question
// indexes and therefore the meaning of every stored answer.
// Returns ErrExamNotFound when the exam does not exist.
type QuestionSetProvider interface {
	LoadQuestions(ctx context.Context, examID uuid.UUID) (*QuestionSet, error)
}

// ProgressStore holds the single in-flight progress record per
// (userID, examID) pair. There is no transactional guarantee against
// concurrent writers; last write wins.
type ProgressStore interface {
	// GetProgress returns the saved record, or (nil, nil) when none exists.
	GetProgress(ctx context.Context, userID int, examID uuid.UUID) (*ProgressRecord, error)
	// SetProgress upserts the record for (record.UserID, record.ExamID).
	SetProgress(ctx context.Context, record *ProgressRecord) error
	// DeleteProgress removes the record; deleting a missing record is not
	// an error.
	DeleteProgress(ctx context.Context, userID int, examID uuid.UUID) error
}

// AttemptLedger is the append-only store of completed attempts.
type AttemptLedger interface {
	// AppendAttempt writes the record under record.ID. Re-appending the
	// same ID is a no-op, which is what makes submit retries idempotent.
	AppendAttempt(ctx context.Context, record *AttemptRecord) (uuid.UUID, error)
	// ListAttempts returns a user's attempts for an exam, newest first.
	ListAttempts(ctx context.Context, userID int, examID uuid.UUID) ([]AttemptRecord, error)
}
