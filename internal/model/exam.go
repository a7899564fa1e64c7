package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the catalog states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
	ExamStatusArchived  ExamStatus = "ARCHIVED"
)

// Exam is a named, ordered set of multiple-choice questions in the catalog.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Category        string     `json:"category,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	QuestionCount   int        `json:"question_count"`
	Status          ExamStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ExamStats is the aggregate attempt data shown next to a catalog entry.
// Maintained asynchronously by the stats worker.
type ExamStats struct {
	ExamID       uuid.UUID `json:"exam_id"`
	AttemptCount int64     `json:"attempt_count"`
	AverageScore float64   `json:"average_score"`
}

// ListedExam is a catalog entry overlaid with the viewer's own state.
type ListedExam struct {
	Exam
	Stats       *ExamStats `json:"stats,omitempty"`
	HasProgress bool       `json:"has_progress"`
	BestScore   *float64   `json:"best_score,omitempty"`
}

// ExamPayload is the student-safe exam content cached in Redis: questions
// without correct-answer keys.
type ExamPayload struct {
	ExamID          uuid.UUID           `json:"exam_id"`
	Title           string              `json:"title"`
	DurationMinutes int                 `json:"duration_minutes"`
	Questions       []QuestionForStudent `json:"questions"`
}

// QuestionForStudent is a question stripped of its answer key.
type QuestionForStudent struct {
	Index   int               `json:"index"`
	Content string            `json:"content"`
	Options map[string]string `json:"options"`
}
