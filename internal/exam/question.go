package exam

import (
	"fmt"

	"github.com/google/uuid"
)

// Question is a single multiple-choice question. Options maps short option
// keys (e.g. "a".."d") to display text. CorrectKey is never serialized to
// clients taking the exam.
type Question struct {
	Index      int               `json:"index"`
	Content    string            `json:"content"`
	Options    map[string]string `json:"options"`
	CorrectKey string            `json:"-"`
}

// QuestionSet is the immutable ordered list of questions for one exam.
// The position of a question defines its Index, and therefore the meaning
// of every stored answer for this exam.
type QuestionSet struct {
	examID    uuid.UUID
	questions []Question
}

// NewQuestionSet validates and freezes an ordered question list.
// Data errors (empty set, a question without options, a correct key that is
// not one of the question's options) are rejected here, at load time, so
// scoring never has to deal with them.
func NewQuestionSet(examID uuid.UUID, questions []Question) (*QuestionSet, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}

	items := make([]Question, len(questions))
	copy(items, questions)

	for i := range items {
		items[i].Index = i
		if len(items[i].Options) == 0 {
			return nil, fmt.Errorf("question %d has no options: %w", i, ErrBadQuestionData)
		}
		if _, ok := items[i].Options[items[i].CorrectKey]; !ok {
			return nil, fmt.Errorf("question %d: correct key %q not among options: %w", i, items[i].CorrectKey, ErrBadQuestionData)
		}
	}

	return &QuestionSet{examID: examID, questions: items}, nil
}

// ExamID returns the exam this set belongs to.
func (qs *QuestionSet) ExamID() uuid.UUID { return qs.examID }

// Len returns the number of questions.
func (qs *QuestionSet) Len() int { return len(qs.questions) }

// At returns the question at position i. Panics on out-of-range i, which the
// session's index clamping makes unreachable.
func (qs *QuestionSet) At(i int) Question { return qs.questions[i] }

// AnswerMap is a sparse mapping from question index to the selected option
// key. Absence of an index means the question was skipped — there is never
// an explicit empty-string marker, and presence (not value truthiness) is
// what counts as answered.
type AnswerMap map[int]string

// Clone returns an independent copy of the map.
func (a AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
