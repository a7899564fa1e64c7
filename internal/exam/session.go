package exam

import (
	"time"

	"github.com/google/uuid"
)

// Session is the in-memory state of one user's pass through one exam. It is
// a pure state machine: methods mutate nothing but the session itself and
// perform no I/O. The Controller serializes access — one event drives one
// transition at a time — so Session itself is not safe for concurrent use.
type Session struct {
	examID       uuid.UUID
	userID       int
	questions    *QuestionSet
	answers      AnswerMap
	currentIndex int
	phase        Phase
}

// NewSession builds a session over a validated question set, optionally
// resuming from a saved progress record.
//
// Resume seeding happens here, once, and is not a runtime transition: the
// answers and index are taken from the record, and when the seeded index
// already holds an answer and is not the last index, the index advances by
// one so the user lands on the next unanswered question. Answer presence —
// not value truthiness — decides whether an index counts as answered.
func NewSession(qs *QuestionSet, userID int, progress *ProgressRecord) *Session {
	s := &Session{
		examID:    qs.ExamID(),
		userID:    userID,
		questions: qs,
		answers:   make(AnswerMap),
		phase:     PhaseActive,
	}

	if progress == nil {
		return s
	}

	// Stale records can reference a question set that shrank or changed
	// since the snapshot was taken; entries that no longer line up are
	// dropped rather than misapplied.
	for idx, key := range progress.Answers {
		if idx < 0 || idx >= qs.Len() {
			continue
		}
		if _, ok := qs.At(idx).Options[key]; !ok {
			continue
		}
		s.answers[idx] = key
	}

	s.currentIndex = clamp(progress.CurrentIndex, 0, qs.Len()-1)
	if _, answered := s.answers[s.currentIndex]; answered && s.currentIndex < qs.Len()-1 {
		s.currentIndex++
	}

	return s
}

// ExamID returns the exam this session runs against.
func (s *Session) ExamID() uuid.UUID { return s.examID }

// UserID returns the owning user.
func (s *Session) UserID() int { return s.userID }

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// CurrentIndex returns the current question pointer.
func (s *Session) CurrentIndex() int { return s.currentIndex }

// Questions returns the immutable question set.
func (s *Session) Questions() *QuestionSet { return s.questions }

// CurrentQuestion returns the question at the current pointer.
func (s *Session) CurrentQuestion() Question { return s.questions.At(s.currentIndex) }

// Answers returns a copy of the recorded answers.
func (s *Session) Answers() AnswerMap { return s.answers.Clone() }

// AnswerCount returns how many questions have locked answers.
func (s *Session) AnswerCount() int { return len(s.answers) }

// ReadyToSubmit reports the ready-to-submit sub-condition: Active at the
// last index with an answer recorded there.
func (s *Session) ReadyToSubmit() bool {
	if s.phase != PhaseActive || s.currentIndex != s.questions.Len()-1 {
		return false
	}
	_, ok := s.answers[s.currentIndex]
	return ok
}

// Select validates and locks an answer for the current question, moving the
// session into the Feedback phase. It reports whether the locked answer is
// correct. The session is left untouched on any error.
func (s *Session) Select(key string) (bool, error) {
	switch s.phase {
	case PhaseActive:
	case PhaseFeedback:
		return false, ErrFeedbackPending
	case PhaseSubmitting:
		return false, ErrSubmitInFlight
	default:
		return false, ErrSessionClosed
	}

	if _, locked := s.answers[s.currentIndex]; locked {
		return false, ErrAnswerLocked
	}

	q := s.questions.At(s.currentIndex)
	if _, ok := q.Options[key]; !ok {
		return false, ErrInvalidOption
	}

	s.answers[s.currentIndex] = key
	s.phase = PhaseFeedback
	return key == q.CorrectKey, nil
}

// Advance moves forward one question. From Feedback it ends the reveal and
// re-enters Active at the next index; from Active it is plain forward
// navigation. The index clamps at the last question, where the session
// becomes ready to submit instead of walking off the end.
func (s *Session) Advance() error {
	switch s.phase {
	case PhaseActive, PhaseFeedback:
	case PhaseSubmitting:
		return ErrSubmitInFlight
	default:
		return ErrSessionClosed
	}

	if s.currentIndex < s.questions.Len()-1 {
		s.currentIndex++
	}
	s.phase = PhaseActive
	return nil
}

// Skip is forward navigation that never writes an answer: a skipped
// question's absence from the answer map is what drives the skipped count
// at scoring time. Unlike Advance it is not accepted during Feedback.
func (s *Session) Skip() error {
	if err := s.requireActive(); err != nil {
		return err
	}
	if s.currentIndex < s.questions.Len()-1 {
		s.currentIndex++
	}
	return nil
}

// Prev moves back one question, clamped at index zero. Active only.
func (s *Session) Prev() error {
	if err := s.requireActive(); err != nil {
		return err
	}
	if s.currentIndex > 0 {
		s.currentIndex--
	}
	return nil
}

// Pause snapshots the session for later resumption and retires it. At least
// one answer must be recorded; an untouched session exits instead.
func (s *Session) Pause() (*ProgressRecord, error) {
	switch s.phase {
	case PhaseActive, PhaseFeedback:
	case PhaseSubmitting:
		return nil, ErrSubmitInFlight
	default:
		return nil, ErrSessionClosed
	}

	if len(s.answers) == 0 {
		return nil, ErrNothingToSave
	}

	s.phase = PhasePaused
	return &ProgressRecord{
		UserID:       s.userID,
		ExamID:       s.examID,
		Answers:      s.answers.Clone(),
		CurrentIndex: s.currentIndex,
		UpdatedAt:    time.Now(),
	}, nil
}

// Exit discards the session without persistence. Allowed only while no
// answer has been recorded; once answers exist, Pause is the way out.
func (s *Session) Exit() error {
	if err := s.requireActive(); err != nil {
		return err
	}
	if len(s.answers) > 0 {
		return ErrAnswersRecorded
	}
	s.phase = PhaseExited
	return nil
}

// BeginSubmit moves the session into Submitting. It succeeds exactly once;
// a re-entrant call while Submitting reports ErrSubmitInFlight so callers
// can treat the duplicate as a no-op or a retry.
func (s *Session) BeginSubmit() error {
	if err := s.requireActive(); err != nil {
		return err
	}
	s.phase = PhaseSubmitting
	return nil
}

// finishSubmit completes the Submitting phase after the attempt write is
// confirmed.
func (s *Session) finishSubmit() {
	s.phase = PhaseCompleted
}

func (s *Session) requireActive() error {
	switch s.phase {
	case PhaseActive:
		return nil
	case PhaseFeedback:
		return ErrFeedbackPending
	case PhaseSubmitting:
		return ErrSubmitInFlight
	default:
		return ErrSessionClosed
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
