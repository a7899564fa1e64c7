package exam

import (
	"errors"
	"testing"
	"time"
)

func TestSelectLocksAnswerAndEntersFeedback(t *testing.T) {
	s := NewSession(mustQuestionSet(3), 1, nil)

	correct, err := s.Select("a")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !correct {
		t.Error("correct answer reported as wrong")
	}
	if s.Phase() != PhaseFeedback {
		t.Errorf("phase = %v, want FEEDBACK", s.Phase())
	}
	if s.Answers()[0] != "a" {
		t.Errorf("answers[0] = %q, want \"a\"", s.Answers()[0])
	}
}

func TestSelectInvalidOptionLeavesStateUnchanged(t *testing.T) {
	s := NewSession(mustQuestionSet(3), 1, nil)

	_, err := s.Select("z")
	if !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("err = %v, want ErrInvalidOption", err)
	}
	if s.Phase() != PhaseActive {
		t.Errorf("phase changed to %v on rejected select", s.Phase())
	}
	if len(s.Answers()) != 0 {
		t.Errorf("answers mutated on rejected select: %v", s.Answers())
	}
}

func TestSelectRejectedDuringFeedback(t *testing.T) {
	s := NewSession(mustQuestionSet(3), 1, nil)

	if _, err := s.Select("b"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, err := s.Select("a"); !errors.Is(err, ErrFeedbackPending) {
		t.Errorf("second select during feedback: err = %v, want ErrFeedbackPending", err)
	}
	if s.Answers()[0] != "b" {
		t.Errorf("locked answer overwritten: %q", s.Answers()[0])
	}
}

func TestSelectRejectedOnLockedIndex(t *testing.T) {
	s := NewSession(mustQuestionSet(3), 1, nil)

	if _, err := s.Select("b"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := s.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if err := s.Prev(); err != nil {
		t.Fatalf("Prev: %v", err)
	}
	// Back on question 0, which has a locked answer.
	if _, err := s.Select("a"); !errors.Is(err, ErrAnswerLocked) {
		t.Errorf("re-select on locked index: err = %v, want ErrAnswerLocked", err)
	}
}

func TestAdvanceFromFeedbackMovesToNext(t *testing.T) {
	s := NewSession(mustQuestionSet(3), 1, nil)

	s.Select("a")
	if err := s.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if s.Phase() != PhaseActive || s.CurrentIndex() != 1 {
		t.Errorf("after advance: phase=%v index=%d, want ACTIVE/1", s.Phase(), s.CurrentIndex())
	}
}

func TestAdvanceClampsAtLastIndex(t *testing.T) {
	s := NewSession(mustQuestionSet(2), 1, nil)

	s.Select("a")
	s.Advance()
	s.Select("a")
	if err := s.Advance(); err != nil {
		t.Fatalf("Advance at last: %v", err)
	}
	if s.CurrentIndex() != 1 {
		t.Errorf("index = %d, want clamped 1", s.CurrentIndex())
	}
	if !s.ReadyToSubmit() {
		t.Error("fully answered session at last index not ready to submit")
	}
}

func TestSkipNeverWritesAnswer(t *testing.T) {
	s := NewSession(mustQuestionSet(3), 1, nil)

	if err := s.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if s.CurrentIndex() != 1 {
		t.Errorf("index = %d, want 1", s.CurrentIndex())
	}
	if len(s.Answers()) != 0 {
		t.Errorf("skip wrote an answer: %v", s.Answers())
	}
}

func TestPrevClampsAtZero(t *testing.T) {
	s := NewSession(mustQuestionSet(3), 1, nil)

	if err := s.Prev(); err != nil {
		t.Fatalf("Prev: %v", err)
	}
	if s.CurrentIndex() != 0 {
		t.Errorf("index = %d, want clamped 0", s.CurrentIndex())
	}
}

func TestPauseRequiresAnAnswer(t *testing.T) {
	s := NewSession(mustQuestionSet(3), 1, nil)

	if _, err := s.Pause(); !errors.Is(err, ErrNothingToSave) {
		t.Errorf("pause with no answers: err = %v, want ErrNothingToSave", err)
	}
	if s.Phase() != PhaseActive {
		t.Errorf("phase = %v after rejected pause", s.Phase())
	}
}

func TestPauseSnapshotsAnswersAndIndex(t *testing.T) {
	s := NewSession(mustQuestionSet(10), 7, nil)

	s.Select("a")
	record, err := s.Pause()
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if s.Phase() != PhasePaused {
		t.Errorf("phase = %v, want PAUSED", s.Phase())
	}
	if record.CurrentIndex != 0 {
		t.Errorf("snapshot index = %d, want 0", record.CurrentIndex)
	}
	if len(record.Answers) != 1 || record.Answers[0] != "a" {
		t.Errorf("snapshot answers = %v, want {0:a}", record.Answers)
	}
	if record.UserID != 7 {
		t.Errorf("snapshot user = %d, want 7", record.UserID)
	}
	if record.UpdatedAt.IsZero() || time.Since(record.UpdatedAt) > time.Minute {
		t.Errorf("snapshot timestamp looks wrong: %v", record.UpdatedAt)
	}
}

func TestExitOnlyWithoutAnswers(t *testing.T) {
	s := NewSession(mustQuestionSet(3), 1, nil)
	if err := s.Exit(); err != nil {
		t.Fatalf("Exit on untouched session: %v", err)
	}
	if s.Phase() != PhaseExited {
		t.Errorf("phase = %v, want EXITED", s.Phase())
	}

	s = NewSession(mustQuestionSet(3), 1, nil)
	s.Select("a")
	s.Advance()
	if err := s.Exit(); !errors.Is(err, ErrAnswersRecorded) {
		t.Errorf("exit with answers: err = %v, want ErrAnswersRecorded", err)
	}
}

func TestBeginSubmitEntersSubmittingOnce(t *testing.T) {
	s := NewSession(mustQuestionSet(2), 1, nil)

	if err := s.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	if s.Phase() != PhaseSubmitting {
		t.Errorf("phase = %v, want SUBMITTING", s.Phase())
	}
	if err := s.BeginSubmit(); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("re-entrant BeginSubmit: err = %v, want ErrSubmitInFlight", err)
	}
}

func TestResumeSeedAdvancesPastAnsweredIndex(t *testing.T) {
	qs := mustQuestionSet(5)

	// Saved at index k with answers[k] present, k < N-1: land on k+1.
	progress := &ProgressRecord{
		UserID:       1,
		ExamID:       qs.ExamID(),
		Answers:      AnswerMap{0: "a", 1: "b", 2: "a"},
		CurrentIndex: 2,
	}
	s := NewSession(qs, 1, progress)
	if s.CurrentIndex() != 3 {
		t.Errorf("seed index = %d, want 3", s.CurrentIndex())
	}
	if len(s.Answers()) != 3 {
		t.Errorf("seeded answers = %v", s.Answers())
	}

	// k == N-1: stay on k.
	progress = &ProgressRecord{
		UserID:       1,
		ExamID:       qs.ExamID(),
		Answers:      AnswerMap{4: "c"},
		CurrentIndex: 4,
	}
	s = NewSession(qs, 1, progress)
	if s.CurrentIndex() != 4 {
		t.Errorf("seed index at last = %d, want 4", s.CurrentIndex())
	}

	// Unanswered saved index: no advance.
	progress = &ProgressRecord{
		UserID:       1,
		ExamID:       qs.ExamID(),
		Answers:      AnswerMap{0: "a"},
		CurrentIndex: 1,
	}
	s = NewSession(qs, 1, progress)
	if s.CurrentIndex() != 1 {
		t.Errorf("seed index = %d, want 1", s.CurrentIndex())
	}
}

func TestResumeSeedDropsStaleEntries(t *testing.T) {
	qs := mustQuestionSet(3)

	progress := &ProgressRecord{
		UserID:       1,
		ExamID:       qs.ExamID(),
		Answers:      AnswerMap{0: "a", 7: "b", 2: "zz"},
		CurrentIndex: 9,
	}
	s := NewSession(qs, 1, progress)

	if got := s.Answers(); len(got) != 1 || got[0] != "a" {
		t.Errorf("seeded answers = %v, want only {0:a}", got)
	}
	if s.CurrentIndex() < 0 || s.CurrentIndex() >= qs.Len() {
		t.Errorf("seed index %d out of range", s.CurrentIndex())
	}
}
