package exam

import (
	"testing"

	"github.com/google/uuid"
)

func TestScoreAllCorrect(t *testing.T) {
	for _, n := range []int{1, 3, 10} {
		qs := mustQuestionSet(n)
		answers := make(AnswerMap, n)
		for i := 0; i < n; i++ {
			answers[i] = "a"
		}

		r := Score(qs, answers)
		if r.Score != 100.0 {
			t.Errorf("n=%d: score = %v, want 100.0", n, r.Score)
		}
		if r.SkippedCount != 0 {
			t.Errorf("n=%d: skipped = %d, want 0", n, r.SkippedCount)
		}
		if r.CorrectCount != n || r.AnsweredCount != n {
			t.Errorf("n=%d: correct=%d answered=%d, want both %d", n, r.CorrectCount, r.AnsweredCount, n)
		}
	}
}

func TestScoreEmptyAnswers(t *testing.T) {
	qs := mustQuestionSet(4)

	r := Score(qs, AnswerMap{})
	if r.Score != 0.0 {
		t.Errorf("score = %v, want 0.0", r.Score)
	}
	if r.SkippedCount != 4 {
		t.Errorf("skipped = %d, want 4", r.SkippedCount)
	}
}

func TestScoreMixedScenario(t *testing.T) {
	// 5 questions: 0,1,2 correct, 3 skipped, 4 wrong.
	qs := mustQuestionSet(5)
	answers := AnswerMap{0: "a", 1: "a", 2: "a", 4: "b"}

	r := Score(qs, answers)
	if r.CorrectCount != 3 {
		t.Errorf("correct = %d, want 3", r.CorrectCount)
	}
	if r.AnsweredCount != 4 {
		t.Errorf("answered = %d, want 4", r.AnsweredCount)
	}
	if r.SkippedCount != 1 {
		t.Errorf("skipped = %d, want 1", r.SkippedCount)
	}
	if r.Score != 60.0 {
		t.Errorf("score = %v, want 60.0", r.Score)
	}
}

func TestScoreIdempotent(t *testing.T) {
	qs := mustQuestionSet(7)
	answers := AnswerMap{0: "a", 2: "c", 5: "a", 6: "d"}

	first := Score(qs, answers)
	second := Score(qs, answers)
	if first != second {
		t.Errorf("scoring not deterministic: %+v vs %+v", first, second)
	}
}

func TestNewQuestionSetRejectsBadData(t *testing.T) {
	examID := uuid.New()

	if _, err := NewQuestionSet(examID, nil); err != ErrEmptyQuestionSet {
		t.Errorf("empty set: err = %v, want ErrEmptyQuestionSet", err)
	}

	noOptions := []Question{{Content: "q", Options: map[string]string{}, CorrectKey: "a"}}
	if _, err := NewQuestionSet(examID, noOptions); err == nil {
		t.Error("question without options accepted")
	}

	badKey := []Question{{Content: "q", Options: map[string]string{"a": "x"}, CorrectKey: "z"}}
	if _, err := NewQuestionSet(examID, badKey); err == nil {
		t.Error("correct key outside options accepted")
	}
}

func TestNewQuestionSetAssignsIndexes(t *testing.T) {
	questions := []Question{
		{Index: 99, Content: "first", Options: map[string]string{"a": "x"}, CorrectKey: "a"},
		{Index: -5, Content: "second", Options: map[string]string{"a": "x"}, CorrectKey: "a"},
	}
	qs, err := NewQuestionSet(uuid.New(), questions)
	if err != nil {
		t.Fatalf("NewQuestionSet: %v", err)
	}
	for i := 0; i < qs.Len(); i++ {
		if qs.At(i).Index != i {
			t.Errorf("question %d carries index %d", i, qs.At(i).Index)
		}
	}
}
