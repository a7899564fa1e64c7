package exam

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// In-memory collaborators used across the package tests. They honor the
// contracts exactly: single progress record per key with upsert semantics,
// append-only ledger with idempotent re-append by ID.

type memProvider struct {
	sets map[uuid.UUID]*QuestionSet
}

func newMemProvider() *memProvider {
	return &memProvider{sets: make(map[uuid.UUID]*QuestionSet)}
}

func (p *memProvider) LoadQuestions(_ context.Context, examID uuid.UUID) (*QuestionSet, error) {
	qs, ok := p.sets[examID]
	if !ok {
		return nil, ErrExamNotFound
	}
	return qs, nil
}

type memProgressStore struct {
	mu      sync.Mutex
	records map[string]*ProgressRecord
	failSet bool
	setN    int
	delN    int
}

func newMemProgressStore() *memProgressStore {
	return &memProgressStore{records: make(map[string]*ProgressRecord)}
}

func progressKey(userID int, examID uuid.UUID) string {
	return fmt.Sprintf("%d:%s", userID, examID)
}

func (s *memProgressStore) GetProgress(_ context.Context, userID int, examID uuid.UUID) (*ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[progressKey(userID, examID)]
	if !ok {
		return nil, nil
	}
	clone := *rec
	clone.Answers = rec.Answers.Clone()
	return &clone, nil
}

func (s *memProgressStore) SetProgress(_ context.Context, record *ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setN++
	if s.failSet {
		return errors.New("store unavailable")
	}
	clone := *record
	clone.Answers = record.Answers.Clone()
	s.records[progressKey(record.UserID, record.ExamID)] = &clone
	return nil
}

func (s *memProgressStore) DeleteProgress(_ context.Context, userID int, examID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delN++
	delete(s.records, progressKey(userID, examID))
	return nil
}

type memLedger struct {
	mu         sync.Mutex
	attempts   []AttemptRecord
	failAppend int // fail this many appends before succeeding
}

func newMemLedger() *memLedger {
	return &memLedger{}
}

func (l *memLedger) AppendAttempt(_ context.Context, record *AttemptRecord) (uuid.UUID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failAppend > 0 {
		l.failAppend--
		return uuid.Nil, errors.New("ledger unavailable")
	}
	for _, a := range l.attempts {
		if a.ID == record.ID {
			return a.ID, nil
		}
	}
	clone := *record
	clone.Answers = record.Answers.Clone()
	l.attempts = append(l.attempts, clone)
	return clone.ID, nil
}

func (l *memLedger) ListAttempts(_ context.Context, userID int, examID uuid.UUID) ([]AttemptRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []AttemptRecord
	for i := len(l.attempts) - 1; i >= 0; i-- {
		a := l.attempts[i]
		if a.UserID == userID && a.ExamID == examID {
			out = append(out, a)
		}
	}
	return out, nil
}

// mustQuestionSet builds an n-question set where question i has options
// a..d and correct key "a".
func mustQuestionSet(n int) *QuestionSet {
	questions := make([]Question, n)
	for i := range questions {
		questions[i] = Question{
			Content: fmt.Sprintf("question %d", i),
			Options: map[string]string{
				"a": "first", "b": "second", "c": "third", "d": "fourth",
			},
			CorrectKey: "a",
		}
	}
	qs, err := NewQuestionSet(uuid.New(), questions)
	if err != nil {
		panic(err)
	}
	return qs
}
