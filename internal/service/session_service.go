package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Kolass2004/PrepmyExam-sub000/internal/config"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/exam"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrNoActiveSession is returned when an intent arrives for a (user, exam)
// pair with no live in-memory session.
var ErrNoActiveSession = errors.New("no active session for this exam")

// SessionService owns the live session controllers, one per (user, exam)
// pair. Terminal transitions (pause, exit, completed submit) evict the
// controller; starting over an existing pair tears the old one down —
// spec'd last-write-wins is the only arbitration between concurrent tabs.
type SessionService struct {
	mu   sync.Mutex
	live map[string]*exam.Controller

	provider    exam.QuestionSetProvider
	progress    exam.ProgressStore
	ledger      exam.AttemptLedger
	rdb         *redis.Client
	revealDelay time.Duration
	log         zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	provider exam.QuestionSetProvider,
	progress exam.ProgressStore,
	ledger exam.AttemptLedger,
	rdb *redis.Client,
	revealDelay time.Duration,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		live:        make(map[string]*exam.Controller),
		provider:    provider,
		progress:    progress,
		ledger:      ledger,
		rdb:         rdb,
		revealDelay: revealDelay,
		log:         log.With().Str("component", "session_service").Logger(),
	}
}

func sessionKey(userID int, examID uuid.UUID) string {
	return fmt.Sprintf("%d:%s", userID, examID)
}

// Start constructs a session for (userID, examID), resuming from saved
// progress when it exists. An already-live controller for the pair is
// closed and replaced.
func (s *SessionService) Start(ctx context.Context, examID uuid.UUID, userID int) (exam.State, error) {
	ctrl, err := exam.StartSession(ctx, s.provider, s.progress, s.ledger, examID, userID, s.revealDelay, s.log)
	if err != nil {
		return exam.State{}, err
	}

	key := sessionKey(userID, examID)

	s.mu.Lock()
	if old, ok := s.live[key]; ok {
		old.Close()
	}
	s.live[key] = ctrl
	s.mu.Unlock()

	s.log.Info().Str("exam_id", examID.String()).Int("user_id", userID).Msg("Session started")
	return ctrl.State(), nil
}

// controller looks up the live controller for the pair.
func (s *SessionService) controller(userID int, examID uuid.UUID) (*exam.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.live[sessionKey(userID, examID)]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return ctrl, nil
}

// evict removes the controller for the pair without closing it (the caller
// already drove it to a terminal phase).
func (s *SessionService) evict(userID int, examID uuid.UUID) {
	s.mu.Lock()
	delete(s.live, sessionKey(userID, examID))
	s.mu.Unlock()
}

// State returns the current snapshot (page reload).
func (s *SessionService) State(userID int, examID uuid.UUID) (exam.State, error) {
	ctrl, err := s.controller(userID, examID)
	if err != nil {
		return exam.State{}, err
	}
	return ctrl.State(), nil
}

// SelectOption locks an answer on the current question.
func (s *SessionService) SelectOption(userID int, examID uuid.UUID, key string) (exam.State, error) {
	ctrl, err := s.controller(userID, examID)
	if err != nil {
		return exam.State{}, err
	}
	return ctrl.SelectOption(key)
}

// Advance moves to the next question (ends a feedback reveal early).
func (s *SessionService) Advance(userID int, examID uuid.UUID) (exam.State, error) {
	ctrl, err := s.controller(userID, examID)
	if err != nil {
		return exam.State{}, err
	}
	return ctrl.Advance()
}

// Skip navigates forward without answering.
func (s *SessionService) Skip(userID int, examID uuid.UUID) (exam.State, error) {
	ctrl, err := s.controller(userID, examID)
	if err != nil {
		return exam.State{}, err
	}
	return ctrl.Skip()
}

// Prev navigates backward.
func (s *SessionService) Prev(userID int, examID uuid.UUID) (exam.State, error) {
	ctrl, err := s.controller(userID, examID)
	if err != nil {
		return exam.State{}, err
	}
	return ctrl.Prev()
}

// Pause snapshots progress and retires the session. The controller is
// evicted even when the snapshot write failed — the local transition
// already happened and the warning is on the returned state.
func (s *SessionService) Pause(ctx context.Context, userID int, examID uuid.UUID) (exam.State, error) {
	ctrl, err := s.controller(userID, examID)
	if err != nil {
		return exam.State{}, err
	}

	st, err := ctrl.Pause(ctx)
	if err == nil || errors.Is(err, exam.ErrProgressWrite) {
		s.evict(userID, examID)
	}
	return st, err
}

// Exit discards an untouched session.
func (s *SessionService) Exit(userID int, examID uuid.UUID) (exam.State, error) {
	ctrl, err := s.controller(userID, examID)
	if err != nil {
		return exam.State{}, err
	}

	st, err := ctrl.Exit()
	if err == nil {
		s.evict(userID, examID)
	}
	return st, err
}

// Submit scores and ledgers the attempt. On success the controller is
// evicted and the score is queued for the stats worker; on a failed write
// the controller stays live in Submitting so the user can retry.
func (s *SessionService) Submit(ctx context.Context, userID int, examID uuid.UUID) (exam.State, error) {
	ctrl, err := s.controller(userID, examID)
	if err != nil {
		return exam.State{}, err
	}

	st, err := ctrl.Submit(ctx)
	if err != nil {
		return st, err
	}

	s.evict(userID, examID)
	s.enqueueStats(ctx, examID, st)
	return st, nil
}

// ListAttempts returns the user's ledgered attempts for an exam.
func (s *SessionService) ListAttempts(ctx context.Context, userID int, examID uuid.UUID) ([]exam.AttemptRecord, error) {
	return s.ledger.ListAttempts(ctx, userID, examID)
}

// CloseAll tears down every live controller (server shutdown). Unsaved
// sessions are simply discarded; their users resume from the last pause.
func (s *SessionService) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, ctrl := range s.live {
		ctrl.Close()
		delete(s.live, key)
	}
}

type statsPayload struct {
	ExamID string  `json:"exam_id"`
	Score  float64 `json:"score"`
}

// enqueueStats pushes the completed score onto the stats queue. Aggregates
// are eventually consistent; a failed enqueue only delays the exam's
// averages, so it is logged and dropped.
func (s *SessionService) enqueueStats(ctx context.Context, examID uuid.UUID, st exam.State) {
	if st.Result == nil {
		return
	}
	payload, _ := json.Marshal(statsPayload{ExamID: examID.String(), Score: st.Result.Score})
	if err := s.rdb.RPush(ctx, config.WorkerKey.ExamStatsQueue, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Stats enqueue failed")
	}
}
