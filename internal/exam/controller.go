package exam

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultRevealDelay is how long the Feedback phase shows correctness before
// the controller auto-advances to the next question.
const DefaultRevealDelay = 2 * time.Second

// State is the user-visible snapshot returned by every intent. Correct is
// set only on the response to the select that just locked an answer, Result
// only once the attempt is completed, and Warning carries non-fatal
// persistence problems (a pause write that failed).
type State struct {
	ExamID        uuid.UUID `json:"exam_id"`
	Phase         Phase     `json:"phase"`
	CurrentIndex  int       `json:"current_index"`
	TotalCount    int       `json:"total_count"`
	AnswerCount   int       `json:"answer_count"`
	ReadyToSubmit bool      `json:"ready_to_submit"`
	Answers       AnswerMap `json:"answers"`
	Correct       *bool     `json:"correct,omitempty"`
	Result        *Result   `json:"result,omitempty"`
	AttemptID     uuid.UUID `json:"attempt_id,omitempty"`
	Warning       string    `json:"warning,omitempty"`
}

// Controller owns one Session together with its persistence collaborators.
// All intents funnel through a single mutex, which realizes the one-event-
// at-a-time scheduling model: no two transitions ever run concurrently
// within one session instance, even when a REST call and the feedback timer
// race.
type Controller struct {
	mu sync.Mutex

	session  *Session
	progress ProgressStore
	ledger   AttemptLedger
	log      zerolog.Logger

	revealDelay   time.Duration
	feedbackTimer *time.Timer
	closed        bool

	// Submit is scored exactly once. The memoized result and the client-
	// generated attempt ID survive failed ledger writes so a retry re-sends
	// the identical record instead of re-scoring or duplicating.
	result    *Result
	attemptID uuid.UUID
}

// StartSession loads the question set and any saved progress, and returns a
// controller around the freshly seeded session. Load errors abort
// construction; no partial session is ever returned.
func StartSession(
	ctx context.Context,
	provider QuestionSetProvider,
	progress ProgressStore,
	ledger AttemptLedger,
	examID uuid.UUID,
	userID int,
	revealDelay time.Duration,
	log zerolog.Logger,
) (*Controller, error) {
	qs, err := provider.LoadQuestions(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	saved, err := progress.GetProgress(ctx, userID, examID)
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}

	if revealDelay <= 0 {
		revealDelay = DefaultRevealDelay
	}

	return &Controller{
		session:     NewSession(qs, userID, saved),
		progress:    progress,
		ledger:      ledger,
		revealDelay: revealDelay,
		log: log.With().
			Str("component", "session_controller").
			Str("exam_id", examID.String()).
			Int("user_id", userID).
			Logger(),
	}, nil
}

// State returns the current snapshot without driving a transition. Used for
// page reloads.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// SelectOption locks an answer on the current question and arms the
// feedback auto-advance timer.
func (c *Controller) SelectOption(key string) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.snapshot(), ErrSessionClosed
	}

	correct, err := c.session.Select(key)
	if err != nil {
		return c.snapshot(), err
	}

	c.armFeedbackTimer()

	st := c.snapshot()
	st.Correct = &correct
	return st, nil
}

// Advance ends the Feedback reveal early, or navigates forward from Active.
func (c *Controller) Advance() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.snapshot(), ErrSessionClosed
	}

	c.stopFeedbackTimer()
	if err := c.session.Advance(); err != nil {
		return c.snapshot(), err
	}
	return c.snapshot(), nil
}

// Skip navigates forward without recording an answer.
func (c *Controller) Skip() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.snapshot(), ErrSessionClosed
	}
	if err := c.session.Skip(); err != nil {
		return c.snapshot(), err
	}
	return c.snapshot(), nil
}

// Prev navigates backward.
func (c *Controller) Prev() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.snapshot(), ErrSessionClosed
	}
	if err := c.session.Prev(); err != nil {
		return c.snapshot(), err
	}
	return c.snapshot(), nil
}

// Pause snapshots progress and retires the session. The local transition
// happens first: a failed store write does not block navigating away, it is
// surfaced as a warning on the returned state together with
// ErrProgressWrite, and the caller decides how loudly to alert the user.
func (c *Controller) Pause(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.snapshot(), ErrSessionClosed
	}

	record, err := c.session.Pause()
	if err != nil {
		return c.snapshot(), err
	}

	c.teardown()

	if err := c.progress.SetProgress(ctx, record); err != nil {
		c.log.Warn().Err(err).Msg("Pause snapshot write failed, progress is in memory only")
		st := c.snapshot()
		st.Warning = "progress could not be saved"
		return st, fmt.Errorf("%w: %v", ErrProgressWrite, err)
	}

	c.log.Info().Int("answers", len(record.Answers)).Int("current_index", record.CurrentIndex).Msg("Session paused")
	return c.snapshot(), nil
}

// Exit discards an untouched session without persistence.
func (c *Controller) Exit() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.snapshot(), ErrSessionClosed
	}

	if err := c.session.Exit(); err != nil {
		return c.snapshot(), err
	}
	c.teardown()
	return c.snapshot(), nil
}

// Submit scores the attempt and writes it to the ledger. Guarantees:
//
//   - Scoring runs exactly once; retries reuse the memoized result.
//   - The attempt ID is generated client-side on the first call and reused
//     on retries, so the ledger's append-by-ID idempotency absorbs
//     duplicates.
//   - A failed ledger write leaves the session in Submitting; the caller
//     can invoke Submit again to retry.
//   - A duplicate call while Completed is a no-op returning the final state.
func (c *Controller) Submit(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.session.Phase() {
	case PhaseCompleted:
		// Duplicate click after completion.
		return c.snapshot(), nil
	case PhaseSubmitting:
		// Retry of a failed write. Fall through with the memoized result.
	default:
		if c.closed {
			return c.snapshot(), ErrSessionClosed
		}
		if err := c.session.BeginSubmit(); err != nil {
			return c.snapshot(), err
		}
		c.stopFeedbackTimer()
	}

	if c.result == nil {
		r := Score(c.session.Questions(), c.session.Answers())
		c.result = &r
		c.attemptID = uuid.New()
	}

	record := &AttemptRecord{
		ID:           c.attemptID,
		ExamID:       c.session.ExamID(),
		UserID:       c.session.UserID(),
		Answers:      c.session.Answers(),
		Score:        c.result.Score,
		CorrectCount: c.result.CorrectCount,
		SkippedCount: c.result.SkippedCount,
		CompletedAt:  time.Now(),
		Status:       AttemptStatusCompleted,
	}

	if _, err := c.ledger.AppendAttempt(ctx, record); err != nil {
		c.log.Error().Err(err).Str("attempt_id", c.attemptID.String()).Msg("Attempt write failed, staying in SUBMITTING")
		return c.snapshot(), fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	// The attempt is ledgered; a leftover progress record would only shadow
	// it, so removal is best-effort and does not block completion.
	if err := c.progress.DeleteProgress(ctx, c.session.UserID(), c.session.ExamID()); err != nil {
		c.log.Warn().Err(err).Msg("Progress cleanup after submit failed")
	}

	c.session.finishSubmit()
	c.teardown()

	c.log.Info().
		Str("attempt_id", c.attemptID.String()).
		Float64("score", c.result.Score).
		Int("correct", c.result.CorrectCount).
		Int("skipped", c.result.SkippedCount).
		Msg("Attempt submitted")

	return c.snapshot(), nil
}

// Close tears the controller down without a transition (navigation away,
// server shutdown). The feedback timer is cancelled so it can never fire
// into a discarded session.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardown()
}

// Result returns the memoized scoring result, or nil before submit.
func (c *Controller) Result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// armFeedbackTimer schedules the delayed Feedback → Active transition.
// Caller holds c.mu.
func (c *Controller) armFeedbackTimer() {
	c.stopFeedbackTimer()
	c.feedbackTimer = time.AfterFunc(c.revealDelay, c.autoAdvance)
}

// stopFeedbackTimer cancels any pending auto-advance. Caller holds c.mu.
func (c *Controller) stopFeedbackTimer() {
	if c.feedbackTimer != nil {
		c.feedbackTimer.Stop()
		c.feedbackTimer = nil
	}
}

// autoAdvance fires from the timer goroutine. It re-checks the phase under
// the lock: the session may have advanced, paused or submitted in the
// meantime, and a torn-down controller must not be mutated.
func (c *Controller) autoAdvance() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.session.Phase() != PhaseFeedback {
		return
	}
	if err := c.session.Advance(); err != nil && !errors.Is(err, ErrSessionClosed) {
		c.log.Warn().Err(err).Msg("Feedback auto-advance rejected")
	}
}

// teardown marks the controller closed and releases the timer. Caller
// holds c.mu.
func (c *Controller) teardown() {
	c.stopFeedbackTimer()
	c.closed = true
}

func (c *Controller) snapshot() State {
	st := State{
		ExamID:        c.session.ExamID(),
		Phase:         c.session.Phase(),
		CurrentIndex:  c.session.CurrentIndex(),
		TotalCount:    c.session.Questions().Len(),
		AnswerCount:   c.session.AnswerCount(),
		ReadyToSubmit: c.session.ReadyToSubmit(),
		Answers:       c.session.Answers(),
	}
	if c.session.Phase() == PhaseCompleted && c.result != nil {
		st.Result = c.result
		st.AttemptID = c.attemptID
	}
	return st
}
