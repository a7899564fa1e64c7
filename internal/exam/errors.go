package exam

import "errors"

// Load-time data errors. These abort session construction — a session is
// never built over a partial or malformed question set.
var (
	ErrExamNotFound     = errors.New("exam not found")
	ErrEmptyQuestionSet = errors.New("question set is empty")
	ErrBadQuestionData  = errors.New("malformed question data")
)

// Transition errors. The session state is unchanged when any of these is
// returned.
var (
	ErrNotActive       = errors.New("session is not in the active phase")
	ErrFeedbackPending = errors.New("answer feedback is showing, only advance is accepted")
	ErrInvalidOption   = errors.New("option key is not valid for this question")
	ErrAnswerLocked    = errors.New("question already has a locked answer")
	ErrNothingToSave   = errors.New("no answers recorded yet, nothing to pause")
	ErrAnswersRecorded = errors.New("answers already recorded, pause instead of exit")
	ErrSessionClosed   = errors.New("session is no longer active")
	ErrSubmitInFlight  = errors.New("submit already in progress")
)

// Persistence errors, wrapped around the underlying store error. A pause
// write failure is a warning (local state already moved on); a submit write
// failure keeps the session retryable in the Submitting phase.
var (
	ErrProgressWrite = errors.New("progress write failed")
	ErrSubmitFailed  = errors.New("attempt write failed")
)
