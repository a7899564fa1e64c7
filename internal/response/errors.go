package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Exam session ──────────────────────────────────────────────────
	ErrExamNotFound     ErrCode = "EXAM_NOT_FOUND"
	ErrExamNotPublished ErrCode = "EXAM_NOT_PUBLISHED"
	ErrNoActiveSession  ErrCode = "NO_ACTIVE_SESSION"
	ErrInvalidOption    ErrCode = "INVALID_OPTION"
	ErrAnswerLocked     ErrCode = "ANSWER_LOCKED"
	ErrFeedbackPending  ErrCode = "FEEDBACK_PENDING"
	ErrNothingToSave    ErrCode = "NOTHING_TO_SAVE"
	ErrAnswersRecorded  ErrCode = "ANSWERS_RECORDED"
	ErrSessionClosed    ErrCode = "SESSION_CLOSED"
	ErrProgressWrite    ErrCode = "PROGRESS_SAVE_FAILED"
	ErrSubmitFailed     ErrCode = "SUBMIT_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrSessionActive:
		return "You are already logged in on another device."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Exam session ──────────────────────────────────────────────────
	case ErrExamNotFound:
		return "Exam not found."
	case ErrExamNotPublished:
		return "This exam has not been published."
	case ErrNoActiveSession:
		return "You have no active session for this exam."
	case ErrInvalidOption:
		return "That option does not belong to the current question."
	case ErrAnswerLocked:
		return "This question already has a locked answer."
	case ErrFeedbackPending:
		return "Answer feedback is showing. Continue to the next question first."
	case ErrNothingToSave:
		return "Nothing to save yet. Exit instead of pausing."
	case ErrAnswersRecorded:
		return "You already have answers recorded. Pause to keep your progress."
	case ErrSessionClosed:
		return "This exam session is no longer active."
	case ErrProgressWrite:
		return "Could not save your progress. It is kept in memory only."
	case ErrSubmitFailed:
		return "Could not submit your attempt. Please retry."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
