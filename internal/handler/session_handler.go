package handler

import (
	"errors"
	"net/http"

	"github.com/Kolass2004/PrepmyExam-sub000/internal/exam"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/middleware"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/model"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/response"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/service"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler exposes the exam session intents over REST.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) examID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// failSession maps session errors onto the API error taxonomy. Errors
// that carry a usable snapshot (failed pause, failed submit) attach it so
// the client can render the retry state.
func failSession(c *gin.Context, st exam.State, err error) {
	switch {
	case errors.Is(err, service.ErrNoActiveSession):
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
	case errors.Is(err, exam.ErrExamNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
	case errors.Is(err, exam.ErrInvalidOption):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidOption)
	case errors.Is(err, exam.ErrAnswerLocked):
		response.Fail(c, http.StatusConflict, response.ErrAnswerLocked)
	case errors.Is(err, exam.ErrFeedbackPending):
		response.Fail(c, http.StatusConflict, response.ErrFeedbackPending)
	case errors.Is(err, exam.ErrNothingToSave):
		response.Fail(c, http.StatusConflict, response.ErrNothingToSave)
	case errors.Is(err, exam.ErrAnswersRecorded):
		response.Fail(c, http.StatusConflict, response.ErrAnswersRecorded)
	case errors.Is(err, exam.ErrNotActive), errors.Is(err, exam.ErrSessionClosed), errors.Is(err, exam.ErrSubmitInFlight):
		response.Fail(c, http.StatusConflict, response.ErrSessionClosed)
	case errors.Is(err, exam.ErrProgressWrite):
		response.FailWithData(c, http.StatusInternalServerError, response.ErrProgressWrite, gin.H{"session": st})
	case errors.Is(err, exam.ErrSubmitFailed):
		response.FailWithData(c, http.StatusInternalServerError, response.ErrSubmitFailed, gin.H{"session": st})
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// Start godoc
// POST /api/v1/sessions/:exam_id/start
// Starts (or resumes) a session for the exam.
func (h *SessionHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := h.examID(c)
	if !ok {
		return
	}

	st, err := h.sessionService.Start(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failSession(c, st, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": st})
}

// GetState godoc
// GET /api/v1/sessions/:exam_id
// Returns the current snapshot of a live session (page reload).
func (h *SessionHandler) GetState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := h.examID(c)
	if !ok {
		return
	}

	st, err := h.sessionService.State(claims.UserID, examID)
	if err != nil {
		failSession(c, st, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": st})
}

// SelectOption godoc
// POST /api/v1/sessions/:exam_id/select
// Locks an answer on the current question and reveals feedback.
func (h *SessionHandler) SelectOption(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := h.examID(c)
	if !ok {
		return
	}

	var req model.SelectOptionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	st, err := h.sessionService.SelectOption(claims.UserID, examID, req.Key)
	if err != nil {
		failSession(c, st, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": st})
}

// Advance godoc
// POST /api/v1/sessions/:exam_id/advance
// Moves to the next question, ending a feedback reveal early.
func (h *SessionHandler) Advance(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := h.examID(c)
	if !ok {
		return
	}

	st, err := h.sessionService.Advance(claims.UserID, examID)
	if err != nil {
		failSession(c, st, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": st})
}

// Skip godoc
// POST /api/v1/sessions/:exam_id/skip
// Moves forward without recording an answer.
func (h *SessionHandler) Skip(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := h.examID(c)
	if !ok {
		return
	}

	st, err := h.sessionService.Skip(claims.UserID, examID)
	if err != nil {
		failSession(c, st, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": st})
}

// Prev godoc
// POST /api/v1/sessions/:exam_id/prev
// Moves backward one question.
func (h *SessionHandler) Prev(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := h.examID(c)
	if !ok {
		return
	}

	st, err := h.sessionService.Prev(claims.UserID, examID)
	if err != nil {
		failSession(c, st, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": st})
}

// Pause godoc
// POST /api/v1/sessions/:exam_id/pause
// Saves progress and retires the session.
func (h *SessionHandler) Pause(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := h.examID(c)
	if !ok {
		return
	}

	st, err := h.sessionService.Pause(c.Request.Context(), claims.UserID, examID)
	if err != nil {
		failSession(c, st, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": st})
}

// Exit godoc
// POST /api/v1/sessions/:exam_id/exit
// Discards an untouched session without saving anything.
func (h *SessionHandler) Exit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := h.examID(c)
	if !ok {
		return
	}

	st, err := h.sessionService.Exit(claims.UserID, examID)
	if err != nil {
		failSession(c, st, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": st})
}

// Submit godoc
// POST /api/v1/sessions/:exam_id/submit
// Scores the attempt and writes it to the ledger. Safe to retry after a
// failed write.
func (h *SessionHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := h.examID(c)
	if !ok {
		return
	}

	st, err := h.sessionService.Submit(c.Request.Context(), claims.UserID, examID)
	if err != nil {
		failSession(c, st, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": st})
}

// ListAttempts godoc
// GET /api/v1/sessions/:exam_id/attempts
// Lists the user's completed attempts for the exam, newest first.
func (h *SessionHandler) ListAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, ok := h.examID(c)
	if !ok {
		return
	}

	attempts, err := h.sessionService.ListAttempts(c.Request.Context(), claims.UserID, examID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}
