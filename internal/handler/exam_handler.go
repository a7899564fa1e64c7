package handler

import (
	"errors"
	"net/http"

	"github.com/Kolass2004/PrepmyExam-sub000/internal/exam"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/middleware"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/response"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExamHandler handles the exam catalog endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// ListExams godoc
// GET /api/v1/exams
// Lists published exams with aggregate stats and the user's own overlays
// (saved progress flag, best score).
func (h *ExamHandler) ListExams(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	exams, err := h.examService.ListForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// GetPaper godoc
// GET /api/v1/exams/:exam_id/paper
// Returns the exam's question paper with answer keys stripped.
func (h *ExamHandler) GetPaper(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	payload, err := h.examService.GetPayload(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, exam.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, payload)
}
