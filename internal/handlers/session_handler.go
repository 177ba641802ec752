package handlers

import (
	"context"
	"errors"
	"net/http"

	"assessment-service/internal/models"
	"assessment-service/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	Service *service.SessionService
}

func NewSessionHandler(s *service.SessionService) *SessionHandler {
	return &SessionHandler{Service: s}
}

// CreateSession starts a new assessment. Generation runs asynchronously; the
// response carries the id the client polls.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req struct {
		Skills     []string `json:"skills"`
		Interests  []string `json:"interests"`
		Degree     string   `json:"degree"`
		CareerGoal string   `json:"career_goal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}

	profile := models.UserProfile{
		Skills:     req.Skills,
		Interests:  req.Interests,
		Degree:     req.Degree,
		CareerGoal: req.CareerGoal,
	}
	session, err := h.Service.CreateSession(context.Background(), userID, profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create session",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": session.ID,
		"status":     session.Status,
		"message":    "Session created, question generation in progress",
	})
}

// GetSession returns the current status and whatever questions are available.
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := c.Param("id")
	session, err := h.Service.GetSession(context.Background(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSessionStatus returns readiness information without the question bodies.
func (h *SessionHandler) GetSessionStatus(c *gin.Context) {
	id := c.Param("id")
	session, err := h.Service.GetSession(context.Background(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":    session.ID,
		"status":        session.Status,
		"section_ready": session.SectionReady,
		"question_counts": gin.H{
			"aptitude":   len(session.QuestionsForSection(models.SectionAptitude)),
			"behavioral": len(session.QuestionsForSection(models.SectionBehavioral)),
			"domain":     len(session.QuestionsForSection(models.SectionDomain)),
		},
	})
}

// SubmitAnswers completes the session, storing answers and the submission-time
// counters as-is.
func (h *SessionHandler) SubmitAnswers(c *gin.Context) {
	var req struct {
		Answers []models.Answer `json:"answers" binding:"required"`
		Results struct {
			TotalQuestions *int `json:"total_questions" binding:"required"`
			Attempted      *int `json:"attempted" binding:"required"`
			Correct        *int `json:"correct" binding:"required"`
			Wrong          *int `json:"wrong" binding:"required"`
		} `json:"results" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid submission format",
			"details": err.Error(),
		})
		return
	}

	results := &models.TestResults{
		TotalQuestions: *req.Results.TotalQuestions,
		Attempted:      *req.Results.Attempted,
		Correct:        *req.Results.Correct,
		Wrong:          *req.Results.Wrong,
	}
	err := h.Service.SubmitAnswers(context.Background(), c.Param("id"), req.Answers, results)
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, service.ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, gin.H{"error": "Session already completed"})
	case errors.Is(err, service.ErrMissingResults), errors.Is(err, service.ErrDuplicateAnswer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{
			"session_id": c.Param("id"),
			"status":     models.StatusCompleted,
			"message":    "Answers submitted",
		})
	}
}
