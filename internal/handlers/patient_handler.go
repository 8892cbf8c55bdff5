package handlers

import (
	"net/http"
	"strconv"

	"clinicportal/internal/middleware"
	"clinicportal/internal/models"
	"clinicportal/internal/services"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	patients services.PatientService
}

func NewPatientHandler(patients services.PatientService) *PatientHandler {
	return &PatientHandler{patients: patients}
}

// Числовые поля без binding:"required": ноль — легитимный вход (weight=0 или
// height=0 дают BMI 0), а required отбрасывает нулевые значения ещё на биндинге.
// Возраст проверяет сервис.
type recommendRequest struct {
	Age            int     `json:"age"`
	Weight         float64 `json:"weight"`
	Height         float64 `json:"height"`
	ActivityLevel  string  `json:"activity_level" binding:"required"`
	DietPreference string  `json:"diet_preference" binding:"required"`
}

// @Summary      Рекомендации по метрикам
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /recommend [post]
func (h *PatientHandler) Recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	sess := middleware.CurrentSession(c)

	adv, err := h.patients.Recommend(sess.IdentityID, models.HealthProfile{
		Age:            req.Age,
		Weight:         req.Weight,
		Height:         req.Height,
		ActivityLevel:  req.ActivityLevel,
		DietPreference: req.DietPreference,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  sess.IdentityID,
		"bmi":      adv.BMI,
		"diet":     adv.Diet,
		"exercise": adv.Exercise,
		"general":  adv.General,
	})
}

type feedbackRequest struct {
	Score int `json:"score" binding:"required"`
}

func (h *PatientHandler) Feedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feedback"})
		return
	}
	sess := middleware.CurrentSession(c)
	if err := h.patients.SubmitFeedback(sess.IdentityID, req.Score); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback saved"})
}

// Charts отдаёт историю только самому владельцу.
func (h *PatientHandler) Charts(c *gin.Context) {
	requested, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient id"})
		return
	}
	sess := middleware.CurrentSession(c)
	if sess.IdentityID != requested {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	data, err := h.patients.Charts(requested)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
