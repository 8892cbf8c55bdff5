package handlers

import (
	"errors"
	"log"
	"net/http"

	"clinicportal/internal/middleware"
	"clinicportal/internal/models"
	"clinicportal/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError мапит таксономию сервисов в HTTP. Наружу уходят только общие
// формулировки: "имя не найдено" и "код не подошёл" неразличимы.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter full name + 6-digit code"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login failed"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Email verification required"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "This code or email is already used. Choose another one."})
	case errors.Is(err, services.ErrTooManyAttempts):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts, try again later"})
	case errors.Is(err, services.ErrTokenExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Verification link expired, please request a new one"})
	case errors.Is(err, services.ErrTokenInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification link"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		log.Printf("[http] internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// setSessionCookie привязывает клиент к серверной сессии.
func setSessionCookie(c *gin.Context, sess *models.Session) {
	if sess.ID == "" {
		return
	}
	c.SetCookie(middleware.SessionCookie, sess.ID, 0, "/", "", false, true)
}

// idKeyFor — роль-специфичный ключ идентификатора в JSON-ответах.
func idKeyFor(role models.Role) string {
	if role == models.RoleClinician {
		return "clinician_id"
	}
	return "user_id"
}
