package handlers

import (
	"net/http"
	"strings"

	"clinicportal/internal/middleware"
	"clinicportal/internal/models"
	"clinicportal/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth services.AuthService
}

func NewAuthHandler(auth services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Title     string `json:"title"`
	FirstName string `json:"first_name"`
	Surname   string `json:"surname"`
	Email     string `json:"email" binding:"required"`
}

type credentialsRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// @Summary      Начало регистрации
// @Description  Привязывает identity к email и отправляет ссылку подтверждения
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /{role}/register [post]
func (h *AuthHandler) StartRegistration(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name and email are required"})
			return
		}
		if err := h.auth.StartRegistration(c.Request.Context(), role,
			req.Title, req.FirstName, req.Surname, req.Email); err != nil {
			respondError(c, err)
			return
		}
		// одинаковый ответ вне зависимости от того, существовал ли адрес
		c.JSON(http.StatusOK, gin.H{"message": "Verification email sent. Check your inbox."})
	}
}

// Verify — активация ссылки из письма. Обычный GET без ключей: повторный клик
// в окне действия просто выдаёт свежую pre-authorization.
func (h *AuthHandler) Verify(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification link"})
			return
		}
		sess := middleware.CurrentSession(c)
		if err := h.auth.RedeemVerification(c.Request.Context(), sess, role, token); err != nil {
			respondError(c, err)
			return
		}
		setSessionCookie(c, sess)
		c.JSON(http.StatusOK, gin.H{"message": "Email verified. You can now enter your name and code."})
	}
}

// CompleteRegistration — шаг set-code под действующей pre-authorization.
func (h *AuthHandler) CompleteRegistration(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter full name + 6-digit code"})
			return
		}
		sess := middleware.CurrentSession(c)
		if err := h.auth.CompleteRegistration(c.Request.Context(), sess, role, req.Name, req.Code); err != nil {
			respondError(c, err)
			return
		}
		setSessionCookie(c, sess)
		c.JSON(http.StatusOK, gin.H{
			"message":      "Registered & logged in",
			idKeyFor(role): sess.IdentityID,
			"name":         sess.DisplayName,
		})
	}
}

// @Summary      Вход в систему
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /{role}/login [post]
func (h *AuthHandler) Login(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login details"})
			return
		}
		sess := middleware.CurrentSession(c)
		if err := h.auth.Login(c.Request.Context(), sess, role, req.Name, req.Code); err != nil {
			respondError(c, err)
			return
		}
		setSessionCookie(c, sess)
		c.JSON(http.StatusOK, gin.H{
			"message":      "Login successful",
			idKeyFor(role): sess.IdentityID,
			"name":         sess.DisplayName,
		})
	}
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if err := h.auth.Logout(c.Request.Context(), sess); err != nil {
		respondError(c, err)
		return
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) Whoami(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	resp := gin.H{
		"role":         nil,
		"user_id":      nil,
		"clinician_id": nil,
		"name":         nil,
	}
	if sess.Authenticated {
		resp["role"] = sess.Role
		resp["name"] = sess.DisplayName
		resp[idKeyFor(sess.Role)] = sess.IdentityID
	}
	c.JSON(http.StatusOK, resp)
}
