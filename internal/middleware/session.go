package middleware

import (
	"net/http"
	"time"

	"clinicportal/internal/models"
	"clinicportal/internal/repositories"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "session_id"
	sessionCtxKey = "session"
)

// SessionMiddleware подгружает серверную сессию из Redis по cookie.
// Просроченная по неактивности сессия молча сбрасывается до любой другой
// обработки; живая — продлевается на каждом запросе.
func SessionMiddleware(sessions repositories.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := &models.Session{}

		if id, err := c.Cookie(SessionCookie); err == nil && id != "" {
			stored, err := sessions.Get(c.Request.Context(), id)
			if err == nil && stored != nil {
				if time.Since(stored.LastActivity) > repositories.SessionTTL {
					_ = sessions.Delete(c.Request.Context(), id)
				} else {
					sess = stored
					_ = sessions.Touch(c.Request.Context(), sess)
				}
			}
		}

		c.Set(sessionCtxKey, sess)
		c.Next()
	}
}

func CurrentSession(c *gin.Context) *models.Session {
	v, ok := c.Get(sessionCtxKey)
	if !ok {
		return &models.Session{}
	}
	sess, ok := v.(*models.Session)
	if !ok {
		return &models.Session{}
	}
	return sess
}

// RequireRole пускает дальше только аутентифицированную сессию нужной роли.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if !sess.Authenticated || sess.Role != role {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}
		c.Next()
	}
}
