package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinicportal/internal/models"
	"clinicportal/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessionRepo struct {
	sessions map[string]*models.Session
	touched  int
	deleted  []string
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: map[string]*models.Session{}}
}

func (s *stubSessionRepo) Create(ctx context.Context, sess *models.Session) error {
	s.sessions[sess.ID] = sess
	return nil
}

func (s *stubSessionRepo) Get(ctx context.Context, id string) (*models.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (s *stubSessionRepo) Touch(ctx context.Context, sess *models.Session) error {
	s.touched++
	sess.LastActivity = time.Now()
	return nil
}

func (s *stubSessionRepo) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	delete(s.sessions, id)
	return nil
}

func (s *stubSessionRepo) FailLogin(ctx context.Context, role models.Role) (*models.LockState, error) {
	return &models.LockState{Role: role}, nil
}

func (s *stubSessionRepo) LoginLocked(ctx context.Context, role models.Role) (*models.LockState, error) {
	return nil, nil
}

func (s *stubSessionRepo) ResetFailures(ctx context.Context, role models.Role) error { return nil }

func setupRouter(repo repositories.SessionRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionMiddleware(repo))
	r.GET("/whoami", func(c *gin.Context) {
		sess := CurrentSession(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": sess.Authenticated, "name": sess.DisplayName})
	})
	r.GET("/patient/only", RequireRole(models.RolePatient), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func doGet(r *gin.Engine, path, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionID})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionMiddleware_AnonymousWithoutCookie(t *testing.T) {
	repo := newStubSessionRepo()
	r := setupRouter(repo)

	w := doGet(r, "/whoami", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
	assert.Zero(t, repo.touched)
}

func TestSessionMiddleware_LoadsAndTouchesLiveSession(t *testing.T) {
	repo := newStubSessionRepo()
	repo.sessions["abc"] = &models.Session{
		ID:            "abc",
		Role:          models.RolePatient,
		DisplayName:   "Jane Doe",
		Authenticated: true,
		LastActivity:  time.Now().Add(-time.Minute),
	}
	r := setupRouter(repo)

	w := doGet(r, "/whoami", "abc")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
	assert.Contains(t, w.Body.String(), "Jane Doe")
	assert.Equal(t, 1, repo.touched)
}

func TestSessionMiddleware_DropsIdleSession(t *testing.T) {
	repo := newStubSessionRepo()
	repo.sessions["old"] = &models.Session{
		ID:            "old",
		Role:          models.RolePatient,
		Authenticated: true,
		LastActivity:  time.Now().Add(-repositories.SessionTTL - time.Minute),
	}
	r := setupRouter(repo)

	w := doGet(r, "/whoami", "old")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
	assert.Equal(t, []string{"old"}, repo.deleted)
}

func TestSessionMiddleware_UnknownCookieIsAnonymous(t *testing.T) {
	repo := newStubSessionRepo()
	r := setupRouter(repo)

	w := doGet(r, "/whoami", "no-such-session")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestRequireRole(t *testing.T) {
	repo := newStubSessionRepo()
	repo.sessions["patient"] = &models.Session{
		ID: "patient", Role: models.RolePatient, Authenticated: true, LastActivity: time.Now(),
	}
	repo.sessions["clinician"] = &models.Session{
		ID: "clinician", Role: models.RoleClinician, Authenticated: true, LastActivity: time.Now(),
	}
	r := setupRouter(repo)

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/patient/only", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/patient/only", "clinician").Code)
	assert.Equal(t, http.StatusNoContent, doGet(r, "/patient/only", "patient").Code)
}
