package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clinicportal/internal/models"
	"clinicportal/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPatientService struct {
	calls    int
	profile  models.HealthProfile
	recErr   error
	feedback []int
	fbErr    error
}

func (s *stubPatientService) Recommend(ownerID int, p models.HealthProfile) (*services.Advice, error) {
	s.calls++
	s.profile = p
	if s.recErr != nil {
		return nil, s.recErr
	}
	adv := services.GenerateAdvice(p, services.NeutralFeedback)
	return &adv, nil
}

func (s *stubPatientService) SubmitFeedback(ownerID, score int) error {
	if s.fbErr != nil {
		return s.fbErr
	}
	s.feedback = append(s.feedback, score)
	return nil
}

func (s *stubPatientService) Charts(ownerID int) (*services.ChartData, error) {
	return &services.ChartData{BMI: []float64{22.86}, Diet: []string{}, Exercise: []string{}, General: []string{}}, nil
}

func patientRouter(stub *stubPatientService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPatientHandler(stub)
	r := gin.New()
	r.POST("/recommend", h.Recommend)
	r.POST("/feedback", h.Feedback)
	r.GET("/user-charts/:id", h.Charts)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecommend_ZeroMetricsGiveZeroBMI(t *testing.T) {
	// нулевой вес или рост — валидный вход с BMI-сентинелом 0, не 400
	tests := []struct {
		name string
		body string
	}{
		{"zero weight", `{"age":45,"weight":0,"height":175,"activity_level":"Low","diet_preference":"Vegetarian"}`},
		{"zero height", `{"age":45,"weight":70,"height":0,"activity_level":"Low","diet_preference":"Vegetarian"}`},
		{"weight omitted", `{"age":45,"height":175,"activity_level":"Low","diet_preference":"Vegetarian"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubPatientService{}
			w := postJSON(patientRouter(stub), "/recommend", tt.body)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, 1, stub.calls)
			assert.Contains(t, w.Body.String(), `"bmi":0`)
		})
	}
}

func TestRecommend_PassesProfileThrough(t *testing.T) {
	stub := &stubPatientService{}
	w := postJSON(patientRouter(stub), "/recommend",
		`{"age":45,"weight":70,"height":175,"activity_level":"Low","diet_preference":"Vegetarian"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.HealthProfile{
		Age:            45,
		Weight:         70,
		Height:         175,
		ActivityLevel:  "Low",
		DietPreference: "Vegetarian",
	}, stub.profile)
	assert.Contains(t, w.Body.String(), `"bmi":22.86`)
}

func TestRecommend_MissingChoicesRejectedBeforeService(t *testing.T) {
	stub := &stubPatientService{}
	w := postJSON(patientRouter(stub), "/recommend", `{"age":45,"weight":70,"height":175}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, stub.calls)
}

func TestRecommend_ServiceValidationIs400(t *testing.T) {
	stub := &stubPatientService{recErr: fmt.Errorf("%w: invalid age", services.ErrValidation)}
	w := postJSON(patientRouter(stub), "/recommend",
		`{"age":0,"weight":70,"height":175,"activity_level":"Low","diet_preference":"Vegetarian"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedback(t *testing.T) {
	stub := &stubPatientService{}
	r := patientRouter(stub)

	w := postJSON(r, "/feedback", `{"score":4}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{4}, stub.feedback)

	w = postJSON(r, "/feedback", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCharts_OtherPatientForbidden(t *testing.T) {
	// анонимная сессия в контексте имеет IdentityID 0: чужой id — 403, свой — 200
	r := patientRouter(&stubPatientService{})

	req := httptest.NewRequest(http.MethodGet, "/user-charts/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/user-charts/0", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "22.86")
}
