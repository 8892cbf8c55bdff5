package services

import (
	"math"
	"testing"

	"clinicportal/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBMI(t *testing.T) {
	assert.Equal(t, 22.86, CalculateBMI(70, 175))
	assert.Equal(t, 0.0, CalculateBMI(0, 0))
	assert.Equal(t, 0.0, CalculateBMI(70, 0))
	assert.Equal(t, 0.0, CalculateBMI(70, -10))
	assert.Equal(t, 0.0, CalculateBMI(math.NaN(), 175))
	assert.Equal(t, 0.0, CalculateBMI(70, math.Inf(1)))
	// weight=0 при валидном росте — не ошибка, просто нулевой BMI
	assert.Equal(t, 0.0, CalculateBMI(0, 175))
}

func profile(activity, diet string) models.HealthProfile {
	return models.HealthProfile{
		Age:            45,
		Weight:         70,
		Height:         175,
		ActivityLevel:  activity,
		DietPreference: diet,
	}
}

func TestGenerateAdvice_HighFeedback(t *testing.T) {
	// среднее 4.5 (оценки {4,5}) при Low activity
	adv := GenerateAdvice(profile(ActivityLow, DietVegetarian), 4.5)

	assert.Contains(t, adv.Exercise, "Aim for at least 30 minutes of walking per day")
	assert.Contains(t, adv.General, "You are doing well — continue following the current lifestyle plan")
	assert.NotContains(t, adv.General, "Focus on small, achievable goals to rebuild consistency")
}

func TestGenerateAdvice_MidFeedback(t *testing.T) {
	adv := GenerateAdvice(profile(ActivityLow, DietVegetarian), 3.5)

	assert.Contains(t, adv.Diet, "Introduce healthy food variety to prevent dietary fatigue")
	assert.Contains(t, adv.General, "Gradual lifestyle improvements can increase long-term adherence")
	assert.Contains(t, adv.Exercise, "Aim for at least 30 minutes of walking per day")
}

func TestGenerateAdvice_LowFeedback(t *testing.T) {
	adv := GenerateAdvice(profile(ActivityLow, DietNonVegetarian), 2.0)

	assert.Contains(t, adv.Diet, "Reduce sugar intake strictly and avoid processed foods")
	assert.Contains(t, adv.General, "Focus on small, achievable goals to rebuild consistency")
	assert.Contains(t, adv.Exercise, "Begin with 15–20 minutes of light walking daily")
	assert.Contains(t, adv.Diet, "Include lean protein sources such as fish or grilled chicken")
}

func TestGenerateAdvice_Baseline(t *testing.T) {
	adv := GenerateAdvice(profile(ActivityHigh, DietVegetarian), NeutralFeedback)

	assert.Contains(t, adv.Diet, "Follow a balanced diabetic-friendly diet with controlled carbohydrates")
	assert.Contains(t, adv.General, "Monitor blood glucose levels regularly")
	assert.Contains(t, adv.General, "Maintain adequate hydration")
	assert.Contains(t, adv.Exercise, "Maintain regular exercise but ensure adequate recovery")
	assert.Contains(t, adv.Diet, "Include lentils, beans, and leafy vegetables as protein sources")
	assert.Equal(t, 22.86, adv.BMI)
}

func TestRiskFlags(t *testing.T) {
	// оба флага сразу: высокий BMI + низкий фидбек
	risks := RiskFlags(31, 1.5)
	assert.Equal(t, []string{RiskHighBMI, RiskLowFeedback}, risks)
	assert.Equal(t, NarrativeElevated, RiskNarrative(risks))

	// пограничный BMI — мониторинг
	assert.Equal(t, []string{RiskModerateBMI}, RiskFlags(25, 3))
	assert.Equal(t, []string{RiskHighBMI}, RiskFlags(30, 3))

	// без флагов — stable
	risks = RiskFlags(22, 4)
	assert.Empty(t, risks)
	assert.Equal(t, NarrativeStable, RiskNarrative(risks))

	assert.Equal(t, []string{RiskLowFeedback}, RiskFlags(22, 2))
}
