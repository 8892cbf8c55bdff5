package services

import (
	"math"

	"clinicportal/internal/models"
)

const (
	ActivityLow  = "Low"
	ActivityHigh = "High"

	DietVegetarian    = "Vegetarian"
	DietNonVegetarian = "Non-Vegetarian"
)

// NeutralFeedback — дефолт среднего фидбека, пока оценок нет.
const NeutralFeedback = 3.0

// Advice — результат движка рекомендаций.
type Advice struct {
	BMI      float64  `json:"bmi"`
	Diet     []string `json:"diet"`
	Exercise []string `json:"exercise"`
	General  []string `json:"general"`
}

// CalculateBMI возвращает вес/(рост_м)^2 с округлением до 2 знаков.
// Неположительный рост или не-числовой вход дают 0 — это сентинел, не ошибка.
func CalculateBMI(weight, height float64) float64 {
	if math.IsNaN(weight) || math.IsInf(weight, 0) ||
		math.IsNaN(height) || math.IsInf(height, 0) {
		return 0
	}
	if height <= 0 {
		return 0
	}
	hm := height / 100
	return math.Round(weight/(hm*hm)*100) / 100
}

// GenerateAdvice — чистая функция от профиля и среднего фидбека.
// Пороги фидбека: >=4 — поощрение, [3,4) — разнообразие, <3 — строгий сахар.
func GenerateAdvice(p models.HealthProfile, avgFeedback float64) Advice {
	adv := Advice{
		BMI:      CalculateBMI(p.Weight, p.Height),
		Diet:     []string{},
		Exercise: []string{},
		General:  []string{},
	}

	adv.Diet = append(adv.Diet, "Follow a balanced diabetic-friendly diet with controlled carbohydrates")
	adv.General = append(adv.General,
		"Monitor blood glucose levels regularly",
		"Maintain adequate hydration",
	)

	switch {
	case avgFeedback >= 4:
		adv.General = append(adv.General, "You are doing well — continue following the current lifestyle plan")
	case avgFeedback >= 3:
		adv.Diet = append(adv.Diet, "Introduce healthy food variety to prevent dietary fatigue")
		adv.General = append(adv.General, "Gradual lifestyle improvements can increase long-term adherence")
	default:
		adv.Diet = append(adv.Diet, "Reduce sugar intake strictly and avoid processed foods")
		adv.General = append(adv.General, "Focus on small, achievable goals to rebuild consistency")
	}

	switch p.ActivityLevel {
	case ActivityLow:
		if avgFeedback >= 3 {
			adv.Exercise = append(adv.Exercise, "Aim for at least 30 minutes of walking per day")
		} else {
			adv.Exercise = append(adv.Exercise, "Begin with 15–20 minutes of light walking daily")
		}
	case ActivityHigh:
		adv.Exercise = append(adv.Exercise, "Maintain regular exercise but ensure adequate recovery")
	default:
		adv.Exercise = append(adv.Exercise, "Continue moderate exercise, ensure consistency and rest")
	}

	if p.DietPreference == DietNonVegetarian {
		adv.Diet = append(adv.Diet, "Include lean protein sources such as fish or grilled chicken")
	} else {
		adv.Diet = append(adv.Diet, "Include lentils, beans, and leafy vegetables as protein sources")
	}

	return adv
}

// Risk-флаги независимы и аддитивны: может не быть ни одного, может быть
// несколько сразу.
const (
	RiskHighBMI     = "High BMI (High Risk)"
	RiskModerateBMI = "Needs Monitoring (Moderate Risk)"
	RiskLowFeedback = "Low Feedback"

	NarrativeElevated = "Patient shows elevated risk indicators. Close monitoring advised."
	NarrativeStable   = "Patient is stable with acceptable indicators. Continue current plan."
)

func RiskFlags(bmi, avgFeedback float64) []string {
	var risks []string
	if bmi >= 30 {
		risks = append(risks, RiskHighBMI)
	} else if bmi >= 25 {
		risks = append(risks, RiskModerateBMI)
	}
	if avgFeedback <= 2 {
		risks = append(risks, RiskLowFeedback)
	}
	return risks
}

func RiskNarrative(risks []string) string {
	if len(risks) > 0 {
		return NarrativeElevated
	}
	return NarrativeStable
}
