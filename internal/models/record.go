package models

import "time"

// Recommendation — append-only запись истории рекомендаций пациента.
// Списки советов хранятся как text[] (никаких comma-joined строк).
type Recommendation struct {
	ID        int       `json:"id"`
	OwnerID   int       `json:"user_id"`
	BMI       float64   `json:"bmi"`
	Diet      []string  `json:"diet"`
	Exercise  []string  `json:"exercise"`
	General   []string  `json:"general"`
	CreatedAt time.Time `json:"created_at"`
}

// HealthProfile — последние введённые пациентом метрики.
type HealthProfile struct {
	Age            int     `json:"age"`
	Weight         float64 `json:"weight"`
	Height         float64 `json:"height"`
	ActivityLevel  string  `json:"activity_level"`  // Low | High
	DietPreference string  `json:"diet_preference"` // Vegetarian | Non-Vegetarian
}

// PatientSubmission — строка обзора для врача: последняя рекомендация + среднее
// по фидбеку владельца.
type PatientSubmission struct {
	Name     string   `json:"name"`
	BMI      float64  `json:"bmi"`
	Diet     []string `json:"diet"`
	Exercise []string `json:"exercise"`
	General  []string `json:"general"`
	Feedback float64  `json:"feedback"`
}
