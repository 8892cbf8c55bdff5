package services

import (
	"fmt"
	"log"

	"clinicportal/internal/models"
	"clinicportal/internal/repositories"
)

// ChartData — собственная история пациента для графиков.
type ChartData struct {
	BMI      []float64 `json:"bmi"`
	Diet     []string  `json:"diet"`
	Exercise []string  `json:"exercise"`
	General  []string  `json:"general"`
}

type PatientService interface {
	// Recommend обновляет профиль, считает советы с учётом среднего фидбека
	// и дописывает запись в историю.
	Recommend(ownerID int, p models.HealthProfile) (*Advice, error)
	SubmitFeedback(ownerID, score int) error
	Charts(ownerID int) (*ChartData, error)
}

type patientService struct {
	records repositories.RecordRepository
}

func NewPatientService(records repositories.RecordRepository) PatientService {
	return &patientService{records: records}
}

func validateProfile(p models.HealthProfile) error {
	if p.ActivityLevel != ActivityLow && p.ActivityLevel != ActivityHigh {
		return fmt.Errorf("%w: invalid activity level", ErrValidation)
	}
	if p.DietPreference != DietVegetarian && p.DietPreference != DietNonVegetarian {
		return fmt.Errorf("%w: invalid diet preference", ErrValidation)
	}
	if p.Age <= 0 {
		return fmt.Errorf("%w: invalid age", ErrValidation)
	}
	return nil
}

func (s *patientService) Recommend(ownerID int, p models.HealthProfile) (*Advice, error) {
	if err := validateProfile(p); err != nil {
		return nil, err
	}

	if err := s.records.UpdateProfile(ownerID, p); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	avg, err := s.records.AverageFeedback(ownerID)
	if err != nil {
		return nil, fmt.Errorf("average feedback: %w", err)
	}

	adv := GenerateAdvice(p, avg)

	rec := &models.Recommendation{
		OwnerID:  ownerID,
		BMI:      adv.BMI,
		Diet:     adv.Diet,
		Exercise: adv.Exercise,
		General:  adv.General,
	}
	if err := s.records.SaveRecommendation(rec); err != nil {
		return nil, fmt.Errorf("save recommendation: %w", err)
	}

	log.Printf("[patient][recommend] saved rec_id=%d patient_id=%d bmi=%.2f avg_feedback=%.1f",
		rec.ID, ownerID, adv.BMI, avg)
	return &adv, nil
}

func (s *patientService) SubmitFeedback(ownerID, score int) error {
	if score < 1 || score > 5 {
		return fmt.Errorf("%w: score must be 1..5", ErrValidation)
	}
	return s.records.SaveFeedback(ownerID, score)
}

func (s *patientService) Charts(ownerID int) (*ChartData, error) {
	recs, err := s.records.ListRecommendations(ownerID)
	if err != nil {
		return nil, err
	}
	data := &ChartData{
		BMI:      []float64{},
		Diet:     []string{},
		Exercise: []string{},
		General:  []string{},
	}
	for _, r := range recs {
		data.BMI = append(data.BMI, r.BMI)
		data.Diet = append(data.Diet, r.Diet...)
		data.Exercise = append(data.Exercise, r.Exercise...)
		data.General = append(data.General, r.General...)
	}
	return data, nil
}
