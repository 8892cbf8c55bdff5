package repositories

import (
	"database/sql"

	"clinicportal/internal/models"

	"github.com/lib/pq"
)

type RecordRepository interface {
	UpdateProfile(ownerID int, p models.HealthProfile) error
	SaveRecommendation(rec *models.Recommendation) error
	ListRecommendations(ownerID int) ([]*models.Recommendation, error)
	SaveFeedback(ownerID, score int) error
	// AverageFeedback — среднее по оценкам владельца, 3.0 при отсутствии.
	AverageFeedback(ownerID int) (float64, error)
	// LastSubmissions — N свежих рекомендаций с именем владельца и его средним
	// фидбеком, для обзора врача и PDF-отчёта.
	LastSubmissions(limit int) ([]*models.PatientSubmission, error)
}

type recordRepository struct {
	DB *sql.DB
}

func NewRecordRepository(db *sql.DB) RecordRepository {
	return &recordRepository{DB: db}
}

func (r *recordRepository) UpdateProfile(ownerID int, p models.HealthProfile) error {
	const q = `
		UPDATE patients
		SET age=$1, weight=$2, height=$3, activity=$4, diet=$5
		WHERE id=$6
	`
	_, err := r.DB.Exec(q, p.Age, p.Weight, p.Height, p.ActivityLevel, p.DietPreference, ownerID)
	return err
}

func (r *recordRepository) SaveRecommendation(rec *models.Recommendation) error {
	const q = `
		INSERT INTO recommendations (patient_id, bmi, diet, exercise, general)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at
	`
	return r.DB.QueryRow(q,
		rec.OwnerID,
		rec.BMI,
		pq.Array(rec.Diet),
		pq.Array(rec.Exercise),
		pq.Array(rec.General),
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (r *recordRepository) ListRecommendations(ownerID int) ([]*models.Recommendation, error) {
	const q = `
		SELECT id, patient_id, bmi, diet, exercise, general, created_at
		FROM recommendations
		WHERE patient_id = $1
		ORDER BY id
	`
	rows, err := r.DB.Query(q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*models.Recommendation
	for rows.Next() {
		rec := &models.Recommendation{}
		if err := rows.Scan(
			&rec.ID, &rec.OwnerID, &rec.BMI,
			pq.Array(&rec.Diet), pq.Array(&rec.Exercise), pq.Array(&rec.General),
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

func (r *recordRepository) SaveFeedback(ownerID, score int) error {
	_, err := r.DB.Exec(
		`INSERT INTO feedback (patient_id, score) VALUES ($1,$2)`,
		ownerID, score,
	)
	return err
}

func (r *recordRepository) AverageFeedback(ownerID int) (float64, error) {
	var avg sql.NullFloat64
	err := r.DB.QueryRow(
		`SELECT AVG(score) FROM feedback WHERE patient_id = $1`,
		ownerID,
	).Scan(&avg)
	if err != nil {
		return 0, err
	}
	if !avg.Valid {
		return 3.0, nil // нейтральный дефолт
	}
	return avg.Float64, nil
}

func (r *recordRepository) LastSubmissions(limit int) ([]*models.PatientSubmission, error) {
	const q = `
		SELECT p.display_name,
		       r.bmi,
		       r.diet,
		       r.exercise,
		       r.general,
		       COALESCE((
		           SELECT AVG(f.score)
		           FROM feedback f
		           WHERE f.patient_id = p.id
		       ), 3) AS feedback
		FROM recommendations r
		JOIN patients p ON r.patient_id = p.id
		ORDER BY r.id DESC
		LIMIT $1
	`
	rows, err := r.DB.Query(q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*models.PatientSubmission
	for rows.Next() {
		s := &models.PatientSubmission{}
		if err := rows.Scan(
			&s.Name, &s.BMI,
			pq.Array(&s.Diet), pq.Array(&s.Exercise), pq.Array(&s.General),
			&s.Feedback,
		); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}
