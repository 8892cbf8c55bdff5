package services

import (
	"fmt"
	"math"
	"strings"

	"clinicportal/internal/pdf"
	"clinicportal/internal/repositories"
)

// reviewLimit — врач видит только три последних отправки.
const reviewLimit = 3

// ReviewRow — строка дашборда врача.
type ReviewRow struct {
	Name        string   `json:"name"`
	BMI         float64  `json:"bmi"`
	Diet        []string `json:"diet"`
	Exercise    []string `json:"exercise"`
	General     []string `json:"general"`
	Feedback    float64  `json:"feedback"`
	Risks       []string `json:"risks"`
	Explanation string   `json:"explanation"`
}

type ReportService interface {
	Review() ([]*ReviewRow, error)
	// ExportPDF — последние 3 записи, отфильтрованные по бакетам BMI
	// (low <25, medium 25-30, high >=30) и фидбека (low <3, high >=4).
	ExportPDF(bmiFilter, fbFilter string) ([]byte, error)
}

type reportService struct {
	records repositories.RecordRepository
	pdfGen  pdf.Generator
}

func NewReportService(records repositories.RecordRepository, pdfGen pdf.Generator) ReportService {
	return &reportService{records: records, pdfGen: pdfGen}
}

func (s *reportService) Review() ([]*ReviewRow, error) {
	subs, err := s.records.LastSubmissions(reviewLimit)
	if err != nil {
		return nil, fmt.Errorf("last submissions: %w", err)
	}

	rows := make([]*ReviewRow, 0, len(subs))
	for _, sub := range subs {
		risks := RiskFlags(sub.BMI, sub.Feedback)
		rows = append(rows, &ReviewRow{
			Name:        sub.Name,
			BMI:         sub.BMI,
			Diet:        sub.Diet,
			Exercise:    sub.Exercise,
			General:     sub.General,
			Feedback:    math.Round(sub.Feedback*10) / 10,
			Risks:       risks,
			Explanation: RiskNarrative(risks),
		})
	}
	return rows, nil
}

func passBMI(filter string, bmi float64) bool {
	switch filter {
	case "low":
		return bmi < 25
	case "medium":
		return bmi >= 25 && bmi < 30
	case "high":
		return bmi >= 30
	}
	return true
}

func passFeedback(filter string, fb float64) bool {
	switch filter {
	case "low":
		return fb < 3
	case "high":
		return fb >= 4
	}
	return true
}

func (s *reportService) ExportPDF(bmiFilter, fbFilter string) ([]byte, error) {
	if bmiFilter == "" {
		bmiFilter = "all"
	}
	if fbFilter == "" {
		fbFilter = "all"
	}

	subs, err := s.records.LastSubmissions(reviewLimit)
	if err != nil {
		return nil, fmt.Errorf("last submissions: %w", err)
	}

	data := pdf.ReportData{
		BMIFilter:      bmiFilter,
		FeedbackFilter: fbFilter,
	}
	for _, sub := range subs {
		if !passBMI(bmiFilter, sub.BMI) || !passFeedback(fbFilter, sub.Feedback) {
			continue
		}
		risks := RiskFlags(sub.BMI, sub.Feedback)
		riskText := "None"
		if len(risks) > 0 {
			riskText = strings.Join(risks, " | ")
		}
		data.Rows = append(data.Rows, pdf.ReportRow{
			Name:     sub.Name,
			BMI:      sub.BMI,
			Feedback: sub.Feedback,
			RiskText: riskText,
		})
	}

	return s.pdfGen.GenerateReport(data)
}
