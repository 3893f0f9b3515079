package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Result is the final graded outcome of a session, denormalized with
// candidate and subject names so dashboards and the public verification
// endpoint need no joins. Immutable after creation except administrative
// deletion.
type Result struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	SessionID         uint           `gorm:"not null;uniqueIndex" json:"session_id"`
	CandidateID       uint           `gorm:"not null;index" json:"candidate_id"`
	SubjectID         uint           `gorm:"not null;index" json:"subject_id"`
	TenantID          uint           `gorm:"not null;index" json:"tenant_id"`
	CandidateName     string         `gorm:"size:255" json:"candidate_name"`
	CandidateEmail    string         `gorm:"size:255" json:"candidate_email"`
	CandidatePublicID string         `gorm:"size:64;index" json:"candidate_public_id"`
	SubjectName       string         `gorm:"size:255" json:"subject_name"`
	Score             int            `gorm:"not null" json:"score"`
	Total             int            `gorm:"not null" json:"total"`
	Breakdown         datatypes.JSON `json:"-"`
	CreatedAt         time.Time      `json:"created_at"`
}

// AnswerRecord is one entry of the per-question correctness breakdown.
type AnswerRecord struct {
	QuestionID     uint   `json:"question_id"`
	SelectedOption string `json:"selected_option"`
	Correct        bool   `json:"correct"`
}

// Percentage returns the score as a percentage of the total.
func (r Result) Percentage() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total) * 100
}

// DecodeBreakdown unpacks the stored per-question breakdown.
func (r Result) DecodeBreakdown() ([]AnswerRecord, error) {
	var records []AnswerRecord
	if err := json.Unmarshal(r.Breakdown, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EncodeBreakdown stores the per-question breakdown on the result row.
func (r *Result) EncodeBreakdown(records []AnswerRecord) error {
	encoded, err := json.Marshal(records)
	if err != nil {
		return err
	}
	r.Breakdown = datatypes.JSON(encoded)
	return nil
}
