package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Session is the live act of a candidate attempting an exam. The question
// snapshot taken at start time is stored on the row so grading is immune to
// concurrent edits of the live question bank.
type Session struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CandidateID uint           `gorm:"not null;index" json:"candidate_id"`
	SubjectID   uint           `gorm:"not null;index" json:"subject_id"`
	TenantID    uint           `gorm:"not null;index" json:"tenant_id"`
	State       string         `gorm:"size:32;not null" json:"state"`
	StartedAt   time.Time      `json:"started_at"`
	Snapshot    datatypes.JSON `json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Candidate   Candidate      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Session states. Submitted and expired are terminal.
const (
	SessionStateActive    = "active"
	SessionStateSubmitted = "submitted"
	SessionStateExpired   = "expired"
)

// IsTerminal reports whether no further answers are accepted.
func (s Session) IsTerminal() bool {
	return s.State == SessionStateSubmitted || s.State == SessionStateExpired
}

// SnapshotQuestion is one entry of the immutable question set fixed at
// session start. The correct option never leaves the server before grading.
type SnapshotQuestion struct {
	QuestionID    uint     `json:"question_id"`
	Seq           int      `json:"seq"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
}

// DecodeSnapshot unpacks the stored snapshot column.
func (s Session) DecodeSnapshot() ([]SnapshotQuestion, error) {
	var snapshot []SnapshotQuestion
	if err := json.Unmarshal(s.Snapshot, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// EncodeSnapshot stores the question set on the session row.
func (s *Session) EncodeSnapshot(snapshot []SnapshotQuestion) error {
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	s.Snapshot = datatypes.JSON(encoded)
	return nil
}
