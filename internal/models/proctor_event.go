package models

import "time"

// ProctorEvent is one integrity-monitoring sample tied to a session. Rows
// are append-only; TabWarnings and StrikeCount are caller-supplied monotonic
// counters stored verbatim per sample.
type ProctorEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   uint      `gorm:"not null;index" json:"session_id"`
	CandidateID uint      `gorm:"not null;index" json:"candidate_id"`
	TenantID    uint      `gorm:"not null;index" json:"tenant_id"`
	ImageURL    string    `gorm:"size:512;not null" json:"image_url"`
	TabWarnings int       `gorm:"not null;default:0" json:"tab_warnings"`
	StrikeCount int       `gorm:"not null;default:0" json:"strike_count"`
	CapturedAt  time.Time `gorm:"not null;index" json:"captured_at"`
	CreatedAt   time.Time `json:"created_at"`
	Candidate   Candidate `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
