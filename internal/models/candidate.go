package models

import "time"

// Candidate is a person permitted to attempt exactly one subject. PublicID
// is the opaque identifier handed out for unauthenticated result
// verification; it is never the primary key.
type Candidate struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TenantID         uint      `gorm:"not null;index" json:"tenant_id"`
	SubjectID        uint      `gorm:"not null;index" json:"subject_id"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	Email            string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PublicID         string    `gorm:"size:64;uniqueIndex;not null" json:"public_id"`
	SubjectName      string    `gorm:"size:255" json:"subject_name"`
	TimeLimitMinutes int       `gorm:"not null;default:60" json:"time_limit_minutes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
