package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Question is one gradable item within a subject. CorrectOption always holds
// the literal text of the winning option; index-based references from bulk
// imports are normalized at write time.
type Question struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	SubjectID        uint           `gorm:"not null;index" json:"subject_id"`
	TenantID         uint           `gorm:"not null;index" json:"tenant_id"`
	Seq              int            `json:"seq"`
	Prompt           string         `gorm:"type:text;not null" json:"prompt"`
	Options          datatypes.JSON `gorm:"not null" json:"options"`
	CorrectOption    string         `gorm:"size:1024;not null" json:"correct_option"`
	TimeLimitSeconds int            `gorm:"not null;default:60" json:"time_limit_seconds"`
	Placeholder      bool           `gorm:"not null;default:false" json:"placeholder"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// OptionList decodes the stored options column.
func (q Question) OptionList() []string {
	var options []string
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil
	}
	return options
}

// SetOptions encodes the option list into the JSON column.
func (q *Question) SetOptions(options []string) error {
	encoded, err := json.Marshal(options)
	if err != nil {
		return err
	}
	q.Options = datatypes.JSON(encoded)
	return nil
}
