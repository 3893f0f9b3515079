package models

import "time"

// Tenant represents an owning administrator account. Every other entity in
// the system carries a reference back to exactly one tenant.
type Tenant struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"size:255;not null" json:"name"`
	Email          string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Tier           string     `gorm:"size:32;not null;default:standard" json:"tier"`
	Status         string     `gorm:"size:32;not null;default:active" json:"status"`
	SubjectQuota   int        `json:"subject_quota"`
	CandidateQuota int        `json:"candidate_quota"`
	ExpiresAt      *time.Time `json:"expires_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

const (
	// TenantTierStandard has no resource caps.
	TenantTierStandard = "standard"
	// TenantTierTrial is time-boxed and capped on subjects and candidates.
	TenantTierTrial = "trial"

	// TenantStatusActive marks a tenant in good standing.
	TenantStatusActive = "active"
	// TenantStatusExpired marks a trial tenant past its expiry timestamp.
	TenantStatusExpired = "expired"
)

// Default caps applied to trial tenants at creation time.
const (
	TrialSubjectQuota   = 2
	TrialCandidateQuota = 5
)

// IsTrial reports whether the tenant runs on the capped trial tier.
func (t Tenant) IsTrial() bool {
	return t.Tier == TenantTierTrial
}

// IsExpired reports whether a trial tenant is past its expiry timestamp.
// Standard tenants never expire.
func (t Tenant) IsExpired(reference time.Time) bool {
	if !t.IsTrial() || t.ExpiresAt == nil {
		return false
	}
	return !reference.Before(*t.ExpiresAt)
}

// QuotaFor returns the cap for the given resource kind, or -1 when the
// tenant is uncapped.
func (t Tenant) QuotaFor(kind string) int {
	if !t.IsTrial() {
		return -1
	}
	switch kind {
	case ResourceKindSubject:
		return t.SubjectQuota
	case ResourceKindCandidate:
		return t.CandidateQuota
	default:
		return -1
	}
}

// Resource kinds subject to per-tenant quotas.
const (
	ResourceKindSubject   = "subject"
	ResourceKindCandidate = "candidate"
)
