package dto

import (
	"time"

	"github.com/examind-dev/examind-api/internal/models"
)

// TenantOverviewResponse summarizes a tenant's account and remaining quota
// for the admin dashboard.
type TenantOverviewResponse struct {
	ID                  uint       `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Tier                string     `json:"tier"`
	Status              string     `json:"status"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
	TotalSubjects       int64      `json:"total_subjects"`
	TotalCandidates     int64      `json:"total_candidates"`
	RemainingSubjects   *int64     `json:"remaining_subjects,omitempty"`
	RemainingCandidates *int64     `json:"remaining_candidates,omitempty"`
}

// NewTenantOverviewResponse builds the overview from the tenant and its
// current resource counts. Remaining counts are omitted for uncapped tiers.
func NewTenantOverviewResponse(tenant models.Tenant, subjects, candidates int64) TenantOverviewResponse {
	response := TenantOverviewResponse{
		ID:              tenant.ID,
		Name:            tenant.Name,
		Email:           tenant.Email,
		Tier:            tenant.Tier,
		Status:          tenant.Status,
		ExpiresAt:       tenant.ExpiresAt,
		TotalSubjects:   subjects,
		TotalCandidates: candidates,
	}

	if tenant.IsTrial() {
		remainingSubjects := max64(int64(tenant.SubjectQuota)-subjects, 0)
		remainingCandidates := max64(int64(tenant.CandidateQuota)-candidates, 0)
		response.RemainingSubjects = &remainingSubjects
		response.RemainingCandidates = &remainingCandidates
	}

	return response
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
