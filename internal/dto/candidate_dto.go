package dto

import (
	"time"

	"github.com/examind-dev/examind-api/internal/models"
)

// CandidateCreateRequest describes the payload for enrolling a candidate.
type CandidateCreateRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=255"`
	Email     string `json:"email" validate:"required,email"`
	SubjectID uint   `json:"subject_id" validate:"required,gt=0"`
}

// CandidateResponse is returned to API clients when viewing candidates.
type CandidateResponse struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	PublicID         string    `json:"public_id"`
	SubjectID        uint      `json:"subject_id"`
	SubjectName      string    `json:"subject_name"`
	TimeLimitMinutes int       `json:"time_limit_minutes"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewCandidateResponse converts a Candidate model into a DTO.
func NewCandidateResponse(model models.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:               model.ID,
		Name:             model.Name,
		Email:            model.Email,
		PublicID:         model.PublicID,
		SubjectID:        model.SubjectID,
		SubjectName:      model.SubjectName,
		TimeLimitMinutes: model.TimeLimitMinutes,
		CreatedAt:        model.CreatedAt,
	}
}

// NewCandidateResponseSlice converts candidate models into DTOs.
func NewCandidateResponseSlice(candidates []models.Candidate) []CandidateResponse {
	responses := make([]CandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		responses = append(responses, NewCandidateResponse(candidate))
	}
	return responses
}
