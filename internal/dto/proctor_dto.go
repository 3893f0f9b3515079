package dto

import (
	"time"

	"github.com/examind-dev/examind-api/internal/models"
)

// ProctorIngestRequest carries the counter fields of a telemetry sample.
// The frame itself arrives as a multipart file.
type ProctorIngestRequest struct {
	SessionID   uint `form:"session_id" validate:"required,gt=0"`
	TabWarnings int  `form:"tab_warnings" validate:"gte=0"`
	StrikeCount int  `form:"strike_count" validate:"gte=0"`
}

// ProctorIngestResponse acknowledges a stored sample.
type ProctorIngestResponse struct {
	EventID    uint      `json:"event_id"`
	ImageURL   string    `json:"image_url"`
	CapturedAt time.Time `json:"captured_at"`
}

// ProctorEventFilter describes query filters for listing telemetry.
type ProctorEventFilter struct {
	SessionID   *uint `query:"session_id"`
	CandidateID *uint `query:"candidate_id"`
}

// ProctorEventResponse is the tenant-facing telemetry view joined with the
// candidate's identity.
type ProctorEventResponse struct {
	ID             uint      `json:"id"`
	SessionID      uint      `json:"session_id"`
	CandidateID    uint      `json:"candidate_id"`
	CandidateName  string    `json:"candidate_name"`
	CandidateEmail string    `json:"candidate_email"`
	ImageURL       string    `json:"image_url"`
	TabWarnings    int       `json:"tab_warnings"`
	StrikeCount    int       `json:"strike_count"`
	CapturedAt     time.Time `json:"captured_at"`
}

// NewProctorEventResponse converts a ProctorEvent model into a DTO.
func NewProctorEventResponse(model models.ProctorEvent) ProctorEventResponse {
	return ProctorEventResponse{
		ID:             model.ID,
		SessionID:      model.SessionID,
		CandidateID:    model.CandidateID,
		CandidateName:  model.Candidate.Name,
		CandidateEmail: model.Candidate.Email,
		ImageURL:       model.ImageURL,
		TabWarnings:    model.TabWarnings,
		StrikeCount:    model.StrikeCount,
		CapturedAt:     model.CapturedAt,
	}
}

// NewProctorEventResponseSlice converts telemetry models into DTOs.
func NewProctorEventResponseSlice(events []models.ProctorEvent) []ProctorEventResponse {
	responses := make([]ProctorEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, NewProctorEventResponse(event))
	}
	return responses
}
