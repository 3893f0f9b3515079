package dto

import (
	"time"

	"github.com/examind-dev/examind-api/internal/models"
)

// SubjectCreateRequest describes the payload for creating a subject.
type SubjectCreateRequest struct {
	Name             string `json:"name" validate:"required,min=2,max=255"`
	Code             string `json:"code" validate:"omitempty,max=64"`
	TimeLimitMinutes int    `json:"time_limit_minutes" validate:"omitempty,gt=0,lte=600"`
}

// SubjectTimerUpdateRequest updates the per-subject exam duration.
type SubjectTimerUpdateRequest struct {
	TimeLimitMinutes int `json:"time_limit_minutes" validate:"required,gt=0,lte=600"`
}

// WindowScheduleRequest attaches or updates a scheduled exam window.
type WindowScheduleRequest struct {
	Start           time.Time `json:"start" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,gt=0,lte=1440"`
}

// SubjectResponse is returned to API clients when viewing subjects.
type SubjectResponse struct {
	ID                    uint       `json:"id"`
	Name                  string     `json:"name"`
	Code                  string     `json:"code"`
	TimeLimitMinutes      int        `json:"time_limit_minutes"`
	WindowStart           *time.Time `json:"window_start,omitempty"`
	WindowDurationMinutes *int       `json:"window_duration_minutes,omitempty"`
	WindowState           string     `json:"window_state"`
	CreatedAt             time.Time  `json:"created_at"`
}

// NewSubjectResponse converts a Subject model into a DTO, evaluating the
// window gate at the supplied reference time.
func NewSubjectResponse(model models.Subject, now time.Time) SubjectResponse {
	verdict := model.EvaluateWindow(now)
	return SubjectResponse{
		ID:                    model.ID,
		Name:                  model.Name,
		Code:                  model.Code,
		TimeLimitMinutes:      model.TimeLimitMinutes,
		WindowStart:           model.WindowStart,
		WindowDurationMinutes: model.WindowDurationMinutes,
		WindowState:           string(verdict.State),
		CreatedAt:             model.CreatedAt,
	}
}

// NewSubjectResponseSlice converts subject models into DTOs.
func NewSubjectResponseSlice(subjects []models.Subject, now time.Time) []SubjectResponse {
	responses := make([]SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		responses = append(responses, NewSubjectResponse(subject, now))
	}
	return responses
}
