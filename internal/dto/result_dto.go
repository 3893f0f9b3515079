package dto

import (
	"time"

	"github.com/examind-dev/examind-api/internal/models"
)

// ResultResponse is the tenant- and candidate-facing summary of a graded
// result.
type ResultResponse struct {
	ID                uint      `json:"id"`
	CandidateName     string    `json:"candidate_name"`
	CandidateEmail    string    `json:"candidate_email"`
	CandidatePublicID string    `json:"candidate_public_id"`
	SubjectName       string    `json:"subject_name"`
	Score             int       `json:"score"`
	Total             int       `json:"total"`
	Percentage        float64   `json:"percentage"`
	CreatedAt         time.Time `json:"created_at"`
}

// AnswerDetail is one row of the detailed review view. Prompt and correct
// option fall back to "N/A" when the question was deleted after grading.
type AnswerDetail struct {
	QuestionID     uint   `json:"question_id"`
	Prompt         string `json:"prompt"`
	SelectedOption string `json:"selected_option"`
	CorrectOption  string `json:"correct_option"`
	Correct        bool   `json:"correct"`
}

// ResultDetailResponse joins the stored breakdown with the current question
// bank for tenant review and export.
type ResultDetailResponse struct {
	ResultResponse
	Answers []AnswerDetail `json:"answers"`
}

// NewResultResponse converts a Result model into a DTO.
func NewResultResponse(model models.Result) ResultResponse {
	return ResultResponse{
		ID:                model.ID,
		CandidateName:     model.CandidateName,
		CandidateEmail:    model.CandidateEmail,
		CandidatePublicID: model.CandidatePublicID,
		SubjectName:       model.SubjectName,
		Score:             model.Score,
		Total:             model.Total,
		Percentage:        model.Percentage(),
		CreatedAt:         model.CreatedAt,
	}
}

// NewResultResponseSlice converts result models into DTOs.
func NewResultResponseSlice(results []models.Result) []ResultResponse {
	responses := make([]ResultResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, NewResultResponse(result))
	}
	return responses
}
