package dto

import (
	"time"

	"github.com/examind-dev/examind-api/internal/models"
)

// QuestionUploadRow is one row of a bulk question upload. CorrectAnswer may
// be the literal option text or a 1-based index into the option list; it is
// normalized to the literal before persistence. The field names follow the
// spreadsheet import column contract.
type QuestionUploadRow struct {
	Question         string   `json:"question" validate:"required,min=1"`
	Options          []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectAnswer    string   `json:"correct_answer" validate:"required"`
	TimeLimitSeconds int      `json:"time_limit_seconds" validate:"omitempty,gt=0,lte=3600"`
}

// QuestionUploadRequest is the payload for bulk-uploading questions.
type QuestionUploadRequest struct {
	Questions []QuestionUploadRow `json:"questions" validate:"required,min=1,dive"`
}

// QuestionUpdateRequest edits a single question.
type QuestionUpdateRequest struct {
	Question         string   `json:"question" validate:"required,min=1"`
	Options          []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectAnswer    string   `json:"correct_answer" validate:"required"`
	TimeLimitSeconds int      `json:"time_limit_seconds" validate:"omitempty,gt=0,lte=3600"`
}

// QuestionResponse is the admin-facing view of a question, correct option
// included.
type QuestionResponse struct {
	ID               uint      `json:"id"`
	SubjectID        uint      `json:"subject_id"`
	Seq              int       `json:"seq"`
	Prompt           string    `json:"prompt"`
	Options          []string  `json:"options"`
	CorrectOption    string    `json:"correct_option"`
	TimeLimitSeconds int       `json:"time_limit_seconds"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewQuestionResponse converts a Question model into the admin DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	return QuestionResponse{
		ID:               model.ID,
		SubjectID:        model.SubjectID,
		Seq:              model.Seq,
		Prompt:           model.Prompt,
		Options:          model.OptionList(),
		CorrectOption:    model.CorrectOption,
		TimeLimitSeconds: model.TimeLimitSeconds,
		CreatedAt:        model.CreatedAt,
	}
}

// NewQuestionResponseSlice converts question models into admin DTOs.
func NewQuestionResponseSlice(questions []models.Question) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, NewQuestionResponse(question))
	}
	return responses
}
