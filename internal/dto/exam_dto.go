package dto

import (
	"time"

	"github.com/examind-dev/examind-api/internal/models"
)

// ExamQuestion is the candidate-facing view of a snapshot entry. It never
// carries the correct option.
type ExamQuestion struct {
	QuestionID uint     `json:"question_id"`
	Seq        int      `json:"seq"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options"`
}

// SessionResponse describes a started or resumed exam session.
type SessionResponse struct {
	SessionID        uint           `json:"session_id"`
	SubjectID        uint           `json:"subject_id"`
	SubjectName      string         `json:"subject_name"`
	State            string         `json:"state"`
	StartedAt        time.Time      `json:"started_at"`
	TimeLimitMinutes int            `json:"time_limit_minutes"`
	WindowEndsAt     *time.Time     `json:"window_ends_at,omitempty"`
	Questions        []ExamQuestion `json:"questions"`
}

// SubmitRequest carries the candidate's answers keyed by question ID.
type SubmitRequest struct {
	Answers map[uint]string `json:"answers" validate:"required"`
}

// SubmitResponse reports the graded outcome back to the candidate.
type SubmitResponse struct {
	ResultID   uint    `json:"result_id"`
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// NewExamQuestions strips the correct options from a snapshot.
func NewExamQuestions(snapshot []models.SnapshotQuestion) []ExamQuestion {
	questions := make([]ExamQuestion, 0, len(snapshot))
	for _, entry := range snapshot {
		questions = append(questions, ExamQuestion{
			QuestionID: entry.QuestionID,
			Seq:        entry.Seq,
			Prompt:     entry.Prompt,
			Options:    entry.Options,
		})
	}
	return questions
}
