package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/dto"
	"github.com/examind-dev/examind-api/internal/models"
	"github.com/examind-dev/examind-api/internal/repository"
)

// ErrQuestionNotFound indicates the question is absent or owned by another
// tenant.
var ErrQuestionNotFound = errors.New("question not found")

// ErrCorrectOptionMismatch indicates the correct-answer reference does not
// resolve to a member of the option list.
var ErrCorrectOptionMismatch = errors.New("correct answer must match one of the options")

// QuestionService manages the question bank of a subject.
type QuestionService interface {
	ListBySubject(ctx context.Context, subjectID, tenantID uint) ([]dto.QuestionResponse, error)
	Upload(ctx context.Context, subjectID, tenantID uint, payload dto.QuestionUploadRequest) ([]dto.QuestionResponse, error)
	Update(ctx context.Context, id, tenantID uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error)
	Delete(ctx context.Context, id, tenantID uint) error
}

type questionService struct {
	questions repository.QuestionRepository
	subjects  repository.SubjectRepository
	tenants   TenantService
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewQuestionService constructs a QuestionService instance.
func NewQuestionService(questions repository.QuestionRepository, subjects repository.SubjectRepository, tenants TenantService, validate *validator.Validate, logger zerolog.Logger) QuestionService {
	return &questionService{
		questions: questions,
		subjects:  subjects,
		tenants:   tenants,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
}

func (s *questionService) ListBySubject(ctx context.Context, subjectID, tenantID uint) ([]dto.QuestionResponse, error) {
	if _, err := s.ownedSubject(ctx, subjectID, tenantID); err != nil {
		return nil, err
	}

	questions, err := s.questions.ListBySubject(ctx, subjectID, false)
	if err != nil {
		return nil, err
	}
	return dto.NewQuestionResponseSlice(questions), nil
}

func (s *questionService) Upload(ctx context.Context, subjectID, tenantID uint, payload dto.QuestionUploadRequest) ([]dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	if _, err := s.tenants.RequireActive(ctx, tenantID); err != nil {
		return nil, err
	}
	subject, err := s.ownedSubject(ctx, subjectID, tenantID)
	if err != nil {
		return nil, err
	}

	existing, err := s.questions.ListBySubject(ctx, subjectID, true)
	if err != nil {
		return nil, err
	}
	nextSeq := len(existing) + 1

	questions := make([]models.Question, 0, len(payload.Questions))
	for _, row := range payload.Questions {
		question, err := s.buildQuestion(subject, row, nextSeq)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
		nextSeq++
	}

	if err := s.questions.CreateBatch(ctx, questions); err != nil {
		return nil, err
	}

	s.logger.Info().
		Uint("subject_id", subjectID).
		Int("count", len(questions)).
		Msg("questions uploaded")

	return dto.NewQuestionResponseSlice(questions), nil
}

func (s *questionService) Update(ctx context.Context, id, tenantID uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	if _, err := s.tenants.RequireActive(ctx, tenantID); err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.questions.GetOwned(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	options := s.sanitizeOptions(payload.Options)
	correct, err := normalizeCorrectAnswer(payload.CorrectAnswer, options)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	question.Prompt = s.sanitizer.Sanitize(payload.Question)
	question.CorrectOption = correct
	if payload.TimeLimitSeconds > 0 {
		question.TimeLimitSeconds = payload.TimeLimitSeconds
	}
	if err := question.SetOptions(options); err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.questions.Update(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	s.logger.Info().Uint("question_id", question.ID).Msg("question updated")

	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) Delete(ctx context.Context, id, tenantID uint) error {
	if _, err := s.tenants.RequireActive(ctx, tenantID); err != nil {
		return err
	}

	if err := s.questions.Delete(ctx, id, tenantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	s.logger.Info().Uint("question_id", id).Msg("question deleted")
	return nil
}

func (s *questionService) ownedSubject(ctx context.Context, subjectID, tenantID uint) (models.Subject, error) {
	subject, err := s.subjects.GetOwned(ctx, subjectID, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Subject{}, ErrSubjectNotFound
		}
		return models.Subject{}, err
	}
	return subject, nil
}

func (s *questionService) buildQuestion(subject models.Subject, row dto.QuestionUploadRow, seq int) (models.Question, error) {
	options := s.sanitizeOptions(row.Options)
	correct, err := normalizeCorrectAnswer(row.CorrectAnswer, options)
	if err != nil {
		return models.Question{}, err
	}

	timeLimit := row.TimeLimitSeconds
	if timeLimit <= 0 {
		timeLimit = 60
	}

	question := models.Question{
		SubjectID:        subject.ID,
		TenantID:         subject.TenantID,
		Seq:              seq,
		Prompt:           s.sanitizer.Sanitize(row.Question),
		CorrectOption:    correct,
		TimeLimitSeconds: timeLimit,
	}
	if err := question.SetOptions(options); err != nil {
		return models.Question{}, err
	}
	return question, nil
}

func (s *questionService) sanitizeOptions(options []string) []string {
	clean := make([]string, 0, len(options))
	for _, option := range options {
		clean = append(clean, strings.TrimSpace(s.sanitizer.Sanitize(option)))
	}
	return clean
}

// normalizeCorrectAnswer canonicalizes the correct-answer reference to the
// literal option text. Bulk imports sometimes supply a 1-based index
// instead of the option itself; both forms are accepted here so grading
// never branches on representation.
func normalizeCorrectAnswer(reference string, options []string) (string, error) {
	trimmed := strings.TrimSpace(reference)

	for _, option := range options {
		if option == trimmed {
			return option, nil
		}
	}

	if index, err := strconv.Atoi(trimmed); err == nil {
		if index >= 1 && index <= len(options) {
			return options[index-1], nil
		}
	}

	return "", ErrCorrectOptionMismatch
}
