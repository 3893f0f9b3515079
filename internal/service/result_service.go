package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/dto"
	"github.com/examind-dev/examind-api/internal/models"
	"github.com/examind-dev/examind-api/internal/repository"
)

// ErrResultNotFound indicates the result is absent or owned by another
// tenant.
var ErrResultNotFound = errors.New("result not found")

const missingQuestionText = "N/A"

// ResultService exposes graded results for tenant review, export and
// unauthenticated public verification.
type ResultService interface {
	VerifyByPublicID(ctx context.Context, publicID string) (dto.ResultResponse, error)
	GetDetailed(ctx context.Context, resultID, tenantID uint) (dto.ResultDetailResponse, error)
	ListForTenant(ctx context.Context, tenantID uint) ([]dto.ResultResponse, error)
	Delete(ctx context.Context, resultID, tenantID uint) error
}

type resultService struct {
	results   repository.ResultRepository
	questions repository.QuestionRepository
	tenants   TenantService
	cache     *redis.Client
	cacheBase string
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewResultService constructs a ResultService instance. The redis client
// may be nil; caching is skipped without it.
func NewResultService(results repository.ResultRepository, questions repository.QuestionRepository, tenants TenantService, cache *redis.Client, cacheBase string, cacheTTL time.Duration, logger zerolog.Logger) ResultService {
	if cacheBase == "" {
		cacheBase = "examind"
	}
	return &resultService{
		results:   results,
		questions: questions,
		tenants:   tenants,
		cache:     cache,
		cacheBase: cacheBase,
		cacheTTL:  cacheTTL,
		logger:    logger.With().Str("component", "result_service").Logger(),
	}
}

// VerifyByPublicID serves the unauthenticated self-service verification
// route. Lookup is keyed strictly by the candidate's opaque public
// identifier so internal primary keys cannot be enumerated through it.
func (s *resultService) VerifyByPublicID(ctx context.Context, publicID string) (dto.ResultResponse, error) {
	result, err := s.results.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResultResponse{}, ErrResultNotFound
		}
		return dto.ResultResponse{}, err
	}
	return dto.NewResultResponse(result), nil
}

func (s *resultService) GetDetailed(ctx context.Context, resultID, tenantID uint) (dto.ResultDetailResponse, error) {
	if _, err := s.tenants.ResolveOwner(ctx, tenantID); err != nil {
		return dto.ResultDetailResponse{}, err
	}

	result, err := s.results.GetOwned(ctx, resultID, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResultDetailResponse{}, ErrResultNotFound
		}
		return dto.ResultDetailResponse{}, err
	}

	breakdown, err := result.DecodeBreakdown()
	if err != nil {
		return dto.ResultDetailResponse{}, err
	}

	// The review view joins the stored breakdown with the current question
	// bank; questions deleted since grading render as "N/A" instead of
	// failing the whole view.
	bank, err := s.questions.ListBySubject(ctx, result.SubjectID, true)
	if err != nil {
		return dto.ResultDetailResponse{}, err
	}
	byID := make(map[uint]models.Question, len(bank))
	for _, question := range bank {
		byID[question.ID] = question
	}

	answers := make([]dto.AnswerDetail, 0, len(breakdown))
	for _, record := range breakdown {
		detail := dto.AnswerDetail{
			QuestionID:     record.QuestionID,
			Prompt:         missingQuestionText,
			SelectedOption: record.SelectedOption,
			CorrectOption:  missingQuestionText,
			Correct:        record.Correct,
		}
		if question, ok := byID[record.QuestionID]; ok {
			detail.Prompt = question.Prompt
			detail.CorrectOption = question.CorrectOption
		}
		answers = append(answers, detail)
	}

	return dto.ResultDetailResponse{
		ResultResponse: dto.NewResultResponse(result),
		Answers:        answers,
	}, nil
}

func (s *resultService) ListForTenant(ctx context.Context, tenantID uint) ([]dto.ResultResponse, error) {
	if _, err := s.tenants.ResolveOwner(ctx, tenantID); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("%s:results:%d", s.cacheBase, tenantID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var responses []dto.ResultResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &responses); unmarshalErr == nil {
				s.logger.Debug().Uint("tenant_id", tenantID).Msg("results cache hit")
				return responses, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read results cache")
		}
	}

	results, err := s.results.ListForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	responses := dto.NewResultResponseSlice(results)

	if s.cache != nil {
		if payload, err := json.Marshal(responses); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store results cache")
			}
		}
	}

	return responses, nil
}

func (s *resultService) Delete(ctx context.Context, resultID, tenantID uint) error {
	if _, err := s.tenants.RequireActive(ctx, tenantID); err != nil {
		return err
	}

	if err := s.results.Delete(ctx, resultID, tenantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResultNotFound
		}
		return err
	}

	if s.cache != nil {
		cacheKey := fmt.Sprintf("%s:results:%d", s.cacheBase, tenantID)
		if err := s.cache.Del(ctx, cacheKey).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate results cache")
		}
	}

	s.logger.Info().Uint("result_id", resultID).Uint("tenant_id", tenantID).Msg("result deleted")
	return nil
}
