package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/dto"
	"github.com/examind-dev/examind-api/internal/models"
	"github.com/examind-dev/examind-api/internal/observability"
	"github.com/examind-dev/examind-api/internal/repository"
)

// ErrSessionNotFound indicates the session is absent.
var ErrSessionNotFound = errors.New("session not found")

// ErrOwnershipMismatch indicates a candidate touched a session or subject
// that is not theirs.
var ErrOwnershipMismatch = errors.New("session does not belong to candidate")

// ErrWindowNotOpen indicates the scheduled exam window has not started.
var ErrWindowNotOpen = errors.New("exam window has not started")

// ErrWindowExpired indicates the scheduled exam window has closed.
var ErrWindowExpired = errors.New("exam window has expired")

// ErrAlreadySubmitted indicates the session already reached a terminal
// state; a second submission never produces a second result.
var ErrAlreadySubmitted = errors.New("session already submitted")

// ErrEmptyQuestionSet indicates the subject holds no gradable questions.
var ErrEmptyQuestionSet = errors.New("subject has no gradable questions")

// ExamService drives the timed assessment session lifecycle: window-gated
// start, snapshot delivery and exactly-once grading.
type ExamService interface {
	Start(ctx context.Context, candidateID uint) (dto.SessionResponse, error)
	Questions(ctx context.Context, sessionID, candidateID uint) ([]dto.ExamQuestion, error)
	Submit(ctx context.Context, sessionID, candidateID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error)
}

type examService struct {
	sessions   repository.SessionRepository
	candidates repository.CandidateRepository
	subjects   repository.SubjectRepository
	questions  repository.QuestionRepository
	signaler   ChangeSignaler
	validator  *validator.Validate
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewExamService constructs an ExamService instance.
func NewExamService(
	sessions repository.SessionRepository,
	candidates repository.CandidateRepository,
	subjects repository.SubjectRepository,
	questions repository.QuestionRepository,
	signaler ChangeSignaler,
	validate *validator.Validate,
	logger zerolog.Logger,
) ExamService {
	if signaler == nil {
		signaler = NopSignaler{}
	}
	return &examService{
		sessions:   sessions,
		candidates: candidates,
		subjects:   subjects,
		questions:  questions,
		signaler:   signaler,
		validator:  validate,
		logger:     logger.With().Str("component", "exam_service").Logger(),
		tracer:     otel.Tracer("github.com/examind-dev/examind-api/internal/service/exam"),
		now:        time.Now,
	}
}

func (s *examService) Start(ctx context.Context, candidateID uint) (dto.SessionResponse, error) {
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrCandidateNotFound
		}
		return dto.SessionResponse{}, err
	}

	subject, err := s.subjects.GetByID(ctx, candidate.SubjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrSubjectNotFound
		}
		return dto.SessionResponse{}, err
	}

	verdict := subject.EvaluateWindow(s.now())
	if !verdict.Admits() {
		return dto.SessionResponse{}, windowError(verdict)
	}

	// Re-entry returns the running session instead of forking a second one.
	if existing, err := s.sessions.GetActiveByCandidate(ctx, candidate.ID); err == nil {
		return s.sessionResponse(existing, candidate, subject, verdict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SessionResponse{}, err
	}

	snapshot, err := s.buildSnapshot(ctx, subject.ID)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	session := models.Session{
		CandidateID: candidate.ID,
		SubjectID:   subject.ID,
		TenantID:    candidate.TenantID,
		State:       models.SessionStateActive,
		StartedAt:   s.now(),
	}
	if err := session.EncodeSnapshot(snapshot); err != nil {
		return dto.SessionResponse{}, err
	}

	if err := s.sessions.Create(ctx, &session); err != nil {
		return dto.SessionResponse{}, err
	}

	observability.SessionsStarted().Inc()
	s.logger.Info().
		Uint("session_id", session.ID).
		Uint("candidate_id", candidate.ID).
		Uint("subject_id", subject.ID).
		Int("question_count", len(snapshot)).
		Msg("exam session started")

	return s.sessionResponse(session, candidate, subject, verdict)
}

func (s *examService) Questions(ctx context.Context, sessionID, candidateID uint) ([]dto.ExamQuestion, error) {
	session, err := s.ownedSession(ctx, sessionID, candidateID)
	if err != nil {
		return nil, err
	}

	snapshot, err := session.DecodeSnapshot()
	if err != nil {
		return nil, err
	}
	return dto.NewExamQuestions(snapshot), nil
}

func (s *examService) Submit(ctx context.Context, sessionID, candidateID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmitResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "exam.submit", trace.WithAttributes(
		attribute.Int64("session.id", int64(sessionID)),
		attribute.Int64("candidate.id", int64(candidateID)),
	))
	defer span.End()
	ctx = spanCtx

	session, err := s.ownedSession(ctx, sessionID, candidateID)
	if err != nil {
		return dto.SubmitResponse{}, err
	}

	subject, err := s.subjects.GetByID(ctx, session.SubjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmitResponse{}, ErrSubjectNotFound
		}
		return dto.SubmitResponse{}, err
	}

	// The gate is consulted again at submission time: wall-clock drift
	// between start and submit must not let answers slip past the schedule.
	verdict := subject.EvaluateWindow(s.now())
	if verdict.State == models.WindowExpired {
		if _, err := s.sessions.TransitionState(ctx, session.ID, models.SessionStateActive, models.SessionStateExpired); err != nil {
			s.logger.Error().Err(err).Uint("session_id", session.ID).Msg("failed to expire session")
		}
		return dto.SubmitResponse{}, ErrWindowExpired
	}
	if !verdict.Admits() {
		return dto.SubmitResponse{}, windowError(verdict)
	}

	snapshot, err := session.DecodeSnapshot()
	if err != nil {
		return dto.SubmitResponse{}, err
	}
	if len(snapshot) == 0 {
		return dto.SubmitResponse{}, ErrEmptyQuestionSet
	}

	score, breakdown := grade(snapshot, payload.Answers)

	candidate, err := s.candidates.GetByID(ctx, session.CandidateID)
	if err != nil {
		return dto.SubmitResponse{}, err
	}

	result := models.Result{
		SessionID:         session.ID,
		CandidateID:       candidate.ID,
		SubjectID:         subject.ID,
		TenantID:          session.TenantID,
		CandidateName:     candidate.Name,
		CandidateEmail:    candidate.Email,
		CandidatePublicID: candidate.PublicID,
		SubjectName:       subject.Name,
		Score:             score,
		Total:             len(snapshot),
	}
	if err := result.EncodeBreakdown(breakdown); err != nil {
		return dto.SubmitResponse{}, err
	}

	// The state swap and the result insert commit together: whichever
	// request wins the transition grades, every other request is rejected,
	// and a storage fault rolls the swap back so a retry can still grade.
	swapped, err := s.sessions.FinalizeSubmission(ctx, session.ID, &result)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmitResponse{}, ErrSessionNotFound
		}
		return dto.SubmitResponse{}, err
	}
	if !swapped {
		return dto.SubmitResponse{}, ErrAlreadySubmitted
	}

	observability.SubmissionsGraded().Inc()
	span.SetAttributes(attribute.Int("result.score", score), attribute.Int("result.total", len(snapshot)))
	s.logger.Info().
		Uint("session_id", session.ID).
		Uint("result_id", result.ID).
		Int("score", score).
		Int("total", len(snapshot)).
		Msg("exam submitted and graded")

	s.signaler.Changed(ctx, session.TenantID, SignalKindResult)

	return dto.SubmitResponse{
		ResultID:   result.ID,
		Score:      score,
		Total:      len(snapshot),
		Percentage: result.Percentage(),
	}, nil
}

// grade evaluates the answers against the snapshot fixed at session start.
// It is a pure function: replaying it against the stored snapshot and
// answers reproduces the stored score exactly.
func grade(snapshot []models.SnapshotQuestion, answers map[uint]string) (int, []models.AnswerRecord) {
	score := 0
	breakdown := make([]models.AnswerRecord, 0, len(snapshot))

	for _, question := range snapshot {
		selected, answered := answers[question.QuestionID]
		correct := answered && selected == question.CorrectOption
		if correct {
			score++
		}
		breakdown = append(breakdown, models.AnswerRecord{
			QuestionID:     question.QuestionID,
			SelectedOption: selected,
			Correct:        correct,
		})
	}

	return score, breakdown
}

func (s *examService) buildSnapshot(ctx context.Context, subjectID uint) ([]models.SnapshotQuestion, error) {
	questions, err := s.questions.ListBySubject(ctx, subjectID, false)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}

	snapshot := make([]models.SnapshotQuestion, 0, len(questions))
	for _, question := range questions {
		snapshot = append(snapshot, models.SnapshotQuestion{
			QuestionID:    question.ID,
			Seq:           question.Seq,
			Prompt:        question.Prompt,
			Options:       question.OptionList(),
			CorrectOption: question.CorrectOption,
		})
	}
	return snapshot, nil
}

func (s *examService) ownedSession(ctx context.Context, sessionID, candidateID uint) (models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}
	if session.CandidateID != candidateID {
		return models.Session{}, ErrOwnershipMismatch
	}
	return session, nil
}

func (s *examService) sessionResponse(session models.Session, candidate models.Candidate, subject models.Subject, verdict models.WindowVerdict) (dto.SessionResponse, error) {
	snapshot, err := session.DecodeSnapshot()
	if err != nil {
		return dto.SessionResponse{}, err
	}

	return dto.SessionResponse{
		SessionID:        session.ID,
		SubjectID:        subject.ID,
		SubjectName:      subject.Name,
		State:            session.State,
		StartedAt:        session.StartedAt,
		TimeLimitMinutes: candidate.TimeLimitMinutes,
		WindowEndsAt:     verdict.EndsAt,
		Questions:        dto.NewExamQuestions(snapshot),
	}, nil
}

// windowError maps a non-admitting gate verdict to its client-facing error.
func windowError(verdict models.WindowVerdict) error {
	if verdict.State == models.WindowExpired {
		return ErrWindowExpired
	}
	return ErrWindowNotOpen
}
