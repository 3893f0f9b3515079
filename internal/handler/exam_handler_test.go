package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/examind-dev/examind-api/internal/dto"
	"github.com/examind-dev/examind-api/internal/handler"
	"github.com/examind-dev/examind-api/internal/service"
)

type mockExamService struct {
	startResponse  dto.SessionResponse
	submitResponse dto.SubmitResponse
	questions      []dto.ExamQuestion
	err            error

	lastCandidateID uint
	lastSessionID   uint
	lastAnswers     map[uint]string
}

func (m *mockExamService) Start(_ context.Context, candidateID uint) (dto.SessionResponse, error) {
	m.lastCandidateID = candidateID
	if m.err != nil {
		return dto.SessionResponse{}, m.err
	}
	return m.startResponse, nil
}

func (m *mockExamService) Questions(_ context.Context, sessionID, candidateID uint) ([]dto.ExamQuestion, error) {
	m.lastSessionID = sessionID
	m.lastCandidateID = candidateID
	if m.err != nil {
		return nil, m.err
	}
	return m.questions, nil
}

func (m *mockExamService) Submit(_ context.Context, sessionID, candidateID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error) {
	m.lastSessionID = sessionID
	m.lastCandidateID = candidateID
	m.lastAnswers = payload.Answers
	if m.err != nil {
		return dto.SubmitResponse{}, m.err
	}
	return m.submitResponse, nil
}

func newExamApp(svc service.ExamService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/exam", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		return c.Next()
	})
	handler.NewExamHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestExamHandler_StartSuccess(t *testing.T) {
	svc := &mockExamService{startResponse: dto.SessionResponse{
		SessionID:        11,
		SubjectID:        3,
		SubjectName:      "Mathematics",
		State:            "active",
		StartedAt:        time.Now().UTC(),
		TimeLimitMinutes: 60,
	}}
	app := newExamApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exam/sessions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(7), svc.lastCandidateID)

	var response struct {
		Success bool                `json:"success"`
		Data    dto.SessionResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, uint(11), response.Data.SessionID)
}

func TestExamHandler_SubmitSuccess(t *testing.T) {
	svc := &mockExamService{submitResponse: dto.SubmitResponse{ResultID: 5, Score: 2, Total: 3, Percentage: 66.67}}
	app := newExamApp(svc)

	body, err := json.Marshal(dto.SubmitRequest{Answers: map[uint]string{1: "4"}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exam/sessions/11/submit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(11), svc.lastSessionID)
	require.Equal(t, uint(7), svc.lastCandidateID)
	require.Equal(t, map[uint]string{1: "4"}, svc.lastAnswers)
}

func TestExamHandler_SubmitInvalidSessionID(t *testing.T) {
	svc := &mockExamService{}
	app := newExamApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exam/sessions/not-a-number/submit", bytes.NewReader([]byte(`{"answers":{}}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestExamHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{"window not open", service.ErrWindowNotOpen, fiber.StatusForbidden},
		{"window expired", service.ErrWindowExpired, fiber.StatusForbidden},
		{"ownership mismatch", service.ErrOwnershipMismatch, fiber.StatusForbidden},
		{"already submitted", service.ErrAlreadySubmitted, fiber.StatusConflict},
		{"empty question set", service.ErrEmptyQuestionSet, fiber.StatusUnprocessableEntity},
		{"session missing", service.ErrSessionNotFound, fiber.StatusNotFound},
		{"tenant expired", service.ErrTenantExpired, fiber.StatusForbidden},
		{"generic", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockExamService{err: tc.err}
			app := newExamApp(svc)

			body, err := json.Marshal(dto.SubmitRequest{Answers: map[uint]string{1: "a"}})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/exam/sessions/11/submit", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}
