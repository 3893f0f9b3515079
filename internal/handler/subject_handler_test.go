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

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/examind-dev/examind-api/internal/dto"
	"github.com/examind-dev/examind-api/internal/handler"
	"github.com/examind-dev/examind-api/internal/service"
)

type mockSubjectService struct {
	response dto.SubjectResponse
	list     []dto.SubjectResponse
	err      error

	lastTenantID uint
	lastPayload  dto.SubjectCreateRequest
}

func (m *mockSubjectService) List(_ context.Context, tenantID uint) ([]dto.SubjectResponse, error) {
	m.lastTenantID = tenantID
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

func (m *mockSubjectService) Create(_ context.Context, tenantID uint, payload dto.SubjectCreateRequest) (dto.SubjectResponse, error) {
	m.lastTenantID = tenantID
	m.lastPayload = payload
	if m.err != nil {
		return dto.SubjectResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockSubjectService) UpdateTimer(_ context.Context, _, tenantID uint, _ dto.SubjectTimerUpdateRequest) (dto.SubjectResponse, error) {
	m.lastTenantID = tenantID
	if m.err != nil {
		return dto.SubjectResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockSubjectService) Schedule(_ context.Context, _, tenantID uint, _ dto.WindowScheduleRequest) (dto.SubjectResponse, error) {
	m.lastTenantID = tenantID
	if m.err != nil {
		return dto.SubjectResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockSubjectService) ClearSchedule(_ context.Context, _, tenantID uint) (dto.SubjectResponse, error) {
	m.lastTenantID = tenantID
	if m.err != nil {
		return dto.SubjectResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockSubjectService) Delete(_ context.Context, _, tenantID uint) error {
	m.lastTenantID = tenantID
	return m.err
}

func newSubjectApp(svc service.SubjectService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/admin/subjects", func(c *fiber.Ctx) error {
		c.Locals("tenant_id", uint(3))
		return c.Next()
	})
	handler.NewSubjectHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestSubjectHandler_CreateSuccess(t *testing.T) {
	svc := &mockSubjectService{response: dto.SubjectResponse{ID: 1, Name: "Mathematics", TimeLimitMinutes: 60, WindowState: "open"}}
	app := newSubjectApp(svc)

	body, err := json.Marshal(dto.SubjectCreateRequest{Name: "Mathematics"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/subjects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(3), svc.lastTenantID)
	require.Equal(t, "Mathematics", svc.lastPayload.Name)
}

func TestSubjectHandler_QuotaDenialIsForbidden(t *testing.T) {
	svc := &mockSubjectService{err: service.ErrQuotaExceeded}
	app := newSubjectApp(svc)

	body, err := json.Marshal(dto.SubjectCreateRequest{Name: "Overflow"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/subjects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSubjectHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{"not found", service.ErrSubjectNotFound, fiber.StatusNotFound},
		{"tenant expired", service.ErrTenantExpired, fiber.StatusForbidden},
		{"generic", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockSubjectService{err: tc.err}
			app := newSubjectApp(svc)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/subjects/5", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}
