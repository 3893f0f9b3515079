package handler_test

import (
	"context"
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

type mockResultService struct {
	verifyResponse dto.ResultResponse
	listResponse   []dto.ResultResponse
	detailResponse dto.ResultDetailResponse
	err            error

	lastPublicID string
	lastTenantID uint
	lastResultID uint
}

func (m *mockResultService) VerifyByPublicID(_ context.Context, publicID string) (dto.ResultResponse, error) {
	m.lastPublicID = publicID
	if m.err != nil {
		return dto.ResultResponse{}, m.err
	}
	return m.verifyResponse, nil
}

func (m *mockResultService) GetDetailed(_ context.Context, resultID, tenantID uint) (dto.ResultDetailResponse, error) {
	m.lastResultID = resultID
	m.lastTenantID = tenantID
	if m.err != nil {
		return dto.ResultDetailResponse{}, m.err
	}
	return m.detailResponse, nil
}

func (m *mockResultService) ListForTenant(_ context.Context, tenantID uint) ([]dto.ResultResponse, error) {
	m.lastTenantID = tenantID
	if m.err != nil {
		return nil, m.err
	}
	return m.listResponse, nil
}

func (m *mockResultService) Delete(_ context.Context, resultID, tenantID uint) error {
	m.lastResultID = resultID
	m.lastTenantID = tenantID
	return m.err
}

func newResultApp(svc service.ResultService) *fiber.App {
	app := fiber.New()
	h := handler.NewResultHandler(svc, zerolog.New(io.Discard))

	// Verification is mounted without any auth context.
	h.RegisterPublic(app.Group("/api/v1/results"))

	admin := app.Group("/api/v1/admin/results", func(c *fiber.Ctx) error {
		c.Locals("tenant_id", uint(3))
		return c.Next()
	})
	h.RegisterTenant(admin)

	return app
}

func TestResultHandler_PublicVerification(t *testing.T) {
	svc := &mockResultService{verifyResponse: dto.ResultResponse{
		ID:                9,
		CandidateName:     "Ada Lovelace",
		CandidatePublicID: "C-AAAA11112222",
		SubjectName:       "Mathematics",
		Score:             4,
		Total:             5,
		Percentage:        80,
	}}
	app := newResultApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/verify/C-AAAA11112222", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "C-AAAA11112222", svc.lastPublicID)

	var response struct {
		Success bool               `json:"success"`
		Data    dto.ResultResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "Ada Lovelace", response.Data.CandidateName)
	require.InDelta(t, 80.0, response.Data.Percentage, 0.001)
}

func TestResultHandler_PublicVerificationUnknownID(t *testing.T) {
	svc := &mockResultService{err: service.ErrResultNotFound}
	app := newResultApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/verify/C-UNKNOWN00000", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestResultHandler_ListUsesTenantFromContext(t *testing.T) {
	svc := &mockResultService{listResponse: []dto.ResultResponse{{ID: 1}, {ID: 2}}}
	app := newResultApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/results", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(3), svc.lastTenantID)
}

func TestResultHandler_DetailAndDelete(t *testing.T) {
	svc := &mockResultService{detailResponse: dto.ResultDetailResponse{
		ResultResponse: dto.ResultResponse{ID: 4, Score: 1, Total: 2},
		Answers:        []dto.AnswerDetail{{QuestionID: 1, Prompt: "2 + 2", SelectedOption: "4", CorrectOption: "4", Correct: true}},
	}}
	app := newResultApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/results/4", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(4), svc.lastResultID)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/admin/results/4", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestResultHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{"not found", service.ErrResultNotFound, fiber.StatusNotFound},
		{"tenant expired", service.ErrTenantExpired, fiber.StatusForbidden},
		{"generic", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockResultService{err: tc.err}
			app := newResultApp(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/results", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}
