package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/examind-dev/examind-api/internal/dto"
	"github.com/examind-dev/examind-api/internal/handler"
)

type stubResultService struct {
	response dto.ResultResponse
}

func (s stubResultService) VerifyByPublicID(context.Context, string) (dto.ResultResponse, error) {
	return s.response, nil
}

func (s stubResultService) GetDetailed(context.Context, uint, uint) (dto.ResultDetailResponse, error) {
	return dto.ResultDetailResponse{}, nil
}

func (s stubResultService) ListForTenant(context.Context, uint) ([]dto.ResultResponse, error) {
	return nil, nil
}

func (s stubResultService) Delete(context.Context, uint, uint) error {
	return nil
}

func TestResultVerificationContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "result_verification.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	serviceStub := stubResultService{response: dto.ResultResponse{
		ID:                12,
		CandidateName:     "Ada Lovelace",
		CandidateEmail:    "ada@example.com",
		CandidatePublicID: "C-AAAA11112222",
		SubjectName:       "Mathematics",
		Score:             4,
		Total:             5,
		Percentage:        80,
		CreatedAt:         time.Now().UTC(),
	}}

	resultHandler := handler.NewResultHandler(serviceStub, zerolog.Nop())

	app := fiber.New()
	resultHandler.RegisterPublic(app.Group("/api/v1/results"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/results/verify/C-AAAA11112222", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
