package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/models"
	"github.com/examind-dev/examind-api/internal/repository"
)

func seedGradedResult(t *testing.T, db *gorm.DB) (models.Tenant, models.Question, models.Result) {
	t.Helper()

	tenant := models.Tenant{Name: "Acme", Email: "admin@acme.test", Tier: models.TenantTierStandard, Status: models.TenantStatusActive}
	require.NoError(t, db.Create(&tenant).Error)

	subject := models.Subject{TenantID: tenant.ID, Name: "Mathematics", TimeLimitMinutes: 60}
	require.NoError(t, db.Create(&subject).Error)

	question := models.Question{SubjectID: subject.ID, TenantID: tenant.ID, Seq: 1, Prompt: "2 + 2", CorrectOption: "4", TimeLimitSeconds: 60}
	require.NoError(t, question.SetOptions([]string{"3", "4"}))
	require.NoError(t, db.Create(&question).Error)

	deleted := models.Question{SubjectID: subject.ID, TenantID: tenant.ID, Seq: 2, Prompt: "3 + 3", CorrectOption: "6", TimeLimitSeconds: 60}
	require.NoError(t, deleted.SetOptions([]string{"5", "6"}))
	require.NoError(t, db.Create(&deleted).Error)

	result := models.Result{
		SessionID:         1,
		CandidateID:       1,
		SubjectID:         subject.ID,
		TenantID:          tenant.ID,
		CandidateName:     "Ada Lovelace",
		CandidateEmail:    "ada@example.com",
		CandidatePublicID: "C-AAAA11112222",
		SubjectName:       subject.Name,
		Score:             1,
		Total:             2,
	}
	require.NoError(t, result.EncodeBreakdown([]models.AnswerRecord{
		{QuestionID: question.ID, SelectedOption: "4", Correct: true},
		{QuestionID: deleted.ID, SelectedOption: "5", Correct: false},
	}))
	require.NoError(t, db.Create(&result).Error)

	// Simulate a bank edit between grading and review.
	require.NoError(t, db.Delete(&models.Question{}, deleted.ID).Error)

	return tenant, question, result
}

func newResultService(t *testing.T, db *gorm.DB, cache *redis.Client) ResultService {
	t.Helper()

	tenants := NewTenantService(repository.NewTenantRepository(db), zerolog.Nop())
	return NewResultService(
		repository.NewResultRepository(db),
		repository.NewQuestionRepository(db),
		tenants,
		cache,
		"examind",
		time.Minute,
		zerolog.Nop(),
	)
}

func TestVerifyByPublicID(t *testing.T) {
	db := newServiceTestDB(t)
	_, _, result := seedGradedResult(t, db)

	svc := newResultService(t, db, nil)

	verified, err := svc.VerifyByPublicID(context.Background(), result.CandidatePublicID)
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", verified.CandidateName)
	require.Equal(t, 1, verified.Score)
	require.Equal(t, 2, verified.Total)
	require.InDelta(t, 50.0, verified.Percentage, 0.001)

	_, err = svc.VerifyByPublicID(context.Background(), "C-UNKNOWN00000")
	require.ErrorIs(t, err, ErrResultNotFound)
}

func TestGetDetailedFallsBackForDeletedQuestions(t *testing.T) {
	db := newServiceTestDB(t)
	tenant, question, result := seedGradedResult(t, db)

	svc := newResultService(t, db, nil)

	detail, err := svc.GetDetailed(context.Background(), result.ID, tenant.ID)
	require.NoError(t, err)
	require.Len(t, detail.Answers, 2)

	require.Equal(t, question.Prompt, detail.Answers[0].Prompt)
	require.Equal(t, "4", detail.Answers[0].CorrectOption)
	require.True(t, detail.Answers[0].Correct)

	// The deleted question still appears, with placeholders instead of an
	// error for the whole view. Stored correctness is untouched.
	require.Equal(t, "N/A", detail.Answers[1].Prompt)
	require.Equal(t, "N/A", detail.Answers[1].CorrectOption)
	require.Equal(t, "5", detail.Answers[1].SelectedOption)
	require.False(t, detail.Answers[1].Correct)
}

func TestGetDetailedCrossTenantIsNotFound(t *testing.T) {
	db := newServiceTestDB(t)
	_, _, result := seedGradedResult(t, db)

	other := models.Tenant{Name: "Other", Email: "other@acme.test", Tier: models.TenantTierStandard, Status: models.TenantStatusActive}
	require.NoError(t, db.Create(&other).Error)

	svc := newResultService(t, db, nil)

	_, err := svc.GetDetailed(context.Background(), result.ID, other.ID)
	require.ErrorIs(t, err, ErrResultNotFound)
}

func TestListForTenantCachesResponses(t *testing.T) {
	db := newServiceTestDB(t)
	tenant, _, _ := seedGradedResult(t, db)

	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	svc := newResultService(t, db, cache)
	ctx := context.Background()

	first, err := svc.ListForTenant(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.True(t, mini.Exists("examind:results:1"))

	// Cached payload is served even when the row disappears underneath.
	require.NoError(t, db.Where("tenant_id = ?", tenant.ID).Delete(&models.Result{}).Error)

	second, err := svc.ListForTenant(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, first[0].ID, second[0].ID)
}

func TestDeleteInvalidatesCache(t *testing.T) {
	db := newServiceTestDB(t)
	tenant, _, result := seedGradedResult(t, db)

	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	svc := newResultService(t, db, cache)
	ctx := context.Background()

	_, err = svc.ListForTenant(ctx, tenant.ID)
	require.NoError(t, err)
	require.True(t, mini.Exists("examind:results:1"))

	require.NoError(t, svc.Delete(ctx, result.ID, tenant.ID))
	require.False(t, mini.Exists("examind:results:1"))

	refreshed, err := svc.ListForTenant(ctx, tenant.ID)
	require.NoError(t, err)
	require.Empty(t, refreshed)
}
