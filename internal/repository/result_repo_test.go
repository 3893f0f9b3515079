package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/models"
)

func TestResultGetByPublicID(t *testing.T) {
	db := newTestDB(t)
	repo := NewResultRepository(db)
	ctx := context.Background()

	older := models.Result{
		SessionID:         1,
		CandidateID:       1,
		SubjectID:         1,
		TenantID:          1,
		CandidateName:     "Ada Lovelace",
		CandidatePublicID: "C-AAAA11112222",
		SubjectName:       "Mathematics",
		Score:             3,
		Total:             5,
		CreatedAt:         time.Now().Add(-time.Hour),
	}
	newer := models.Result{
		SessionID:         2,
		CandidateID:       1,
		SubjectID:         1,
		TenantID:          1,
		CandidateName:     "Ada Lovelace",
		CandidatePublicID: "C-AAAA11112222",
		SubjectName:       "Mathematics",
		Score:             5,
		Total:             5,
		CreatedAt:         time.Now(),
	}
	require.NoError(t, repo.Create(ctx, &older))
	require.NoError(t, repo.Create(ctx, &newer))

	found, err := repo.GetByPublicID(ctx, "C-AAAA11112222")
	require.NoError(t, err)
	require.Equal(t, newer.ID, found.ID)
	require.Equal(t, 5, found.Score)

	_, err = repo.GetByPublicID(ctx, "C-DOESNOTEXIST")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestResultInternalIDIsNotAPublicLookupKey(t *testing.T) {
	db := newTestDB(t)
	repo := NewResultRepository(db)
	ctx := context.Background()

	result := models.Result{SessionID: 1, CandidateID: 7, SubjectID: 1, TenantID: 1, CandidatePublicID: "C-BBBB11112222", Score: 4, Total: 5}
	require.NoError(t, repo.Create(ctx, &result))

	// Probing the public route with an internal numeric key must miss even
	// when a row with that primary key exists.
	_, err := repo.GetByPublicID(ctx, "1")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestResultTenantScopedAccess(t *testing.T) {
	db := newTestDB(t)
	repo := NewResultRepository(db)
	ctx := context.Background()

	mine := models.Result{SessionID: 1, CandidateID: 1, SubjectID: 1, TenantID: 1, CandidatePublicID: "C-AAAA00000001", Score: 2, Total: 3}
	theirs := models.Result{SessionID: 2, CandidateID: 2, SubjectID: 2, TenantID: 2, CandidatePublicID: "C-AAAA00000002", Score: 3, Total: 3}
	require.NoError(t, repo.Create(ctx, &mine))
	require.NoError(t, repo.Create(ctx, &theirs))

	results, err := repo.ListForTenant(ctx, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, mine.ID, results[0].ID)

	_, err = repo.GetOwned(ctx, theirs.ID, 1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.ErrorIs(t, repo.Delete(ctx, theirs.ID, 1), gorm.ErrRecordNotFound)
	require.NoError(t, repo.Delete(ctx, mine.ID, 1))
}
