package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/models"
)

func seedProctorFixtures(t *testing.T, db *gorm.DB) (models.Candidate, models.Session) {
	t.Helper()

	candidate := models.Candidate{TenantID: 1, SubjectID: 1, Name: "Grace", Email: "grace@example.com", PublicID: "C-BBBB11112222"}
	require.NoError(t, db.Create(&candidate).Error)

	session := models.Session{CandidateID: candidate.ID, SubjectID: 1, TenantID: 1, State: models.SessionStateActive, StartedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&session).Error)

	return candidate, session
}

func TestProctorEventsOrderedByCaptureTime(t *testing.T) {
	db := newTestDB(t)
	repo := NewProctorEventRepository(db)
	ctx := context.Background()

	candidate, session := seedProctorFixtures(t, db)

	base := time.Date(2026, time.April, 1, 10, 0, 0, 0, time.UTC)
	late := models.ProctorEvent{TenantID: 1, SessionID: session.ID, CandidateID: candidate.ID, ImageURL: "https://cdn.test/2.jpg", CapturedAt: base.Add(time.Minute)}
	early := models.ProctorEvent{TenantID: 1, SessionID: session.ID, CandidateID: candidate.ID, ImageURL: "https://cdn.test/1.jpg", CapturedAt: base}
	require.NoError(t, repo.Create(ctx, &late))
	require.NoError(t, repo.Create(ctx, &early))

	events, err := repo.ListForTenant(ctx, ProctorEventFilter{TenantID: 1})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, early.ID, events[0].ID)
	require.Equal(t, late.ID, events[1].ID)
	require.Equal(t, "Grace", events[0].Candidate.Name)
}

func TestProctorEventsTenantIsolation(t *testing.T) {
	db := newTestDB(t)
	repo := NewProctorEventRepository(db)
	ctx := context.Background()

	candidate, session := seedProctorFixtures(t, db)

	mine := models.ProctorEvent{TenantID: 1, SessionID: session.ID, CandidateID: candidate.ID, ImageURL: "https://cdn.test/mine.jpg", CapturedAt: time.Now().UTC()}
	theirs := models.ProctorEvent{TenantID: 2, SessionID: session.ID, CandidateID: candidate.ID, ImageURL: "https://cdn.test/theirs.jpg", CapturedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, &mine))
	require.NoError(t, repo.Create(ctx, &theirs))

	events, err := repo.ListForTenant(ctx, ProctorEventFilter{TenantID: 1})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, mine.ID, events[0].ID)

	// Cross-tenant reads and deletes miss.
	_, err = repo.GetOwned(ctx, theirs.ID, 1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.ErrorIs(t, repo.Delete(ctx, theirs.ID, 1), gorm.ErrRecordNotFound)
}

func TestProctorEventsFilterBySessionAndCandidate(t *testing.T) {
	db := newTestDB(t)
	repo := NewProctorEventRepository(db)
	ctx := context.Background()

	candidate, session := seedProctorFixtures(t, db)

	other := models.Candidate{TenantID: 1, SubjectID: 1, Name: "Alan", Email: "alan@example.com", PublicID: "C-CCCC11112222"}
	require.NoError(t, db.Create(&other).Error)
	otherSession := models.Session{CandidateID: other.ID, SubjectID: 1, TenantID: 1, State: models.SessionStateActive, StartedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&otherSession).Error)

	first := models.ProctorEvent{TenantID: 1, SessionID: session.ID, CandidateID: candidate.ID, ImageURL: "https://cdn.test/a.jpg", CapturedAt: time.Now().UTC()}
	second := models.ProctorEvent{TenantID: 1, SessionID: otherSession.ID, CandidateID: other.ID, ImageURL: "https://cdn.test/b.jpg", CapturedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))

	bySession, err := repo.ListForTenant(ctx, ProctorEventFilter{TenantID: 1, SessionID: uintPtr(otherSession.ID)})
	require.NoError(t, err)
	require.Len(t, bySession, 1)
	require.Equal(t, second.ID, bySession[0].ID)

	byCandidate, err := repo.ListForTenant(ctx, ProctorEventFilter{TenantID: 1, CandidateID: uintPtr(candidate.ID)})
	require.NoError(t, err)
	require.Len(t, byCandidate, 1)
	require.Equal(t, first.ID, byCandidate[0].ID)
}
