package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/models"
)

// SessionRepository defines persistence operations for exam sessions.
type SessionRepository interface {
	GetByID(ctx context.Context, id uint) (models.Session, error)
	GetActiveByCandidate(ctx context.Context, candidateID uint) (models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	TransitionState(ctx context.Context, id uint, from, to string) (bool, error)
	FinalizeSubmission(ctx context.Context, id uint, result *models.Result) (bool, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository instantiates a GORM-backed repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) GetByID(ctx context.Context, id uint) (models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *sessionRepository) GetActiveByCandidate(ctx context.Context, candidateID uint) (models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Where("candidate_id = ? AND state = ?", candidateID, models.SessionStateActive).
		Order("started_at DESC").
		First(&session).Error
	if err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// TransitionState performs the compare-and-swap on the session state. It
// reports false when the session was not in the expected source state, which
// is how double submissions are detected without a read-then-write race.
func (r *sessionRepository) TransitionState(ctx context.Context, id uint, from, to string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND state = ?", id, from).
		Update("state", to)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		var session models.Session
		if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, gorm.ErrRecordNotFound
			}
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// FinalizeSubmission moves the session out of the active state and records
// the graded result in one transaction. A failed result insert rolls the
// state change back too, so the session stays active and a retry can still
// grade. Reports false when the session was no longer active.
func (r *sessionRepository) FinalizeSubmission(ctx context.Context, id uint, result *models.Result) (bool, error) {
	swapped := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&models.Session{}).
			Where("id = ? AND state = ?", id, models.SessionStateActive).
			Update("state", models.SessionStateSubmitted)
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			var session models.Session
			return tx.First(&session, id).Error
		}

		swapped = true
		return tx.Create(result).Error
	})
	if err != nil {
		return false, err
	}
	return swapped, nil
}
