package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"hainguyen/cv-job-matching/internal/models"
)

type MatchLogRepository interface {
	Create(log *models.MatchLog) error
	LatestByCV(cvID int) (*models.MatchLog, error)
}

type matchLogRepository struct {
	db *gorm.DB
}

func NewMatchLogRepository(db *gorm.DB) MatchLogRepository {
	return &matchLogRepository{db: db}
}

func (r *matchLogRepository) Create(log *models.MatchLog) error {
	if err := r.db.Create(log).Error; err != nil {
		return fmt.Errorf("failed to create match log: %w", err)
	}
	return nil
}

// LatestByCV returns the newest run for a CV, or nil when none exists.
func (r *matchLogRepository) LatestByCV(cvID int) (*models.MatchLog, error) {
	var log models.MatchLog
	err := r.db.Where("cv_id = ?", cvID).
		Order("created_at DESC").
		First(&log).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest match log for cv %d: %w", cvID, err)
	}
	return &log, nil
}
