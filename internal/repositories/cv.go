package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"hainguyen/cv-job-matching/internal/models"
)

type CVRepository interface {
	Create(cv *models.CV) error
	FindByID(id int) (*models.CV, error)
	List(limit, offset int) ([]models.CV, int64, error)
	Delete(id int) error
}

type cvRepository struct {
	db *gorm.DB
}

func NewCVRepository(db *gorm.DB) CVRepository {
	return &cvRepository{db: db}
}

func (r *cvRepository) Create(cv *models.CV) error {
	if err := r.db.Create(cv).Error; err != nil {
		return fmt.Errorf("failed to create cv: %w", err)
	}
	return nil
}

func (r *cvRepository) FindByID(id int) (*models.CV, error) {
	var cv models.CV
	if err := r.db.Where("id = ?", id).First(&cv).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("cv %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to find cv %d: %w", id, err)
	}
	return &cv, nil
}

func (r *cvRepository) List(limit, offset int) ([]models.CV, int64, error) {
	var total int64
	if err := r.db.Model(&models.CV{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count cvs: %w", err)
	}

	var cvs []models.CV
	err := r.db.Order("uploaded_at DESC").Limit(limit).Offset(offset).Find(&cvs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cvs: %w", err)
	}
	return cvs, total, nil
}

// Delete removes the CV together with its applications and cached match runs.
func (r *cvRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cv_id = ?", id).Delete(&models.Application{}).Error; err != nil {
			return fmt.Errorf("failed to delete applications for cv %d: %w", id, err)
		}
		if err := tx.Where("cv_id = ?", id).Delete(&models.MatchLog{}).Error; err != nil {
			return fmt.Errorf("failed to delete match logs for cv %d: %w", id, err)
		}
		result := tx.Where("id = ?", id).Delete(&models.CV{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete cv %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
