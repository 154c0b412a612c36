package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"hainguyen/cv-job-matching/internal/models"
)

type ApplicationRepository interface {
	Create(app *models.Application) error
	Exists(cvID, jobID int) (bool, error)
	ListByCV(cvID int, status string) ([]models.ApplicationItem, error)
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(app *models.Application) error {
	if err := r.db.Create(app).Error; err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (r *applicationRepository) Exists(cvID, jobID int) (bool, error) {
	var count int64
	err := r.db.Model(&models.Application{}).
		Where("cv_id = ? AND job_id = ?", cvID, jobID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check application: %w", err)
	}
	return count > 0, nil
}

// ListByCV joins each application with its posting so the history view does
// not need a second round-trip per row.
func (r *applicationRepository) ListByCV(cvID int, status string) ([]models.ApplicationItem, error) {
	q := r.db.Model(&models.Application{}).
		Select(`applications.id, applications.cv_id, applications.job_id,
			job_store.job_title, job_store.name AS company_name, job_store.salary,
			job_store.work_location, applications.status, applications.applied_at`).
		Joins("JOIN job_store ON job_store.id = applications.job_id").
		Where("applications.cv_id = ?", cvID).
		Order("applications.applied_at DESC")
	if status != "" {
		q = q.Where("applications.status = ?", status)
	}

	var rows []struct {
		ID           int
		CVID         int `gorm:"column:cv_id"`
		JobID        int `gorm:"column:job_id"`
		JobTitle     string
		CompanyName  string
		Salary       string
		WorkLocation string
		Status       string
		AppliedAt    string
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list applications for cv %d: %w", cvID, err)
	}

	items := make([]models.ApplicationItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.ApplicationItem{
			ID:           row.ID,
			CVID:         row.CVID,
			JobID:        row.JobID,
			JobTitle:     row.JobTitle,
			CompanyName:  row.CompanyName,
			Salary:       row.Salary,
			WorkLocation: row.WorkLocation,
			Status:       row.Status,
			AppliedAt:    row.AppliedAt,
		})
	}
	return items, nil
}
