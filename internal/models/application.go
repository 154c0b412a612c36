package models

import "time"

// Application links a CV to a posting. The composite unique index backs the
// one-application-per-(cv, job) rule; handlers still probe first so callers get
// a friendly conflict message instead of a raw constraint error.
type Application struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	CVID        int       `gorm:"column:cv_id;not null;uniqueIndex:idx_applications_cv_job" json:"cv_id"`
	JobID       int       `gorm:"column:job_id;not null;uniqueIndex:idx_applications_cv_job" json:"job_id"`
	Status      string    `gorm:"type:text;default:'applied'" json:"status"`
	CoverLetter string    `gorm:"type:text" json:"cover_letter"`
	AppliedAt   time.Time `gorm:"autoCreateTime" json:"applied_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Application) TableName() string {
	return "applications"
}
