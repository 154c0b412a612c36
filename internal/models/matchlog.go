package models

import "time"

// MatchLog holds one matching run per row. The newest row per cv_id doubles as
// the match cache; older rows are kept only as history.
type MatchLog struct {
	ID              int       `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID       string    `gorm:"type:text" json:"session_id"`
	CVID            int       `gorm:"column:cv_id;index" json:"cv_id"`
	MatchedJobsJSON string    `gorm:"type:text" json:"matched_jobs_json"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MatchLog) TableName() string {
	return "match_logs"
}
