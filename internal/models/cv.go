package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// CV is a stored resume: the original filename plus the structured fields
// extracted by the LLM, kept as a JSON blob the way the extractor produced it.
type CV struct {
	ID         int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename   string    `gorm:"type:text" json:"filename"`
	CVInfoJSON string    `gorm:"type:text" json:"cv_info_json"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (CV) TableName() string {
	return "cv_store"
}

func (c *CV) Info() (*CVInfo, error) {
	var info CVInfo
	if err := json.Unmarshal([]byte(c.CVInfoJSON), &info); err != nil {
		return nil, fmt.Errorf("failed to parse cv_info_json for cv %d: %w", c.ID, err)
	}
	return &info, nil
}

func (c *CV) SetInfo(info *CVInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal cv info: %w", err)
	}
	c.CVInfoJSON = string(data)
	return nil
}

type CVInfo struct {
	Name            string       `json:"name"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	CareerObjective string       `json:"career_objective"`
	Skills          []string     `json:"skills"`
	Education       []Education  `json:"education"`
	Experience      []Experience `json:"experience"`
}

// Education dates are either YYYY-MM-DD, "Present" for ongoing studies, or ""
// when the source value could not be parsed.
type Education struct {
	School    string `json:"school"`
	Degree    string `json:"degree"`
	Major     string `json:"major"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type Experience struct {
	Company     string `json:"company"`
	Title       string `json:"title"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
}
