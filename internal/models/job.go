package models

import "strings"

// JobPosting mirrors the scraped posting record. Postings are inserted once by
// the bulk loader and never mutated; the posting URL is the natural key that
// makes reloads idempotent.
type JobPosting struct {
	ID                    int    `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyName           string `gorm:"column:name;type:text" json:"name"`
	JobTitle              string `gorm:"type:text" json:"job_title"`
	JobURL                string `gorm:"column:job_url;type:text;uniqueIndex" json:"job_url"`
	JobDescription        string `gorm:"type:text" json:"job_description"`
	CandidateRequirements string `gorm:"type:text" json:"candidate_requirements"`
	Benefits              string `gorm:"type:text" json:"benefits"`
	WorkLocation          string `gorm:"type:text;index:idx_job_store_filters" json:"work_location"`
	WorkTime              string `gorm:"type:text" json:"work_time"`
	JobTags               string `gorm:"type:text" json:"job_tags"`
	Skills                string `gorm:"type:text;index:idx_job_store_filters" json:"skills"`
	RelatedCategories     string `gorm:"type:text" json:"related_categories"`
	Salary                string `gorm:"type:text" json:"salary"`
	Experience            string `gorm:"type:text;index:idx_job_store_filters" json:"experience"`
	Deadline              string `gorm:"type:text" json:"deadline"`
	CompanyLogo           string `gorm:"type:text" json:"company_logo"`
	CompanyScale          string `gorm:"type:text" json:"company_scale"`
	CompanyField          string `gorm:"type:text" json:"company_field"`
	CompanyAddress        string `gorm:"type:text" json:"company_address"`
	Level                 string `gorm:"type:text" json:"level"`
	Education             string `gorm:"type:text;index:idx_job_store_filters" json:"education"`
	NumberOfHires         int    `json:"number_of_hires"`
	WorkType              string `gorm:"type:text;index:idx_job_store_filters" json:"work_type"`
	CompanyURL            string `gorm:"type:text" json:"company_url"`
	Timestamp             string `gorm:"type:text" json:"timestamp"`
}

func (JobPosting) TableName() string {
	return "job_store"
}

// SkillList splits the semicolon-joined skills column.
func (j *JobPosting) SkillList() []string {
	return SplitSkills(j.Skills)
}

func SplitSkills(raw string) []string {
	var skills []string
	for _, part := range strings.Split(raw, ";") {
		if part = strings.TrimSpace(part); part != "" {
			skills = append(skills, part)
		}
	}
	return skills
}
