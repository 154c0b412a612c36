package models

// MatchRequest drives POST /api/v1/match. Exactly one of CVID / CVText must be
// set. Filters accepts scalars or lists under the six recognized keys; anything
// else is dropped at the handler boundary with a warning.
type MatchRequest struct {
	CVID      int                    `json:"cv_id"`
	CVText    string                 `json:"cv_text"`
	Filters   map[string]interface{} `json:"filters"`
	SessionID string                 `json:"session_id"`
}

type MatchResponse struct {
	Name            string       `json:"name"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	CVSkills        []string     `json:"cv_skills"`
	CareerObjective string       `json:"career_objective"`
	Education       []Education  `json:"education"`
	Experience      []Experience `json:"experience"`
	MatchedJobs     []MatchedJob `json:"matched_jobs"`
	Suggestions     []Suggestion `json:"suggestions"`
	SessionID       string       `json:"session_id"`
}

// MatchedJob is the enriched, normalized form of one LLM match: identifier
// reconciled against job_store, score clamped to [0,1], full posting detail
// joined in. This is also the shape cached in match_logs.
type MatchedJob struct {
	JobID              int      `json:"job_id"`
	JobTitle           string   `json:"job_title"`
	JobURL             string   `json:"job_url"`
	MatchScore         float64  `json:"match_score"`
	MatchedSkills      []string `json:"matched_skills"`
	MatchedAspirations []string `json:"matched_aspirations"`
	MatchedExperience  []string `json:"matched_experience"`
	MatchedEducation   []string `json:"matched_education"`
	WorkLocation       string   `json:"work_location"`
	Salary             string   `json:"salary"`
	Deadline           string   `json:"deadline"`
	Benefits           string   `json:"benefits"`
	JobType            string   `json:"job_type"`
	ExperienceRequired string   `json:"experience_required"`
	EducationRequired  string   `json:"education_required"`
	CompanyName        string   `json:"company_name"`
	Skills             []string `json:"skills"`
	WhyMatch           string   `json:"why_match,omitempty"`
	JobDescription     string   `json:"job_description,omitempty"`
}

type Suggestion struct {
	Topic      string `json:"topic"`
	Suggestion string `json:"suggestion"`
}

type UploadCVResponse struct {
	Message string  `json:"message"`
	CVID    int     `json:"cv_id"`
	CVInfo  *CVInfo `json:"cv_info"`
}

type CVListItem struct {
	ID         int     `json:"id"`
	Filename   string  `json:"filename"`
	CVInfo     *CVInfo `json:"cv_info"`
	UploadedAt string  `json:"uploaded_at"`
}

type ApplyRequest struct {
	CVID        int    `json:"cv_id"`
	JobID       int    `json:"job_id"`
	CoverLetter string `json:"cover_letter"`
	Status      string `json:"status"`
}

type ApplyResponse struct {
	ApplicationID int    `json:"application_id"`
	CVID          int    `json:"cv_id"`
	JobID         int    `json:"job_id"`
	Status        string `json:"status"`
	AppliedAt     string `json:"applied_at"`
	Message       string `json:"message"`
}

type ApplicationItem struct {
	ID           int    `json:"id"`
	CVID         int    `json:"cv_id"`
	JobID        int    `json:"job_id"`
	JobTitle     string `json:"job_title"`
	CompanyName  string `json:"company_name"`
	Salary       string `json:"salary"`
	WorkLocation string `json:"work_location"`
	Status       string `json:"status"`
	AppliedAt    string `json:"applied_at"`
}

// CVInsights is the flat shape the analysis model returns. Scores arrive
// clamped: quality and competitive to [0,10], completeness and market fit to
// [0,1].
type CVInsights struct {
	QualityScore      float64  `json:"quality_score" mapstructure:"quality_score"`
	CompletenessScore float64  `json:"completeness_score" mapstructure:"completeness_score"`
	HasPortfolio      bool     `json:"has_portfolio" mapstructure:"has_portfolio"`
	HasCertifications bool     `json:"has_certifications" mapstructure:"has_certifications"`
	HasProjects       bool     `json:"has_projects" mapstructure:"has_projects"`
	MissingSections   []string `json:"missing_sections" mapstructure:"missing_sections"`
	MarketFitScore    float64  `json:"market_fit_score" mapstructure:"market_fit_score"`
	ExperienceLevel   string   `json:"experience_level" mapstructure:"experience_level"`
	SalaryRange       string   `json:"salary_range" mapstructure:"salary_range"`
	CompetitiveScore  float64  `json:"competitive_score" mapstructure:"competitive_score"`
	Strengths         []string `json:"strengths" mapstructure:"strengths"`
	Weaknesses        []string `json:"weaknesses" mapstructure:"weaknesses"`
}

type CVCompleteness struct {
	HasPortfolio      bool     `json:"has_portfolio"`
	HasCertifications bool     `json:"has_certifications"`
	HasProjects       bool     `json:"has_projects"`
	MissingSections   []string `json:"missing_sections"`
}

type CVMarketFit struct {
	SkillMatchRate   float64 `json:"skill_match_rate"`
	ExperienceLevel  string  `json:"experience_level"`
	SalaryRange      string  `json:"salary_range"`
	CompetitiveScore float64 `json:"competitive_score"`
}

type CVInsightsResponse struct {
	CVID         int            `json:"cv_id"`
	QualityScore float64        `json:"quality_score"`
	Completeness CVCompleteness `json:"completeness"`
	MarketFit    CVMarketFit    `json:"market_fit"`
	Strengths    []string       `json:"strengths"`
	Weaknesses   []string       `json:"weaknesses"`
	LastAnalyzed string         `json:"last_analyzed"`
}

// CVImprovement is one actionable edit for a resume section. Current and
// SuggestedAdd stay nil when the model has no concrete items to point at.
type CVImprovement struct {
	Section      string   `json:"section"`
	Current      []string `json:"current"`
	SuggestedAdd []string `json:"suggested_add"`
	Suggestion   string   `json:"suggestion"`
	Reason       string   `json:"reason"`
	Priority     string   `json:"priority"`
	Impact       string   `json:"impact"`
}

type CVImproveResponse struct {
	CVID         int             `json:"cv_id"`
	Improvements []CVImprovement `json:"improvements"`
}

type JobSearchRequest struct {
	Query   string                 `json:"query"`
	Filters map[string]interface{} `json:"filters"`
	CVID    int                    `json:"cv_id"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
}

type JobSearchResult struct {
	JobID        int      `json:"job_id"`
	JobTitle     string   `json:"job_title"`
	CompanyName  string   `json:"company_name"`
	MatchScore   *float64 `json:"match_score,omitempty"`
	Salary       string   `json:"salary"`
	WorkLocation string   `json:"work_location"`
	WorkType     string   `json:"work_type"`
	Deadline     string   `json:"deadline"`
	WhyMatch     string   `json:"why_match,omitempty"`
}
