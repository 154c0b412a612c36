package services

import (
	"go.uber.org/zap"

	"hainguyen/cv-job-matching/internal/models"
	"hainguyen/cv-job-matching/internal/repositories"
)

const enrichBatchSize = 100

// Enricher joins normalized matches back onto job_store. The relational row
// is authoritative: title and URL from the model are overwritten, and matches
// whose id no longer exists are dropped.
type Enricher interface {
	Enrich(matches []models.MatchedJob) ([]models.MatchedJob, error)
}

type enricher struct {
	jobs   repositories.JobRepository
	logger *zap.Logger
}

func NewEnricher(jobs repositories.JobRepository, logger *zap.Logger) Enricher {
	return &enricher{jobs: jobs, logger: logger}
}

func (e *enricher) Enrich(matches []models.MatchedJob) ([]models.MatchedJob, error) {
	if len(matches) == 0 {
		return matches, nil
	}

	byID := make(map[int]models.JobPosting, len(matches))
	for start := 0; start < len(matches); start += enrichBatchSize {
		end := start + enrichBatchSize
		if end > len(matches) {
			end = len(matches)
		}
		ids := make([]int, 0, end-start)
		for _, match := range matches[start:end] {
			ids = append(ids, match.JobID)
		}
		jobs, err := e.jobs.FindByIDs(ids)
		if err != nil {
			return nil, err
		}
		for _, job := range jobs {
			byID[job.ID] = job
		}
	}

	enriched := make([]models.MatchedJob, 0, len(matches))
	for _, match := range matches {
		job, ok := byID[match.JobID]
		if !ok {
			e.logger.Warn("dropping match without a stored posting", zap.Int("job_id", match.JobID))
			continue
		}

		match.JobTitle = job.JobTitle
		match.JobURL = job.JobURL
		match.WorkLocation = job.WorkLocation
		match.Salary = job.Salary
		match.Deadline = NormalizeDeadline(job.Deadline)
		match.Benefits = job.Benefits
		match.JobType = job.WorkType
		match.ExperienceRequired = job.Experience
		match.EducationRequired = job.Education
		match.CompanyName = job.CompanyName
		match.Skills = job.SkillList()
		match.JobDescription = job.JobDescription
		enriched = append(enriched, match)
	}
	return enriched, nil
}
