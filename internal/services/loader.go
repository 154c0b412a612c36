package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"hainguyen/cv-job-matching/internal/models"
	"hainguyen/cv-job-matching/internal/repositories"
)

// JobLoader bulk-imports scraped postings from a JSONL feed. Rows land in
// job_store first so the relational id exists before the vector document that
// carries it; the unique job_url constraint makes re-runs no-ops.
type JobLoader struct {
	jobs   repositories.JobRepository
	store  VectorStore
	logger *zap.Logger
}

type LoadStats struct {
	Total    int
	Inserted int
	Skipped  int
	Indexed  int
}

func NewJobLoader(jobs repositories.JobRepository, store VectorStore, logger *zap.Logger) *JobLoader {
	return &JobLoader{jobs: jobs, store: store, logger: logger}
}

// jobRecord tolerates the feed's loose typing; number_of_hires arrives as
// "1", 1, or "2 người".
type jobRecord struct {
	Name                  string      `json:"name"`
	JobTitle              string      `json:"job_title"`
	JobURL                string      `json:"job_url"`
	JobDescription        string      `json:"job_description"`
	CandidateRequirements string      `json:"candidate_requirements"`
	Benefits              string      `json:"benefits"`
	WorkLocation          string      `json:"work_location"`
	WorkTime              string      `json:"work_time"`
	JobTags               string      `json:"job_tags"`
	Skills                string      `json:"skills"`
	RelatedCategories     string      `json:"related_categories"`
	Salary                string      `json:"salary"`
	Experience            string      `json:"experience"`
	Deadline              string      `json:"deadline"`
	CompanyLogo           string      `json:"company_logo"`
	CompanyScale          string      `json:"company_scale"`
	CompanyField          string      `json:"company_field"`
	CompanyAddress        string      `json:"company_address"`
	Level                 string      `json:"level"`
	Education             string      `json:"education"`
	NumberOfHires         interface{} `json:"number_of_hires"`
	WorkType              string      `json:"work_type"`
	CompanyURL            string      `json:"company_url"`
	Timestamp             string      `json:"timestamp"`
}

// LoadFromFile imports the feed. When job_store already has rows the whole
// load is skipped, matching the boot-time preload semantics.
func (l *JobLoader) LoadFromFile(ctx context.Context, path string) (*LoadStats, error) {
	count, err := l.jobs.Count()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		l.logger.Info("skipping preload: job_store already populated", zap.Int64("rows", count))
		return &LoadStats{Skipped: int(count)}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open jobs file: %w", err)
	}
	defer file.Close()

	stats := &LoadStats{}
	var docs []VectorDocument

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		stats.Total++

		var record jobRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			l.logger.Warn("skipping malformed feed line", zap.Error(err))
			continue
		}

		job := record.toModel()
		inserted, err := l.jobs.Create(job)
		if err != nil {
			return nil, err
		}
		if !inserted {
			stats.Skipped++
			continue
		}
		stats.Inserted++

		docs = append(docs, VectorDocument{
			JobID:   job.ID,
			Content: buildDocumentContent(job),
			Metadata: map[string]string{
				"job_title":     job.JobTitle,
				"job_url":       job.JobURL,
				"work_location": job.WorkLocation,
				"skills":        job.Skills,
			},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read jobs file: %w", err)
	}

	if err := l.store.AddDocuments(ctx, docs); err != nil {
		return nil, err
	}
	stats.Indexed = len(docs)

	l.logger.Info("job feed loaded",
		zap.Int("total", stats.Total),
		zap.Int("inserted", stats.Inserted),
		zap.Int("indexed", stats.Indexed))
	return stats, nil
}

// VerifyJobConsistency cross-checks one posting between the relational row
// and its vector document.
func (l *JobLoader) VerifyJobConsistency(ctx context.Context, jobID int) (bool, error) {
	job, err := l.jobs.FindByID(jobID)
	if err != nil {
		return false, err
	}

	hit, err := l.store.GetByJobID(ctx, jobID)
	if err != nil {
		return false, err
	}
	if hit == nil {
		l.logger.Warn("job missing from vector store", zap.Int("job_id", jobID))
		return false, nil
	}

	consistent := hit.Metadata["job_url"] == job.JobURL &&
		hit.Metadata["job_title"] == job.JobTitle &&
		hit.Metadata["work_location"] == job.WorkLocation &&
		hit.Metadata["skills"] == job.Skills
	if !consistent {
		l.logger.Warn("job metadata drift between stores", zap.Int("job_id", jobID))
	}
	return consistent, nil
}

func (r *jobRecord) toModel() *models.JobPosting {
	return &models.JobPosting{
		CompanyName:           r.Name,
		JobTitle:              r.JobTitle,
		JobURL:                r.JobURL,
		JobDescription:        r.JobDescription,
		CandidateRequirements: r.CandidateRequirements,
		Benefits:              r.Benefits,
		WorkLocation:          r.WorkLocation,
		WorkTime:              r.WorkTime,
		JobTags:               r.JobTags,
		Skills:                r.Skills,
		RelatedCategories:     r.RelatedCategories,
		Salary:                r.Salary,
		Experience:            r.Experience,
		Deadline:              r.Deadline,
		CompanyLogo:           r.CompanyLogo,
		CompanyScale:          r.CompanyScale,
		CompanyField:          r.CompanyField,
		CompanyAddress:        r.CompanyAddress,
		Level:                 r.Level,
		Education:             r.Education,
		NumberOfHires:         parseHires(r.NumberOfHires),
		WorkType:              r.WorkType,
		CompanyURL:            r.CompanyURL,
		Timestamp:             r.Timestamp,
	}
}

func parseHires(value interface{}) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case string:
		fields := strings.Fields(v)
		if len(fields) == 0 {
			return 1
		}
		if f, err := strconv.ParseFloat(fields[0], 64); err == nil {
			return int(f)
		}
	}
	return 1
}

// buildDocumentContent is the embedded text: title, description, requirements
// and the raw skills column, matching what the retriever scores against.
func buildDocumentContent(job *models.JobPosting) string {
	skills, _ := json.Marshal(job.SkillList())
	return fmt.Sprintf("%s %s %s %s",
		job.JobTitle, job.JobDescription, job.CandidateRequirements, skills)
}
