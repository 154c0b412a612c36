package repositories

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hainguyen/cv-job-matching/internal/models"
)

// FilterKeys are the only filter keys the matching pipeline recognizes.
// Handlers drop everything else before it reaches the repository.
var FilterKeys = map[string]bool{
	"job_type":       true,
	"work_location":  true,
	"experience":     true,
	"education":      true,
	"skills":         true,
	"deadline_after": true,
}

type JobRepository interface {
	Create(job *models.JobPosting) (bool, error)
	Count() (int64, error)
	FindByID(id int) (*models.JobPosting, error)
	FindByIDs(ids []int) ([]models.JobPosting, error)
	FilteredJobIDs(filters map[string]interface{}) ([]int, error)
	List(limit, offset int) ([]models.JobPosting, int64, error)
	Search(query string, filters map[string]interface{}, limit, offset int) ([]models.JobPosting, int64, error)
	Distribution(column string, limit int) ([]DistributionRow, error)
}

type DistributionRow struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type jobRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewJobRepository(db *gorm.DB, logger *zap.Logger) JobRepository {
	return &jobRepository{db: db, logger: logger}
}

// Create inserts a posting, ignoring duplicates on job_url so reloading the
// same feed is a no-op. Returns whether a row was actually inserted.
func (r *jobRepository) Create(job *models.JobPosting) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_url"}},
		DoNothing: true,
	}).Create(job)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create job posting: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *jobRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.JobPosting{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count job postings: %w", err)
	}
	return count, nil
}

func (r *jobRepository) FindByID(id int) (*models.JobPosting, error) {
	var job models.JobPosting
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("job %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to find job %d: %w", id, err)
	}
	return &job, nil
}

func (r *jobRepository) FindByIDs(ids []int) ([]models.JobPosting, error) {
	var jobs []models.JobPosting
	if len(ids) == 0 {
		return jobs, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to find jobs: %w", err)
	}
	return jobs, nil
}

// FilteredJobIDs narrows the candidate set by structured predicates. A nil
// result means "no restriction": both when no filters were supplied and when
// the supplied filters matched zero rows. The zero-row fallback is deliberate,
// the product prefers showing best matches over an empty page.
func (r *jobRepository) FilteredJobIDs(filters map[string]interface{}) ([]int, error) {
	if len(filters) == 0 {
		return nil, nil
	}

	query := r.db.Model(&models.JobPosting{})

	for key, value := range filters {
		if !FilterKeys[key] || value == nil {
			continue
		}
		switch key {
		case "job_type":
			if list := toStringList(value); list != nil {
				query = query.Where("work_type IN ?", list)
			} else {
				query = query.Where("work_type = ?", value)
			}
		case "work_location":
			if list := toStringList(value); list != nil {
				query = query.Where("work_location IN ?", list)
			} else {
				query = query.Where("work_location LIKE ?", "%"+fmt.Sprint(value)+"%")
			}
		case "experience":
			if list := toStringList(value); list != nil {
				query = query.Where("experience IN ?", list)
			} else {
				query = query.Where("experience = ?", value)
			}
		case "education":
			if list := toStringList(value); list != nil {
				query = query.Where("education IN ?", list)
			} else {
				query = query.Where("education = ?", value)
			}
		case "skills":
			if list := toStringList(value); list != nil {
				var conds []string
				var args []interface{}
				for _, skill := range list {
					conds = append(conds, "LOWER(skills) LIKE ?")
					args = append(args, "%"+strings.ToLower(skill)+"%")
				}
				query = query.Where(strings.Join(conds, " OR "), args...)
			} else {
				query = query.Where("LOWER(skills) LIKE ?", "%"+strings.ToLower(fmt.Sprint(value))+"%")
			}
		case "deadline_after":
			query = query.Where("deadline > ?", value)
		}
	}

	var ids []int
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to filter jobs: %w", err)
	}

	if len(ids) == 0 {
		r.logger.Warn("no jobs matched filters, falling back to unfiltered retrieval",
			zap.Any("filters", filters))
		return nil, nil
	}

	r.logger.Info("filtered jobs", zap.Int("count", len(ids)))
	return ids, nil
}

func (r *jobRepository) List(limit, offset int) ([]models.JobPosting, int64, error) {
	total, err := r.Count()
	if err != nil {
		return nil, 0, err
	}

	var jobs []models.JobPosting
	if err := r.db.Limit(limit).Offset(offset).Find(&jobs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, total, nil
}

func (r *jobRepository) Search(query string, filters map[string]interface{}, limit, offset int) ([]models.JobPosting, int64, error) {
	q := r.db.Model(&models.JobPosting{})

	if query != "" {
		term := "%" + query + "%"
		q = q.Where("job_title LIKE ? OR job_description LIKE ? OR skills LIKE ?", term, term, term)
	}
	if list := toStringList(filters["work_location"]); list != nil {
		q = q.Where("work_location IN ?", list)
	}
	if list := toStringList(filters["work_type"]); list != nil {
		q = q.Where("work_type IN ?", list)
	}
	if exp, ok := filters["experience"].(string); ok && exp != "" {
		q = q.Where("experience = ?", exp)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	var jobs []models.JobPosting
	if err := q.Limit(limit).Offset(offset).Find(&jobs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search jobs: %w", err)
	}
	return jobs, total, nil
}

// Distribution groups postings by one of the whitelisted columns for the
// analytics endpoint.
func (r *jobRepository) Distribution(column string, limit int) ([]DistributionRow, error) {
	allowed := map[string]bool{
		"job_title": true, "name": true, "work_location": true,
		"work_type": true, "experience": true, "salary": true,
	}
	if !allowed[column] {
		return nil, fmt.Errorf("unsupported distribution column: %s", column)
	}

	var rows []DistributionRow
	err := r.db.Model(&models.JobPosting{}).
		Select(column+" AS label, COUNT(*) AS count").
		Where(column+" <> ''").
		Group(column).
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", column, err)
	}
	return rows, nil
}

// toStringList flattens list-shaped filter values ([]string from code,
// []interface{} from decoded JSON). Scalars yield nil.
func toStringList(value interface{}) []string {
	switch v := value.(type) {
	case []string:
		if len(v) == 0 {
			return nil
		}
		return v
	case []interface{}:
		if len(v) == 0 {
			return nil
		}
		list := make([]string, 0, len(v))
		for _, item := range v {
			list = append(list, fmt.Sprint(item))
		}
		return list
	default:
		return nil
	}
}
