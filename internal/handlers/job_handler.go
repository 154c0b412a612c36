package handlers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"hainguyen/cv-job-matching/internal/models"
	"hainguyen/cv-job-matching/internal/repositories"
	"hainguyen/cv-job-matching/internal/services"
)

type JobHandler struct {
	jobRepo repositories.JobRepository
	cvRepo  repositories.CVRepository
	gemini  services.GeminiService
	prompts *services.PromptBuilder
	logger  *zap.Logger
}

func NewJobHandler(jobRepo repositories.JobRepository, cvRepo repositories.CVRepository, gemini services.GeminiService, prompts *services.PromptBuilder, logger *zap.Logger) *JobHandler {
	return &JobHandler{jobRepo: jobRepo, cvRepo: cvRepo, gemini: gemini, prompts: prompts, logger: logger}
}

func (h *JobHandler) HandleList(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	jobs, total, err := h.jobRepo.List(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list jobs",
		})
	}

	return c.JSON(fiber.Map{
		"jobs":   jobs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job id",
		})
	}

	job, err := h.jobRepo.FindByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("job %d not found", id),
		})
	}

	return c.JSON(job)
}

// HandleSearch is keyword search over the relational store, no LLM in the
// loop. When a cv_id is supplied, results carry an exact skill-overlap score
// and come back sorted by it; an unknown cv_id just skips the scoring.
func (h *JobHandler) HandleSearch(c *fiber.Ctx) error {
	var req models.JobSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	var cvSkills []string
	scored := false
	if req.CVID > 0 {
		cv, err := h.cvRepo.FindByID(req.CVID)
		if err != nil {
			h.logger.Warn("search cv lookup failed, skipping scoring",
				zap.Int("cv_id", req.CVID), zap.Error(err))
		} else if info, err := cv.Info(); err != nil {
			h.logger.Warn("search cv info unreadable, skipping scoring",
				zap.Int("cv_id", req.CVID), zap.Error(err))
		} else {
			cvSkills = info.Skills
			scored = true
		}
	}

	jobs, total, err := h.jobRepo.Search(req.Query, req.Filters, req.Limit, req.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to search jobs",
		})
	}

	results := make([]models.JobSearchResult, 0, len(jobs))
	for _, job := range jobs {
		result := models.JobSearchResult{
			JobID:        job.ID,
			JobTitle:     job.JobTitle,
			CompanyName:  job.CompanyName,
			Salary:       job.Salary,
			WorkLocation: job.WorkLocation,
			WorkType:     job.WorkType,
			Deadline:     services.NormalizeDeadline(job.Deadline),
		}
		if scored {
			score, why := skillOverlap(cvSkills, job.SkillList())
			result.MatchScore = &score
			result.WhyMatch = why
		}
		results = append(results, result)
	}

	if scored {
		sort.SliceStable(results, func(i, j int) bool {
			return *results[i].MatchScore > *results[j].MatchScore
		})
	}

	return c.JSON(fiber.Map{
		"results": results,
		"total":   total,
	})
}

// skillOverlap scores a posting by exact intersection between CV and posting
// skills: matched count over the posting's skill count, zero when the posting
// lists none.
func skillOverlap(cvSkills, jobSkills []string) (float64, string) {
	jobSet := make(map[string]struct{}, len(jobSkills))
	for _, s := range jobSkills {
		jobSet[s] = struct{}{}
	}

	var matched []string
	seen := make(map[string]struct{})
	for _, s := range cvSkills {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := jobSet[s]; ok {
			matched = append(matched, s)
		}
	}

	if len(jobSkills) == 0 || len(matched) == 0 {
		return 0.0, "May be a fit for this position"
	}

	top := matched
	if len(top) > 3 {
		top = top[:3]
	}
	score := float64(len(matched)) / float64(len(jobSkills))
	return score, fmt.Sprintf("Matched %d skills: %s", len(matched), strings.Join(top, ", "))
}

var distributionCharts = map[string]struct {
	Column string
	Title  string
}{
	"top_titles":    {Column: "job_title", Title: "Top 10 Job Titles"},
	"top_companies": {Column: "name", Title: "Top 10 Hiring Companies"},
	"locations":     {Column: "work_location", Title: "Work Location Distribution"},
	"work_types":    {Column: "work_type", Title: "Work Type Distribution"},
	"experience":    {Column: "experience", Title: "Experience Requirement Distribution"},
	"salary":        {Column: "salary", Title: "Salary Distribution"},
}

// HandleAnalytics aggregates one distribution chart; with analyze=true a
// short model-written interpretation is attached.
func (h *JobHandler) HandleAnalytics(c *fiber.Ctx) error {
	chart, ok := distributionCharts[c.Params("chart")]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown chart",
		})
	}

	rows, err := h.jobRepo.Distribution(chart.Column, 10)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to aggregate job data",
		})
	}

	response := fiber.Map{
		"chart": chart.Title,
		"data":  rows,
	}

	if c.QueryBool("analyze", false) {
		var data []string
		for _, row := range rows {
			data = append(data, fmt.Sprintf("%s: %d", row.Label, row.Count))
		}
		prompt := h.prompts.BuildDistributionAnalysisPrompt(chart.Title, strings.Join(data, "\n"))
		analysis, err := h.gemini.GenerateText(c.Context(), prompt, 0.3)
		if err != nil {
			h.logger.Warn("analytics analysis failed", zap.Error(err))
		} else {
			response["analysis"] = analysis
		}
	}

	return c.JSON(response)
}
