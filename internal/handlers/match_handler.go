package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hainguyen/cv-job-matching/internal/models"
	"hainguyen/cv-job-matching/internal/repositories"
	"hainguyen/cv-job-matching/internal/services"
)

const maxMatchedJobs = 5

type MatchHandler struct {
	cvRepo    repositories.CVRepository
	jobRepo   repositories.JobRepository
	extractor services.ExtractorService
	matcher   services.MatcherService
	enricher  services.Enricher
	cache     services.MatchCache
	logger    *zap.Logger
}

func NewMatchHandler(
	cvRepo repositories.CVRepository,
	jobRepo repositories.JobRepository,
	extractor services.ExtractorService,
	matcher services.MatcherService,
	enricher services.Enricher,
	cache services.MatchCache,
	logger *zap.Logger,
) *MatchHandler {
	return &MatchHandler{
		cvRepo:    cvRepo,
		jobRepo:   jobRepo,
		extractor: extractor,
		matcher:   matcher,
		enricher:  enricher,
		cache:     cache,
		logger:    logger,
	}
}

// HandleMatch runs the full matching flow: resolve the resume, apply the
// relational filter, consult the cache, invoke the matcher, enrich, cache the
// live result and respond with the top matches.
func (h *MatchHandler) HandleMatch(c *fiber.Ctx) error {
	var req models.MatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.CVID == 0 && req.CVText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "either cv_id or cv_text is required",
		})
	}

	filters := h.sanitizeFilters(req.Filters)

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	info, err := h.resolveCVInfo(c, &req)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// Cached results reflect the most recent run, which may have used
	// different filters. A filtered request therefore always runs live.
	if req.CVID > 0 && len(filters) == 0 {
		if cached, ok := h.cache.Get(req.CVID); ok {
			return c.JSON(h.buildResponse(info, cached, nil, sessionID))
		}
	}

	restrictedIDs, err := h.jobRepo.FilteredJobIDs(filters)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to apply filters",
		})
	}

	var suggestions []models.Suggestion
	if len(filters) > 0 && restrictedIDs == nil {
		suggestions = append(suggestions, models.Suggestion{
			Topic:      "filters",
			Suggestion: "No jobs matched your filters; showing best overall matches instead",
		})
	}

	outcome := h.matcher.Match(c.Context(), info, restrictedIDs)
	suggestions = append(suggestions, outcome.Suggestions...)

	enriched, err := h.enricher.Enrich(outcome.MatchedJobs)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to enrich matches",
		})
	}

	if req.CVID > 0 && !outcome.Degraded {
		if err := h.cache.Put(req.CVID, sessionID, enriched); err != nil {
			h.logger.Warn("failed to cache match result",
				zap.Int("cv_id", req.CVID), zap.Error(err))
		}
	}

	return c.JSON(h.buildResponse(info, enriched, suggestions, sessionID))
}

func (h *MatchHandler) resolveCVInfo(c *fiber.Ctx, req *models.MatchRequest) (*models.CVInfo, error) {
	if req.CVID > 0 {
		cv, err := h.cvRepo.FindByID(req.CVID)
		if err != nil {
			return nil, err
		}
		return cv.Info()
	}
	return h.extractor.ExtractCVInfo(c.Context(), req.CVText)
}

// sanitizeFilters drops unrecognized keys instead of rejecting the request.
func (h *MatchHandler) sanitizeFilters(filters map[string]interface{}) map[string]interface{} {
	if len(filters) == 0 {
		return nil
	}
	sanitized := make(map[string]interface{}, len(filters))
	for key, value := range filters {
		if !repositories.FilterKeys[key] {
			h.logger.Warn("dropping unrecognized filter key", zap.String("key", key))
			continue
		}
		if value == nil {
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

// buildResponse truncates to the top matches in the order the matcher or
// cache produced them; no re-sorting happens here.
func (h *MatchHandler) buildResponse(info *models.CVInfo, jobs []models.MatchedJob, suggestions []models.Suggestion, sessionID string) *models.MatchResponse {
	if len(jobs) > maxMatchedJobs {
		jobs = jobs[:maxMatchedJobs]
	}
	if jobs == nil {
		jobs = []models.MatchedJob{}
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}
	return &models.MatchResponse{
		Name:            info.Name,
		Email:           info.Email,
		Phone:           info.Phone,
		CVSkills:        info.Skills,
		CareerObjective: info.CareerObjective,
		Education:       info.Education,
		Experience:      info.Experience,
		MatchedJobs:     jobs,
		Suggestions:     suggestions,
		SessionID:       sessionID,
	}
}
