package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hainguyen/cv-job-matching/internal/models"
	"hainguyen/cv-job-matching/internal/repositories"
	"hainguyen/cv-job-matching/internal/services"
)

// InsightsHandler serves the deep CV analysis surface: grading a stored
// resume and proposing concrete improvements. Unlike upload, which only
// parses, these endpoints have the model judge the content.
type InsightsHandler struct {
	cvRepo   repositories.CVRepository
	insights services.InsightsService
	logger   *zap.Logger
}

func NewInsightsHandler(cvRepo repositories.CVRepository, insights services.InsightsService, logger *zap.Logger) *InsightsHandler {
	return &InsightsHandler{cvRepo: cvRepo, insights: insights, logger: logger}
}

func (h *InsightsHandler) HandleInsights(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid cv id",
		})
	}

	info, status, err := h.loadCVInfo(id)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	insights, err := h.insights.AnalyzeCV(c.Context(), info)
	if err != nil {
		h.logger.Error("cv analysis failed", zap.Int("cv_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to analyze cv",
		})
	}

	return c.JSON(models.CVInsightsResponse{
		CVID:         id,
		QualityScore: insights.QualityScore,
		Completeness: models.CVCompleteness{
			HasPortfolio:      insights.HasPortfolio,
			HasCertifications: insights.HasCertifications,
			HasProjects:       insights.HasProjects,
			MissingSections:   insights.MissingSections,
		},
		MarketFit: models.CVMarketFit{
			SkillMatchRate:   insights.MarketFitScore,
			ExperienceLevel:  insights.ExperienceLevel,
			SalaryRange:      insights.SalaryRange,
			CompetitiveScore: insights.CompetitiveScore,
		},
		Strengths:    insights.Strengths,
		Weaknesses:   insights.Weaknesses,
		LastAnalyzed: time.Now().Format(time.RFC3339),
	})
}

func (h *InsightsHandler) HandleImprove(c *fiber.Ctx) error {
	id := c.QueryInt("cv_id", 0)
	if id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "cv_id query parameter is required",
		})
	}

	info, status, err := h.loadCVInfo(id)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	insights, err := h.insights.AnalyzeCV(c.Context(), info)
	if err != nil {
		h.logger.Error("cv analysis failed", zap.Int("cv_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to analyze cv",
		})
	}

	improvements, err := h.insights.GenerateImprovements(c.Context(), info, insights)
	if err != nil {
		h.logger.Error("improvement generation failed", zap.Int("cv_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to generate improvements",
		})
	}

	return c.JSON(models.CVImproveResponse{
		CVID:         id,
		Improvements: improvements,
	})
}

func (h *InsightsHandler) loadCVInfo(id int) (*models.CVInfo, int, error) {
	cv, err := h.cvRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.StatusNotFound, fmt.Errorf("cv %d not found", id)
		}
		return nil, fiber.StatusInternalServerError, fmt.Errorf("failed to load cv %d", id)
	}

	info, err := cv.Info()
	if err != nil {
		return nil, fiber.StatusInternalServerError, fmt.Errorf("cv %d has an unreadable profile", id)
	}
	return info, fiber.StatusOK, nil
}
