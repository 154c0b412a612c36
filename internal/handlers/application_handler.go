package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"hainguyen/cv-job-matching/internal/models"
	"hainguyen/cv-job-matching/internal/repositories"
)

type ApplicationHandler struct {
	appRepo repositories.ApplicationRepository
	cvRepo  repositories.CVRepository
	jobRepo repositories.JobRepository
	logger  *zap.Logger
}

func NewApplicationHandler(
	appRepo repositories.ApplicationRepository,
	cvRepo repositories.CVRepository,
	jobRepo repositories.JobRepository,
	logger *zap.Logger,
) *ApplicationHandler {
	return &ApplicationHandler{
		appRepo: appRepo,
		cvRepo:  cvRepo,
		jobRepo: jobRepo,
		logger:  logger,
	}
}

// HandleApply records one application per (cv, job). The probe gives a clean
// 409; the unique index backs it up under concurrent submits.
func (h *ApplicationHandler) HandleApply(c *fiber.Ctx) error {
	var req models.ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.CVID <= 0 || req.JobID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "cv_id and job_id are required",
		})
	}

	if _, err := h.cvRepo.FindByID(req.CVID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("cv %d not found", req.CVID),
		})
	}
	if _, err := h.jobRepo.FindByID(req.JobID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("job %d not found", req.JobID),
		})
	}

	exists, err := h.appRepo.Exists(req.CVID, req.JobID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to check existing applications",
		})
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "an application for this job already exists",
		})
	}

	status := req.Status
	if status == "" {
		status = "applied"
	}

	app := &models.Application{
		CVID:        req.CVID,
		JobID:       req.JobID,
		Status:      status,
		CoverLetter: req.CoverLetter,
	}
	if err := h.appRepo.Create(app); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "an application for this job already exists",
		})
	}

	h.logger.Info("application created",
		zap.Int("cv_id", req.CVID), zap.Int("job_id", req.JobID))
	return c.Status(fiber.StatusCreated).JSON(models.ApplyResponse{
		ApplicationID: app.ID,
		CVID:          app.CVID,
		JobID:         app.JobID,
		Status:        app.Status,
		AppliedAt:     app.AppliedAt.Format("2006-01-02 15:04:05"),
		Message:       "Application submitted successfully",
	})
}

func (h *ApplicationHandler) HandleListByCV(c *fiber.Ctx) error {
	cvID, err := c.ParamsInt("cv_id")
	if err != nil || cvID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid cv id",
		})
	}

	items, err := h.appRepo.ListByCV(cvID, c.Query("status"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list applications",
		})
	}

	return c.JSON(fiber.Map{
		"applications": items,
		"total":        len(items),
	})
}
