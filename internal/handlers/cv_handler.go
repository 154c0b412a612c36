package handlers

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hainguyen/cv-job-matching/internal/models"
	"hainguyen/cv-job-matching/internal/repositories"
	"hainguyen/cv-job-matching/internal/services"
)

type CVHandler struct {
	cvRepo      repositories.CVRepository
	pdfParser   services.PDFParserService
	extractor   services.ExtractorService
	maxFileSize int64
	logger      *zap.Logger
}

func NewCVHandler(
	cvRepo repositories.CVRepository,
	pdfParser services.PDFParserService,
	extractor services.ExtractorService,
	maxFileSize int64,
	logger *zap.Logger,
) *CVHandler {
	return &CVHandler{
		cvRepo:      cvRepo,
		pdfParser:   pdfParser,
		extractor:   extractor,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// HandleUpload accepts a PDF resume, extracts its structured profile and
// stores both alongside each other.
func (h *CVHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file field is required",
		})
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "only PDF files are supported",
		})
	}
	if fileHeader.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("file too large, max size: %d bytes", h.maxFileSize),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	text, err := h.pdfParser.ExtractTextFromBytes(data)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to extract text from PDF: %v", err),
		})
	}

	info, err := h.extractor.ExtractCVInfo(c.Context(), services.CleanText(text))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to analyze CV: %v", err),
		})
	}

	cv := &models.CV{Filename: fileHeader.Filename}
	if err := cv.SetInfo(info); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to serialize cv info",
		})
	}
	if err := h.cvRepo.Create(cv); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to store cv",
		})
	}

	h.logger.Info("cv uploaded", zap.Int("cv_id", cv.ID), zap.String("filename", cv.Filename))
	return c.Status(fiber.StatusCreated).JSON(models.UploadCVResponse{
		Message: "CV uploaded and analyzed successfully",
		CVID:    cv.ID,
		CVInfo:  info,
	})
}

func (h *CVHandler) HandleList(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	cvs, total, err := h.cvRepo.List(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list cvs",
		})
	}

	items := make([]models.CVListItem, 0, len(cvs))
	for _, cv := range cvs {
		info, err := cv.Info()
		if err != nil {
			h.logger.Warn("skipping cv with corrupt profile", zap.Int("cv_id", cv.ID))
			continue
		}
		items = append(items, models.CVListItem{
			ID:         cv.ID,
			Filename:   cv.Filename,
			CVInfo:     info,
			UploadedAt: cv.UploadedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return c.JSON(fiber.Map{
		"cvs":   items,
		"total": total,
	})
}

func (h *CVHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid cv id",
		})
	}

	if err := h.cvRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fmt.Sprintf("cv %d not found", id),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete cv",
		})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("CV %d deleted", id),
	})
}
