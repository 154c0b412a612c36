package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"hainguyen/cv-job-matching/internal/config"
	"hainguyen/cv-job-matching/internal/models"
)

// ExtractorService turns raw resume text into the structured CVInfo profile.
// Unlike the matching path, extraction retries: a failed parse here blocks the
// upload entirely, so it is worth a few more attempts.
type ExtractorService interface {
	ExtractCVInfo(ctx context.Context, cvText string) (*models.CVInfo, error)
}

type extractorService struct {
	gemini      GeminiService
	prompts     *PromptBuilder
	maxAttempts int
	logger      *zap.Logger
}

func NewExtractorService(gemini GeminiService, prompts *PromptBuilder, retry config.RetryConfig, logger *zap.Logger) ExtractorService {
	return &extractorService{
		gemini:      gemini,
		prompts:     prompts,
		maxAttempts: retry.MaxAttempts,
		logger:      logger,
	}
}

func (e *extractorService) ExtractCVInfo(ctx context.Context, cvText string) (*models.CVInfo, error) {
	if strings.TrimSpace(cvText) == "" {
		return nil, fmt.Errorf("cv text is empty")
	}

	prompt := e.prompts.BuildExtractionPrompt(cvText)
	response, err := e.gemini.GenerateTextWithRetry(ctx, prompt, 0.1, e.maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to extract cv info: %w", err)
	}

	var info models.CVInfo
	if err := json.Unmarshal([]byte(extractJSON(response)), &info); err != nil {
		return nil, fmt.Errorf("failed to parse cv info: %w", err)
	}

	normalizeCVInfo(&info)
	e.logger.Info("cv info extracted",
		zap.String("name", info.Name),
		zap.Int("skills", len(info.Skills)))
	return &info, nil
}

// normalizeCVInfo enforces the profile guarantees downstream code relies on:
// no empty company or school names, dates either YYYY-MM-DD, "Present" or "".
func normalizeCVInfo(info *models.CVInfo) {
	if info.Skills == nil {
		info.Skills = []string{}
	}
	for i := range info.Experience {
		exp := &info.Experience[i]
		if exp.Company == "" {
			exp.Company = "Unknown"
		}
		if exp.Title == "" {
			exp.Title = "Unknown"
		}
		if exp.Description == "" {
			exp.Description = "No description provided"
		}
		exp.StartDate = NormalizeDate(exp.StartDate)
		exp.EndDate = NormalizeDate(exp.EndDate)
	}
	for i := range info.Education {
		edu := &info.Education[i]
		if edu.School == "" {
			edu.School = "Unknown"
		}
		if edu.Degree == "" {
			edu.Degree = "Unknown"
		}
		if edu.Major == "" {
			edu.Major = "Unknown"
		}
		edu.StartDate = NormalizeDate(edu.StartDate)
		edu.EndDate = NormalizeDate(edu.EndDate)
	}
}
