package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"hainguyen/cv-job-matching/internal/models"
)

// InsightsService grades a parsed resume and proposes concrete edits. Both
// calls tolerate malformed model output: a JSON parse failure yields neutral
// defaults instead of an error, only transport failures propagate.
type InsightsService interface {
	AnalyzeCV(ctx context.Context, info *models.CVInfo) (*models.CVInsights, error)
	GenerateImprovements(ctx context.Context, info *models.CVInfo, insights *models.CVInsights) ([]models.CVImprovement, error)
}

type insightsService struct {
	gemini  GeminiService
	prompts *PromptBuilder
	logger  *zap.Logger
}

func NewInsightsService(gemini GeminiService, prompts *PromptBuilder, logger *zap.Logger) InsightsService {
	return &insightsService{gemini: gemini, prompts: prompts, logger: logger}
}

func (s *insightsService) AnalyzeCV(ctx context.Context, info *models.CVInfo) (*models.CVInsights, error) {
	prompt := s.prompts.BuildInsightsPrompt(
		orNA(info.Name),
		orNA(info.Email),
		orNA(info.Phone),
		strings.Join(info.Skills, ", "),
		orNA(info.CareerObjective),
		len(info.Experience),
		len(info.Education),
	)

	response, err := s.gemini.GenerateText(ctx, prompt, 0.3)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze cv: %w", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(extractJSON(response)), &decoded); err != nil {
		s.logger.Warn("unparseable insights output, using defaults", zap.Error(err))
		return defaultInsights(), nil
	}

	var insights models.CVInsights
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &insights,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(decoded); err != nil {
		s.logger.Warn("unexpected insights output shape, using defaults", zap.Error(err))
		return defaultInsights(), nil
	}

	insights.QualityScore = clampRange(insights.QualityScore, 0, 10)
	insights.CompletenessScore = clampRange(insights.CompletenessScore, 0, 1)
	insights.MarketFitScore = clampRange(insights.MarketFitScore, 0, 1)

	s.logger.Info("cv analyzed",
		zap.Float64("quality_score", insights.QualityScore),
		zap.Float64("completeness_score", insights.CompletenessScore))
	return &insights, nil
}

// rawImprovement keeps current/suggested_add untyped: the model returns
// strings, lists or null interchangeably.
type rawImprovement struct {
	Section      string      `json:"section"`
	Current      interface{} `json:"current"`
	SuggestedAdd interface{} `json:"suggested_add"`
	Suggestion   string      `json:"suggestion"`
	Reason       string      `json:"reason"`
	Priority     string      `json:"priority"`
	Impact       string      `json:"impact"`
}

func (s *insightsService) GenerateImprovements(ctx context.Context, info *models.CVInfo, insights *models.CVInsights) ([]models.CVImprovement, error) {
	skills := strings.Join(info.Skills, ", ")
	if skills == "" {
		skills = "None"
	}
	objective := info.CareerObjective
	if objective == "" {
		objective = "None"
	} else if len(objective) > profileDescriptionChars {
		objective = objective[:profileDescriptionChars] + "..."
	}

	prompt := s.prompts.BuildImprovementsPrompt(
		skills,
		objective,
		strings.Join(insights.Weaknesses, ", "),
		strings.Join(insights.MissingSections, ", "),
		len(info.Experience),
		len(info.Education),
		insights.HasPortfolio,
		insights.HasCertifications,
		insights.HasProjects,
	)

	response, err := s.gemini.GenerateText(ctx, prompt, 0.3)
	if err != nil {
		return nil, fmt.Errorf("failed to generate improvements: %w", err)
	}

	var raw []rawImprovement
	if err := json.Unmarshal([]byte(extractJSON(response)), &raw); err != nil {
		s.logger.Warn("unparseable improvements output, using fallback", zap.Error(err))
		return fallbackImprovements(), nil
	}

	improvements := make([]models.CVImprovement, 0, len(raw))
	for _, imp := range raw {
		improvements = append(improvements, models.CVImprovement{
			Section:      imp.Section,
			Current:      coerceItemList(imp.Current),
			SuggestedAdd: coerceItemList(imp.SuggestedAdd),
			Suggestion:   imp.Suggestion,
			Reason:       imp.Reason,
			Priority:     imp.Priority,
			Impact:       imp.Impact,
		})
	}

	s.logger.Info("improvements generated", zap.Int("count", len(improvements)))
	return improvements, nil
}

// defaultInsights is the neutral mid-range assessment returned when the
// model's JSON cannot be parsed.
func defaultInsights() *models.CVInsights {
	return &models.CVInsights{
		QualityScore:      5.0,
		CompletenessScore: 0.5,
		MissingSections:   []string{"Unknown"},
		MarketFitScore:    0.5,
		ExperienceLevel:   "Unknown",
		SalaryRange:       "N/A",
		CompetitiveScore:  5.0,
		Strengths:         []string{"Further analysis needed"},
		Weaknesses:        []string{"Further analysis needed"},
	}
}

func fallbackImprovements() []models.CVImprovement {
	return []models.CVImprovement{{
		Section:    "general",
		Suggestion: "Further analysis is needed for specific suggestions",
		Reason:     "Analysis failed",
		Priority:   "medium",
		Impact:     "N/A",
	}}
}

func clampRange(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// coerceItemList turns the model's string-or-list-or-null field into a list,
// keeping nil for "nothing to point at".
func coerceItemList(value interface{}) []string {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []interface{}:
		var items []string
		for _, item := range v {
			if str, ok := item.(string); ok && str != "" {
				items = append(items, str)
			}
		}
		return items
	default:
		return nil
	}
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
