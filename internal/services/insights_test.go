package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestInsights(gemini GeminiService) InsightsService {
	return NewInsightsService(gemini, NewPromptBuilder(), zap.NewNop())
}

func TestAnalyzeCVClampsScores(t *testing.T) {
	gemini := &stubGemini{response: `{
		"quality_score": 15,
		"completeness_score": -0.2,
		"market_fit_score": 1.4,
		"has_projects": true,
		"missing_sections": ["Portfolio"],
		"experience_level": "Junior",
		"strengths": ["Clear objective"],
		"weaknesses": ["No portfolio"]
	}`}

	insights, err := newTestInsights(gemini).AnalyzeCV(context.Background(), testCVInfo())
	require.NoError(t, err)

	assert.InDelta(t, 10.0, insights.QualityScore, 1e-9)
	assert.Zero(t, insights.CompletenessScore)
	assert.InDelta(t, 1.0, insights.MarketFitScore, 1e-9)
	assert.True(t, insights.HasProjects)
	assert.Equal(t, []string{"Portfolio"}, insights.MissingSections)
}

func TestAnalyzeCVDefaultsOnUnparseableOutput(t *testing.T) {
	gemini := &stubGemini{response: "the model rambled instead of returning JSON"}

	insights, err := newTestInsights(gemini).AnalyzeCV(context.Background(), testCVInfo())
	require.NoError(t, err)

	assert.InDelta(t, 5.0, insights.QualityScore, 1e-9)
	assert.InDelta(t, 0.5, insights.CompletenessScore, 1e-9)
	assert.Equal(t, []string{"Unknown"}, insights.MissingSections)
	assert.Equal(t, "Unknown", insights.ExperienceLevel)
	assert.Equal(t, "N/A", insights.SalaryRange)
}

func TestAnalyzeCVPropagatesModelError(t *testing.T) {
	gemini := &stubGemini{err: fmt.Errorf("rate limited")}

	_, err := newTestInsights(gemini).AnalyzeCV(context.Background(), testCVInfo())
	require.Error(t, err)
}

func TestGenerateImprovementsCoercesScalarFields(t *testing.T) {
	gemini := &stubGemini{response: "```json\n" + `[
		{
			"section": "skills",
			"current": "Python",
			"suggested_add": ["React", "Node.js"],
			"suggestion": "Add frontend skills",
			"reason": "Most full-stack roles require them",
			"priority": "high",
			"impact": "+40% match rate"
		},
		{
			"section": "projects",
			"current": null,
			"suggested_add": null,
			"suggestion": "Add a personal projects section",
			"reason": "Shows practical ability",
			"priority": "medium",
			"impact": "More interviews"
		}
	]` + "\n```"}

	svc := newTestInsights(gemini)
	improvements, err := svc.GenerateImprovements(context.Background(), testCVInfo(), defaultInsights())
	require.NoError(t, err)
	require.Len(t, improvements, 2)

	assert.Equal(t, []string{"Python"}, improvements[0].Current)
	assert.Equal(t, []string{"React", "Node.js"}, improvements[0].SuggestedAdd)
	assert.Nil(t, improvements[1].Current)
	assert.Nil(t, improvements[1].SuggestedAdd)
	assert.Equal(t, "projects", improvements[1].Section)
}

func TestGenerateImprovementsFallbackOnBadJSON(t *testing.T) {
	gemini := &stubGemini{response: `{"not": "an array"}`}

	improvements, err := newTestInsights(gemini).GenerateImprovements(
		context.Background(), testCVInfo(), defaultInsights())
	require.NoError(t, err)

	require.Len(t, improvements, 1)
	assert.Equal(t, "general", improvements[0].Section)
	assert.Equal(t, "medium", improvements[0].Priority)
}

func TestGenerateImprovementsPropagatesModelError(t *testing.T) {
	gemini := &stubGemini{err: fmt.Errorf("rate limited")}

	_, err := newTestInsights(gemini).GenerateImprovements(
		context.Background(), testCVInfo(), defaultInsights())
	require.Error(t, err)
}
