package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"hainguyen/cv-job-matching/internal/config"
	"hainguyen/cv-job-matching/internal/models"
)

// MatchOutcome is the matcher's contract with the handler: it always comes
// back populated. Degraded marks runs where the pipeline hit an internal
// failure and fell back to an empty result instead of surfacing an error.
type MatchOutcome struct {
	MatchedJobs    []models.MatchedJob
	Suggestions    []models.Suggestion
	Degraded       bool
	DegradedReason string
}

type MatcherService interface {
	Match(ctx context.Context, info *models.CVInfo, restrictedIDs []int) *MatchOutcome
	BuildProfile(info *models.CVInfo) string
}

type matcherService struct {
	gemini       GeminiService
	store        VectorStore
	prompts      *PromptBuilder
	limit        int
	contextChars int
	logger       *zap.Logger
}

func NewMatcherService(gemini GeminiService, store VectorStore, prompts *PromptBuilder, matching config.MatchingConfig, logger *zap.Logger) MatcherService {
	return &matcherService{
		gemini:       gemini,
		store:        store,
		prompts:      prompts,
		limit:        matching.RetrievalLimit,
		contextChars: matching.ContextChars,
		logger:       logger,
	}
}

// rawMatch mirrors one entry of the model's matched_jobs array before
// normalization. job_id and the matched_* lists stay untyped because the
// model does not reliably honor the schema.
type rawMatch struct {
	JobID              interface{} `mapstructure:"job_id"`
	JobTitle           string      `mapstructure:"job_title"`
	JobURL             string      `mapstructure:"job_url"`
	MatchScore         float64     `mapstructure:"match_score"`
	MatchedSkills      interface{} `mapstructure:"matched_skills"`
	MatchedAspirations interface{} `mapstructure:"matched_aspirations"`
	MatchedExperience  interface{} `mapstructure:"matched_experience"`
	MatchedEducation   interface{} `mapstructure:"matched_education"`
	WhyMatch           string      `mapstructure:"why_match"`
}

type rawSuggestion struct {
	SkillOrExperience string `mapstructure:"skill_or_experience"`
	Suggestion        string `mapstructure:"suggestion"`
}

type rawMatchOutput struct {
	MatchedJobs []rawMatch      `mapstructure:"matched_jobs"`
	Suggestions []rawSuggestion `mapstructure:"suggestions"`
}

// Match runs the retrieval and ranking pipeline. restrictedIDs narrows
// retrieval to a pre-filtered candidate set; nil means search the whole
// collection. The method degrades instead of failing: callers always get a
// usable outcome.
func (m *matcherService) Match(ctx context.Context, info *models.CVInfo, restrictedIDs []int) *MatchOutcome {
	profile := m.BuildProfile(info)

	var hits []VectorHit
	var err error
	if len(restrictedIDs) > 0 {
		hits, err = m.store.FetchByJobIDs(ctx, restrictedIDs)
		if err != nil {
			return m.degrade(fmt.Sprintf("Failed to fetch filtered jobs: %v", err))
		}
		if len(hits) == 0 {
			// Filters matched rows relationally but none are indexed. No
			// fallback to unrestricted search here: the filter is authoritative.
			return &MatchOutcome{
				MatchedJobs: []models.MatchedJob{},
				Suggestions: []models.Suggestion{{
					Topic:      "N/A",
					Suggestion: "No jobs matched the filters",
				}},
			}
		}
	} else {
		hits, err = m.store.QueryByText(ctx, profile, m.limit)
		if err != nil {
			return m.degrade(fmt.Sprintf("Failed to retrieve jobs: %v", err))
		}
	}

	contextBlock := m.buildContext(hits)
	if contextBlock == "" {
		return &MatchOutcome{
			MatchedJobs: []models.MatchedJob{},
			Suggestions: []models.Suggestion{{
				Topic:      "N/A",
				Suggestion: "No jobs available for matching",
			}},
		}
	}

	prompt := m.prompts.BuildMatchPrompt(profile, contextBlock)
	response, err := m.gemini.GenerateText(ctx, prompt, 0.2)
	if err != nil {
		return m.degrade(fmt.Sprintf("Failed to process CV: %v", err))
	}

	parsed, err := m.parseResponse(response)
	if err != nil {
		m.logger.Warn("failed to parse model output", zap.Error(err))
		return m.degrade(fmt.Sprintf("Failed to process CV: %v", err))
	}

	outcome := &MatchOutcome{
		MatchedJobs: m.normalizeMatches(parsed.MatchedJobs),
		Suggestions: make([]models.Suggestion, 0, len(parsed.Suggestions)),
	}
	for _, s := range parsed.Suggestions {
		outcome.Suggestions = append(outcome.Suggestions, models.Suggestion{
			Topic:      s.SkillOrExperience,
			Suggestion: s.Suggestion,
		})
	}

	if len(outcome.MatchedJobs) == 0 {
		outcome.Suggestions = append(outcome.Suggestions, models.Suggestion{
			Topic:      "N/A",
			Suggestion: "No valid job id returned by the model",
		})
	}

	m.logger.Info("matching complete",
		zap.Int("retrieved", len(hits)),
		zap.Int("matched", len(outcome.MatchedJobs)))
	return outcome
}

const profileDescriptionChars = 200

// BuildProfile flattens the structured resume into the retrieval query and
// prompt input. Missing sections get explicit sentinels so the model never
// sees a bare empty field.
func (m *matcherService) BuildProfile(info *models.CVInfo) string {
	skills, _ := json.Marshal(info.Skills)

	experience := "No experience provided"
	if len(info.Experience) > 0 {
		var lines []string
		for _, exp := range info.Experience {
			description := exp.Description
			if len(description) > profileDescriptionChars {
				description = description[:profileDescriptionChars] + "..."
			}
			lines = append(lines, fmt.Sprintf("Project: %s - %s", exp.Title, description))
		}
		experience = strings.Join(lines, "\n")
	}

	education := "No education provided"
	if len(info.Education) > 0 {
		var lines []string
		for _, edu := range info.Education {
			lines = append(lines, fmt.Sprintf("Degree: %s at %s (%s-%s)",
				edu.Degree, edu.School, edu.StartDate, edu.EndDate))
		}
		education = strings.Join(lines, "\n")
	}

	aspirations := info.CareerObjective
	if aspirations == "" {
		aspirations = "No career objective provided"
	}

	return fmt.Sprintf("Skills: %s Aspirations: %s Experience: %s Education: %s",
		skills, aspirations, experience, education)
}

// buildContext prepends the identity header to every retrieved posting so the
// model can only cite ids that exist. Documents whose id is not numeric are
// skipped entirely.
func (m *matcherService) buildContext(hits []VectorHit) string {
	var blocks []string
	for _, hit := range hits {
		if hit.JobID <= 0 {
			m.logger.Warn("skipping document with non-numeric job_id",
				zap.String("job_id", hit.Metadata["job_id"]))
			continue
		}

		content := hit.Content
		if len(content) > m.contextChars {
			content = content[:m.contextChars] + "..."
		}

		header := fmt.Sprintf("JOB_ID: %d\nJOB_TITLE: %s\nJOB_URL: %s\n-----\n",
			hit.JobID, hit.Metadata["job_title"], hit.Metadata["job_url"])
		blocks = append(blocks, header+content)
	}
	return strings.Join(blocks, "\n\n")
}

func (m *matcherService) parseResponse(response string) (*rawMatchOutput, error) {
	cleaned := extractJSON(response)

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, fmt.Errorf("invalid json in model output: %w", err)
	}

	var output rawMatchOutput
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &output,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(decoded); err != nil {
		return nil, fmt.Errorf("unexpected model output shape: %w", err)
	}
	return &output, nil
}

// normalizeMatches applies the strict coercion rules: digit-bearing ids only,
// scores clamped to [0, 1], matched_* always lists. Entries that cannot be
// reconciled are dropped with a warning, never propagated.
func (m *matcherService) normalizeMatches(raw []rawMatch) []models.MatchedJob {
	normalized := make([]models.MatchedJob, 0, len(raw))
	for _, job := range raw {
		jobID, ok := CoerceJobID(job.JobID)
		if !ok {
			m.logger.Warn("dropping match with invalid job_id", zap.Any("job_id", job.JobID))
			continue
		}
		normalized = append(normalized, models.MatchedJob{
			JobID:              jobID,
			JobTitle:           job.JobTitle,
			JobURL:             job.JobURL,
			MatchScore:         ClampScore(job.MatchScore),
			MatchedSkills:      CoerceStringList(job.MatchedSkills),
			MatchedAspirations: CoerceStringList(job.MatchedAspirations),
			MatchedExperience:  CoerceStringList(job.MatchedExperience),
			MatchedEducation:   CoerceStringList(job.MatchedEducation),
			WhyMatch:           job.WhyMatch,
		})
	}
	return normalized
}

func (m *matcherService) degrade(reason string) *MatchOutcome {
	m.logger.Error("matching degraded", zap.String("reason", reason))
	return &MatchOutcome{
		MatchedJobs: []models.MatchedJob{},
		Suggestions: []models.Suggestion{{
			Topic:      "N/A",
			Suggestion: reason,
		}},
		Degraded:       true,
		DegradedReason: reason,
	}
}

// extractJSON strips markdown fences and surrounding prose from a model
// response, leaving the outermost JSON object or array.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if idx := strings.Index(response, "```json"); idx != -1 {
		response = response[idx+len("```json"):]
		if end := strings.Index(response, "```"); end != -1 {
			response = response[:end]
		}
	} else if idx := strings.Index(response, "```"); idx != -1 {
		response = response[idx+len("```"):]
		if end := strings.Index(response, "```"); end != -1 {
			response = response[:end]
		}
	}

	if start := strings.IndexAny(response, "[{"); start != -1 {
		closing := byte('}')
		if response[start] == '[' {
			closing = ']'
		}
		if end := strings.LastIndexByte(response, closing); end > start {
			response = response[start : end+1]
		}
	}

	return strings.TrimSpace(response)
}
