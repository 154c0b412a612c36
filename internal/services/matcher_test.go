package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hainguyen/cv-job-matching/internal/config"
	"hainguyen/cv-job-matching/internal/models"
)

type stubGemini struct {
	response  string
	err       error
	prompts   []string
	calls     int
	embedding []float32
}

func (s *stubGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if s.embedding == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return s.embedding, nil
}

func (s *stubGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func (s *stubGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxAttempts int) (string, error) {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		result, err := s.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return "", lastErr
}

type stubVectorStore struct {
	hits       []VectorHit
	queryErr   error
	fetchedIDs [][]int
	queried    []string
}

func (s *stubVectorStore) InitCollection(ctx context.Context) error { return nil }

func (s *stubVectorStore) AddDocuments(ctx context.Context, docs []VectorDocument) error {
	return nil
}

func (s *stubVectorStore) QueryByText(ctx context.Context, text string, limit int) ([]VectorHit, error) {
	s.queried = append(s.queried, text)
	return s.hits, s.queryErr
}

func (s *stubVectorStore) FetchByJobIDs(ctx context.Context, jobIDs []int) ([]VectorHit, error) {
	s.fetchedIDs = append(s.fetchedIDs, jobIDs)
	return s.hits, s.queryErr
}

func (s *stubVectorStore) GetByJobID(ctx context.Context, jobID int) (*VectorHit, error) {
	if len(s.hits) == 0 {
		return nil, nil
	}
	return &s.hits[0], nil
}

func (s *stubVectorStore) DeleteByJobID(ctx context.Context, jobID int) error { return nil }

func (s *stubVectorStore) Count(ctx context.Context) (uint64, error) {
	return uint64(len(s.hits)), nil
}

func testHit(jobID int, title, content string) VectorHit {
	return VectorHit{
		JobID:   jobID,
		Content: content,
		Metadata: map[string]string{
			"job_id":    fmt.Sprintf("%d", jobID),
			"job_title": title,
			"job_url":   fmt.Sprintf("https://jobs.example/%d", jobID),
		},
	}
}

func testCVInfo() *models.CVInfo {
	return &models.CVInfo{
		Name:            "Nguyen Van A",
		CareerObjective: "Become a backend engineer",
		Skills:          []string{"Python", "SQL"},
		Experience: []models.Experience{
			{Company: "Acme", Title: "Developer", StartDate: "2021-01-01", EndDate: "Present",
				Description: "Built REST APIs in Django"},
		},
		Education: []models.Education{
			{School: "HUST", Degree: "Bachelor", Major: "CS",
				StartDate: "2017-09-01", EndDate: "2021-06-30"},
		},
	}
}

func newTestMatcher(gemini GeminiService, store VectorStore) MatcherService {
	cfg := config.MatchingConfig{RetrievalLimit: 20, ContextChars: 800}
	return NewMatcherService(gemini, store, NewPromptBuilder(), cfg, zap.NewNop())
}

func TestMatchNormalizesPercentageScores(t *testing.T) {
	gemini := &stubGemini{response: `{
		"matched_jobs": [{
			"job_id": 7,
			"job_title": "Backend Developer",
			"job_url": "https://jobs.example/7",
			"match_score": 85,
			"matched_skills": ["Python"],
			"matched_aspirations": [],
			"matched_experience": [],
			"matched_education": []
		}],
		"suggestions": []
	}`}
	store := &stubVectorStore{hits: []VectorHit{testHit(7, "Backend Developer", "Python backend role")}}

	outcome := newTestMatcher(gemini, store).Match(context.Background(), testCVInfo(), nil)

	require.Len(t, outcome.MatchedJobs, 1)
	assert.False(t, outcome.Degraded)
	assert.InDelta(t, 0.85, outcome.MatchedJobs[0].MatchScore, 1e-9)
}

func TestMatchCoercesDecoratedJobIDs(t *testing.T) {
	gemini := &stubGemini{response: `{
		"matched_jobs": [
			{"job_id": "job_42", "match_score": 0.9, "matched_skills": ["Go"]},
			{"job_id": "not-a-job", "match_score": 0.8, "matched_skills": []}
		],
		"suggestions": []
	}`}
	store := &stubVectorStore{hits: []VectorHit{testHit(42, "Go Developer", "Go role")}}

	outcome := newTestMatcher(gemini, store).Match(context.Background(), testCVInfo(), nil)

	require.Len(t, outcome.MatchedJobs, 1)
	assert.Equal(t, 42, outcome.MatchedJobs[0].JobID)
}

func TestMatchCoercesNonListMatchedFields(t *testing.T) {
	gemini := &stubGemini{response: `{
		"matched_jobs": [{
			"job_id": 5,
			"match_score": 0.7,
			"matched_skills": "Python",
			"matched_aspirations": null
		}],
		"suggestions": []
	}`}
	store := &stubVectorStore{hits: []VectorHit{testHit(5, "Analyst", "Data role")}}

	outcome := newTestMatcher(gemini, store).Match(context.Background(), testCVInfo(), nil)

	require.Len(t, outcome.MatchedJobs, 1)
	assert.Equal(t, []string{}, outcome.MatchedJobs[0].MatchedSkills)
	assert.Equal(t, []string{}, outcome.MatchedJobs[0].MatchedAspirations)
}

func TestMatchDegradesOnInvalidJSON(t *testing.T) {
	gemini := &stubGemini{response: `{"matched_jobs": [{"job_id": 7, "match`}
	store := &stubVectorStore{hits: []VectorHit{testHit(7, "Backend Developer", "role")}}

	outcome := newTestMatcher(gemini, store).Match(context.Background(), testCVInfo(), nil)

	assert.True(t, outcome.Degraded)
	assert.Empty(t, outcome.MatchedJobs)
	assert.NotEmpty(t, outcome.Suggestions)
}

func TestMatchDegradesOnModelError(t *testing.T) {
	gemini := &stubGemini{err: fmt.Errorf("rate limited")}
	store := &stubVectorStore{hits: []VectorHit{testHit(7, "Backend Developer", "role")}}

	outcome := newTestMatcher(gemini, store).Match(context.Background(), testCVInfo(), nil)

	assert.True(t, outcome.Degraded)
	assert.Empty(t, outcome.MatchedJobs)
	assert.NotEmpty(t, outcome.Suggestions)
}

func TestMatchRestrictedWithNoDocumentsShortCircuits(t *testing.T) {
	gemini := &stubGemini{}
	store := &stubVectorStore{}

	outcome := newTestMatcher(gemini, store).Match(context.Background(), testCVInfo(), []int{3, 9})

	assert.Empty(t, outcome.MatchedJobs)
	require.Len(t, outcome.Suggestions, 1)
	assert.Equal(t, "No jobs matched the filters", outcome.Suggestions[0].Suggestion)
	// The LLM is never consulted and no fallback search happens.
	assert.Zero(t, gemini.calls)
	assert.Empty(t, store.queried)
	require.Len(t, store.fetchedIDs, 1)
	assert.Equal(t, []int{3, 9}, store.fetchedIDs[0])
}

func TestMatchInjectsIdentityHeaders(t *testing.T) {
	gemini := &stubGemini{response: `{"matched_jobs": [], "suggestions": []}`}
	store := &stubVectorStore{hits: []VectorHit{testHit(7, "Backend Developer", "Python backend role")}}

	newTestMatcher(gemini, store).Match(context.Background(), testCVInfo(), nil)

	require.Len(t, gemini.prompts, 1)
	assert.Contains(t, gemini.prompts[0], "JOB_ID: 7\nJOB_TITLE: Backend Developer\nJOB_URL: https://jobs.example/7\n-----\n")
}

func TestMatchTruncatesLongDocuments(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	gemini := &stubGemini{response: `{"matched_jobs": [], "suggestions": []}`}
	store := &stubVectorStore{hits: []VectorHit{testHit(7, "Backend Developer", string(long))}}

	matcher := NewMatcherService(gemini, store, NewPromptBuilder(),
		config.MatchingConfig{RetrievalLimit: 20, ContextChars: 800}, zap.NewNop())
	matcher.Match(context.Background(), testCVInfo(), nil)

	require.Len(t, gemini.prompts, 1)
	assert.Contains(t, gemini.prompts[0], string(long[:800])+"...")
	assert.NotContains(t, gemini.prompts[0], string(long[:801]))
}

func TestMatchSkipsDocumentsWithNonNumericIDs(t *testing.T) {
	gemini := &stubGemini{response: `{"matched_jobs": [], "suggestions": []}`}
	bad := VectorHit{
		JobID:    0,
		Content:  "orphan document",
		Metadata: map[string]string{"job_id": "abc", "job_title": "Ghost"},
	}
	store := &stubVectorStore{hits: []VectorHit{bad, testHit(7, "Backend Developer", "role")}}

	newTestMatcher(gemini, store).Match(context.Background(), testCVInfo(), nil)

	require.Len(t, gemini.prompts, 1)
	assert.NotContains(t, gemini.prompts[0], "orphan document")
	assert.Contains(t, gemini.prompts[0], "JOB_ID: 7")
}

func TestMatchAppendsSuggestionWhenNothingValid(t *testing.T) {
	gemini := &stubGemini{response: `{
		"matched_jobs": [{"job_id": "no-digits-here", "match_score": 0.9}],
		"suggestions": []
	}`}
	store := &stubVectorStore{hits: []VectorHit{testHit(7, "Backend Developer", "role")}}

	outcome := newTestMatcher(gemini, store).Match(context.Background(), testCVInfo(), nil)

	assert.False(t, outcome.Degraded)
	assert.Empty(t, outcome.MatchedJobs)
	require.NotEmpty(t, outcome.Suggestions)
	assert.Equal(t, "No valid job id returned by the model", outcome.Suggestions[0].Suggestion)
}

func TestBuildProfileFlattensResume(t *testing.T) {
	matcher := newTestMatcher(&stubGemini{}, &stubVectorStore{})
	profile := matcher.BuildProfile(testCVInfo())

	assert.Contains(t, profile, `"Python"`)
	assert.Contains(t, profile, "Become a backend engineer")
	assert.Contains(t, profile, "Project: Developer - Built REST APIs in Django")
	assert.Contains(t, profile, "Degree: Bachelor at HUST (2017-09-01-2021-06-30)")
}

func TestBuildProfileUsesSentinelsForMissingSections(t *testing.T) {
	matcher := newTestMatcher(&stubGemini{}, &stubVectorStore{})
	profile := matcher.BuildProfile(&models.CVInfo{Skills: []string{"Python"}})

	assert.Contains(t, profile, "Aspirations: No career objective provided")
	assert.Contains(t, profile, "Experience: No experience provided")
	assert.Contains(t, profile, "Education: No education provided")
}

func TestBuildProfileTruncatesLongDescriptions(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'd'
	}
	info := &models.CVInfo{
		Experience: []models.Experience{
			{Title: "Developer", Description: string(long)},
		},
	}

	matcher := newTestMatcher(&stubGemini{}, &stubVectorStore{})
	profile := matcher.BuildProfile(info)

	assert.Contains(t, profile, "Project: Developer - "+string(long[:200])+"...")
	assert.NotContains(t, profile, string(long[:201]))
}

func TestExtractJSONStripsFences(t *testing.T) {
	fenced := "```json\n{\"matched_jobs\": []}\n```"
	assert.Equal(t, `{"matched_jobs": []}`, extractJSON(fenced))

	prose := "Here is the result:\n{\"a\": 1}\nHope it helps."
	assert.Equal(t, `{"a": 1}`, extractJSON(prose))

	array := "```json\n[{\"section\": \"skills\"}]\n```"
	assert.Equal(t, `[{"section": "skills"}]`, extractJSON(array))
}
