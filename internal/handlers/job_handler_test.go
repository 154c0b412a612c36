package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hainguyen/cv-job-matching/internal/config"
	"hainguyen/cv-job-matching/internal/models"
	"hainguyen/cv-job-matching/internal/repositories"
	"hainguyen/cv-job-matching/internal/services"
)

type searchFixture struct {
	app  *fiber.App
	cvID int
}

type searchResponse struct {
	Results []models.JobSearchResult `json:"results"`
	Total   int64                    `json:"total"`
}

func newSearchFixture(t *testing.T) *searchFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	logger := zap.NewNop()
	jobRepo := repositories.NewJobRepository(db, logger)
	cvRepo := repositories.NewCVRepository(db)

	jobs := []*models.JobPosting{
		{
			CompanyName: "Acme Corp",
			JobTitle:    "Backend Developer",
			JobURL:      "https://jobs.example/backend",
			Skills:      "Python; SQL",
		},
		{
			CompanyName: "Mobile Co",
			JobTitle:    "iOS Developer",
			JobURL:      "https://jobs.example/ios",
			Skills:      "Swift; Kotlin; Objective-C",
		},
	}
	for _, job := range jobs {
		_, err := jobRepo.Create(job)
		require.NoError(t, err)
	}

	cv := &models.CV{Filename: "resume.pdf"}
	require.NoError(t, cv.SetInfo(&models.CVInfo{
		Name:   "Nguyen Van A",
		Skills: []string{"Python", "SQL", "Docker"},
	}))
	require.NoError(t, cvRepo.Create(cv))

	handler := NewJobHandler(jobRepo, cvRepo, nil, services.NewPromptBuilder(), logger)

	app := fiber.New()
	app.Post("/jobs/search", handler.HandleSearch)

	return &searchFixture{app: app, cvID: cv.ID}
}

func postSearch(t *testing.T, app *fiber.App, req models.JobSearchRequest) *searchResponse {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)
	httpReq := httptest.NewRequest(http.MethodPost, "/jobs/search", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(httpReq, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed searchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return &parsed
}

func TestHandleSearchScoresSkillOverlapWithCV(t *testing.T) {
	f := newSearchFixture(t)

	parsed := postSearch(t, f.app, models.JobSearchRequest{CVID: f.cvID})
	require.Len(t, parsed.Results, 2)

	// Overlapping posting sorts first: both of its listed skills match.
	first := parsed.Results[0]
	assert.Equal(t, "Backend Developer", first.JobTitle)
	require.NotNil(t, first.MatchScore)
	assert.InDelta(t, 1.0, *first.MatchScore, 1e-9)
	assert.Equal(t, "Matched 2 skills: Python, SQL", first.WhyMatch)

	second := parsed.Results[1]
	require.NotNil(t, second.MatchScore)
	assert.Zero(t, *second.MatchScore)
	assert.Equal(t, "May be a fit for this position", second.WhyMatch)
}

func TestHandleSearchOmitsScoreWithoutCV(t *testing.T) {
	f := newSearchFixture(t)

	parsed := postSearch(t, f.app, models.JobSearchRequest{})
	require.Len(t, parsed.Results, 2)
	for _, result := range parsed.Results {
		assert.Nil(t, result.MatchScore)
		assert.Empty(t, result.WhyMatch)
	}
}

func TestHandleSearchUnknownCVSkipsScoring(t *testing.T) {
	f := newSearchFixture(t)

	parsed := postSearch(t, f.app, models.JobSearchRequest{CVID: 99999})
	require.Len(t, parsed.Results, 2)
	for _, result := range parsed.Results {
		assert.Nil(t, result.MatchScore)
	}
}

func TestSkillOverlapIgnoresDuplicatesAndCaps(t *testing.T) {
	score, why := skillOverlap(
		[]string{"Go", "Go", "SQL", "Docker", "Redis"},
		[]string{"Go", "SQL", "Docker", "Redis"},
	)
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.Equal(t, "Matched 4 skills: Go, SQL, Docker", why)

	score, why = skillOverlap([]string{"Go"}, nil)
	assert.Zero(t, score)
	assert.Equal(t, "May be a fit for this position", why)
}
