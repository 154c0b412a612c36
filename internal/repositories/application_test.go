package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hainguyen/cv-job-matching/internal/models"
)

func TestApplicationUniquePerCVAndJob(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)

	require.NoError(t, repo.Create(&models.Application{CVID: 1, JobID: 7, Status: "applied"}))

	exists, err := repo.Exists(1, 7)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(1, 8)
	require.NoError(t, err)
	assert.False(t, exists)

	// The composite unique index rejects a second application outright.
	err = repo.Create(&models.Application{CVID: 1, JobID: 7, Status: "applied"})
	require.Error(t, err)
}

func TestListByCVJoinsPostings(t *testing.T) {
	db := newTestDB(t)
	appRepo := NewApplicationRepository(db)
	jobRepo := NewJobRepository(db, zap.NewNop())

	job := &models.JobPosting{
		CompanyName:  "Acme Corp",
		JobTitle:     "Backend Developer",
		JobURL:       "https://jobs.example/backend",
		Salary:       "15-20 triệu",
		WorkLocation: "Hà Nội",
	}
	_, err := jobRepo.Create(job)
	require.NoError(t, err)

	require.NoError(t, appRepo.Create(&models.Application{CVID: 1, JobID: job.ID, Status: "applied"}))
	require.NoError(t, appRepo.Create(&models.Application{CVID: 2, JobID: job.ID, Status: "pending"}))

	items, err := appRepo.ListByCV(1, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Backend Developer", items[0].JobTitle)
	assert.Equal(t, "Acme Corp", items[0].CompanyName)
	assert.Equal(t, "applied", items[0].Status)

	items, err = appRepo.ListByCV(1, "pending")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCVDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	cvRepo := NewCVRepository(db)
	appRepo := NewApplicationRepository(db)
	logRepo := NewMatchLogRepository(db)

	cv := &models.CV{Filename: "resume.pdf", CVInfoJSON: "{}"}
	require.NoError(t, cvRepo.Create(cv))
	require.NoError(t, appRepo.Create(&models.Application{CVID: cv.ID, JobID: 7}))
	require.NoError(t, logRepo.Create(&models.MatchLog{CVID: cv.ID, MatchedJobsJSON: "[]"}))

	require.NoError(t, cvRepo.Delete(cv.ID))

	_, err := cvRepo.FindByID(cv.ID)
	require.Error(t, err)

	exists, err := appRepo.Exists(cv.ID, 7)
	require.NoError(t, err)
	assert.False(t, exists)

	log, err := logRepo.LatestByCV(cv.ID)
	require.NoError(t, err)
	assert.Nil(t, log)
}
