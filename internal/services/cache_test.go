package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hainguyen/cv-job-matching/internal/models"
	"hainguyen/cv-job-matching/internal/repositories"
)

func TestCacheMissWhenEmpty(t *testing.T) {
	db := newTestDB(t)
	cache := NewMatchCache(repositories.NewMatchLogRepository(db), time.Hour, zap.NewNop())

	_, ok := cache.Get(1)
	assert.False(t, ok)
}

func TestCacheHitWithinWindow(t *testing.T) {
	db := newTestDB(t)
	cache := NewMatchCache(repositories.NewMatchLogRepository(db), time.Hour, zap.NewNop())

	jobs := []models.MatchedJob{
		{JobID: 7, JobTitle: "Backend Developer", MatchScore: 0.85},
		{JobID: 9, JobTitle: "Data Engineer", MatchScore: 0.7},
	}
	require.NoError(t, cache.Put(1, "session-1", jobs))

	cached, ok := cache.Get(1)
	require.True(t, ok)
	require.Len(t, cached, 2)
	// Order is preserved exactly as written; the cache never re-sorts.
	assert.Equal(t, 7, cached[0].JobID)
	assert.Equal(t, 9, cached[1].JobID)
	assert.InDelta(t, 0.85, cached[0].MatchScore, 1e-9)
}

func TestCacheMissWhenStale(t *testing.T) {
	db := newTestDB(t)
	cache := NewMatchCache(repositories.NewMatchLogRepository(db), time.Hour, zap.NewNop())

	require.NoError(t, cache.Put(1, "session-1", []models.MatchedJob{{JobID: 7}}))
	require.NoError(t, db.Model(&models.MatchLog{}).
		Where("cv_id = ?", 1).
		Update("created_at", time.Now().Add(-2*time.Hour)).Error)

	_, ok := cache.Get(1)
	assert.False(t, ok)
}

func TestCacheReturnsNewestRunOnly(t *testing.T) {
	db := newTestDB(t)
	cache := NewMatchCache(repositories.NewMatchLogRepository(db), time.Hour, zap.NewNop())

	require.NoError(t, cache.Put(1, "session-1", []models.MatchedJob{{JobID: 7}}))
	// Age the first run so ordering by created_at is unambiguous.
	require.NoError(t, db.Model(&models.MatchLog{}).
		Where("session_id = ?", "session-1").
		Update("created_at", time.Now().Add(-10*time.Minute)).Error)
	require.NoError(t, cache.Put(1, "session-2", []models.MatchedJob{{JobID: 9}}))

	cached, ok := cache.Get(1)
	require.True(t, ok)
	require.Len(t, cached, 1)
	assert.Equal(t, 9, cached[0].JobID)
}

func TestCacheMissOnCorruptPayload(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewMatchLogRepository(db)
	cache := NewMatchCache(repo, time.Hour, zap.NewNop())

	require.NoError(t, repo.Create(&models.MatchLog{
		SessionID:       "session-1",
		CVID:            1,
		MatchedJobsJSON: "{not json",
	}))

	_, ok := cache.Get(1)
	assert.False(t, ok)
}
