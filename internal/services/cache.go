package services

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hainguyen/cv-job-matching/internal/models"
	"hainguyen/cv-job-matching/internal/repositories"
)

// MatchCache reuses the newest match_logs row per CV inside the freshness
// window. Only live, non-degraded runs are written, so a cache hit is always a
// previously good result.
type MatchCache interface {
	Get(cvID int) ([]models.MatchedJob, bool)
	Put(cvID int, sessionID string, jobs []models.MatchedJob) error
}

type matchCache struct {
	logs   repositories.MatchLogRepository
	window time.Duration
	logger *zap.Logger
}

func NewMatchCache(logs repositories.MatchLogRepository, window time.Duration, logger *zap.Logger) MatchCache {
	return &matchCache{logs: logs, window: window, logger: logger}
}

func (c *matchCache) Get(cvID int) ([]models.MatchedJob, bool) {
	log, err := c.logs.LatestByCV(cvID)
	if err != nil {
		c.logger.Warn("cache lookup failed", zap.Int("cv_id", cvID), zap.Error(err))
		return nil, false
	}
	if log == nil {
		return nil, false
	}
	if time.Since(log.CreatedAt) >= c.window {
		return nil, false
	}

	var jobs []models.MatchedJob
	if err := json.Unmarshal([]byte(log.MatchedJobsJSON), &jobs); err != nil {
		c.logger.Warn("cached match payload is corrupt, ignoring",
			zap.Int("cv_id", cvID), zap.Error(err))
		return nil, false
	}

	c.logger.Info("cache hit", zap.Int("cv_id", cvID), zap.Int("jobs", len(jobs)))
	return jobs, true
}

func (c *matchCache) Put(cvID int, sessionID string, jobs []models.MatchedJob) error {
	payload, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("failed to marshal matched jobs: %w", err)
	}
	return c.logs.Create(&models.MatchLog{
		SessionID:       sessionID,
		CVID:            cvID,
		MatchedJobsJSON: string(payload),
	})
}
