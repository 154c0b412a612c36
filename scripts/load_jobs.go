// Command load_jobs bulk-imports the scraped postings feed (JSONL) into
// Postgres and the Qdrant collection. Safe to re-run: an already populated
// job_store skips the load.
//
// Usage: go run scripts/load_jobs.go [-file data/jobs_processed.jsonl] [-verify N]
package main

import (
	"context"
	"flag"

	"go.uber.org/zap"

	"hainguyen/cv-job-matching/internal/config"
	"hainguyen/cv-job-matching/internal/keyring"
	"hainguyen/cv-job-matching/internal/repositories"
	"hainguyen/cv-job-matching/internal/services"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load(logger)

	filePath := flag.String("file", cfg.Storage.JobsPath, "path to the jobs JSONL feed")
	verify := flag.Int("verify", 0, "job id to cross-check between stores after loading")
	flag.Parse()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	ring, err := keyring.LoadFromEnv(logger)
	if err != nil {
		logger.Fatal("failed to load gemini api keys", zap.Error(err))
	}

	gemini, err := services.NewGeminiService(ring, cfg.Matching, cfg.Retry, logger)
	if err != nil {
		logger.Fatal("failed to initialize gemini", zap.Error(err))
	}

	store, err := services.NewQdrantStore(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		gemini,
		logger,
	)
	if err != nil {
		logger.Fatal("failed to initialize qdrant", zap.Error(err))
	}

	ctx := context.Background()
	if err := store.InitCollection(ctx); err != nil {
		logger.Fatal("failed to initialize collection", zap.Error(err))
	}

	jobRepo := repositories.NewJobRepository(db, logger)
	loader := services.NewJobLoader(jobRepo, store, logger)

	stats, err := loader.LoadFromFile(ctx, *filePath)
	if err != nil {
		logger.Fatal("load failed", zap.Error(err))
	}

	logger.Info("load finished",
		zap.Int("total", stats.Total),
		zap.Int("inserted", stats.Inserted),
		zap.Int("skipped", stats.Skipped),
		zap.Int("indexed", stats.Indexed))

	if *verify > 0 {
		consistent, err := loader.VerifyJobConsistency(ctx, *verify)
		if err != nil {
			logger.Fatal("consistency check failed", zap.Error(err))
		}
		logger.Info("consistency check",
			zap.Int("job_id", *verify),
			zap.Bool("consistent", consistent))
	}
}
