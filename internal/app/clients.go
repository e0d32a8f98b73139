package app

import (
	"fmt"

	"github.com/mivamind/casegrade-backend/internal/clients/elevenlabs"
	"github.com/mivamind/casegrade-backend/internal/clients/rediscache"
	"github.com/mivamind/casegrade-backend/internal/logger"
)

type Clients struct {
	ElevenLabs *elevenlabs.Client
	GradeCache *rediscache.GradeCache
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	el, err := elevenlabs.New(log, elevenlabs.Config{
		APIKey:        cfg.ElevenLabsAPIKey,
		BaseURL:       cfg.ElevenLabsBaseURL,
		Timeout:       cfg.TranscriptTimeout,
		RetryAttempts: cfg.TranscriptRetries,
		RetryDelay:    cfg.TranscriptRetryDelay,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init elevenlabs client: %w", err)
	}

	// The cache is optional: without a redis address the pipeline runs
	// straight against the database.
	var cache *rediscache.GradeCache
	if cfg.RedisAddr != "" {
		cache, err = rediscache.New(log, cfg.RedisAddr, cfg.GradeCacheTTL)
		if err != nil {
			log.Warn("Grade cache init failed, continuing without cache", "error", err)
			cache = nil
		}
	}

	return Clients{ElevenLabs: el, GradeCache: cache}, nil
}
