package app

import (
	"strings"
	"time"

	"github.com/mivamind/casegrade-backend/internal/logger"
	"github.com/mivamind/casegrade-backend/internal/utils"
)

type Config struct {
	Port           string
	Environment    string
	AllowedOrigins []string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	ElevenLabsAPIKey     string
	ElevenLabsBaseURL    string
	ElevenLabsAgentID    string
	TranscriptTimeout    time.Duration
	TranscriptRetries    int
	TranscriptRetryDelay time.Duration

	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	OpenAITemperature float64
	OpenAIMaxTokens   int
	OpenAITimeout     time.Duration

	RedisAddr     string
	GradeCacheTTL time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:           utils.GetEnv("PORT", "8080", log),
		Environment:    utils.GetEnv("ENVIRONMENT", "development", log),
		AllowedOrigins: splitOrigins(utils.GetEnv("ALLOWED_ORIGINS", "", log)),

		JWTSecretKey:   utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL: utils.GetEnvAsDuration("ACCESS_TOKEN_TTL", 7*24*time.Hour, log),

		ElevenLabsAPIKey:     utils.GetEnv("ELEVENLABS_API_KEY", "", log),
		ElevenLabsBaseURL:    utils.GetEnv("ELEVENLABS_BASE_URL", "", log),
		ElevenLabsAgentID:    utils.GetEnv("ELEVENLABS_AGENT_ID", "", log),
		TranscriptTimeout:    utils.GetEnvAsDuration("TRANSCRIPT_TIMEOUT", 30*time.Second, log),
		TranscriptRetries:    utils.GetEnvAsInt("TRANSCRIPT_RETRY_ATTEMPTS", 2, log),
		TranscriptRetryDelay: utils.GetEnvAsDuration("TRANSCRIPT_RETRY_DELAY", 10*time.Second, log),

		OpenAIAPIKey:      utils.GetEnv("OPENAI_API_KEY", "", log),
		OpenAIBaseURL:     utils.GetEnv("OPENAI_BASE_URL", "", log),
		OpenAIModel:       utils.GetEnv("OPENAI_MODEL", "gpt-4o-mini", log),
		OpenAITemperature: utils.GetEnvAsFloat("OPENAI_TEMPERATURE", 0.3, log),
		OpenAIMaxTokens:   utils.GetEnvAsInt("OPENAI_MAX_TOKENS", 1200, log),
		OpenAITimeout:     utils.GetEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second, log),

		RedisAddr:     utils.GetEnv("REDIS_ADDR", "", log),
		GradeCacheTTL: utils.GetEnvAsDuration("GRADE_CACHE_TTL", 24*time.Hour, log),
	}
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
