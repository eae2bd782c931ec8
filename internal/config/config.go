package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// QuestionBankPath is the CSV file holding the question records.
	QuestionBankPath string

	// ProgressStore selects the progress backing: memory|sql.
	ProgressStore string
	DBDriver      string
	DBDSN         string

	// Embedding provider settings.
	OpenAIAPIKey string
	EmbedModel   string
	EmbedBaseURL string
	EmbedTimeout time.Duration
	EmbedRetries int

	CORSOrigins []string
}

func FromEnv() Config {
	return Config{
		HTTPAddr:         envOr("HTTP_ADDR", ":8080"),
		QuestionBankPath: envOr("QUESTION_BANK", "data/questions.csv"),
		ProgressStore:    envOr("PROGRESS_STORE", "memory"),
		DBDriver:         envOr("DB_DRIVER", "sqlite"),
		DBDSN:            envOr("DB_DSN", ""),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		EmbedModel:       envOr("EMBED_MODEL", "text-embedding-3-small"),
		EmbedBaseURL:     os.Getenv("EMBED_BASE_URL"),
		EmbedTimeout:     envDuration("EMBED_TIMEOUT", 15*time.Second),
		EmbedRetries:     envInt("EMBED_RETRIES", 2),
		CORSOrigins:      csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
