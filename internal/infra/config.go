package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable with STORE_BACKEND.
const (
	StoreBackendMemory   = "memory"
	StoreBackendFile     = "file"
	StoreBackendPostgres = "postgres"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	StoreBackend string
	StoragePath  string
	DatabaseURL  string
	DBMaxConns   int
	DBMinConns   int
	CatalogPath  string
	FieldsPath   string
	PromptsPath  string

	JWTSecret string

	PromptProvider   string
	FallbackProvider string
	GeminiAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	OpenAIOrg        string

	LLMTimeout        time.Duration
	MediaProbeTimeout time.Duration

	RedisURL    string
	GeoIPDBPath string

	CORSAllowedOrigins []string
	RateLimitPerMin    int

	RequestLogRetentionDays int
	DefaultLanguage         string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                  getEnv("APP_ENV", "development"),
		Port:                    getEnv("PORT", "8080"),
		LogLevel:                os.Getenv("LOG_LEVEL"),
		StoreBackend:            strings.ToLower(getEnv("STORE_BACKEND", StoreBackendFile)),
		StoragePath:             getEnv("STORAGE_PATH", "./data"),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		DBMaxConns:              getEnvInt("DB_MAX_CONNS", 10),
		DBMinConns:              getEnvInt("DB_MIN_CONNS", 1),
		CatalogPath:             os.Getenv("CATALOG_PATH"),
		FieldsPath:              os.Getenv("FIELDS_PATH"),
		PromptsPath:             os.Getenv("PROMPTS_PATH"),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		PromptProvider:          getEnv("PROMPT_PROVIDER", "openai"),
		FallbackProvider:        os.Getenv("PROMPT_FALLBACK_PROVIDER"),
		GeminiAPIKey:            os.Getenv("GEMINI_API_KEY"),
		GeminiModel:             getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:           getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIAPIKey:            os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:             getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:           getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:               os.Getenv("OPENAI_ORG"),
		LLMTimeout:              time.Second * time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 45)),
		MediaProbeTimeout:       time.Second * time.Duration(getEnvInt("MEDIA_PROBE_TIMEOUT_SECONDS", 5)),
		RedisURL:                os.Getenv("REDIS_URL"),
		GeoIPDBPath:             os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins:      splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitPerMin:         getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		RequestLogRetentionDays: getEnvInt("REQUEST_LOG_RETENTION_DAYS", 0),
		DefaultLanguage:         strings.ToUpper(getEnv("DEFAULT_LANGUAGE", "EN")),
		HTTPReadTimeout:         time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:        time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:         time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	switch cfg.StoreBackend {
	case StoreBackendMemory, StoreBackendFile:
	case StoreBackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	if cfg.JWTSecret == "" && !cfg.IsDevelopment() {
		return nil, fmt.Errorf("JWT_SECRET is required outside development")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
