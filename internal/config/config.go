package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// TelemetryConfig controls the OTLP metrics exporter
type TelemetryConfig struct {
	Enabled  bool
	Endpoint string
	Insecure bool
}

type Config struct {
	Port                string
	Environment         string
	StoreBackend        string
	MongoURI            string
	MongoDatabase       string
	RedisURI            string
	SessionBufferSize   int
	CORSAllowedOrigins  []string
	InferencePolicyFile string

	SurveyMonkeyBaseURL     string
	SurveyMonkeyAccessToken string
	HTTPTimeout             time.Duration

	Reasoning ReasoningConfig
	Telemetry TelemetryConfig
}

// Load reads .env (when present) and then the process environment
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only
func FromEnv() *Config {
	store := strings.ToLower(getEnv("STORE_BACKEND", StoreMemory))
	if store != StoreMongo {
		store = StoreMemory
	}
	bufSize := getEnvInt("SESSION_BUFFER_SIZE", 100)
	if bufSize <= 0 {
		bufSize = 100
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         getEnv("ENVIRONMENT", "production"),
		StoreBackend:        store,
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:       getEnv("MONGO_DATABASE", "invisinsights"),
		RedisURI:            getEnv("REDIS_URI", ""),
		SessionBufferSize:   bufSize,
		CORSAllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		InferencePolicyFile: getEnv("INFERENCE_POLICY_FILE", ""),

		SurveyMonkeyBaseURL:     getEnv("SURVEYMONKEY_BASE_URL", "https://api.surveymonkey.com/v3"),
		SurveyMonkeyAccessToken: getEnv("SURVEYMONKEY_ACCESS_TOKEN", ""),
		HTTPTimeout:             time.Duration(getEnvInt("HTTP_TIMEOUT_MS", 30000)) * time.Millisecond,

		Reasoning: DefaultReasoningConfig(),
		Telemetry: TelemetryConfig{
			Enabled:  getEnvBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure: getEnvBool("OTEL_INSECURE", false),
		},
	}
}

// IsDevelopment reports whether verbose development defaults apply
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return v
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultVal
	}
	return v
}

func getEnvBool(key string, defaultVal bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
