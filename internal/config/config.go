package config

import (
	"os"
	"strconv"
)

// Config carries every externally-derived setting. It is built once in main
// and handed to constructors; no component reads the environment itself.
type Config struct {
	HTTPAddr    string
	APIToken    string
	PostgresDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AWSRegion  string
	S3Endpoint string

	StackName    string
	SystemBucket string

	StateMachinePrefix string
	IngestWorkflow     string

	CMRBaseURL  string
	CMRProvider string
	CMRToken    string

	DistributionEndpoint string

	MetricsHost     string
	MetricsUser     string
	MetricsPassword string

	LogLevel string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:             addr,
		APIToken:             os.Getenv("API_TOKEN"),
		PostgresDSN:          os.Getenv("POSTGRES_DSN"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              envInt("REDIS_DB", 0),
		AWSRegion:            envDefault("AWS_REGION", "us-east-1"),
		S3Endpoint:           os.Getenv("S3_ENDPOINT"),
		StackName:            envDefault("STACK_NAME", "cumulus"),
		SystemBucket:         os.Getenv("SYSTEM_BUCKET"),
		StateMachinePrefix:   os.Getenv("STATE_MACHINE_PREFIX"),
		IngestWorkflow:       envDefault("INGEST_WORKFLOW", "IngestGranule"),
		CMRBaseURL:           os.Getenv("CMR_BASE_URL"),
		CMRProvider:          os.Getenv("CMR_PROVIDER"),
		CMRToken:             os.Getenv("CMR_TOKEN"),
		DistributionEndpoint: os.Getenv("DISTRIBUTION_ENDPOINT"),
		MetricsHost:          os.Getenv("METRICS_ES_HOST"),
		MetricsUser:          os.Getenv("METRICS_ES_USER"),
		MetricsPassword:      os.Getenv("METRICS_ES_PASS"),
		LogLevel:             envDefault("LOG_LEVEL", "info"),
	}
}

// MetricsConfigured gates bulk-by-query requests: a query payload without a
// metrics search backend is a client error.
func (c Config) MetricsConfigured() bool {
	return c.MetricsHost != "" && c.MetricsUser != "" && c.MetricsPassword != ""
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return parsed
}
