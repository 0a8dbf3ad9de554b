package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port string

	GCPProjectID string
	GCPLocation  string

	// ModelIntellectual / ModelFunny pick the completion model per persona,
	// replacing the per-persona API routes of the original front-end.
	ModelIntellectual string
	ModelFunny        string

	StorageBackend    string // "memory" or "firestore"
	UseMockCompletion bool   // true = use mock even on GCP

	// SessionIdleWindow is how long an untouched session survives before the
	// registry sweeps it.
	SessionIdleWindow time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads all env vars and builds the config
func Load() *Config {
	modeStr := getEnv("FANCHAT_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("FANCHAT_PORT", "8080"),

		GCPProjectID: getEnv("FANCHAT_GCP_PROJECT", ""),
		GCPLocation:  getEnv("FANCHAT_GCP_LOCATION", "us-central1"),

		ModelIntellectual: getEnv("FANCHAT_MODEL_INTELLECTUAL", "gemini-2.5-flash"),
		ModelFunny:        getEnv("FANCHAT_MODEL_FUNNY", "gemini-2.5-flash-lite"),

		StorageBackend:    getEnv("FANCHAT_STORAGE_BACKEND", "memory"),
		UseMockCompletion: getBoolEnv("FANCHAT_USE_MOCK_COMPLETION", mode == ModeLocal),

		SessionIdleWindow: getDurationEnv("FANCHAT_SESSION_IDLE_WINDOW", 30*time.Minute),
	}

	// Minimal validation in GCP mode
	if cfg.Mode == ModeGCP && cfg.GCPProjectID == "" {
		log.Fatal("FANCHAT_GCP_PROJECT must be set in gcp mode")
	}

	return cfg
}
