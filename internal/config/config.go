package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents runtime configuration for the service.
type Config struct {
	ServerAddress       string `json:"server_address"`
	UploadDir           string `json:"upload_dir"`
	AgentTimeoutSeconds int    `json:"agent_timeout_seconds"`
	AgentMaxConcurrent  int    `json:"agent_max_concurrent"`
	AdminUsername       string `json:"admin_username"`
	AdminPassword       string `json:"admin_password"`
}

// Load reads configuration from the provided JSON path (defaults to
// config.json), then applies environment overrides. A missing config file is
// fine; the service can run on env vars and defaults alone.
func Load(path string) (*Config, error) {
	// Load .env if present so local runs pick up overrides.
	_ = godotenv.Load()

	if path == "" {
		path = "config.json"
	}
	var cfg Config
	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}

	cfg.ServerAddress = getEnv("AGENTSCHAT_ADDR", cfg.ServerAddress)
	cfg.UploadDir = getEnv("AGENTSCHAT_UPLOAD_DIR", cfg.UploadDir)
	cfg.AgentTimeoutSeconds = getEnvInt("AGENTSCHAT_AGENT_TIMEOUT", cfg.AgentTimeoutSeconds)
	cfg.AgentMaxConcurrent = getEnvInt("AGENTSCHAT_AGENT_MAX_CONCURRENT", cfg.AgentMaxConcurrent)
	cfg.AdminUsername = getEnv("AGENTSCHAT_ADMIN_USER", cfg.AdminUsername)
	cfg.AdminPassword = getEnv("AGENTSCHAT_ADMIN_PASS", cfg.AdminPassword)
	return &cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
