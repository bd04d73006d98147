package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the agent service
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	// Campaign backend collaborator
	APIURL         string
	BackendTimeout time.Duration

	// Room transport credentials for token minting
	TransportURL string
	APIKey       string
	APISecret    string

	// Conversation pacing
	TransferDelay time.Duration // pause before transferring an interested lead
	EndCallDelay  time.Duration // pause before ending a not-interested call
	CallbackDelay time.Duration // pause before scheduling a callback

	// Idle monitoring
	IdleCheckInterval time.Duration // how often the idle timer fires
	IdleThreshold     time.Duration // silence length that triggers a nudge

	// WebSocket monitor feed
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "8081"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		APIURL:         getEnv("NEXT_PUBLIC_API_URL", "http://localhost:3025"),
		TransportURL:   getEnv("LIVEKIT_URL", ""),
		APIKey:         getEnv("LIVEKIT_API_KEY", ""),
		APISecret:      getEnv("LIVEKIT_API_SECRET", ""),
	}

	var err error
	if config.BackendTimeout, err = parseSeconds("BACKEND_TIMEOUT", "5"); err != nil {
		return nil, err
	}
	if config.TransferDelay, err = parseSeconds("TRANSFER_DELAY", "2"); err != nil {
		return nil, err
	}
	if config.EndCallDelay, err = parseSeconds("END_CALL_DELAY", "1"); err != nil {
		return nil, err
	}
	if config.CallbackDelay, err = parseSeconds("CALLBACK_DELAY", "1"); err != nil {
		return nil, err
	}
	if config.IdleCheckInterval, err = parseSeconds("IDLE_CHECK_INTERVAL", "2"); err != nil {
		return nil, err
	}
	if config.IdleThreshold, err = parseSeconds("IDLE_THRESHOLD", "10"); err != nil {
		return nil, err
	}
	if config.WSReadTimeout, err = parseSeconds("WS_READ_TIMEOUT", "60"); err != nil {
		return nil, err
	}
	if config.WSWriteTimeout, err = parseSeconds("WS_WRITE_TIMEOUT", "10"); err != nil {
		return nil, err
	}

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 512

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// HasTransportCredentials reports whether room token credentials are set
func (c *Config) HasTransportCredentials() bool {
	return c.APIKey != "" && c.APISecret != ""
}

func parseSeconds(key, defaultValue string) (time.Duration, error) {
	secs, err := strconv.Atoi(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return time.Duration(secs) * time.Second, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
