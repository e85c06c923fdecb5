package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	APIBaseURL    string
	WSURL         string
	VaultFile     string
	VaultKeyFile  string
	HistoryLimit  int
	TypingTimeout time.Duration
}

func Load() (*Config, error) {
	typingTimeout, err := time.ParseDuration(getEnv("TYPING_TIMEOUT", "2s"))
	if err != nil {
		return nil, err
	}

	historyLimit, err := strconv.Atoi(getEnv("HISTORY_PAGE_LIMIT", "50"))
	if err != nil {
		return nil, fmt.Errorf("HISTORY_PAGE_LIMIT must be a number: %w", err)
	}

	cfg := &Config{
		APIBaseURL:    getEnv("SOBESEDNIK_API_URL", "http://localhost:8080/api/v1"),
		WSURL:         getEnv("SOBESEDNIK_WS_URL", "ws://localhost:8080/ws/chat"),
		VaultFile:     getEnv("SOBESEDNIK_DB", "sobesednik.db"),
		VaultKeyFile:  getEnv("SOBESEDNIK_KEY_FILE", "sobesednik.key"),
		HistoryLimit:  historyLimit,
		TypingTimeout: typingTimeout,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.WSURL, "ws://") && !strings.HasPrefix(c.WSURL, "wss://") {
		return fmt.Errorf("SOBESEDNIK_WS_URL must be a ws:// or wss:// URL")
	}

	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_PAGE_LIMIT must be greater than 0")
	}

	if c.TypingTimeout <= 0 {
		return fmt.Errorf("TYPING_TIMEOUT must be greater than 0")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
