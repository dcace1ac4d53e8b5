// Package config loads client settings from MIRAGE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Save-slot backends selectable with MIRAGE_STORE.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreS3       = "s3"
	StoreMemory   = "memory"
)

// DefaultBaseURL is the backend used when MIRAGE_BASE_URL is unset.
const DefaultBaseURL = "http://localhost:3000/"

type Config struct {
	BaseURL      string        // MIRAGE_BASE_URL (default "http://localhost:3000/")
	Agent        string        // MIRAGE_AGENT (default "X-MirageSDK-Agent")
	HTTPTimeout  time.Duration // MIRAGE_HTTP_TIMEOUT (default 0 = none)
	PollAttempts int           // MIRAGE_POLL_ATTEMPTS (default 10)
	PollInterval time.Duration // MIRAGE_POLL_INTERVAL (default 10s)

	// Save slot holding the device identifier
	SlotName  string // MIRAGE_SLOT_NAME (default "MirageSDK")
	SlotIndex int    // MIRAGE_SLOT_INDEX (default 0)
	Store     string // MIRAGE_STORE (file|postgres|s3|memory, default "file")
	StateDir  string // MIRAGE_STATE_DIR (default ~/.local/state/mirage/slots)

	DatabaseURL string // MIRAGE_DATABASE_URL (required for postgres)
	S3Bucket    string // MIRAGE_S3_BUCKET (required for s3)
	S3Prefix    string // MIRAGE_S3_PREFIX (default "mirage/slots")
	S3Region    string // MIRAGE_S3_REGION (default "us-east-1")
	S3Endpoint  string // MIRAGE_S3_ENDPOINT (custom endpoint for MinIO)

	NATSURL string // MIRAGE_NATS_URL (optional, empty = no events)

	// Dev server
	DevAddr         string // MIRAGE_DEV_ADDR (default ":3000")
	DevPendingPolls int    // MIRAGE_DEV_PENDING_POLLS (default 2)
}

func Load() (*Config, error) {
	c := &Config{
		BaseURL:     envOrDefault("MIRAGE_BASE_URL", DefaultBaseURL),
		Agent:       envOrDefault("MIRAGE_AGENT", "X-MirageSDK-Agent"),
		SlotName:    envOrDefault("MIRAGE_SLOT_NAME", "MirageSDK"),
		Store:       envOrDefault("MIRAGE_STORE", StoreFile),
		StateDir:    os.Getenv("MIRAGE_STATE_DIR"),
		DatabaseURL: os.Getenv("MIRAGE_DATABASE_URL"),
		S3Bucket:    os.Getenv("MIRAGE_S3_BUCKET"),
		S3Prefix:    envOrDefault("MIRAGE_S3_PREFIX", "mirage/slots"),
		S3Region:    envOrDefault("MIRAGE_S3_REGION", "us-east-1"),
		S3Endpoint:  os.Getenv("MIRAGE_S3_ENDPOINT"),
		NATSURL:     os.Getenv("MIRAGE_NATS_URL"),
		DevAddr:     envOrDefault("MIRAGE_DEV_ADDR", ":3000"),
	}

	var err error
	if c.HTTPTimeout, err = envDuration("MIRAGE_HTTP_TIMEOUT", "0s"); err != nil {
		return nil, err
	}
	if c.PollInterval, err = envDuration("MIRAGE_POLL_INTERVAL", "10s"); err != nil {
		return nil, err
	}
	if c.PollInterval < 0 {
		return nil, fmt.Errorf("MIRAGE_POLL_INTERVAL must not be negative, got %s", c.PollInterval)
	}
	if c.PollAttempts, err = envInt("MIRAGE_POLL_ATTEMPTS", 10); err != nil {
		return nil, err
	}
	if c.PollAttempts < 1 {
		return nil, fmt.Errorf("MIRAGE_POLL_ATTEMPTS must be at least 1, got %d", c.PollAttempts)
	}
	if c.SlotIndex, err = envInt("MIRAGE_SLOT_INDEX", 0); err != nil {
		return nil, err
	}
	if c.DevPendingPolls, err = envInt("MIRAGE_DEV_PENDING_POLLS", 2); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the selected save slot backend is fully configured.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreMemory:
		return nil
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("MIRAGE_DATABASE_URL is required when MIRAGE_STORE=postgres")
		}
		return nil
	case StoreS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("MIRAGE_S3_BUCKET is required when MIRAGE_STORE=s3")
		}
		return nil
	default:
		return fmt.Errorf("MIRAGE_STORE: unknown backend %q", c.Store)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
