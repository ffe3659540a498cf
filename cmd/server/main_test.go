package main

import (
	"alcyxob/fitcoach/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func memoryConfig() config.Config {
	return config.Config{
		Database: config.DatabaseConfig{Driver: "memory"},
		JWT:      config.JWTConfig{Secret: "test-secret"},
		S3:       config.S3Config{Region: "us-east-1", AccessKeyID: "key", SecretAccessKey: "secret", BucketName: "videos"},
		Cache:    config.CacheConfig{SizeMB: 1},
	}
}

func TestRun_RequiresJWTSecret(t *testing.T) {
	cfg := memoryConfig()
	cfg.JWT.Secret = ""
	assert.EqualError(t, run(cfg), "jwt.secret must be set")
}

func TestRun_ReturnsSetupErrors(t *testing.T) {
	cfg := memoryConfig()
	cfg.Database.Driver = "sqlite"
	assert.ErrorContains(t, run(cfg), `unknown database driver "sqlite"`)

	// Fails after the store, storage and mailer are up; returns instead of exiting.
	cfg = memoryConfig()
	cfg.Reports = config.ReportsConfig{Enabled: true, Schedule: "not a cron spec"}
	assert.ErrorContains(t, run(cfg), "failed to set up weekly reports")
}
