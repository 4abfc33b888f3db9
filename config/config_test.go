package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("CURRENT_USER_ID", "")
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "5174", cfg.APIPort)
	assert.Equal(t, 1, cfg.CurrentUserID)
	assert.Equal(t, StorageInline, cfg.StorageType)
	assert.Equal(t, 10000, cfg.SeedCount)
	assert.Len(t, cfg.CORSAllowedOrigins, 2)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("API_PORT", "9000")
	t.Setenv("CURRENT_USER_ID", "42")
	t.Setenv("SEED_ON_EMPTY", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9000", cfg.APIPort)
	assert.Equal(t, 42, cfg.CurrentUserID)
	assert.False(t, cfg.SeedOnEmpty)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 50, cfg.RateLimitBurst, "invalid ints fall back to the default")
	assert.Equal(t, "0.0.0.0:9000", cfg.Address())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid inline storage",
			mutate: func(c *Config) {},
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.StorageType = StorageS3 },
			wantErr: "S3_BUCKET",
		},
		{
			name:   "s3 with bucket",
			mutate: func(c *Config) { c.StorageType = StorageS3; c.S3Bucket = "exports" },
		},
		{
			name:    "unknown storage",
			mutate:  func(c *Config) { c.StorageType = "ftp" },
			wantErr: "STORAGE_TYPE",
		},
		{
			name:    "non-positive user id",
			mutate:  func(c *Config) { c.CurrentUserID = 0 },
			wantErr: "CURRENT_USER_ID",
		},
		{
			name:    "seeding with zero count",
			mutate:  func(c *Config) { c.SeedOnEmpty = true; c.SeedCount = 0 },
			wantErr: "SEED_COUNT",
		},
		{
			name:   "zero count ignored when seeding disabled",
			mutate: func(c *Config) { c.SeedOnEmpty = false; c.SeedCount = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				CurrentUserID: 1,
				SeedOnEmpty:   true,
				SeedCount:     10,
				ExportMaxRows: 100,
				StorageType:   StorageInline,
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
