package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", logger.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.StagingPath != "data/staging.db" {
		t.Errorf("StagingPath = %q", cfg.Database.StagingPath)
	}
	if cfg.Database.MirrorPath != "data/mirror.db" {
		t.Errorf("MirrorPath = %q", cfg.Database.MirrorPath)
	}
	if cfg.Pipeline.BatchSize != 1000 {
		t.Errorf("BatchSize = %d", cfg.Pipeline.BatchSize)
	}
	if cfg.Pipeline.CheckpointPath != "data/checkpoint.txt" {
		t.Errorf("CheckpointPath = %q", cfg.Pipeline.CheckpointPath)
	}
	if cfg.LogMode != "dev" {
		t.Errorf("LogMode = %q", cfg.LogMode)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `database:
  dsn: host=localhost dbname=disnet
  staging_path: /var/lib/etl/staging.db
clients:
  umls_api_key: file-key
pipeline:
  batch_size: 250
  local_only: true
log_mode: prod
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path, logger.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.DSN != "host=localhost dbname=disnet" {
		t.Errorf("DSN = %q", cfg.Database.DSN)
	}
	if cfg.Database.StagingPath != "/var/lib/etl/staging.db" {
		t.Errorf("StagingPath = %q", cfg.Database.StagingPath)
	}
	if cfg.Pipeline.BatchSize != 250 {
		t.Errorf("BatchSize = %d", cfg.Pipeline.BatchSize)
	}
	if !cfg.Pipeline.LocalOnly {
		t.Error("LocalOnly = false, want true")
	}
	if cfg.LogMode != "prod" {
		t.Errorf("LogMode = %q", cfg.LogMode)
	}
	// File did not set it, so the default still applies.
	if cfg.Database.MirrorPath != "data/mirror.db" {
		t.Errorf("MirrorPath = %q", cfg.Database.MirrorPath)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `database:
  dsn: from-file
pipeline:
  batch_size: 250
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATABASE_DSN", "from-env")
	t.Setenv("PIPELINE_BATCH_SIZE", "50")
	t.Setenv("PIPELINE_RETRY_FAILED", "true")
	t.Setenv("UMLS_API_KEY", "env-key")

	cfg, err := Load(path, logger.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.DSN != "from-env" {
		t.Errorf("DSN = %q, want env value", cfg.Database.DSN)
	}
	if cfg.Pipeline.BatchSize != 50 {
		t.Errorf("BatchSize = %d, want 50", cfg.Pipeline.BatchSize)
	}
	if !cfg.Pipeline.RetryFailed {
		t.Error("RetryFailed = false, want true")
	}
	if cfg.Clients.UMLSAPIKey != "env-key" {
		t.Errorf("UMLSAPIKey = %q", cfg.Clients.UMLSAPIKey)
	}
}

func TestLoadMissingFileTolerated(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), logger.NewNop())
	if err != nil {
		t.Fatalf("Load with absent file: %v", err)
	}
	if cfg.Pipeline.BatchSize != 1000 {
		t.Errorf("BatchSize = %d", cfg.Pipeline.BatchSize)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("database: [not a map"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path, logger.NewNop()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing DSN")
	}
	cfg.Database.DSN = "host=localhost"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
