package config

import (
	"fmt"
	"os"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/utils"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration. Values load from an optional
// YAML file, then environment variables override field by field, so secrets
// like the UMLS API key never need to live in the file.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Clients  ClientsConfig  `yaml:"clients"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	LogMode  string         `yaml:"log_mode"`
}

type DatabaseConfig struct {
	DSN         string `yaml:"dsn"`
	StagingPath string `yaml:"staging_path"`
	MirrorPath  string `yaml:"mirror_path"`
}

type ClientsConfig struct {
	DrugCombDBBaseURL  string `yaml:"drugcombdb_base_url"`
	UniChemBaseURL     string `yaml:"unichem_base_url"`
	ChemblBaseURL      string `yaml:"chembl_base_url"`
	CellosaurusBaseURL string `yaml:"cellosaurus_base_url"`
	UMLSBaseURL        string `yaml:"umls_base_url"`
	UMLSAPIKey         string `yaml:"umls_api_key"`
}

type PipelineConfig struct {
	BatchSize      int    `yaml:"batch_size"`
	LocalOnly      bool   `yaml:"local_only"`
	RetryFailed    bool   `yaml:"retry_failed"`
	CheckpointPath string `yaml:"checkpoint_path"`
	AuditPath      string `yaml:"audit_path"`
}

// Load reads the YAML file at path when it exists, then applies environment
// overrides and defaults. An empty path skips the file entirely.
func Load(path string, log *logger.Logger) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv(log)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(log *logger.Logger) {
	c.Database.DSN = utils.GetEnv("DATABASE_DSN", c.Database.DSN, log)
	c.Database.StagingPath = utils.GetEnv("STAGING_DB_PATH", c.Database.StagingPath, log)
	c.Database.MirrorPath = utils.GetEnv("MIRROR_DB_PATH", c.Database.MirrorPath, log)

	c.Clients.DrugCombDBBaseURL = utils.GetEnv("DRUGCOMBDB_BASE_URL", c.Clients.DrugCombDBBaseURL, log)
	c.Clients.UniChemBaseURL = utils.GetEnv("UNICHEM_BASE_URL", c.Clients.UniChemBaseURL, log)
	c.Clients.ChemblBaseURL = utils.GetEnv("CHEMBL_BASE_URL", c.Clients.ChemblBaseURL, log)
	c.Clients.CellosaurusBaseURL = utils.GetEnv("CELLOSAURUS_BASE_URL", c.Clients.CellosaurusBaseURL, log)
	c.Clients.UMLSBaseURL = utils.GetEnv("UMLS_BASE_URL", c.Clients.UMLSBaseURL, log)
	c.Clients.UMLSAPIKey = utils.GetEnv("UMLS_API_KEY", c.Clients.UMLSAPIKey, log)

	c.Pipeline.BatchSize = utils.GetEnvAsInt("PIPELINE_BATCH_SIZE", c.Pipeline.BatchSize, log)
	c.Pipeline.LocalOnly = utils.GetEnvAsBool("PIPELINE_LOCAL_ONLY", c.Pipeline.LocalOnly, log)
	c.Pipeline.RetryFailed = utils.GetEnvAsBool("PIPELINE_RETRY_FAILED", c.Pipeline.RetryFailed, log)
	c.Pipeline.CheckpointPath = utils.GetEnv("PIPELINE_CHECKPOINT_PATH", c.Pipeline.CheckpointPath, log)
	c.Pipeline.AuditPath = utils.GetEnv("PIPELINE_AUDIT_PATH", c.Pipeline.AuditPath, log)

	c.LogMode = utils.GetEnv("LOG_MODE", c.LogMode, log)
}

func (c *Config) applyDefaults() {
	if c.Database.StagingPath == "" {
		c.Database.StagingPath = "data/staging.db"
	}
	if c.Database.MirrorPath == "" {
		c.Database.MirrorPath = "data/mirror.db"
	}
	if c.Pipeline.BatchSize <= 0 {
		c.Pipeline.BatchSize = 1000
	}
	if c.Pipeline.CheckpointPath == "" {
		c.Pipeline.CheckpointPath = "data/checkpoint.txt"
	}
	if c.Pipeline.AuditPath == "" {
		c.Pipeline.AuditPath = "data/audit.jsonl"
	}
	if c.LogMode == "" {
		c.LogMode = "dev"
	}
}

// Validate checks the settings a run cannot proceed without.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required (or set DATABASE_DSN)")
	}
	return nil
}
