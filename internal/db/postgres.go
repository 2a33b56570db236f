package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// PostgresService owns the destination (DISNET) connection.
type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger, dsn string) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	serviceLog.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

// AutoMigrateAll creates the destination schema. Parents run before children
// so foreign keys resolve.
func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating destination tables...")
	err := s.db.AutoMigrate(
		&types.Source{},
		&types.Disease{},
		&types.Drug{},
		&types.DrugRaw{},
		&types.ForeignToChembl{},
		&types.CellLine{},
		&types.Score{},
		&types.DrugCombination{},
		&types.DrugCombDrug{},
		&types.ExperimentClassification{},
		&types.ExperimentSource{},
		&types.Experiment{},
		&types.ExperimentScore{},
	)
	if err != nil {
		s.log.Error("Destination migration failed", "error", err)
		return fmt.Errorf("migrate destination schema: %w", err)
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
