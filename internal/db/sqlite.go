package db

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// SQLiteService owns the embedded database holding the staging tables and the
// local DrugCombDB mirror.
type SQLiteService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSQLiteService(log *logger.Logger, path string) (*SQLiteService, error) {
	serviceLog := log.With("service", "SQLiteService")

	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
	}

	serviceLog.Info("Opening SQLite database...", "path", path)
	gormDB, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		serviceLog.Error("Failed to open SQLite database", "error", err, "path", path)
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if path == ":memory:" {
		// Every pooled connection to :memory: gets its own empty database.
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return &SQLiteService{db: gormDB, log: serviceLog}, nil
}

// AutoMigrateAll creates the staging and mirror tables.
func (s *SQLiteService) AutoMigrateAll() error {
	s.log.Info("Auto migrating staging and mirror tables...")
	err := s.db.AutoMigrate(
		&types.StagedDrug{},
		&types.StagedCellLine{},
		&types.MirrorCombination{},
		&types.MirrorDrug{},
		&types.MirrorCellLine{},
	)
	if err != nil {
		s.log.Error("Staging migration failed", "error", err)
		return fmt.Errorf("migrate staging schema: %w", err)
	}
	return nil
}

func (s *SQLiteService) DB() *gorm.DB {
	return s.db
}
