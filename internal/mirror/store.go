package mirror

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// Store reads the local DrugCombDB mirror: the downloaded combination rows
// plus the chemical and cell line dumps that feed the local-first lookups.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStore(db *gorm.DB, baseLog *logger.Logger) *Store {
	return &Store{db: db, log: baseLog.With("store", "mirror")}
}

// Migrate creates the mirror tables.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&types.MirrorCombination{}, &types.MirrorDrug{}, &types.MirrorCellLine{})
}

// PendingCombinations returns every combination not yet loaded into the
// warehouse.
func (s *Store) PendingCombinations(ctx context.Context) ([]types.MirrorCombination, error) {
	var rows []types.MirrorCombination
	err := s.db.WithContext(ctx).
		Where("status = ?", types.MirrorStatusPending).
		Order("id").
		Find(&rows).Error
	return rows, err
}

// SetStatus marks one combination row processed or errored so re-runs skip it.
func (s *Store) SetStatus(ctx context.Context, combinationID int, status string) error {
	return s.db.WithContext(ctx).
		Model(&types.MirrorCombination{}).
		Where("id = ?", combinationID).
		Update("status", status).Error
}

// DrugByName looks a drug up in the mirrored chemical dump; nil when absent.
func (s *Store) DrugByName(ctx context.Context, drugName string) (*types.MirrorDrug, error) {
	var row types.MirrorDrug
	err := s.db.WithContext(ctx).Where("drug_name = ?", drugName).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CellLineByName looks a cell line up in the mirrored dump; nil when absent.
func (s *Store) CellLineByName(ctx context.Context, cellName string) (*types.MirrorCellLine, error) {
	var row types.MirrorCellLine
	err := s.db.WithContext(ctx).Where("cell_name = ?", cellName).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// LastCombinationID returns the highest combination ID present, for resuming
// an interrupted import.
func (s *Store) LastCombinationID(ctx context.Context) (int, error) {
	var max *int
	err := s.db.WithContext(ctx).
		Model(&types.MirrorCombination{}).
		Select("MAX(id)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// CombinationByID returns one mirrored combination, or nil when absent.
func (s *Store) CombinationByID(ctx context.Context, id int) (*types.MirrorCombination, error) {
	var row types.MirrorCombination
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// InsertDrugs loads mirrored drug dump rows, keeping existing rows.
func (s *Store) InsertDrugs(ctx context.Context, rows []types.MirrorDrug) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, 500).Error
}

// InsertCellLines loads mirrored cell line dump rows, keeping existing rows.
func (s *Store) InsertCellLines(ctx context.Context, rows []types.MirrorCellLine) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, 500).Error
}

// InsertCombinations bulk-inserts downloaded combination rows. Duplicate IDs
// are kept as-is rather than failing the batch: the MAX(id) resume filter
// only catches duplicates that appear in ascending order.
func (s *Store) InsertCombinations(ctx context.Context, rows []types.MirrorCombination) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, 500).Error
}
