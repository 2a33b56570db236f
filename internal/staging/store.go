package staging

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// Store wraps the two staging tables. Rows are created once (stage 0) and
// mutated in place as the pipelines advance them; they are never deleted, so
// the tables double as an audit trail and a resume checkpoint.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStore(db *gorm.DB, baseLog *logger.Logger) *Store {
	return &Store{db: db, log: baseLog.With("store", "staging")}
}

// Migrate creates the staging tables.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&types.StagedDrug{}, &types.StagedCellLine{})
}

// StageDrugs inserts one pending row per unique drug name, ignoring names
// already staged. Returns how many rows were actually inserted.
func (s *Store) StageDrugs(ctx context.Context, names []string) (int, error) {
	rows := make([]types.StagedDrug, 0, len(names))
	for _, name := range dedupe(names) {
		rows = append(rows, types.StagedDrug{DrugName: name, Status: int(StatusPending)})
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// StageCellLines is StageDrugs for cell line names.
func (s *Store) StageCellLines(ctx context.Context, names []string) (int, error) {
	rows := make([]types.StagedCellLine, 0, len(names))
	for _, name := range dedupe(names) {
		rows = append(rows, types.StagedCellLine{OriginalName: name, Status: int(StatusPending)})
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// DrugBatch returns up to limit staged drugs sitting exactly at status.
func (s *Store) DrugBatch(ctx context.Context, status Status, limit int) ([]types.StagedDrug, error) {
	var rows []types.StagedDrug
	err := s.db.WithContext(ctx).
		Where("status = ?", int(status)).
		Order("drug_name").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// CellLineBatch returns up to limit staged cell lines sitting exactly at status.
func (s *Store) CellLineBatch(ctx context.Context, status Status, limit int) ([]types.StagedCellLine, error) {
	var rows []types.StagedCellLine
	err := s.db.WithContext(ctx).
		Where("status = ?", int(status)).
		Order("original_name").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// DrugBatchAfter pages through rows at status by primary key, for readers
// that do not advance the status and would otherwise re-select the same rows.
func (s *Store) DrugBatchAfter(ctx context.Context, status Status, afterName string, limit int) ([]types.StagedDrug, error) {
	var rows []types.StagedDrug
	err := s.db.WithContext(ctx).
		Where("status = ? AND drug_name > ?", int(status), afterName).
		Order("drug_name").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// CellLineBatchAfter is DrugBatchAfter for cell line rows.
func (s *Store) CellLineBatchAfter(ctx context.Context, status Status, afterName string, limit int) ([]types.StagedCellLine, error) {
	var rows []types.StagedCellLine
	err := s.db.WithContext(ctx).
		Where("status = ? AND original_name > ?", int(status), afterName).
		Order("original_name").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// UpdateDrugs writes a processed batch back in one transaction. Losing the
// whole batch to an interruption is safe: the rows keep their old status and
// the stage re-selects them on the next run.
func (s *Store) UpdateDrugs(ctx context.Context, rows []types.StagedDrug) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if err := tx.Save(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateCellLines is UpdateDrugs for cell line rows.
func (s *Store) UpdateCellLines(ctx context.Context, rows []types.StagedCellLine) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if err := tx.Save(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DrugIDMap returns drug name → ChEMBL ID for every fully resolved row.
func (s *Store) DrugIDMap(ctx context.Context) (map[string]string, error) {
	var rows []types.StagedDrug
	err := s.db.WithContext(ctx).
		Where("status = ? AND chembl_id IS NOT NULL", int(StatusComplete)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.DrugName] = *row.ChemblID
	}
	return out, nil
}

// CellLineIDMap returns cell line name → Cellosaurus accession for every
// fully resolved row.
func (s *Store) CellLineIDMap(ctx context.Context) (map[string]string, error) {
	var rows []types.StagedCellLine
	err := s.db.WithContext(ctx).
		Where("status = ? AND cellosaurus_accession IS NOT NULL", int(StatusComplete)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.OriginalName] = *row.Accession
	}
	return out, nil
}

// DrugStatusCounts summarizes the drug staging table for end-of-stage logs.
func (s *Store) DrugStatusCounts(ctx context.Context) (map[Status]int64, error) {
	return s.statusCounts(ctx, &types.StagedDrug{})
}

// CellLineStatusCounts summarizes the cell line staging table.
func (s *Store) CellLineStatusCounts(ctx context.Context) (map[Status]int64, error) {
	return s.statusCounts(ctx, &types.StagedCellLine{})
}

func (s *Store) statusCounts(ctx context.Context, model any) (map[Status]int64, error) {
	var rows []struct {
		Status int
		N      int64
	}
	err := s.db.WithContext(ctx).Model(model).
		Select("status, COUNT(*) AS n").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[Status]int64, len(rows))
	for _, row := range rows {
		out[Status(row.Status)] = row.N
	}
	return out, nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
