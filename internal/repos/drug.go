package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// DrugRepo persists raw drugs, cured drugs and the foreign-to-ChEMBL map.
// Every method is idempotent: re-inserting an existing row is a no-op.
type DrugRepo interface {
	GetOrCreateRawDrug(ctx context.Context, tx *gorm.DB, drug *types.DrugRaw) error
	GetOrCreateDrug(ctx context.Context, tx *gorm.DB, drug *types.Drug) error
	MapForeignToChembl(ctx context.Context, tx *gorm.DB, mapping *types.ForeignToChembl) error
}

type drugRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDrugRepo(db *gorm.DB, baseLog *logger.Logger) DrugRepo {
	return &drugRepo{db: db, log: baseLog.With("repo", "DrugRepo")}
}

func (r *drugRepo) GetOrCreateRawDrug(ctx context.Context, tx *gorm.DB, drug *types.DrugRaw) error {
	dbc := dbOr(r.db, tx).WithContext(ctx)
	existed, err := insertIfAbsent(dbc, drug)
	if err != nil {
		return err
	}
	if !existed {
		r.log.Debug("Inserted raw drug", "drug_id", drug.DrugID, "drug_name", drug.DrugName)
	}
	return nil
}

func (r *drugRepo) GetOrCreateDrug(ctx context.Context, tx *gorm.DB, drug *types.Drug) error {
	dbc := dbOr(r.db, tx).WithContext(ctx)
	existed, err := insertIfAbsent(dbc, drug)
	if err != nil {
		return err
	}
	if !existed {
		r.log.Debug("Inserted cured drug", "drug_id", drug.DrugID, "drug_name", drug.DrugName)
	}
	return nil
}

func (r *drugRepo) MapForeignToChembl(ctx context.Context, tx *gorm.DB, mapping *types.ForeignToChembl) error {
	dbc := dbOr(r.db, tx).WithContext(ctx)
	_, err := insertIfAbsent(dbc, mapping)
	return err
}
