package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// CellLineRepo persists cell lines and the diseases they reference. The
// disease must be inserted before any cell line pointing at it.
type CellLineRepo interface {
	AddDisease(ctx context.Context, tx *gorm.DB, disease *types.Disease) error
	AddCellLine(ctx context.Context, tx *gorm.DB, cellLine *types.CellLine) error
}

type cellLineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCellLineRepo(db *gorm.DB, baseLog *logger.Logger) CellLineRepo {
	return &cellLineRepo{db: db, log: baseLog.With("repo", "CellLineRepo")}
}

func (r *cellLineRepo) AddDisease(ctx context.Context, tx *gorm.DB, disease *types.Disease) error {
	dbc := dbOr(r.db, tx).WithContext(ctx)
	_, err := insertIfAbsent(dbc, disease)
	return err
}

func (r *cellLineRepo) AddCellLine(ctx context.Context, tx *gorm.DB, cellLine *types.CellLine) error {
	dbc := dbOr(r.db, tx).WithContext(ctx)
	existed, err := insertIfAbsent(dbc, cellLine)
	if err != nil {
		return err
	}
	if !existed {
		r.log.Debug("Inserted cell line", "cell_line_id", cellLine.CellLineID, "name", cellLine.CellLineName)
	}
	return nil
}
