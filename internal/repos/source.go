package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

type SourceRepo interface {
	GetOrCreateSource(ctx context.Context, tx *gorm.DB, name string) (int, error)
}

type sourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceRepo(db *gorm.DB, baseLog *logger.Logger) SourceRepo {
	return &sourceRepo{db: db, log: baseLog.With("repo", "SourceRepo")}
}

func (r *sourceRepo) GetOrCreateSource(ctx context.Context, tx *gorm.DB, name string) (int, error) {
	dbc := dbOr(r.db, tx).WithContext(ctx)

	var source types.Source
	err := dbc.Where("name = ?", name).First(&source).Error
	if err == nil {
		return source.SourceID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	source = types.Source{Name: name}
	existed, err := insertIfAbsent(dbc, &source)
	if err != nil {
		return 0, err
	}
	if existed {
		// Lost a race; the row is there now.
		if err := dbc.Where("name = ?", name).First(&source).Error; err != nil {
			return 0, err
		}
		return source.SourceID, nil
	}
	r.log.Debug("Created source", "name", name, "source_id", source.SourceID)
	return source.SourceID, nil
}
