package repos

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// MetadataRepo resolves the small experiment lookup tables: classification
// names and experiment sources.
type MetadataRepo interface {
	GetOrCreateClassification(ctx context.Context, tx *gorm.DB, name string) (int, error)
	GetOrCreateExperimentSource(ctx context.Context, tx *gorm.DB, name string) (int, error)
}

type metadataRepo struct {
	db         *gorm.DB
	log        *logger.Logger
	classCache *lru.Cache[string, int]
	srcCache   *lru.Cache[string, int]
}

func NewMetadataRepo(db *gorm.DB, baseLog *logger.Logger) MetadataRepo {
	classCache, _ := lru.New[string, int](16)
	srcCache, _ := lru.New[string, int](16)
	return &metadataRepo{
		db:         db,
		log:        baseLog.With("repo", "MetadataRepo"),
		classCache: classCache,
		srcCache:   srcCache,
	}
}

func (r *metadataRepo) GetOrCreateClassification(ctx context.Context, tx *gorm.DB, name string) (int, error) {
	if id, ok := r.classCache.Get(name); ok {
		return id, nil
	}
	dbc := dbOr(r.db, tx).WithContext(ctx)

	var row types.ExperimentClassification
	err := dbc.Where("classification_name = ?", name).First(&row).Error
	if err == nil {
		r.classCache.Add(name, row.ClassificationID)
		return row.ClassificationID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	row = types.ExperimentClassification{ClassificationName: name}
	existed, err := insertIfAbsent(dbc, &row)
	if err != nil {
		return 0, err
	}
	if existed {
		if err := dbc.Where("classification_name = ?", name).First(&row).Error; err != nil {
			return 0, err
		}
	}
	r.classCache.Add(name, row.ClassificationID)
	return row.ClassificationID, nil
}

func (r *metadataRepo) GetOrCreateExperimentSource(ctx context.Context, tx *gorm.DB, name string) (int, error) {
	if id, ok := r.srcCache.Get(name); ok {
		return id, nil
	}
	dbc := dbOr(r.db, tx).WithContext(ctx)

	var row types.ExperimentSource
	err := dbc.Where("source_name = ?", name).First(&row).Error
	if err == nil {
		r.srcCache.Add(name, row.SourceID)
		return row.SourceID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	row = types.ExperimentSource{SourceName: name}
	existed, err := insertIfAbsent(dbc, &row)
	if err != nil {
		return 0, err
	}
	if existed {
		if err := dbc.Where("source_name = ?", name).First(&row).Error; err != nil {
			return 0, err
		}
	}
	r.srcCache.Add(name, row.SourceID)
	return row.SourceID, nil
}
