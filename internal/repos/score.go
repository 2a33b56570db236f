package repos

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

type ScoreRepo interface {
	GetOrCreateScore(ctx context.Context, tx *gorm.DB, scoreName string) (int, error)
}

type scoreRepo struct {
	db    *gorm.DB
	log   *logger.Logger
	cache *lru.Cache[string, int]
}

func NewScoreRepo(db *gorm.DB, baseLog *logger.Logger) ScoreRepo {
	// There are only a handful of metric names; the cache just avoids a
	// round-trip per experiment.
	cache, _ := lru.New[string, int](64)
	return &scoreRepo{db: db, log: baseLog.With("repo", "ScoreRepo"), cache: cache}
}

func (r *scoreRepo) GetOrCreateScore(ctx context.Context, tx *gorm.DB, scoreName string) (int, error) {
	if id, ok := r.cache.Get(scoreName); ok {
		return id, nil
	}
	dbc := dbOr(r.db, tx).WithContext(ctx)

	var score types.Score
	err := dbc.Where("score_name = ?", scoreName).First(&score).Error
	if err == nil {
		r.cache.Add(scoreName, score.ScoreID)
		return score.ScoreID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	score = types.Score{ScoreName: scoreName}
	existed, err := insertIfAbsent(dbc, &score)
	if err != nil {
		return 0, err
	}
	if existed {
		if err := dbc.Where("score_name = ?", scoreName).First(&score).Error; err != nil {
			return 0, err
		}
	}
	r.cache.Add(scoreName, score.ScoreID)
	return score.ScoreID, nil
}
