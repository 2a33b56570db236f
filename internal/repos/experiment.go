package repos

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// ExperimentRepo persists experiments deduplicated by content hash.
// Re-submitting the same record (re-runs, overlapping source ranges) returns
// the existing experiment ID without writing anything new.
type ExperimentRepo interface {
	GetOrCreateExperiment(ctx context.Context, tx *gorm.DB, record types.ExperimentRecord) (int, error)
}

type experimentRepo struct {
	db    *gorm.DB
	log   *logger.Logger
	cache *lru.Cache[string, int]
}

func NewExperimentRepo(db *gorm.DB, baseLog *logger.Logger) ExperimentRepo {
	cache, _ := lru.New[string, int](8192)
	return &experimentRepo{db: db, log: baseLog.With("repo", "ExperimentRepo"), cache: cache}
}

func (r *experimentRepo) GetOrCreateExperiment(ctx context.Context, tx *gorm.DB, record types.ExperimentRecord) (int, error) {
	hash := record.ContentHash()
	if id, ok := r.cache.Get(hash); ok {
		return id, nil
	}
	dbc := dbOr(r.db, tx).WithContext(ctx)

	experiment := types.Experiment{
		DcID:             record.DcID,
		CellLineID:       record.CellLineID,
		ClassificationID: record.ClassificationID,
		SourceID:         record.SourceID,
		ContentHash:      hash,
	}
	existed, err := insertIfAbsent(dbc, &experiment)
	if err != nil {
		return 0, err
	}
	if !existed {
		if err := r.insertScores(dbc, experiment.ExperimentID, record.Scores); err != nil {
			return 0, err
		}
		r.cache.Add(hash, experiment.ExperimentID)
		return experiment.ExperimentID, nil
	}

	// The hash is already stored: some earlier run persisted this experiment.
	if err := dbc.Where("content_hash = ?", hash).First(&experiment).Error; err != nil {
		return 0, err
	}
	var stored int64
	if err := dbc.Model(&types.ExperimentScore{}).
		Where("experiment_id = ?", experiment.ExperimentID).
		Count(&stored).Error; err != nil {
		return 0, err
	}
	if int(stored) != len(record.Scores) {
		// An interrupted run can leave the experiment row without its full
		// score set; top up whatever is missing.
		r.log.Warn("Experiment exists with incomplete scores, topping up",
			"experiment_id", experiment.ExperimentID, "stored", stored, "expected", len(record.Scores))
		if err := r.insertScores(dbc, experiment.ExperimentID, record.Scores); err != nil {
			return 0, err
		}
	}
	r.cache.Add(hash, experiment.ExperimentID)
	return experiment.ExperimentID, nil
}

func (r *experimentRepo) insertScores(dbc *gorm.DB, experimentID int, scores []types.ScoreValue) error {
	for _, score := range scores {
		row := types.ExperimentScore{
			ExperimentID: experimentID,
			ScoreID:      score.ScoreID,
			ScoreValue:   score.ScoreValue,
		}
		// Tolerate per-score duplicates from concurrent re-runs.
		if _, err := insertIfAbsent(dbc, &row); err != nil {
			return err
		}
	}
	return nil
}
