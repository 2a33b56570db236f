package pipeline

import (
	"context"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/repos"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
	"gorm.io/gorm"
)

const experimentSourceName = "DrugCombDB"

// ExperimentInput carries everything needed to record one combination
// experiment. DrugNames is only used for logging.
type ExperimentInput struct {
	DrugIDs        []string
	CellLineID     string
	Classification int
	Scores         []types.ScoreValue
	DrugNames      []string
	CombinationID  int
}

// ExperimentPipeline assembles the experiment graph: the drug combination,
// its classification and source, the experiment row and its scores, all in
// one transaction per experiment.
type ExperimentPipeline struct {
	db          *gorm.DB
	drugCombs   repos.DrugCombRepo
	metadata    repos.MetadataRepo
	experiments repos.ExperimentRepo
	log         *logger.Logger
}

func NewExperimentPipeline(
	db *gorm.DB,
	drugCombs repos.DrugCombRepo,
	metadata repos.MetadataRepo,
	experiments repos.ExperimentRepo,
	log *logger.Logger,
) *ExperimentPipeline {
	return &ExperimentPipeline{
		db:          db,
		drugCombs:   drugCombs,
		metadata:    metadata,
		experiments: experiments,
		log:         log,
	}
}

// Run records the experiment and returns its ID. Re-running with the same
// input returns the existing experiment through content-hash deduplication.
func (p *ExperimentPipeline) Run(ctx context.Context, in ExperimentInput) (int, error) {
	name := classificationName(in.Classification)
	if in.Classification == 0 {
		p.log.Warn("Additive classification, scores disagree or sit inside the dead zone",
			"combination_id", in.CombinationID, "drugs", in.DrugNames)
	}

	var expID int
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dcID, err := p.drugCombs.GetOrCreateCombination(ctx, tx, in.DrugIDs)
		if err != nil {
			return err
		}
		classID, err := p.metadata.GetOrCreateClassification(ctx, tx, name)
		if err != nil {
			return err
		}
		srcID, err := p.metadata.GetOrCreateExperimentSource(ctx, tx, experimentSourceName)
		if err != nil {
			return err
		}
		expID, err = p.experiments.GetOrCreateExperiment(ctx, tx, types.ExperimentRecord{
			DcID:             dcID,
			CellLineID:       in.CellLineID,
			ClassificationID: classID,
			SourceID:         srcID,
			Scores:           in.Scores,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	return expID, nil
}

func classificationName(classification int) string {
	switch {
	case classification > 0:
		return "Synergistic"
	case classification < 0:
		return "Antagonistic"
	default:
		return "Additive"
	}
}
