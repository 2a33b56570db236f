package pipeline

import (
	"context"
	"math"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/repos"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// classificationEpsilon is the dead zone around zero inside which a synergy
// score is treated as additive rather than a vote either way.
const classificationEpsilon = 1e-5

// ScorePipeline turns the four raw synergy scores of a combination into
// persisted score rows and a single classification by majority vote.
type ScorePipeline struct {
	scores repos.ScoreRepo
	log    *logger.Logger
}

func NewScorePipeline(scores repos.ScoreRepo, log *logger.Logger) *ScorePipeline {
	return &ScorePipeline{scores: scores, log: log}
}

// Run classifies the combination and returns the score values to attach to
// its experiment. Nil scores are absent and contribute neither a row nor a
// vote. The classification is +1 (synergistic), -1 (antagonistic) or 0
// (additive).
func (p *ScorePipeline) Run(ctx context.Context, hsa, bliss, loewe, zip *float64) ([]types.ScoreValue, int, error) {
	named := []struct {
		name  string
		value *float64
	}{
		{"HSA", hsa},
		{"Bliss", bliss},
		{"Loewe", loewe},
		{"ZIP", zip},
	}

	var out []types.ScoreValue
	vote := 0
	for _, s := range named {
		if s.value == nil {
			continue
		}
		id, err := p.scores.GetOrCreateScore(ctx, nil, s.name)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, types.ScoreValue{
			ScoreID:    id,
			ScoreName:  s.name,
			ScoreValue: round4(*s.value),
		})
		switch {
		case *s.value > classificationEpsilon:
			vote++
		case *s.value < -classificationEpsilon:
			vote--
		}
	}

	switch {
	case vote > 0:
		return out, 1, nil
	case vote < 0:
		return out, -1, nil
	default:
		return out, 0, nil
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
