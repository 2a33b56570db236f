package pipeline

import (
	"context"
	"sort"

	"github.com/jnegrete2005/disnet-data-integration/internal/mirror"
	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/staging"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// Orchestrator is the batch integration mode: it collects the distinct
// entities of all pending mirrored combinations, resolves them through the
// staging ledgers, then joins each combination against the resolved ID maps
// and records its experiment.
type Orchestrator struct {
	mirror      *mirror.Store
	staging     *staging.Store
	drugs       *StagedDrugPipeline
	cellLines   *StagedCellLinePipeline
	scores      *ScorePipeline
	experiments *ExperimentPipeline
	log         *logger.Logger
}

func NewOrchestrator(
	mirrorStore *mirror.Store,
	stagingStore *staging.Store,
	drugs *StagedDrugPipeline,
	cellLines *StagedCellLinePipeline,
	scores *ScorePipeline,
	experiments *ExperimentPipeline,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		mirror:      mirrorStore,
		staging:     stagingStore,
		drugs:       drugs,
		cellLines:   cellLines,
		scores:      scores,
		experiments: experiments,
		log:         log,
	}
}

// Run drives one batch pass. Every pending combination ends up processed,
// error, or left pending with a logged skip when one of its entities failed
// to resolve.
func (o *Orchestrator) Run(ctx context.Context) error {
	combos, err := o.mirror.PendingCombinations(ctx)
	if err != nil {
		return err
	}
	if len(combos) == 0 {
		o.log.Info("No pending combinations")
		return nil
	}
	o.log.Info("Processing pending combinations", "count", len(combos))

	drugNames, cellNames := collectEntities(combos)
	if err := o.drugs.Run(ctx, drugNames); err != nil {
		return err
	}
	if err := o.cellLines.Run(ctx, cellNames); err != nil {
		return err
	}
	if err := o.drugs.Persist(ctx); err != nil {
		return err
	}
	if err := o.cellLines.Persist(ctx); err != nil {
		return err
	}

	drugMap, err := o.staging.DrugIDMap(ctx)
	if err != nil {
		return err
	}
	cellMap, err := o.staging.CellLineIDMap(ctx)
	if err != nil {
		return err
	}

	var succeeded, skipped, failed int
	for i := range combos {
		if err := ctx.Err(); err != nil {
			return err
		}
		combo := &combos[i]

		d1, ok1 := drugMap[NormalizeDrugName(combo.Drug1)]
		d2, ok2 := drugMap[NormalizeDrugName(combo.Drug2)]
		cl, ok3 := cellMap[combo.CellLine]
		if !ok1 || !ok2 || !ok3 {
			skipped++
			o.log.Warn("Skipping combination, unresolved entity",
				"id", combo.ID, "drug1", ok1, "drug2", ok2, "cell_line", ok3)
			continue
		}

		if err := o.processCombination(ctx, combo, d1, d2, cl); err != nil {
			failed++
			o.log.Error("Combination failed", "id", combo.ID, "error", err)
			if err := o.mirror.SetStatus(ctx, combo.ID, types.MirrorStatusError); err != nil {
				return err
			}
			continue
		}
		succeeded++
		if err := o.mirror.SetStatus(ctx, combo.ID, types.MirrorStatusProcessed); err != nil {
			return err
		}
	}

	o.log.Info("Batch integration finished",
		"succeeded", succeeded, "skipped", skipped, "failed", failed)
	return nil
}

func (o *Orchestrator) processCombination(ctx context.Context, combo *types.MirrorCombination, drug1ID, drug2ID, cellLineID string) error {
	scores, classification, err := o.scores.Run(ctx, combo.HSA, combo.Bliss, combo.Loewe, combo.ZIP)
	if err != nil {
		return err
	}
	_, err = o.experiments.Run(ctx, ExperimentInput{
		DrugIDs:        []string{drug1ID, drug2ID},
		CellLineID:     cellLineID,
		Classification: classification,
		Scores:         scores,
		DrugNames:      []string{combo.Drug1, combo.Drug2},
		CombinationID:  combo.ID,
	})
	return err
}

// collectEntities returns the distinct drug and cell line names across the
// batch, sorted for deterministic staging order.
func collectEntities(combos []types.MirrorCombination) (drugs, cellLines []string) {
	drugSet := make(map[string]struct{})
	cellSet := make(map[string]struct{})
	for i := range combos {
		drugSet[combos[i].Drug1] = struct{}{}
		drugSet[combos[i].Drug2] = struct{}{}
		cellSet[combos[i].CellLine] = struct{}{}
	}
	for name := range drugSet {
		drugs = append(drugs, name)
	}
	for name := range cellSet {
		cellLines = append(cellLines, name)
	}
	sort.Strings(drugs)
	sort.Strings(cellLines)
	return drugs, cellLines
}
