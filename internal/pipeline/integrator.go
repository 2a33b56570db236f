package pipeline

import (
	"context"
	"errors"

	"github.com/jnegrete2005/disnet-data-integration/internal/clients/drugcombdb"
	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Integrator streams combinations straight from the DrugCombDB API into the
// destination store, one index at a time, checkpointing after each success.
type Integrator struct {
	dcdb        drugcombdb.Client
	drugs       *DrugPipeline
	cellLines   *CellLinePipeline
	scores      *ScorePipeline
	experiments *ExperimentPipeline
	checkpoint  *Checkpoint
	audit       *AuditLog
	retryFailed bool
	log         *logger.Logger
}

func NewIntegrator(
	dcdb drugcombdb.Client,
	drugs *DrugPipeline,
	cellLines *CellLinePipeline,
	scores *ScorePipeline,
	experiments *ExperimentPipeline,
	checkpoint *Checkpoint,
	audit *AuditLog,
	retryFailed bool,
	log *logger.Logger,
) *Integrator {
	return &Integrator{
		dcdb:        dcdb,
		drugs:       drugs,
		cellLines:   cellLines,
		scores:      scores,
		experiments: experiments,
		checkpoint:  checkpoint,
		audit:       audit,
		retryFailed: retryFailed,
		log:         log,
	}
}

// Run processes combination indices in [start, end) with the given stride,
// resuming past the checkpoint when one exists. The checkpoint only moves
// forward on success, so interrupting and restarting never loses an index.
func (it *Integrator) Run(ctx context.Context, start, end, step int) error {
	if step <= 0 {
		step = 1
	}

	last, ok, err := it.checkpoint.Load()
	if err != nil {
		return err
	}
	if ok && last+step > start {
		it.log.Info("Resuming from checkpoint", "last", last)
		start = last + step
	}

	if it.retryFailed {
		if err := it.replayAudited(ctx, start); err != nil {
			return err
		}
	}

	var succeeded, skipped, failed int
	for i := start; i < end; i += step {
		if err := ctx.Err(); err != nil {
			return err
		}
		expID, skip, err := it.processIndex(ctx, i)
		if err != nil {
			failed++
			it.log.Error("Combination failed", "index", i, "error", err)
			continue
		}
		if skip {
			skipped++
			continue
		}
		succeeded++
		if err := it.checkpoint.Save(i); err != nil {
			return err
		}
		it.log.Debug("Combination processed", "index", i, "experiment_id", expID)
	}

	it.log.Info("Integration finished",
		"succeeded", succeeded, "skipped", skipped, "failed", failed)
	return nil
}

// replayAudited retries indices that earlier runs audited as skipped or
// failed, without touching the checkpoint.
func (it *Integrator) replayAudited(ctx context.Context, before int) error {
	indices, err := it.audit.Indices()
	if err != nil {
		return err
	}
	for _, i := range indices {
		if i >= before {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, _, err := it.processIndex(ctx, i); err != nil {
			it.log.Error("Retry failed", "index", i, "error", err)
		}
	}
	return nil
}

// processIndex runs one combination end to end. skip=true means the index is
// permanently unprocessable (absent, or an entity is unresolvable) and was
// audited; an error means something transient or systemic went wrong.
func (it *Integrator) processIndex(ctx context.Context, index int) (expID int, skip bool, err error) {
	combo, err := it.dcdb.Combination(ctx, index)
	if err != nil {
		it.record(AuditRecord{CombinationID: index, Stage: "fetch", Message: err.Error()})
		return 0, false, err
	}
	if combo == nil {
		return 0, true, nil
	}

	var drugRes []DrugResolution
	var clRes CellLineResolution
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		drugRes, err = it.drugs.Fetch(gctx, []string{combo.Drug1, combo.Drug2})
		return err
	})
	g.Go(func() error {
		var err error
		clRes, err = it.cellLines.Fetch(gctx, combo.CellLine)
		return err
	})
	if err := g.Wait(); err != nil {
		var de *DrugUnresolvableError
		if errors.As(err, &de) {
			it.log.Warn("Skipping combination, drug unresolvable",
				"index", index, "drug", de.DrugName, "code", de.Code)
			code := de.Code
			it.record(AuditRecord{CombinationID: index, Stage: "drug", Entity: de.DrugName, Code: &code})
			return 0, true, nil
		}
		var ce *CellLineUnresolvableError
		if errors.As(err, &ce) {
			it.log.Warn("Skipping combination, cell line unresolvable",
				"index", index, "cell_line", ce.CellLineName)
			it.record(AuditRecord{CombinationID: index, Stage: "cell_line", Entity: ce.CellLineName, Message: ce.Reason})
			return 0, true, nil
		}
		it.record(AuditRecord{CombinationID: index, Stage: "resolve", Message: err.Error()})
		return 0, false, err
	}

	if err := it.drugs.Persist(ctx, drugRes); err != nil {
		it.record(AuditRecord{CombinationID: index, Stage: "persist", Message: err.Error()})
		return 0, false, err
	}
	if err := it.cellLines.Persist(ctx, clRes); err != nil {
		it.record(AuditRecord{CombinationID: index, Stage: "persist", Message: err.Error()})
		return 0, false, err
	}

	scores, classification, err := it.scores.Run(ctx, combo.HSA, combo.Bliss, combo.Loewe, combo.ZIP)
	if err != nil {
		it.record(AuditRecord{CombinationID: index, Stage: "score", Message: err.Error()})
		return 0, false, err
	}

	drugIDs := make([]string, 0, len(drugRes))
	for _, d := range drugRes {
		drugIDs = append(drugIDs, d.Cured.DrugID)
	}
	expID, err = it.experiments.Run(ctx, ExperimentInput{
		DrugIDs:        drugIDs,
		CellLineID:     clRes.CellLine.CellLineID,
		Classification: classification,
		Scores:         scores,
		DrugNames:      []string{combo.Drug1, combo.Drug2},
		CombinationID:  index,
	})
	if err != nil {
		it.record(AuditRecord{CombinationID: index, Stage: "experiment", Message: err.Error()})
		return 0, false, err
	}
	return expID, false, nil
}

func (it *Integrator) record(rec AuditRecord) {
	if err := it.audit.Record(rec); err != nil {
		it.log.Error("Audit write failed", "error", err)
	}
}
