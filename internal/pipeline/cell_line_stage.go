package pipeline

import (
	"context"

	"github.com/jnegrete2005/disnet-data-integration/internal/clients/cellosaurus"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/drugcombdb"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/umls"
	"github.com/jnegrete2005/disnet-data-integration/internal/mirror"
	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/repos"
	"github.com/jnegrete2005/disnet-data-integration/internal/staging"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// StagedCellLinePipeline resolves cell lines through the staging ledger.
// Unlike drugs, reaching terminal success does not require a disease: a cell
// line with no NCIt annotation or no UMLS mapping completes with a nil CUI.
type StagedCellLinePipeline struct {
	staging     *staging.Store
	mirror      *mirror.Store
	dcdb        drugcombdb.Client
	cellosaurus cellosaurus.Client
	umls        umls.Client
	cellLines   repos.CellLineRepo

	sourceID int
	opts     StageOptions
	log      *logger.Logger
}

func NewStagedCellLinePipeline(
	stagingStore *staging.Store,
	mirrorStore *mirror.Store,
	dcdb drugcombdb.Client,
	cello cellosaurus.Client,
	uml umls.Client,
	cellLines repos.CellLineRepo,
	sourceID int,
	opts StageOptions,
	log *logger.Logger,
) *StagedCellLinePipeline {
	return &StagedCellLinePipeline{
		staging:     stagingStore,
		mirror:      mirrorStore,
		dcdb:        dcdb,
		cellosaurus: cello,
		umls:        uml,
		cellLines:   cellLines,
		sourceID:    sourceID,
		opts:        opts,
		log:         log,
	}
}

// Run stages the given names and drives every pending row to a terminal
// status. Per-row failures are recorded on the row, never raised.
func (p *StagedCellLinePipeline) Run(ctx context.Context, names []string) error {
	staged, err := p.staging.StageCellLines(ctx, names)
	if err != nil {
		return err
	}
	p.log.Info("Staged cell line names", "new", staged, "seen", len(names))

	for _, stage := range []func(context.Context) error{p.Stage1, p.Stage2, p.Stage3} {
		if err := stage(ctx); err != nil {
			return err
		}
	}

	counts, err := p.staging.CellLineStatusCounts(ctx)
	if err != nil {
		return err
	}
	p.log.Info("Cell line staging finished",
		"complete", counts[staging.StatusComplete],
		"failed", counts[staging.StatusFailed])
	return nil
}

// Stage1 resolves names to Cellosaurus accessions. When the local mirror
// carries a COSMIC ID the Cellosaurus search can return accession, tissue and
// NCIt in one call, jumping the row straight to mapped.
func (p *StagedCellLinePipeline) Stage1(ctx context.Context) error {
	return p.runStage(ctx, staging.StatusPending, p.advanceStage1)
}

// Stage2 fetches the NCIt disease annotation for rows the fast path missed.
func (p *StagedCellLinePipeline) Stage2(ctx context.Context) error {
	return p.runStage(ctx, staging.StatusRawResolved, p.advanceStage2)
}

// Stage3 maps NCIt codes to UMLS CUIs.
func (p *StagedCellLinePipeline) Stage3(ctx context.Context) error {
	return p.runStage(ctx, staging.StatusMapped, p.advanceStage3)
}

func (p *StagedCellLinePipeline) runStage(ctx context.Context, from staging.Status, advance func(context.Context, *types.StagedCellLine)) error {
	for {
		batch, err := p.staging.CellLineBatch(ctx, from, p.opts.batchSize())
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		for i := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			advance(ctx, &batch[i])
		}
		if err := p.staging.UpdateCellLines(ctx, batch); err != nil {
			return err
		}
	}
}

func (p *StagedCellLinePipeline) advanceStage1(ctx context.Context, row *types.StagedCellLine) {
	local, err := p.mirror.CellLineByName(ctx, row.OriginalName)
	if err != nil {
		p.failCellLine(row, err.Error())
		return
	}

	hadCosmic := local != nil && local.CosmicID != nil
	if hadCosmic {
		rec, err := p.cellosaurus.SearchByCosmic(ctx, *local.CosmicID)
		if err != nil {
			p.failCellLine(row, err.Error())
			return
		}
		if rec != nil && rec.Accession != nil {
			row.Accession = rec.Accession
			row.Tissue = rec.Site
			if rec.NcitID != nil {
				row.NcitID = rec.NcitID
				row.Status = int(staging.StatusMapped)
			} else {
				row.Status = int(staging.StatusRawResolved)
			}
			return
		}
	}

	if p.opts.LocalOnly {
		if hadCosmic {
			p.failCellLine(row, "COSMIC cross-reference matched nothing in Cellosaurus")
		} else {
			p.failCellLine(row, "no COSMIC cross-reference in local mirror")
		}
		return
	}

	info, err := p.dcdb.CellLineInfo(ctx, row.OriginalName)
	if err != nil {
		p.failCellLine(row, err.Error())
		return
	}
	if info == nil {
		p.failCellLine(row, "not found in DrugCombDB")
		return
	}
	acc := info.Accession
	row.Accession = &acc
	row.Tissue = info.Tissue
	row.Status = int(staging.StatusRawResolved)
}

func (p *StagedCellLinePipeline) advanceStage2(ctx context.Context, row *types.StagedCellLine) {
	ncit, err := p.cellosaurus.Disease(ctx, *row.Accession)
	if err != nil {
		p.failCellLine(row, err.Error())
		return
	}
	// A cell line without a disease annotation still advances.
	row.NcitID = ncit
	row.Status = int(staging.StatusMapped)
}

func (p *StagedCellLinePipeline) advanceStage3(ctx context.Context, row *types.StagedCellLine) {
	if row.NcitID == nil {
		row.Status = int(staging.StatusComplete)
		return
	}
	concept, err := p.umls.NcitToCUI(ctx, *row.NcitID)
	if err != nil {
		p.failCellLine(row, err.Error())
		return
	}
	if concept != nil {
		cui := concept.CUI
		name := concept.Name
		row.UmlsCUI = &cui
		row.DiseaseName = &name
	}
	row.Status = int(staging.StatusComplete)
}

func (p *StagedCellLinePipeline) failCellLine(row *types.StagedCellLine, msg string) {
	row.Status = int(staging.StatusFailed)
	row.ErrorMsg = &msg
	p.log.Warn("Cell line staging failure", "cell_line", row.OriginalName, "error", msg)
}

// Persist streams fully resolved rows into the destination repositories,
// writing each disease before the cell line that references it.
func (p *StagedCellLinePipeline) Persist(ctx context.Context) error {
	after := ""
	for {
		batch, err := p.staging.CellLineBatchAfter(ctx, staging.StatusComplete, after, p.opts.batchSize())
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		for i := range batch {
			if err := p.persistRow(ctx, &batch[i]); err != nil {
				return err
			}
		}
		after = batch[len(batch)-1].OriginalName
	}
}

func (p *StagedCellLinePipeline) persistRow(ctx context.Context, row *types.StagedCellLine) error {
	if row.UmlsCUI != nil {
		name := ""
		if row.DiseaseName != nil {
			name = *row.DiseaseName
		}
		disease := &types.Disease{DiseaseID: *row.UmlsCUI, DiseaseName: name}
		if err := p.cellLines.AddDisease(ctx, nil, disease); err != nil {
			return err
		}
	}
	return p.cellLines.AddCellLine(ctx, nil, &types.CellLine{
		CellLineID:   *row.Accession,
		CellLineName: row.OriginalName,
		SourceID:     p.sourceID,
		Tissue:       row.Tissue,
		DiseaseID:    row.UmlsCUI,
	})
}
