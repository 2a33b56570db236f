package pipeline

import (
	"context"

	"github.com/jnegrete2005/disnet-data-integration/internal/clients/chembl"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/drugcombdb"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/unichem"
	"github.com/jnegrete2005/disnet-data-integration/internal/mirror"
	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/repos"
	"github.com/jnegrete2005/disnet-data-integration/internal/staging"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// StageOptions tune the staged pipelines. LocalOnly forbids DrugCombDB
// lookups, so anything missing from the local mirror fails terminally.
type StageOptions struct {
	LocalOnly bool
	BatchSize int
}

func (o StageOptions) batchSize() int {
	if o.BatchSize <= 0 {
		return 1000
	}
	return o.BatchSize
}

// StagedDrugPipeline resolves drugs through the staging ledger. Each stage
// selects rows sitting exactly at its input status and moves every one of
// them forward or to failed, so an interrupted run picks up where it stopped.
type StagedDrugPipeline struct {
	staging *staging.Store
	mirror  *mirror.Store
	dcdb    drugcombdb.Client
	unichem unichem.Client
	chembl  chembl.Client
	drugs   repos.DrugRepo

	pubchemSourceID int
	chemblSourceID  int
	opts            StageOptions
	log             *logger.Logger
}

func NewStagedDrugPipeline(
	stagingStore *staging.Store,
	mirrorStore *mirror.Store,
	dcdb drugcombdb.Client,
	uni unichem.Client,
	chem chembl.Client,
	drugs repos.DrugRepo,
	pubchemSourceID, chemblSourceID int,
	opts StageOptions,
	log *logger.Logger,
) *StagedDrugPipeline {
	return &StagedDrugPipeline{
		staging:         stagingStore,
		mirror:          mirrorStore,
		dcdb:            dcdb,
		unichem:         uni,
		chembl:          chem,
		drugs:           drugs,
		pubchemSourceID: pubchemSourceID,
		chemblSourceID:  chemblSourceID,
		opts:            opts,
		log:             log,
	}
}

// Run stages the given names and drives every pending row through the three
// resolution stages. Per-row failures are recorded on the row, never raised.
func (p *StagedDrugPipeline) Run(ctx context.Context, names []string) error {
	normalized := make([]string, 0, len(names))
	for _, n := range names {
		if nn := NormalizeDrugName(n); nn != "" {
			normalized = append(normalized, nn)
		}
	}
	staged, err := p.staging.StageDrugs(ctx, normalized)
	if err != nil {
		return err
	}
	p.log.Info("Staged drug names", "new", staged, "seen", len(normalized))

	for _, stage := range []func(context.Context) error{p.Stage1, p.Stage2, p.Stage3} {
		if err := stage(ctx); err != nil {
			return err
		}
	}

	counts, err := p.staging.DrugStatusCounts(ctx)
	if err != nil {
		return err
	}
	p.log.Info("Drug staging finished",
		"complete", counts[staging.StatusComplete],
		"failed", counts[staging.StatusFailed])
	return nil
}

// Stage1 resolves names to PubChem CIDs, preferring the local mirror over the
// DrugCombDB API.
func (p *StagedDrugPipeline) Stage1(ctx context.Context) error {
	return p.runStage(ctx, staging.StatusPending, p.advanceStage1)
}

// Stage2 maps PubChem CIDs to ChEMBL IDs through UniChem.
func (p *StagedDrugPipeline) Stage2(ctx context.Context) error {
	return p.runStage(ctx, staging.StatusRawResolved, p.advanceStage2)
}

// Stage3 fetches the cured molecule record from ChEMBL.
func (p *StagedDrugPipeline) Stage3(ctx context.Context) error {
	return p.runStage(ctx, staging.StatusMapped, p.advanceStage3)
}

// runStage drains one status level batch by batch. Every advance function
// must move its row off the input status, otherwise the loop would re-select
// it forever.
func (p *StagedDrugPipeline) runStage(ctx context.Context, from staging.Status, advance func(context.Context, *types.StagedDrug)) error {
	for {
		batch, err := p.staging.DrugBatch(ctx, from, p.opts.batchSize())
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
		if err := p.staging.UpdateDrugs(ctx, batch); err != nil {
			return err
		}
	}
}

func (p *StagedDrugPipeline) advanceStage1(ctx context.Context, row *types.StagedDrug) {
	local, err := p.mirror.DrugByName(ctx, row.DrugName)
	if err != nil {
		p.failDrug(row, nil, err.Error())
		return
	}
	if local != nil {
		cid := local.PubchemCID
		row.PubchemCID = &cid
		row.Smiles = local.Smiles
		row.OfficialName = local.OfficialName
		row.Status = int(staging.StatusRawResolved)
		return
	}
	if p.opts.LocalOnly {
		p.failDrugCode(row, ReasonNotFoundInSource)
		return
	}

	info, err := p.dcdb.DrugInfo(ctx, row.DrugName)
	if err != nil {
		p.failDrug(row, nil, err.Error())
		return
	}
	if info == nil {
		p.failDrugCode(row, ReasonNotFoundInSource)
		return
	}
	cid := info.PubchemCID
	row.PubchemCID = &cid
	row.Smiles = info.Smiles
	if info.OfficialName != "" {
		name := info.OfficialName
		row.OfficialName = &name
	}
	row.Status = int(staging.StatusRawResolved)
}

func (p *StagedDrugPipeline) advanceStage2(ctx context.Context, row *types.StagedDrug) {
	mapping, err := p.unichem.CompoundMapping(ctx, *row.PubchemCID)
	if err != nil {
		p.failDrug(row, nil, err.Error())
		return
	}
	if mapping == nil || mapping.ChemblID == nil {
		p.failDrugCode(row, ReasonNotFoundInCrossRef)
		return
	}
	row.ChemblID = mapping.ChemblID
	row.InchiKey = mapping.InchiKey
	row.Status = int(staging.StatusMapped)
}

func (p *StagedDrugPipeline) advanceStage3(ctx context.Context, row *types.StagedDrug) {
	mol, err := p.chembl.Molecule(ctx, *row.ChemblID)
	if err != nil {
		p.failDrug(row, nil, err.Error())
		return
	}
	if mol == nil {
		p.failDrugCode(row, ReasonNotFoundInCanonical)
		return
	}
	name := mol.PrefName
	row.OfficialName = &name
	row.MolecularType = mol.MoleculeType
	if mol.CanonicalSmiles != nil {
		row.Smiles = mol.CanonicalSmiles
	}
	if mol.StandardInchiKey != nil {
		row.InchiKey = mol.StandardInchiKey
	}
	row.Status = int(staging.StatusComplete)
}

func (p *StagedDrugPipeline) failDrug(row *types.StagedDrug, code *int, msg string) {
	row.Status = int(staging.StatusFailed)
	row.ErrorCode = code
	row.ErrorMsg = &msg
	p.log.Warn("Drug staging failure", "drug", row.DrugName, "error", msg)
}

func (p *StagedDrugPipeline) failDrugCode(row *types.StagedDrug, code int) {
	msg := (&DrugUnresolvableError{DrugName: row.DrugName, Code: code}).Reason()
	p.failDrug(row, &code, msg)
}

// Persist streams fully resolved rows into the destination repositories.
// Rows keep their status, so re-running Persist is idempotent through the
// repositories' get-or-create semantics.
func (p *StagedDrugPipeline) Persist(ctx context.Context) error {
	after := ""
	for {
		batch, err := p.staging.DrugBatchAfter(ctx, staging.StatusComplete, after, p.opts.batchSize())
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
		after = batch[len(batch)-1].DrugName
	}
}

func (p *StagedDrugPipeline) persistRow(ctx context.Context, row *types.StagedDrug) error {
	rawName := row.DrugName
	if row.OfficialName != nil {
		rawName = *row.OfficialName
	}
	raw := &types.DrugRaw{
		DrugID:            *row.PubchemCID,
		SourceID:          p.pubchemSourceID,
		DrugName:          rawName,
		ChemicalStructure: row.Smiles,
		InchiKey:          row.InchiKey,
	}
	if err := p.drugs.GetOrCreateRawDrug(ctx, nil, raw); err != nil {
		return err
	}
	cured := &types.Drug{
		DrugID:            *row.ChemblID,
		SourceID:          p.chemblSourceID,
		DrugName:          rawName,
		MolecularType:     row.MolecularType,
		ChemicalStructure: row.Smiles,
		InchiKey:          row.InchiKey,
	}
	if err := p.drugs.GetOrCreateDrug(ctx, nil, cured); err != nil {
		return err
	}
	return p.drugs.MapForeignToChembl(ctx, nil, &types.ForeignToChembl{
		ForeignID:       *row.PubchemCID,
		ForeignSourceID: p.pubchemSourceID,
		ChemblID:        *row.ChemblID,
	})
}
