package pipeline

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/cellosaurus"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/drugcombdb"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/umls"
	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/repos"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// CellLineResolution is a resolved cell line plus its disease concept, if the
// NCIt annotation mapped to UMLS. Cached resolutions were already persisted.
type CellLineResolution struct {
	CellLine types.CellLine
	Disease  *types.Disease
	Cached   bool
}

// CellLinePipeline resolves cell line names through DrugCombDB, Cellosaurus
// and UMLS without a staging store. Unresolvable names are cached at Fetch
// time, so a cell line that fails once fails instantly afterwards; successes
// are cached only once Persist has stored them.
type CellLinePipeline struct {
	dcdb        drugcombdb.Client
	cellosaurus cellosaurus.Client
	umls        umls.Client
	cellLines   repos.CellLineRepo

	sourceID int

	cache    *lru.Cache[string, CellLineResolution]
	errCache *lru.Cache[string, *CellLineUnresolvableError]
	log      *logger.Logger
}

func NewCellLinePipeline(
	dcdb drugcombdb.Client,
	cello cellosaurus.Client,
	uml umls.Client,
	cellLines repos.CellLineRepo,
	sourceID int,
	log *logger.Logger,
) *CellLinePipeline {
	cache, _ := lru.New[string, CellLineResolution](2048)
	errCache, _ := lru.New[string, *CellLineUnresolvableError](2048)
	return &CellLinePipeline{
		dcdb:        dcdb,
		cellosaurus: cello,
		umls:        uml,
		cellLines:   cellLines,
		sourceID:    sourceID,
		cache:       cache,
		errCache:    errCache,
		log:         log,
	}
}

// Fetch resolves one cell line name. An unresolvable name returns a
// *CellLineUnresolvableError; a missing UMLS mapping is not an error, the
// cell line just carries no disease.
func (p *CellLinePipeline) Fetch(ctx context.Context, name string) (CellLineResolution, error) {
	if res, ok := p.cache.Get(name); ok {
		res.Cached = true
		return res, nil
	}
	if e, ok := p.errCache.Get(name); ok {
		return CellLineResolution{}, e
	}

	info, err := p.dcdb.CellLineInfo(ctx, name)
	if err != nil {
		return CellLineResolution{}, err
	}
	if info == nil {
		e := &CellLineUnresolvableError{CellLineName: name, Reason: "not found in DrugCombDB"}
		p.errCache.Add(name, e)
		return CellLineResolution{}, e
	}

	ncit, err := p.cellosaurus.Disease(ctx, info.Accession)
	if err != nil {
		return CellLineResolution{}, err
	}

	var disease *types.Disease
	var cui *string
	if ncit != nil {
		concept, err := p.umls.NcitToCUI(ctx, *ncit)
		if err != nil {
			return CellLineResolution{}, err
		}
		if concept != nil {
			disease = &types.Disease{DiseaseID: concept.CUI, DiseaseName: concept.Name}
			cui = &disease.DiseaseID
		}
	}

	res := CellLineResolution{
		CellLine: types.CellLine{
			CellLineID:   info.Accession,
			CellLineName: name,
			SourceID:     p.sourceID,
			Tissue:       info.Tissue,
			DiseaseID:    cui,
		},
		Disease: disease,
	}
	return res, nil
}

// Persist writes the disease first so the cell line's foreign key resolves.
// Cached resolutions are skipped; a fresh one enters the cache only after
// both rows are stored, so a cache hit never refers to unwritten rows.
func (p *CellLinePipeline) Persist(ctx context.Context, res CellLineResolution) error {
	if res.Cached {
		return nil
	}
	if res.Disease != nil {
		if err := p.cellLines.AddDisease(ctx, nil, res.Disease); err != nil {
			return err
		}
	}
	if err := p.cellLines.AddCellLine(ctx, nil, &res.CellLine); err != nil {
		return err
	}
	p.cache.Add(res.CellLine.CellLineName, res)
	return nil
}
