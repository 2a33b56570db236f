package pipeline

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/chembl"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/drugcombdb"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/unichem"
	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/repos"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// DrugResolution is a fully resolved drug ready for persistence: the raw
// PubChem-keyed row, the cured ChEMBL-keyed row and the mapping between them.
// Name is the normalized query name. Cached resolutions were persisted by an
// earlier Persist call in the run.
type DrugResolution struct {
	Name    string
	Raw     types.DrugRaw
	Cured   types.Drug
	Mapping types.ForeignToChembl
	Cached  bool
}

// DrugPipeline resolves drug names through DrugCombDB, UniChem and ChEMBL
// without a staging store, caching per run so repeated names cost nothing.
type DrugPipeline struct {
	dcdb    drugcombdb.Client
	unichem unichem.Client
	chembl  chembl.Client
	drugs   repos.DrugRepo

	pubchemSourceID int
	chemblSourceID  int

	cache *lru.Cache[string, DrugResolution]
	log   *logger.Logger
}

func NewDrugPipeline(
	dcdb drugcombdb.Client,
	uni unichem.Client,
	chem chembl.Client,
	drugs repos.DrugRepo,
	pubchemSourceID, chemblSourceID int,
	log *logger.Logger,
) *DrugPipeline {
	cache, _ := lru.New[string, DrugResolution](4096)
	return &DrugPipeline{
		dcdb:            dcdb,
		unichem:         uni,
		chembl:          chem,
		drugs:           drugs,
		pubchemSourceID: pubchemSourceID,
		chemblSourceID:  chemblSourceID,
		cache:           cache,
		log:             log,
	}
}

// Fetch resolves every distinct name in the slice, failing fast on the first
// unresolvable drug with a *DrugUnresolvableError. Names are normalized and
// deduplicated before resolution.
func (p *DrugPipeline) Fetch(ctx context.Context, names []string) ([]DrugResolution, error) {
	out := make([]DrugResolution, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := NormalizeDrugName(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		if res, ok := p.cache.Get(name); ok {
			res.Cached = true
			out = append(out, res)
			continue
		}
		res, err := p.resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, nil
}

func (p *DrugPipeline) resolve(ctx context.Context, name string) (*DrugResolution, error) {
	info, err := p.dcdb.DrugInfo(ctx, name)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, &DrugUnresolvableError{DrugName: name, Code: ReasonNotFoundInSource}
	}

	rawName := info.OfficialName
	if rawName == "" {
		rawName = name
	}
	raw := types.DrugRaw{
		DrugID:            info.PubchemCID,
		SourceID:          p.pubchemSourceID,
		DrugName:          rawName,
		ChemicalStructure: info.Smiles,
	}

	mapping, err := p.unichem.CompoundMapping(ctx, info.PubchemCID)
	if err != nil {
		return nil, err
	}
	if mapping == nil || mapping.ChemblID == nil {
		return nil, &DrugUnresolvableError{DrugName: name, Code: ReasonNotFoundInCrossRef}
	}
	raw.InchiKey = mapping.InchiKey

	mol, err := p.chembl.Molecule(ctx, *mapping.ChemblID)
	if err != nil {
		return nil, err
	}
	if mol == nil {
		return nil, &DrugUnresolvableError{DrugName: name, Code: ReasonNotFoundInCanonical}
	}

	return &DrugResolution{
		Name: name,
		Raw:  raw,
		Cured: types.Drug{
			DrugID:            mol.ChemblID,
			SourceID:          p.chemblSourceID,
			DrugName:          mol.PrefName,
			MolecularType:     mol.MoleculeType,
			ChemicalStructure: mol.CanonicalSmiles,
			InchiKey:          mol.StandardInchiKey,
		},
		Mapping: types.ForeignToChembl{
			ForeignID:       info.PubchemCID,
			ForeignSourceID: p.pubchemSourceID,
			ChemblID:        mol.ChemblID,
		},
	}, nil
}

// Persist writes every non-cached resolution: raw drug, cured drug, then the
// foreign-to-ChEMBL mapping. A resolution enters the cache only here, after
// its rows are stored, so a cache hit never refers to unwritten rows. A
// resolution fetched but never persisted (its combination was skipped) is
// simply resolved again next time.
func (p *DrugPipeline) Persist(ctx context.Context, results []DrugResolution) error {
	for i := range results {
		res := &results[i]
		if res.Cached {
			continue
		}
		if err := p.drugs.GetOrCreateRawDrug(ctx, nil, &res.Raw); err != nil {
			return err
		}
		if err := p.drugs.GetOrCreateDrug(ctx, nil, &res.Cured); err != nil {
			return err
		}
		if err := p.drugs.MapForeignToChembl(ctx, nil, &res.Mapping); err != nil {
			return err
		}
		p.cache.Add(res.Name, *res)
	}
	return nil
}
