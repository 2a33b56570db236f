package pipeline

import (
	"context"
	"fmt"

	"github.com/jnegrete2005/disnet-data-integration/internal/clients/cellosaurus"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/chembl"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/drugcombdb"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/umls"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/unichem"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func floatPtr(v float64) *float64 { return &v }

// fakeDCDB serves canned drug, cell line and combination lookups and counts
// calls so tests can assert on caching and local-only behavior.
type fakeDCDB struct {
	combinations map[int]*drugcombdb.Combination
	drugs        map[string]*drugcombdb.DrugInfo
	cellLines    map[string]*drugcombdb.CellLineInfo

	combinationCalls int
	drugCalls        int
	cellLineCalls    int
}

func (f *fakeDCDB) Combination(ctx context.Context, index int) (*drugcombdb.Combination, error) {
	f.combinationCalls++
	return f.combinations[index], nil
}

func (f *fakeDCDB) DrugInfo(ctx context.Context, name string) (*drugcombdb.DrugInfo, error) {
	f.drugCalls++
	return f.drugs[name], nil
}

func (f *fakeDCDB) CellLineInfo(ctx context.Context, name string) (*drugcombdb.CellLineInfo, error) {
	f.cellLineCalls++
	return f.cellLines[name], nil
}

type fakeUniChem struct {
	mappings map[string]*unichem.Mapping
	calls    int
}

func (f *fakeUniChem) CompoundMapping(ctx context.Context, cid string) (*unichem.Mapping, error) {
	f.calls++
	return f.mappings[cid], nil
}

type fakeChembl struct {
	molecules map[string]*chembl.Molecule
	calls     int
}

func (f *fakeChembl) Molecule(ctx context.Context, id string) (*chembl.Molecule, error) {
	f.calls++
	return f.molecules[id], nil
}

type fakeCellosaurus struct {
	diseases     map[string]*string
	cosmic       map[string]*cellosaurus.CellLineRecord
	diseaseCalls int
	cosmicCalls  int
}

func (f *fakeCellosaurus) Disease(ctx context.Context, accession string) (*string, error) {
	f.diseaseCalls++
	return f.diseases[accession], nil
}

func (f *fakeCellosaurus) SearchByCosmic(ctx context.Context, cosmicID string) (*cellosaurus.CellLineRecord, error) {
	f.cosmicCalls++
	return f.cosmic[cosmicID], nil
}

type fakeUMLS struct {
	concepts map[string]*umls.Concept
	calls    int
}

func (f *fakeUMLS) NcitToCUI(ctx context.Context, ncit string) (*umls.Concept, error) {
	f.calls++
	return f.concepts[ncit], nil
}

// fakeScoreRepo hands out sequential IDs per score name.
type fakeScoreRepo struct {
	ids map[string]int
}

func (f *fakeScoreRepo) GetOrCreateScore(ctx context.Context, tx *gorm.DB, name string) (int, error) {
	if f.ids == nil {
		f.ids = make(map[string]int)
	}
	if id, ok := f.ids[name]; ok {
		return id, nil
	}
	id := len(f.ids) + 1
	f.ids[name] = id
	return id, nil
}

// fakeDrugRepo records what was persisted.
type fakeDrugRepo struct {
	raw      []types.DrugRaw
	cured    []types.Drug
	mappings []types.ForeignToChembl
}

func (f *fakeDrugRepo) GetOrCreateRawDrug(ctx context.Context, tx *gorm.DB, drug *types.DrugRaw) error {
	f.raw = append(f.raw, *drug)
	return nil
}

func (f *fakeDrugRepo) GetOrCreateDrug(ctx context.Context, tx *gorm.DB, drug *types.Drug) error {
	f.cured = append(f.cured, *drug)
	return nil
}

func (f *fakeDrugRepo) MapForeignToChembl(ctx context.Context, tx *gorm.DB, mapping *types.ForeignToChembl) error {
	f.mappings = append(f.mappings, *mapping)
	return nil
}

type fakeCellLineRepo struct {
	diseases  []types.Disease
	cellLines []types.CellLine
}

func (f *fakeCellLineRepo) AddDisease(ctx context.Context, tx *gorm.DB, disease *types.Disease) error {
	f.diseases = append(f.diseases, *disease)
	return nil
}

func (f *fakeCellLineRepo) AddCellLine(ctx context.Context, tx *gorm.DB, cellLine *types.CellLine) error {
	// Disease rows must land before the cell lines that reference them.
	if cellLine.DiseaseID != nil {
		found := false
		for _, d := range f.diseases {
			if d.DiseaseID == *cellLine.DiseaseID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("cell line %s references missing disease %s", cellLine.CellLineID, *cellLine.DiseaseID)
		}
	}
	f.cellLines = append(f.cellLines, *cellLine)
	return nil
}
