package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/jnegrete2005/disnet-data-integration/internal/clients/chembl"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/drugcombdb"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/unichem"
	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
)

func TestNormalizeDrugName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"5-FU (approved)", "5-FU"},
		{"5-FU(approved)", "5-FU"},
		{"ABT-888", "ABT-888"},
		{"  veliparib  ", "veliparib"},
	}
	for _, tc := range cases {
		if got := NormalizeDrugName(tc.in); got != tc.want {
			t.Errorf("NormalizeDrugName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func newResolvableDCDB() (*fakeDCDB, *fakeUniChem, *fakeChembl) {
	dcdb := &fakeDCDB{
		drugs: map[string]*drugcombdb.DrugInfo{
			"5-FU":    {PubchemCID: "3385", OfficialName: "fluorouracil", Smiles: strPtr("C1=C(C(=O)NC(=O)N1)F")},
			"ABT-888": {PubchemCID: "11960529", OfficialName: "veliparib"},
		},
	}
	uni := &fakeUniChem{
		mappings: map[string]*unichem.Mapping{
			"3385":     {ChemblID: strPtr("CHEMBL185"), InchiKey: strPtr("GHASVSINZRGABV-UHFFFAOYSA-N")},
			"11960529": {ChemblID: strPtr("CHEMBL506871")},
		},
	}
	chem := &fakeChembl{
		molecules: map[string]*chembl.Molecule{
			"CHEMBL185":    {ChemblID: "CHEMBL185", PrefName: "FLUOROURACIL", MoleculeType: strPtr("Small molecule")},
			"CHEMBL506871": {ChemblID: "CHEMBL506871", PrefName: "VELIPARIB"},
		},
	}
	return dcdb, uni, chem
}

func TestDrugFetchResolvesChain(t *testing.T) {
	dcdb, uni, chem := newResolvableDCDB()
	repo := &fakeDrugRepo{}
	p := NewDrugPipeline(dcdb, uni, chem, repo, 1, 2, logger.NewNop())

	res, err := p.Fetch(context.Background(), []string{"5-FU (approved)", "ABT-888"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("len(res) = %d, want 2", len(res))
	}
	if res[0].Cured.DrugID != "CHEMBL185" || res[1].Cured.DrugID != "CHEMBL506871" {
		t.Errorf("cured IDs = %q, %q", res[0].Cured.DrugID, res[1].Cured.DrugID)
	}
	if res[0].Raw.DrugID != "3385" || res[0].Raw.SourceID != 1 {
		t.Errorf("raw = %+v", res[0].Raw)
	}
	if res[0].Mapping.ChemblID != "CHEMBL185" || res[0].Mapping.ForeignSourceID != 1 {
		t.Errorf("mapping = %+v", res[0].Mapping)
	}

	if err := p.Persist(context.Background(), res); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if len(repo.raw) != 2 || len(repo.cured) != 2 || len(repo.mappings) != 2 {
		t.Errorf("persisted %d/%d/%d rows", len(repo.raw), len(repo.cured), len(repo.mappings))
	}
}

func TestDrugFetchCaches(t *testing.T) {
	dcdb, uni, chem := newResolvableDCDB()
	repo := &fakeDrugRepo{}
	p := NewDrugPipeline(dcdb, uni, chem, repo, 1, 2, logger.NewNop())
	ctx := context.Background()

	first, err := p.Fetch(ctx, []string{"5-FU"})
	if err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	if err := p.Persist(ctx, first); err != nil {
		t.Fatalf("first Persist: %v", err)
	}

	res, err := p.Fetch(ctx, []string{"5-FU (approved)"})
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if dcdb.drugCalls != 1 || uni.calls != 1 || chem.calls != 1 {
		t.Errorf("calls = %d/%d/%d, want 1/1/1", dcdb.drugCalls, uni.calls, chem.calls)
	}
	if !res[0].Cached {
		t.Error("second resolution should be marked cached")
	}

	// Cached results are skipped on persist.
	if err := p.Persist(ctx, res); err != nil {
		t.Fatalf("second Persist: %v", err)
	}
	if len(repo.raw) != 1 {
		t.Errorf("persisted %d raw rows, want 1", len(repo.raw))
	}
}

func TestDrugFetchDoesNotCacheUnpersistedResolutions(t *testing.T) {
	dcdb, uni, chem := newResolvableDCDB()
	repo := &fakeDrugRepo{}
	p := NewDrugPipeline(dcdb, uni, chem, repo, 1, 2, logger.NewNop())
	ctx := context.Background()

	// First fetch succeeds but its results are dropped, as happens when the
	// other entity of the combination turns out unresolvable.
	if _, err := p.Fetch(ctx, []string{"5-FU"}); err != nil {
		t.Fatalf("first Fetch: %v", err)
	}

	res, err := p.Fetch(ctx, []string{"5-FU"})
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if res[0].Cached {
		t.Error("unpersisted resolution must not come back as cached")
	}
	if dcdb.drugCalls != 2 {
		t.Errorf("drugCalls = %d, want 2", dcdb.drugCalls)
	}
	if err := p.Persist(ctx, res); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if len(repo.raw) != 1 || len(repo.cured) != 1 || len(repo.mappings) != 1 {
		t.Errorf("persisted %d/%d/%d rows, want 1/1/1", len(repo.raw), len(repo.cured), len(repo.mappings))
	}
}

func TestDrugFetchDeduplicatesWithinCall(t *testing.T) {
	dcdb, uni, chem := newResolvableDCDB()
	p := NewDrugPipeline(dcdb, uni, chem, &fakeDrugRepo{}, 1, 2, logger.NewNop())

	res, err := p.Fetch(context.Background(), []string{"5-FU", "5-FU (approved)"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res) != 1 {
		t.Errorf("len(res) = %d, want 1", len(res))
	}
	if dcdb.drugCalls != 1 {
		t.Errorf("drugCalls = %d, want 1", dcdb.drugCalls)
	}
}

func TestDrugFetchFailFast(t *testing.T) {
	cases := []struct {
		name     string
		drug     string
		wantCode int
	}{
		{"unknown to source", "nonexistent", ReasonNotFoundInSource},
		{"no cross reference", "orphan-cid", ReasonNotFoundInCrossRef},
		{"not in canonical", "orphan-chembl", ReasonNotFoundInCanonical},
	}

	dcdb, uni, chem := newResolvableDCDB()
	dcdb.drugs["orphan-cid"] = &drugcombdb.DrugInfo{PubchemCID: "999"}
	dcdb.drugs["orphan-chembl"] = &drugcombdb.DrugInfo{PubchemCID: "888"}
	uni.mappings["888"] = &unichem.Mapping{ChemblID: strPtr("CHEMBL404")}

	p := NewDrugPipeline(dcdb, uni, chem, &fakeDrugRepo{}, 1, 2, logger.NewNop())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Fetch(context.Background(), []string{tc.drug, "5-FU"})
			var de *DrugUnresolvableError
			if !errors.As(err, &de) {
				t.Fatalf("err = %v, want DrugUnresolvableError", err)
			}
			if de.Code != tc.wantCode {
				t.Errorf("code = %d, want %d", de.Code, tc.wantCode)
			}
			if de.DrugName != tc.drug {
				t.Errorf("drug = %q, want %q", de.DrugName, tc.drug)
			}
		})
	}
}
