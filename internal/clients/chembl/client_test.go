package chembl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
)

func TestMolecule(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/molecule.json" {
			http.NotFound(w, r)
			return
		}
		switch r.URL.Query().Get("molecule_chembl_id") {
		case "CHEMBL185":
			fmt.Fprint(w, `{"molecules":[{"molecule_chembl_id":"CHEMBL185","pref_name":"FLUOROURACIL","molecule_type":"Small molecule","molecule_structures":{"canonical_smiles":"Fc1c[nH]c(=O)[nH]c1=O","standard_inchi_key":"GHASVSINZRGABV-UHFFFAOYSA-N"}}]}`)
		case "CHEMBL000":
			// Structures can be absent for some molecule types.
			fmt.Fprint(w, `{"molecules":[{"molecule_chembl_id":"CHEMBL000","pref_name":"SOMETHING","molecule_type":null,"molecule_structures":null}]}`)
		default:
			fmt.Fprint(w, `{"molecules":[]}`)
		}
	}))
	defer srv.Close()

	c := NewClient(logger.NewNop(), srv.URL)
	ctx := context.Background()

	mol, err := c.Molecule(ctx, "CHEMBL185")
	if err != nil {
		t.Fatalf("Molecule: %v", err)
	}
	if mol == nil || mol.ChemblID != "CHEMBL185" || mol.PrefName != "FLUOROURACIL" {
		t.Fatalf("molecule = %+v", mol)
	}
	if mol.CanonicalSmiles == nil || *mol.CanonicalSmiles != "Fc1c[nH]c(=O)[nH]c1=O" {
		t.Errorf("CanonicalSmiles = %v", mol.CanonicalSmiles)
	}

	mol, err = c.Molecule(ctx, "CHEMBL000")
	if err != nil {
		t.Fatalf("Molecule(no structures): %v", err)
	}
	if mol == nil {
		t.Fatal("expected molecule")
	}
	if mol.CanonicalSmiles != nil || mol.StandardInchiKey != nil {
		t.Errorf("expected nil structures, got %+v", mol)
	}

	mol, err = c.Molecule(ctx, "CHEMBL404")
	if err != nil {
		t.Fatalf("Molecule(missing): %v", err)
	}
	if mol != nil {
		t.Errorf("expected nil for unknown molecule, got %+v", mol)
	}
}
