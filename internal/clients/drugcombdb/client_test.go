package drugcombdb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
)

func TestParseCID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"CIDs000003385", "3385"},
		{"CIDs000011960529", "11960529"},
		{"3385", "3385"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := parseCID(tc.in); got != tc.want {
			t.Errorf("parseCID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCombination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/integration/list/42":
			fmt.Fprint(w, `{"code":200,"msg":"ok","data":{"drug1":"5-FU","drug2":"ABT-888","cellName":"A2058","source":"ONEIL","ZIP":4.07,"Bliss":null,"Loewe":-1.23,"HSA":0.5}}`)
		case "/integration/list/99":
			fmt.Fprint(w, `{"code":500,"msg":"no data","data":null}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(logger.NewNop(), srv.URL)
	ctx := context.Background()

	combo, err := c.Combination(ctx, 42)
	if err != nil {
		t.Fatalf("Combination: %v", err)
	}
	if combo == nil {
		t.Fatal("expected combination, got nil")
	}
	if combo.ID != 42 {
		t.Errorf("ID = %d, want 42", combo.ID)
	}
	if combo.Drug1 != "5-FU" || combo.Drug2 != "ABT-888" || combo.CellLine != "A2058" {
		t.Errorf("unexpected entities: %+v", combo)
	}
	if combo.Bliss != nil {
		t.Error("Bliss should be nil")
	}
	if combo.ZIP == nil || *combo.ZIP != 4.07 {
		t.Errorf("ZIP = %v, want 4.07", combo.ZIP)
	}

	// Error envelope means the index does not exist.
	combo, err = c.Combination(ctx, 99)
	if err != nil {
		t.Fatalf("Combination(99): %v", err)
	}
	if combo != nil {
		t.Errorf("expected nil for error envelope, got %+v", combo)
	}

	// So does a plain 404.
	combo, err = c.Combination(ctx, 7)
	if err != nil {
		t.Fatalf("Combination(7): %v", err)
	}
	if combo != nil {
		t.Errorf("expected nil for 404, got %+v", combo)
	}
}

func TestDrugInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chemical/info/5-FU" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"code":200,"msg":"ok","data":{"cIds":"CIDs000003385","drugNameOfficial":"fluorouracil","smilesString":"C1=C(C(=O)NC(=O)N1)F"}}`)
	}))
	defer srv.Close()

	c := NewClient(logger.NewNop(), srv.URL)
	info, err := c.DrugInfo(context.Background(), "5-FU")
	if err != nil {
		t.Fatalf("DrugInfo: %v", err)
	}
	if info == nil {
		t.Fatal("expected drug info, got nil")
	}
	if info.PubchemCID != "3385" {
		t.Errorf("PubchemCID = %q, want 3385", info.PubchemCID)
	}
	if info.OfficialName != "fluorouracil" {
		t.Errorf("OfficialName = %q", info.OfficialName)
	}

	missing, err := c.DrugInfo(context.Background(), "no-such-drug")
	if err != nil {
		t.Fatalf("DrugInfo(missing): %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown drug, got %+v", missing)
	}
}

func TestCellLineInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cellName") != "A2058" {
			fmt.Fprint(w, `{"code":200,"msg":"ok","data":null}`)
			return
		}
		fmt.Fprint(w, `{"code":200,"msg":"ok","data":{"cellosaurus_assession":"CVCL_1059","tissue":"Skin"}}`)
	}))
	defer srv.Close()

	c := NewClient(logger.NewNop(), srv.URL)
	info, err := c.CellLineInfo(context.Background(), "A2058")
	if err != nil {
		t.Fatalf("CellLineInfo: %v", err)
	}
	if info == nil || info.Accession != "CVCL_1059" {
		t.Fatalf("info = %+v, want CVCL_1059", info)
	}
	if info.Tissue == nil || *info.Tissue != "Skin" {
		t.Errorf("Tissue = %v, want Skin", info.Tissue)
	}

	missing, err := c.CellLineInfo(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("CellLineInfo(missing): %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown cell line, got %+v", missing)
	}
}
