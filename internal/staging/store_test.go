package staging

import (
	"context"
	"testing"

	"github.com/jnegrete2005/disnet-data-integration/internal/db"
	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	svc, err := db.NewSQLiteService(logger.NewNop(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store := NewStore(svc.DB(), logger.NewNop())
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestStageDrugsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.StageDrugs(ctx, []string{"5-FU", "ABT-888", "5-FU"})
	if err != nil {
		t.Fatalf("StageDrugs: %v", err)
	}
	if n != 2 {
		t.Errorf("staged = %d, want 2", n)
	}

	// Re-staging the same names inserts nothing and touches no row.
	rows, err := store.DrugBatch(ctx, StatusPending, 10)
	if err != nil {
		t.Fatalf("DrugBatch: %v", err)
	}
	rows[0].Status = int(StatusComplete)
	chembl := "CHEMBL185"
	rows[0].ChemblID = &chembl
	if err := store.UpdateDrugs(ctx, rows[:1]); err != nil {
		t.Fatalf("UpdateDrugs: %v", err)
	}

	n, err = store.StageDrugs(ctx, []string{"5-FU", "ABT-888"})
	if err != nil {
		t.Fatalf("re-StageDrugs: %v", err)
	}
	if n != 0 {
		t.Errorf("re-staged = %d, want 0", n)
	}
	complete, err := store.DrugBatch(ctx, StatusComplete, 10)
	if err != nil {
		t.Fatalf("DrugBatch(complete): %v", err)
	}
	if len(complete) != 1 {
		t.Errorf("restaging reset a terminal row: complete = %d", len(complete))
	}
}

func TestDrugBatchSelectsExactStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.StageDrugs(ctx, []string{"a", "b", "c"}); err != nil {
		t.Fatalf("StageDrugs: %v", err)
	}
	rows, err := store.DrugBatch(ctx, StatusPending, 10)
	if err != nil {
		t.Fatalf("DrugBatch: %v", err)
	}
	rows[0].Status = int(StatusRawResolved)
	rows[1].Status = int(StatusFailed)
	if err := store.UpdateDrugs(ctx, rows[:2]); err != nil {
		t.Fatalf("UpdateDrugs: %v", err)
	}

	for _, tc := range []struct {
		status Status
		want   int
	}{
		{StatusPending, 1},
		{StatusRawResolved, 1},
		{StatusFailed, 1},
		{StatusComplete, 0},
	} {
		got, err := store.DrugBatch(ctx, tc.status, 10)
		if err != nil {
			t.Fatalf("DrugBatch(%v): %v", tc.status, err)
		}
		if len(got) != tc.want {
			t.Errorf("status %v: %d rows, want %d", tc.status, len(got), tc.want)
		}
	}

	counts, err := store.DrugStatusCounts(ctx)
	if err != nil {
		t.Fatalf("DrugStatusCounts: %v", err)
	}
	if counts[StatusPending] != 1 || counts[StatusRawResolved] != 1 || counts[StatusFailed] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestDrugBatchAfterPaginates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.StageDrugs(ctx, []string{"a", "b", "c"}); err != nil {
		t.Fatalf("StageDrugs: %v", err)
	}

	first, err := store.DrugBatchAfter(ctx, StatusPending, "", 2)
	if err != nil {
		t.Fatalf("DrugBatchAfter: %v", err)
	}
	if len(first) != 2 || first[0].DrugName != "a" || first[1].DrugName != "b" {
		t.Fatalf("first page = %+v", first)
	}
	second, err := store.DrugBatchAfter(ctx, StatusPending, first[1].DrugName, 2)
	if err != nil {
		t.Fatalf("DrugBatchAfter(page 2): %v", err)
	}
	if len(second) != 1 || second[0].DrugName != "c" {
		t.Fatalf("second page = %+v", second)
	}
}

func TestDrugIDMapOnlyComplete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.StageDrugs(ctx, []string{"done", "failed", "half"}); err != nil {
		t.Fatalf("StageDrugs: %v", err)
	}
	rows, err := store.DrugBatch(ctx, StatusPending, 10)
	if err != nil {
		t.Fatalf("DrugBatch: %v", err)
	}
	for i := range rows {
		switch rows[i].DrugName {
		case "done":
			id := "CHEMBL185"
			rows[i].ChemblID = &id
			rows[i].Status = int(StatusComplete)
		case "failed":
			rows[i].Status = int(StatusFailed)
		case "half":
			rows[i].Status = int(StatusMapped)
		}
	}
	if err := store.UpdateDrugs(ctx, rows); err != nil {
		t.Fatalf("UpdateDrugs: %v", err)
	}

	m, err := store.DrugIDMap(ctx)
	if err != nil {
		t.Fatalf("DrugIDMap: %v", err)
	}
	if len(m) != 1 || m["done"] != "CHEMBL185" {
		t.Errorf("id map = %v", m)
	}
}

func TestStageCellLines(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.StageCellLines(ctx, []string{"A2058", "NCIH23", "A2058"})
	if err != nil {
		t.Fatalf("StageCellLines: %v", err)
	}
	if n != 2 {
		t.Errorf("staged = %d, want 2", n)
	}

	rows, err := store.CellLineBatch(ctx, StatusPending, 10)
	if err != nil {
		t.Fatalf("CellLineBatch: %v", err)
	}
	acc := "CVCL_1059"
	cui := "C0151779"
	rows[0].Accession = &acc
	rows[0].UmlsCUI = &cui
	rows[0].Status = int(StatusComplete)
	if err := store.UpdateCellLines(ctx, rows[:1]); err != nil {
		t.Fatalf("UpdateCellLines: %v", err)
	}

	m, err := store.CellLineIDMap(ctx)
	if err != nil {
		t.Fatalf("CellLineIDMap: %v", err)
	}
	if len(m) != 1 || m["A2058"] != "CVCL_1059" {
		t.Errorf("id map = %v", m)
	}
}
