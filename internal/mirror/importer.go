package mirror

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/jnegrete2005/disnet-data-integration/internal/clients/drugcombdb"
	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// Importer fills the local mirror, either from the DrugCombDB CSV export or
// by walking the API index range. Both paths resume from MAX(id).
type Importer struct {
	store *Store
	dcdb  drugcombdb.Client
	log   *logger.Logger
}

func NewImporter(store *Store, dcdb drugcombdb.Client, baseLog *logger.Logger) *Importer {
	return &Importer{store: store, dcdb: dcdb, log: baseLog.With("component", "mirror-importer")}
}

// csvHeader maps the column names of the DrugCombDB export to their indices.
var csvColumns = []string{"ID", "Drug1", "Drug2", "Cell line", "ZIP", "Bliss", "Loewe", "HSA"}

// ImportCSV loads combination rows from the DrugCombDB CSV export, skipping
// IDs already present. Returns how many rows were inserted.
func (im *Importer) ImportCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	lastID, err := im.store.LastCombinationID(ctx)
	if err != nil {
		return 0, err
	}
	if lastID > 0 {
		im.log.Info("Resuming CSV import", "last_id", lastID)
	}

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range csvColumns {
		if _, ok := cols[required]; !ok {
			return 0, fmt.Errorf("csv missing column %q", required)
		}
	}

	var batch []types.MirrorCombination
	inserted := 0
	flush := func() error {
		if err := im.store.InsertCombinations(ctx, batch); err != nil {
			return err
		}
		inserted += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, fmt.Errorf("read csv row: %w", err)
		}
		id, err := strconv.Atoi(record[cols["ID"]])
		if err != nil {
			im.log.Warn("Skipping row with non-numeric ID", "value", record[cols["ID"]])
			continue
		}
		if id <= lastID {
			continue
		}
		row := types.MirrorCombination{
			ID:       id,
			Drug1:    record[cols["Drug1"]],
			Drug2:    record[cols["Drug2"]],
			CellLine: record[cols["Cell line"]],
			ZIP:      parseScore(record[cols["ZIP"]]),
			Bliss:    parseScore(record[cols["Bliss"]]),
			Loewe:    parseScore(record[cols["Loewe"]]),
			HSA:      parseScore(record[cols["HSA"]]),
			Status:   types.MirrorStatusPending,
		}
		row.Classification = coarseClassification(row.ZIP, row.Bliss, row.Loewe, row.HSA)
		batch = append(batch, row)
		if len(batch) >= 500 {
			if err := flush(); err != nil {
				return inserted, err
			}
		}
	}
	if err := flush(); err != nil {
		return inserted, err
	}
	im.log.Info("CSV import finished", "inserted", inserted)
	return inserted, nil
}

// ImportDrugCSV loads the DrugCombDB chemical dump into the mirror's drug
// table. Only drugName and cIds are required; official name and SMILES fill
// in when the dump carries them.
func (im *Importer) ImportDrugCSV(ctx context.Context, path string) (int, error) {
	rows := 0
	err := im.readCSV(path, []string{"drugName", "cIds"}, func(cols map[string]int, record []string) error {
		name := strings.TrimSpace(record[cols["drugName"]])
		cid := parseCIDColumn(record[cols["cIds"]])
		if name == "" || cid == "" {
			return nil
		}
		row := types.MirrorDrug{DrugName: name, PubchemCID: cid}
		if i, ok := cols["drugNameOfficial"]; ok && record[i] != "" {
			v := record[i]
			row.OfficialName = &v
		}
		if i, ok := cols["smilesString"]; ok && record[i] != "" {
			v := record[i]
			row.Smiles = &v
		}
		if err := im.store.InsertDrugs(ctx, []types.MirrorDrug{row}); err != nil {
			return err
		}
		rows++
		return nil
	})
	if err != nil {
		return rows, err
	}
	im.log.Info("Drug dump import finished", "inserted", rows)
	return rows, nil
}

// ImportCellLineCSV loads the DrugCombDB cell line dump, carrying the COSMIC
// cross-reference that enables the Cellosaurus fast path.
func (im *Importer) ImportCellLineCSV(ctx context.Context, path string) (int, error) {
	rows := 0
	err := im.readCSV(path, []string{"name"}, func(cols map[string]int, record []string) error {
		name := strings.TrimSpace(record[cols["name"]])
		if name == "" {
			return nil
		}
		row := types.MirrorCellLine{CellName: name}
		if i, ok := cols["cosmicId"]; ok && record[i] != "" {
			v := record[i]
			row.CosmicID = &v
		}
		if err := im.store.InsertCellLines(ctx, []types.MirrorCellLine{row}); err != nil {
			return err
		}
		rows++
		return nil
	})
	if err != nil {
		return rows, err
	}
	im.log.Info("Cell line dump import finished", "inserted", rows)
	return rows, nil
}

// readCSV walks a CSV file row by row after validating the required columns.
func (im *Importer) readCSV(path string, required []string, fn func(cols map[string]int, record []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("csv missing column %q", name)
		}
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read csv row: %w", err)
		}
		if err := fn(cols, record); err != nil {
			return err
		}
	}
}

// parseCIDColumn strips the CIDs prefix and leading zeros the dump uses.
func parseCIDColumn(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "CIDs")
	return strings.TrimLeft(raw, "0")
}

// FetchRange downloads combinations [start, end) from the API into the
// mirror. Missing indices are counted and skipped.
func (im *Importer) FetchRange(ctx context.Context, start, end int) (int, error) {
	lastID, err := im.store.LastCombinationID(ctx)
	if err != nil {
		return 0, err
	}
	if lastID >= start {
		start = lastID + 1
		im.log.Info("Resuming API download", "start", start)
	}

	inserted := 0
	missing := 0
	var batch []types.MirrorCombination
	flush := func() error {
		if err := im.store.InsertCombinations(ctx, batch); err != nil {
			return err
		}
		inserted += len(batch)
		batch = batch[:0]
		return nil
	}

	for i := start; i < end; i++ {
		combo, err := im.dcdb.Combination(ctx, i)
		if err != nil {
			return inserted, fmt.Errorf("download combination %d: %w", i, err)
		}
		if combo == nil {
			missing++
			continue
		}
		row := types.MirrorCombination{
			ID:       combo.ID,
			Drug1:    combo.Drug1,
			Drug2:    combo.Drug2,
			CellLine: combo.CellLine,
			ZIP:      roundPtr(combo.ZIP),
			Bliss:    roundPtr(combo.Bliss),
			Loewe:    roundPtr(combo.Loewe),
			HSA:      roundPtr(combo.HSA),
			Status:   types.MirrorStatusPending,
		}
		row.Classification = coarseClassification(row.ZIP, row.Bliss, row.Loewe, row.HSA)
		batch = append(batch, row)
		if len(batch) >= 100 {
			if err := flush(); err != nil {
				return inserted, err
			}
		}
	}
	if err := flush(); err != nil {
		return inserted, err
	}
	im.log.Info("API download finished", "inserted", inserted, "missing", missing)
	return inserted, nil
}

func parseScore(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "nan") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	rounded := math.Round(v*10000) / 10000
	return &rounded
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	rounded := math.Round(*v*10000) / 10000
	return &rounded
}

// coarseClassification is the rough synergistic/antagonistic label stored on
// the mirror row. The warehouse recomputes the real vote at load time; this
// one exists for ad hoc queries against the mirror alone.
func coarseClassification(zip, bliss, loewe, hsa *float64) string {
	vote := 0
	for _, v := range []*float64{zip, bliss, loewe, hsa} {
		if v == nil {
			continue
		}
		if *v > 0 {
			vote++
		} else {
			vote--
		}
	}
	if vote > 0 {
		return "synergistic"
	}
	return "antagonistic"
}
