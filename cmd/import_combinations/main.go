package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jnegrete2005/disnet-data-integration/internal/app"
	"github.com/jnegrete2005/disnet-data-integration/internal/mirror"
)

func main() {
	var configPath, csvPath, drugCSV, cellCSV string
	var start, end int
	flag.StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
	flag.StringVar(&csvPath, "csv", "", "combination CSV dump to import (skips the API)")
	flag.StringVar(&drugCSV, "drugs-csv", "", "chemical dump to load into the mirror")
	flag.StringVar(&cellCSV, "cells-csv", "", "cell line dump to load into the mirror")
	flag.IntVar(&start, "start", 1, "first combination index to fetch (inclusive)")
	flag.IntVar(&end, "end", 70000, "last combination index to fetch (exclusive)")
	flag.Parse()

	a, err := app.New(configPath)
	if err != nil {
		fmt.Printf("init: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	importer := mirror.NewImporter(a.Mirror, a.Clients.DrugCombDB, a.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ranDump := false
	if drugCSV != "" {
		if _, err := importer.ImportDrugCSV(ctx, drugCSV); err != nil {
			a.Log.Error("Drug dump import aborted", "error", err)
			os.Exit(1)
		}
		ranDump = true
	}
	if cellCSV != "" {
		if _, err := importer.ImportCellLineCSV(ctx, cellCSV); err != nil {
			a.Log.Error("Cell line dump import aborted", "error", err)
			os.Exit(1)
		}
		ranDump = true
	}

	var imported int
	switch {
	case csvPath != "":
		imported, err = importer.ImportCSV(ctx, csvPath)
	case ranDump:
		// Dump-only invocation, nothing more to do.
		return
	default:
		imported, err = importer.FetchRange(ctx, start, end)
	}
	if err != nil {
		a.Log.Error("Import aborted", "error", err)
		os.Exit(1)
	}
	a.Log.Info("Import finished", "imported", imported)
}
