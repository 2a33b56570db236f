package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jnegrete2005/disnet-data-integration/internal/app"
	"github.com/jnegrete2005/disnet-data-integration/internal/pipeline"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	a, err := app.New(configPath)
	if err != nil {
		fmt.Printf("init: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.RequireUMLS(); err != nil {
		fmt.Printf("init: %v\n", err)
		os.Exit(1)
	}

	opts := pipeline.StageOptions{
		LocalOnly: a.Cfg.Pipeline.LocalOnly,
		BatchSize: a.Cfg.Pipeline.BatchSize,
	}
	drugs := pipeline.NewStagedDrugPipeline(
		a.Staging, a.Mirror, a.Clients.DrugCombDB, a.Clients.UniChem, a.Clients.Chembl,
		a.Repos.Drugs, a.SourceIDs.PubChem, a.SourceIDs.Chembl, opts, a.Log)
	cellLines := pipeline.NewStagedCellLinePipeline(
		a.Staging, a.Mirror, a.Clients.DrugCombDB, a.Clients.Cellosaurus, a.Clients.UMLS,
		a.Repos.CellLines, a.SourceIDs.Cellosaurus, opts, a.Log)
	scores := pipeline.NewScorePipeline(a.Repos.Scores, a.Log)
	experiments := pipeline.NewExperimentPipeline(
		a.Warehouse.DB(), a.Repos.DrugCombs, a.Repos.Metadata, a.Repos.Experiments, a.Log)

	orchestrator := pipeline.NewOrchestrator(
		a.Mirror, a.Staging, drugs, cellLines, scores, experiments, a.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := orchestrator.Run(ctx); err != nil {
		a.Log.Error("Batch integration aborted", "error", err)
		os.Exit(1)
	}
}
