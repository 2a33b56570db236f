package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/jnegrete2005/disnet-data-integration/internal/app"
	"github.com/jnegrete2005/disnet-data-integration/internal/pipeline"
)

func main() {
	var configPath string
	var start, end, step int
	flag.StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
	flag.IntVar(&start, "start", 1, "first combination index (inclusive)")
	flag.IntVar(&end, "end", 70000, "last combination index (exclusive)")
	flag.IntVar(&step, "step", 1, "index stride")
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

	checkpoint, err := pipeline.NewCheckpoint(a.Cfg.Pipeline.CheckpointPath)
	if err != nil {
		fmt.Printf("init checkpoint: %v\n", err)
		os.Exit(1)
	}
	audit, err := pipeline.NewAuditLog(a.Cfg.Pipeline.AuditPath, uuid.NewString())
	if err != nil {
		fmt.Printf("init audit log: %v\n", err)
		os.Exit(1)
	}

	drugs := pipeline.NewDrugPipeline(
		a.Clients.DrugCombDB, a.Clients.UniChem, a.Clients.Chembl,
		a.Repos.Drugs, a.SourceIDs.PubChem, a.SourceIDs.Chembl, a.Log)
	cellLines := pipeline.NewCellLinePipeline(
		a.Clients.DrugCombDB, a.Clients.Cellosaurus, a.Clients.UMLS,
		a.Repos.CellLines, a.SourceIDs.Cellosaurus, a.Log)
	scores := pipeline.NewScorePipeline(a.Repos.Scores, a.Log)
	experiments := pipeline.NewExperimentPipeline(
		a.Warehouse.DB(), a.Repos.DrugCombs, a.Repos.Metadata, a.Repos.Experiments, a.Log)

	integrator := pipeline.NewIntegrator(
		a.Clients.DrugCombDB, drugs, cellLines, scores, experiments,
		checkpoint, audit, a.Cfg.Pipeline.RetryFailed, a.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := integrator.Run(ctx, start, end, step); err != nil {
		a.Log.Error("Integration aborted", "error", err)
		os.Exit(1)
	}
}
