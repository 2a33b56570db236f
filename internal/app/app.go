package app

import (
	"context"
	"fmt"

	"github.com/jnegrete2005/disnet-data-integration/internal/clients/cellosaurus"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/chembl"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/drugcombdb"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/umls"
	"github.com/jnegrete2005/disnet-data-integration/internal/clients/unichem"
	"github.com/jnegrete2005/disnet-data-integration/internal/config"
	"github.com/jnegrete2005/disnet-data-integration/internal/db"
	"github.com/jnegrete2005/disnet-data-integration/internal/mirror"
	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/repos"
	"github.com/jnegrete2005/disnet-data-integration/internal/staging"
)

// Source names registered in the destination warehouse at startup.
const (
	SourcePubChem     = "PubChem"
	SourceChembl      = "ChEMBL"
	SourceCellosaurus = "Cellosaurus"
)

type Clients struct {
	DrugCombDB  drugcombdb.Client
	UniChem     unichem.Client
	Chembl      chembl.Client
	Cellosaurus cellosaurus.Client
	// UMLS is nil when no API key is configured; modes that need it check.
	UMLS umls.Client
}

type Repos struct {
	Sources     repos.SourceRepo
	Drugs       repos.DrugRepo
	CellLines   repos.CellLineRepo
	Scores      repos.ScoreRepo
	Metadata    repos.MetadataRepo
	DrugCombs   repos.DrugCombRepo
	Experiments repos.ExperimentRepo
}

// SourceIDs are the warehouse source rows every drug and cell line row
// references, created once at startup.
type SourceIDs struct {
	PubChem     int
	Chembl      int
	Cellosaurus int
}

// App assembles the full dependency graph: config, logger, the destination
// warehouse, both local SQLite stores, the external clients and the
// repositories. Commands build their pipelines on top of it.
type App struct {
	Cfg       *config.Config
	Log       *logger.Logger
	Warehouse *db.PostgresService
	Staging   *staging.Store
	Mirror    *mirror.Store
	Clients   Clients
	Repos     Repos
	SourceIDs SourceIDs
}

func New(configPath string) (*App, error) {
	log, err := logger.New("dev")
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	cfg, err := config.Load(configPath, log)
	if err != nil {
		return nil, err
	}
	if cfg.LogMode != "dev" {
		if log, err = logger.New(cfg.LogMode); err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	warehouse, err := db.NewPostgresService(log, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := warehouse.AutoMigrateAll(); err != nil {
		return nil, err
	}

	stagingDB, err := db.NewSQLiteService(log, cfg.Database.StagingPath)
	if err != nil {
		return nil, err
	}
	stagingStore := staging.NewStore(stagingDB.DB(), log)
	if err := stagingStore.Migrate(); err != nil {
		return nil, err
	}

	mirrorDB, err := db.NewSQLiteService(log, cfg.Database.MirrorPath)
	if err != nil {
		return nil, err
	}
	mirrorStore := mirror.NewStore(mirrorDB.DB(), log)
	if err := mirrorStore.Migrate(); err != nil {
		return nil, err
	}

	clients := Clients{
		DrugCombDB:  drugcombdb.NewClient(log, cfg.Clients.DrugCombDBBaseURL),
		UniChem:     unichem.NewClient(log, cfg.Clients.UniChemBaseURL),
		Chembl:      chembl.NewClient(log, cfg.Clients.ChemblBaseURL),
		Cellosaurus: cellosaurus.NewClient(log, cfg.Clients.CellosaurusBaseURL),
	}
	if cfg.Clients.UMLSAPIKey != "" {
		umlsClient, err := umls.NewClient(log, cfg.Clients.UMLSBaseURL, cfg.Clients.UMLSAPIKey)
		if err != nil {
			return nil, err
		}
		clients.UMLS = umlsClient
	}

	gdb := warehouse.DB()
	r := Repos{
		Sources:     repos.NewSourceRepo(gdb, log),
		Drugs:       repos.NewDrugRepo(gdb, log),
		CellLines:   repos.NewCellLineRepo(gdb, log),
		Scores:      repos.NewScoreRepo(gdb, log),
		Metadata:    repos.NewMetadataRepo(gdb, log),
		DrugCombs:   repos.NewDrugCombRepo(gdb, log),
		Experiments: repos.NewExperimentRepo(gdb, log),
	}

	a := &App{
		Cfg:       cfg,
		Log:       log,
		Warehouse: warehouse,
		Staging:   stagingStore,
		Mirror:    mirrorStore,
		Clients:   clients,
		Repos:     r,
	}
	if err := a.bootstrapSources(context.Background()); err != nil {
		return nil, err
	}
	return a, nil
}

// RequireUMLS fails early for modes that cannot run without disease mapping.
func (a *App) RequireUMLS() error {
	if a.Clients.UMLS == nil {
		return fmt.Errorf("UMLS API key missing: set clients.umls_api_key or UMLS_API_KEY")
	}
	return nil
}

func (a *App) Close() {
	a.Log.Sync()
}

func (a *App) bootstrapSources(ctx context.Context) error {
	var err error
	if a.SourceIDs.PubChem, err = a.Repos.Sources.GetOrCreateSource(ctx, nil, SourcePubChem); err != nil {
		return err
	}
	if a.SourceIDs.Chembl, err = a.Repos.Sources.GetOrCreateSource(ctx, nil, SourceChembl); err != nil {
		return err
	}
	if a.SourceIDs.Cellosaurus, err = a.Repos.Sources.GetOrCreateSource(ctx, nil, SourceCellosaurus); err != nil {
		return err
	}
	return nil
}
