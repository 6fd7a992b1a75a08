package main

import (
	"context"
	"log"

	"github.com/vbjayanti/cumulus/internal/bulk"
	"github.com/vbjayanti/cumulus/internal/cmrclient"
	"github.com/vbjayanti/cumulus/internal/config"
	httpapi "github.com/vbjayanti/cumulus/internal/http"
	"github.com/vbjayanti/cumulus/internal/metrics"
	"github.com/vbjayanti/cumulus/internal/objectstore"
	"github.com/vbjayanti/cumulus/internal/repo/postgres"
	"github.com/vbjayanti/cumulus/internal/usecase"
	"github.com/vbjayanti/cumulus/internal/workflows"
)

func main() {
	ctx := context.Background()
	cfg := config.FromEnv()

	store, err := postgres.NewStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	objects, err := objectstore.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init object store: %v", err)
	}
	runner, err := workflows.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init workflow runner: %v", err)
	}
	bulkStore := bulk.NewRedisStore(cfg)
	defer bulkStore.Close()

	var search usecase.MetricsSearch
	if cfg.MetricsConfigured() {
		search = metrics.NewSearchClient(cfg)
	}

	service := usecase.NewGranuleService(usecase.GranuleServiceDeps{
		Granules:             postgres.NewGranuleRepo(store.Pool),
		Collections:          postgres.NewCollectionRepo(store.Pool),
		Executions:           postgres.NewExecutionRepo(store.Pool),
		Pdrs:                 postgres.NewPdrRepo(store.Pool),
		Objects:              objects,
		Workflows:            runner,
		Catalog:              cmrclient.New(cfg),
		BulkOps:              bulkStore,
		Metrics:              search,
		IngestWorkflow:       cfg.IngestWorkflow,
		DistributionEndpoint: cfg.DistributionEndpoint,
	})

	srv := httpapi.NewServer(cfg, httpapi.ServerDeps{Service: service})
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
