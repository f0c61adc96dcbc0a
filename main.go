package main

import (
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/weldhq/weld-engine/pkg/adapters/datasource"
	_ "github.com/weldhq/weld-engine/pkg/adapters/datasource/file"
	_ "github.com/weldhq/weld-engine/pkg/adapters/datasource/mssql"
	_ "github.com/weldhq/weld-engine/pkg/adapters/datasource/postgres"
	"github.com/weldhq/weld-engine/pkg/config"
	"github.com/weldhq/weld-engine/pkg/handlers"
	"github.com/weldhq/weld-engine/pkg/logging"
	"github.com/weldhq/weld-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("bind_addr", cfg.BindAddr),
		zap.String("port", cfg.Port),
		zap.Int("datasources", len(cfg.Datasources)))

	registry := datasource.NewRegistry(cfg.Datasources, logger)
	defer func() {
		if err := registry.Close(); err != nil {
			logger.Warn("failed to close datasource connectors", zap.Error(err))
		}
	}()

	profiler := services.NewSchemaProfiler(registry, registry, cfg.Analysis, logger)
	inferencer := services.NewRelationshipInferencer(cfg.Analysis, logger)
	graphBuilder := services.NewRelationshipGraphBuilder(logger)
	synthesizer := services.NewJoinPlanSynthesizer(cfg.Analysis, logger)
	analysis := services.NewRelationshipAnalysisService(profiler, inferencer, graphBuilder, synthesizer, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAnalysisHandler(analysis, logger).RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting weld-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
