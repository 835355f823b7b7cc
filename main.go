package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/skylark-data/query-engine/pkg/config"
	"github.com/skylark-data/query-engine/pkg/database"
	"github.com/skylark-data/query-engine/pkg/repositories"
	"github.com/skylark-data/query-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	queryID := flag.String("query", "", "id of the saved query to render (empty: migrate and exit)")
	orgID := flag.String("org", "", "organization id scoping the request")
	paramsJSON := flag.String("params", "{}", "parameter values as a JSON object")
	flag.Parse()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s",
			cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)),
	)

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	if *queryID == "" {
		logger.Info("No query requested, exiting after migrations")
		return
	}

	qid, err := uuid.Parse(*queryID)
	if err != nil {
		logger.Fatal("Invalid -query id", zap.Error(err))
	}
	oid, err := uuid.Parse(*orgID)
	if err != nil {
		logger.Fatal("Invalid -org id", zap.Error(err))
	}
	var parameters map[string]any
	if err := json.Unmarshal([]byte(*paramsJSON), &parameters); err != nil {
		logger.Fatal("Invalid -params JSON", zap.Error(err))
	}

	scopes := database.NewOrgScopeProvider(db)
	orgCtx, cleanup, err := scopes.WithOrgScope(ctx, oid)
	if err != nil {
		logger.Fatal("Failed to establish org scope", zap.Error(err))
	}
	defer cleanup()

	queryRepo := repositories.NewQueryRepository()
	resultRepo := repositories.NewQueryResultRepository()
	dropdowns := services.NewDropdownService(queryRepo, resultRepo, logger)
	parameterService := services.NewQueryParameterService(queryRepo, dropdowns, logger)

	result, err := parameterService.ApplyParameters(orgCtx, qid, parameters)
	if err != nil {
		logger.Fatal("Failed to apply parameters", zap.Error(err))
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatal("Failed to encode result", zap.Error(err))
	}
	fmt.Println(string(out))
}

func newLogger(env string) *zap.Logger {
	if env == "local" {
		logger, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
		return logger
	}
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	return logger
}
