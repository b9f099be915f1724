package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fedecoop/padron/pkg/audit"
	"github.com/fedecoop/padron/pkg/catalog"
	"github.com/fedecoop/padron/pkg/config"
	"github.com/fedecoop/padron/pkg/db"
	"github.com/fedecoop/padron/pkg/engine"
	"github.com/fedecoop/padron/pkg/server"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the padrón API server",
	Long: `Run the padrón API server.

Requires PADRON_DATABASE_URL (or database_url in padron.yml).

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		log, err := newLogger(cfg.LogLevel)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer func() { _ = log.Sync() }()

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Info("running database migrations")
			if err := runMigrations(cfg.DatabaseURL); err != nil {
				log.Fatal("migration failed", zap.Error(err))
			}
		}

		database, err := db.Connect(db.Config{
			URL:          cfg.DatabaseURL,
			Debug:        cfg.LogLevel == "debug",
			MaxOpenConns: cfg.MaxOpenConns,
			MaxIdleConns: cfg.MaxIdleConns,
		})
		if err != nil {
			log.Fatal("unable to connect to database", zap.Error(err))
		}

		sqlDB, err := database.DB()
		if err != nil {
			log.Fatal("unable to access connection pool", zap.Error(err))
		}

		registry := catalog.NewRegistry(catalog.NewReaderForNamespace(database, cfg.Namespace))
		enricher := engine.NewEnricher(entityTables(cfg))

		auditStore := audit.NewStore(sqlDB)
		var recorderOpts []audit.RecorderOption
		if !cfg.AuditNormalize {
			recorderOpts = append(recorderOpts, audit.WithNormalizer(nil))
		}
		recorder := audit.NewRecorder(auditStore, log, recorderOpts...)

		executor := engine.NewExecutor(database, registry, enricher, recorder, log)

		var auth *server.Authenticator
		if cfg.TokenSigningKey != "" {
			auth = server.NewAuthenticator([]byte(cfg.TokenSigningKey))
		} else {
			log.Warn("no token signing key configured; running without authentication")
		}

		srv := server.NewServer(
			cfg.ListenAddress,
			executor,
			registry,
			auditStore,
			auth,
			server.ExportOptions{
				Delimiter:     cfg.Delimiter(),
				LeadingColumn: cfg.ExportLeadingColumn,
			},
			log,
		)

		log.Fatal("server stopped", zap.Error(srv.Start()))
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

func entityTables(cfg *config.Config) []engine.EntityTable {
	tables := make([]engine.EntityTable, len(cfg.EntityTables))
	for i, t := range cfg.EntityTables {
		tables[i] = engine.EntityTable{
			Name:           t.Name,
			KeyColumn:      t.KeyColumn,
			DisplayColumn:  t.DisplayColumn,
			LocalityColumn: t.LocalityColumn,
			ColumnHint:     t.ColumnHint,
		}
	}
	return tables
}
