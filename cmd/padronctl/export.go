package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/fedecoop/padron/pkg/catalog"
	"github.com/fedecoop/padron/pkg/config"
	"github.com/fedecoop/padron/pkg/db"
	"github.com/fedecoop/padron/pkg/engine"
	"github.com/fedecoop/padron/pkg/export"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <table>",
	Short: "Export a table as delimited text",
	Long: `Export a table as delimited text, with the same enrichment the API
applies.

In watch mode the command stays running and watches a spool file; to
trigger an export, write a table name into the spool file. Each export is
written into the output directory with a timestamped filename.

Example:
  padronctl export socios
  padronctl export socios -o socios.csv
  padronctl export --watch /run/padron/export-spool -o /var/export`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		database, err := db.Connect(db.Config{URL: cfg.DatabaseURL})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to connect to database:", err)
			os.Exit(1)
		}

		out, _ := cmd.Flags().GetString("out")
		spool, _ := cmd.Flags().GetString("watch")

		if spool != "" {
			if err := watchExports(database, cfg, spool, out); err != nil {
				fmt.Fprintln(os.Stderr, "Failed to watch spool:", err)
				os.Exit(1)
			}
			return
		}

		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "error: a table name is required unless --watch is set")
			os.Exit(1)
		}
		if err := exportTable(database, cfg, args[0], out); err != nil {
			fmt.Fprintln(os.Stderr, "Export failed:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("out", "o", "", "output file, or directory in watch mode (default: stdout)")
	exportCmd.Flags().String("watch", "", "spool file to watch for export requests")
}

func exportTable(database *gorm.DB, cfg *config.Config, table, out string) error {
	registry := catalog.NewRegistry(catalog.NewReaderForNamespace(database, cfg.Namespace))
	executor := engine.NewExecutor(database, registry, engine.NewEnricher(entityTables(cfg)), nil, nil)

	ctx := context.Background()
	schema, err := registry.Get(ctx, table)
	if err != nil {
		return err
	}
	result, err := executor.Read(ctx, table)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	opts := export.Options{
		Delimiter:         cfg.Delimiter(),
		LeadingColumn:     cfg.ExportLeadingColumn,
		IncludeEnrichment: len(result.Rows) > 0 && result.Rows[0][engine.EntityNameField] != nil,
	}
	if err := export.Write(w, schema, result.Rows, opts); err != nil {
		return err
	}
	if out != "" {
		fmt.Printf("Exported %d rows of %s to %s\n", result.Total, table, out)
	}
	return nil
}

// watchExports blocks watching the spool file. Writing a table name into
// the spool triggers an export into outDir.
func watchExports(database *gorm.DB, cfg *config.Config, spool, outDir string) error {
	if outDir == "" {
		outDir = "."
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(spool); err != nil {
		return fmt.Errorf("failed to watch file %s: %w", spool, err)
	}

	fmt.Printf("Watching %s for export requests (output: %s)\n", spool, outDir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				content, err := os.ReadFile(spool)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error reading spool: %v\n", err)
					continue
				}

				table := strings.TrimSpace(string(content))
				if table == "" {
					continue
				}

				out := filepath.Join(outDir, fmt.Sprintf("%s-%s.csv", table, time.Now().Format("20060102T150405")))
				if err := exportTable(database, cfg, table, out); err != nil {
					fmt.Fprintf(os.Stderr, "Error exporting %s: %v\n", table, err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		case <-sigChan:
			fmt.Println("Shutting down")
			return nil
		}
	}
}
