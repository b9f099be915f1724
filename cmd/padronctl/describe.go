package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fedecoop/padron/pkg/catalog"
	"github.com/fedecoop/padron/pkg/db"
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe <table>",
	Short: "Show the discovered schema of a table",
	Long: `Show the discovered schema of a table: columns, types, the resolved
primary key, and foreign keys.

Example:
  padronctl describe socios`,
	Args: cobra.ExactArgs(1),
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

		reader := catalog.NewReaderForNamespace(database, cfg.Namespace)
		schema, err := reader.Describe(context.Background(), args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		printSchema(schema)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func printSchema(schema *catalog.TableSchema) {
	fmt.Printf("Table: %s\n", schema.Name)
	fmt.Printf("Primary key: %s\n\n", schema.PrimaryKey)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tTYPE\tCATEGORY\tNULLABLE\tREFERENCES")
	for _, col := range schema.Columns {
		ref := ""
		if fk, ok := schema.ForeignKeys[col.Name]; ok {
			ref = fk.TargetTable + "(" + fk.TargetColumn + ")"
		}
		nullable := "no"
		if col.Nullable {
			nullable = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			col.Name, col.DeclaredType, col.Category, nullable, ref)
	}
	_ = w.Flush()
}
