package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fedecoop/padron/pkg/audit"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit entries, newest first",
	Long: `List audit entries, newest first.

Example:
  padronctl audit list --table socios --action UPDATE --limit 20
  padronctl audit list --actor op@example.coop --from 2024-01-01`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		store, err := audit.Open(cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer func() { _ = store.Close() }()

		filter, err := auditFilterFromFlags(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		entries, err := store.List(context.Background(), filter)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to list audit entries:", err)
			os.Exit(1)
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			_ = encoder.Encode(entries)
			return
		}

		for _, entry := range entries {
			actor := entry.ActorEmail
			if actor == "" {
				actor = "anonymous"
			}
			fmt.Printf("%s  %-6s  %s/%s  by %s\n",
				entry.OccurredAt.Format(time.RFC3339),
				entry.Action, entry.TableName, entry.RecordID, actor)
		}
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd)

	auditListCmd.Flags().String("actor", "", "filter by actor email")
	auditListCmd.Flags().String("table", "", "filter by table name")
	auditListCmd.Flags().String("action", "", "filter by action (CREATE, UPDATE, DELETE)")
	auditListCmd.Flags().String("from", "", "start date (YYYY-MM-DD)")
	auditListCmd.Flags().String("to", "", "end date (YYYY-MM-DD)")
	auditListCmd.Flags().Int("limit", 0, "maximum entries to return")
	auditListCmd.Flags().Bool("json", false, "emit entries as JSON")
}

func auditFilterFromFlags(cmd *cobra.Command) (audit.Filter, error) {
	actor, _ := cmd.Flags().GetString("actor")
	table, _ := cmd.Flags().GetString("table")
	action, _ := cmd.Flags().GetString("action")
	limit, _ := cmd.Flags().GetInt("limit")

	filter := audit.Filter{
		Actor:  actor,
		Table:  table,
		Action: audit.Action(action),
		Limit:  limit,
	}

	if v, _ := cmd.Flags().GetString("from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, fmt.Errorf("--from must be YYYY-MM-DD: %w", err)
		}
		filter.From = &from
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, fmt.Errorf("--to must be YYYY-MM-DD: %w", err)
		}
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &to
	}
	return filter, nil
}
