package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lessonforge/internal/logging"
	"lessonforge/internal/store"
)

var recordsLimit int

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List recent generation audit records",
	RunE:  runRecords,
}

func init() {
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", 20, "Number of records to show")
}

func runRecords(cmd *cobra.Command, args []string) error {
	recordStore, err := store.Open(cfg.Storage.DatabasePath, logging.For(logger, logging.CategoryStore))
	if err != nil {
		return err
	}
	defer recordStore.Close()

	records, err := recordStore.Recent(cmd.Context(), recordsLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No generation records found.")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(out, "%s  %-10s %-10s %-22s %-10s attempts=%d  %s\n",
			r.CreatedAt, r.Family, r.Tier, r.Domain, r.State, r.Attempts, r.ID)
	}
	return nil
}
