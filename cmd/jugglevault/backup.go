// Backup command: write a checksummed archive of the full store.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jugglevault/jugglevault/internal/backup"
	"github.com/jugglevault/jugglevault/pkg/jugglevault"
	"github.com/jugglevault/jugglevault/pkg/types"
)

var backupCmd = &cobra.Command{
	Use:   "backup <archive>",
	Short: "Back up the store to a checksummed archive",
	Long: `Backup writes every table and every referenced video asset into a single
archive file. The archive is published atomically: a failure never leaves a
partial file at the destination.

Example:
  jugglevault backup vault-2026-08-30.jvb`,
	Args: cobra.ExactArgs(1),
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	dest := args[0]

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	videos, err := openAssets()
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	engine := backup.NewEngine(store, videos, log, jugglevault.Version)
	result, err := engine.Run(cmd.Context(), dest, consoleProgress{})
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	event := &types.UsageEvent{
		EventType: types.EventBackupCreated,
		Timestamp: time.Now().UTC(),
	}
	if err := store.RecordUsage(event); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}

	if flagJSON {
		return printJSON(result)
	}
	fmt.Printf("Backup written to %s (%d bytes, %d rows)\n",
		result.Path, result.Metadata.SizeBytes, totalRows(result.Metadata.RowCounts))
	for _, ref := range result.SkippedAssets {
		fmt.Printf("  warning: asset %q missing, reference kept\n", ref)
	}
	return nil
}

// totalRows sums the per-table counts of a backup's metadata.
func totalRows(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
