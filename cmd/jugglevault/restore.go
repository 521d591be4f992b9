// Restore command: replace the store's contents with an archive's contents.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jugglevault/jugglevault/internal/backup"
	"github.com/jugglevault/jugglevault/pkg/types"
)

var restoreYes bool

var restoreCmd = &cobra.Command{
	Use:   "restore <archive>",
	Short: "Restore the store from an archive",
	Long: `Restore validates the archive's structure, checksum, and versions, then
replaces the entire store contents with the archive's contents. The clear is
destructive and is not rolled back on failure; back up first if in doubt.

Example:
  jugglevault restore vault-2026-08-30.jvb --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().BoolVar(&restoreYes, "yes", false, "skip the destructive-restore confirmation")
}

func runRestore(cmd *cobra.Command, args []string) error {
	archivePath := args[0]

	if !restoreYes && !confirmRestore(archivePath) {
		fmt.Println("Restore cancelled")
		return nil
	}

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

	restorer := backup.NewRestorer(store, videos, log)
	report, err := restorer.Run(cmd.Context(), archivePath, consoleProgress{})
	if err != nil {
		if report != nil {
			fmt.Fprintf(os.Stderr, "store is now %s: %d tables touched\n",
				report.StoreState, len(report.RestoredRows))
		}
		os.Exit(exitSysError)
	}

	event := &types.UsageEvent{
		EventType: types.EventBackupRestored,
		Timestamp: time.Now().UTC(),
	}
	if err := store.RecordUsage(event); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}

	if flagJSON {
		return printJSON(report)
	}
	fmt.Printf("Restored backup %s: %d rows, %d assets\n",
		report.BackupID, totalRows(report.RestoredRows), report.RestoredAssets)
	if report.NulledRefs > 0 {
		fmt.Printf("  warning: %d video references had no blob in the archive and were cleared\n", report.NulledRefs)
	}
	return nil
}

// confirmRestore prompts on stdin before the destructive clear.
func confirmRestore(archivePath string) bool {
	fmt.Printf("Restoring %s will ERASE all current data. Continue? [y/N] ", archivePath)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
