// Inspect command: print an archive's metadata without touching the store.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jugglevault/jugglevault/internal/archive"
	"github.com/jugglevault/jugglevault/pkg/types"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <archive>",
	Short: "Show archive metadata, row counts, and bundled assets",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	contents, err := archive.OpenArchive(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "inspect:", err)
		os.Exit(exitSysError)
	}
	meta := contents.Meta

	if flagJSON {
		return printJSON(meta)
	}

	fmt.Println("backup:  ", meta.BackupID)
	fmt.Println("created: ", meta.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Println("format:  ", meta.FormatVersion)
	fmt.Println("schema:  ", meta.SchemaVersion)
	fmt.Println("app:     ", meta.AppVersion)
	fmt.Println("size:    ", meta.SizeBytes, "bytes")
	fmt.Println("checksum:", meta.Checksum)

	fmt.Println("rows:")
	for _, table := range types.AllTables() {
		fmt.Printf("  %-22s %d\n", table, meta.RowCounts[table])
	}

	if len(contents.Assets) > 0 {
		names := make([]string, 0, len(contents.Assets))
		for name := range contents.Assets {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println("assets:")
		for _, name := range names {
			fmt.Printf("  %s (%d bytes)\n", name, len(contents.Assets[name]))
		}
	}
	return nil
}
