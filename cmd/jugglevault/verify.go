// Verify command: validate an archive without touching the store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jugglevault/jugglevault/internal/archive"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <archive>",
	Short: "Validate an archive's structure, versions, and checksum",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	contents, err := archive.OpenArchive(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "verify:", err)
		os.Exit(exitSysError)
	}

	if err := archive.CheckVersion(contents.Meta); err != nil {
		fmt.Fprintln(os.Stderr, "verify:", err)
		os.Exit(exitSysError)
	}

	if err := archive.Verify(contents.Document, contents.Meta.Checksum); err != nil {
		fmt.Fprintln(os.Stderr, "verify:", err)
		os.Exit(exitSysError)
	}

	if _, err := archive.Parse(contents.Document); err != nil {
		fmt.Fprintln(os.Stderr, "verify:", err)
		os.Exit(exitSysError)
	}

	fmt.Printf("OK: %s (backup %s, format %s)\n",
		args[0], contents.Meta.BackupID, contents.Meta.FormatVersion)
	return nil
}
