// Init command for the jugglevault CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize jugglevault storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Resolve config directory (flag > env > default) and ensure it
		// exists with a default config.yaml.
		configDir, err := resolveConfigDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		if err := ensureConfigDir(configDir); err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}

		// Open the store (creates the data directory and schema) and the
		// asset directory.
		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		videos, err := openAssets()
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}

		dataDir, err := resolveDataDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}

		fmt.Println("JuggleVault initialized successfully")
		fmt.Println("  config:", configDir)
		fmt.Println("  data:  ", dataDir)
		fmt.Println("  videos:", videos.Root())
		return nil
	},
}
