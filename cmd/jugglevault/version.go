// Version command for the jugglevault CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jugglevault/jugglevault/pkg/jugglevault"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the jugglevault version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("jugglevault", jugglevault.Version)
	},
}
