// Package main provides the jugglevault CLI: a local-first store for juggling
// patterns, practice sessions, and checksummed backup archives.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}
