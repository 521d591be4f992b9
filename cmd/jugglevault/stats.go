// Stats command: weekly usage view.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jugglevault/jugglevault/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show weekly practice statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	weeks, err := store.ListWeeklyUsage()
	if err != nil {
		return fmt.Errorf("list weekly usage: %w", err)
	}

	event := &types.UsageEvent{
		EventType: types.EventProgressViewed,
		Timestamp: time.Now().UTC(),
	}
	if err := store.RecordUsage(event); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}

	if flagJSON {
		return printJSON(weeks)
	}
	for _, w := range weeks {
		fmt.Printf("week of %s\tpoints=%d tests=%d duration=%ds videos=%d\n",
			w.WeekStart.Format("2006-01-02"), w.Points, w.TestsCompleted,
			w.TotalTestDuration, w.VideosRecorded)
	}
	return nil
}
