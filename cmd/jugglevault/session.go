// Session commands: log a practice test session.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jugglevault/jugglevault/internal/sqlite"
	"github.com/jugglevault/jugglevault/pkg/types"
)

var (
	sessionDuration int64
	sessionSuccess  int
	sessionAttempts int
	sessionNotes    string
	sessionVideo    string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage practice test sessions",
}

var sessionLogCmd = &cobra.Command{
	Use:   "log <pattern-id>",
	Short: "Record a test session for a pattern",
	Long: `Log records a test session against a pattern, stamps the pattern's
last-tested time, and updates the weekly usage counters.

Example:
  jugglevault session log 4 --duration 300 --success 8 --attempts 10
  jugglevault session log 4 --duration 120 --video session42.mp4 --notes "left hand drops"`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionLog,
}

func init() {
	sessionLogCmd.Flags().Int64Var(&sessionDuration, "duration", 0, "session duration in seconds")
	sessionLogCmd.Flags().IntVar(&sessionSuccess, "success", 0, "successful catches or runs")
	sessionLogCmd.Flags().IntVar(&sessionAttempts, "attempts", 0, "total attempts")
	sessionLogCmd.Flags().StringVar(&sessionNotes, "notes", "", "free-form notes")
	sessionLogCmd.Flags().StringVar(&sessionVideo, "video", "", "recorded video asset reference")

	sessionCmd.AddCommand(sessionLogCmd)
}

func runSessionLog(cmd *cobra.Command, args []string) error {
	patternID, err := parseID(args[0])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	pattern, err := store.GetPattern(patternID)
	if err != nil {
		return fmt.Errorf("get pattern: %w", err)
	}

	sess := &types.TestSession{
		PatternID:    patternID,
		Date:         time.Now().UTC(),
		Duration:     sessionDuration,
		SuccessCount: sessionSuccess,
		AttemptCount: sessionAttempts,
	}
	if sessionNotes != "" {
		sess.Notes = &sessionNotes
	}
	if sessionVideo != "" {
		sess.VideoPath = &sessionVideo
	}

	if err := store.CreateSession(sess); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	// Points awarded per session scale with pattern difficulty.
	delta := sqlite.WeeklyDelta{
		Points:            pattern.Difficulty,
		TestsCompleted:    1,
		TotalTestDuration: sessionDuration,
	}
	if sessionVideo != "" {
		delta.VideosRecorded = 1
	}
	if err := store.BumpWeeklyUsage(sess.Date, delta); err != nil {
		return fmt.Errorf("update weekly usage: %w", err)
	}

	event := &types.UsageEvent{
		EventType: types.EventSessionLogged,
		Timestamp: sess.Date,
		PatternID: &patternID,
		Duration:  &sessionDuration,
	}
	if err := store.RecordUsage(event); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}

	if flagJSON {
		return printJSON(sess)
	}
	fmt.Printf("Logged session %d for pattern %s\n", sess.ID, pattern.Name)
	return nil
}
