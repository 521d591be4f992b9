package backup

import (
	"fmt"
	"strings"
)

// Phase identifies where in an operation the engine currently is. Backup
// walks Snapshotting through Finalizing; restore walks Validating through
// RestoringAssets. Failed is terminal and reachable from any step.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseSnapshotting    Phase = "snapshotting"
	PhaseSerializing     Phase = "serializing"
	PhaseCopyingAssets   Phase = "copying_assets"
	PhaseFinalizing      Phase = "finalizing"
	PhaseValidating      Phase = "validating"
	PhaseClearingStore   Phase = "clearing_store"
	PhaseRestoringRows   Phase = "restoring_rows"
	PhaseRestoringAssets Phase = "restoring_assets"
	PhaseDone            Phase = "done"
	PhaseFailed          Phase = "failed"
)

// PhaseError carries the exact point of failure: the phase, and where
// applicable the table, row index, or asset reference. Callers use this
// context to decide on retry; errors.Is resolves through to the cause.
type PhaseError struct {
	Phase Phase
	Table string // Empty when not table-related.
	Row   int    // Index of the failing row; -1 when not row-related.
	Asset string // Empty when not asset-related.
	Err   error
}

func (e *PhaseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "phase %s", e.Phase)
	if e.Table != "" {
		fmt.Fprintf(&b, ": table %s", e.Table)
	}
	if e.Row >= 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Asset != "" {
		fmt.Fprintf(&b, ": asset %s", e.Asset)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// phaseErr builds a PhaseError with no table, row, or asset context.
func phaseErr(phase Phase, err error) *PhaseError {
	return &PhaseError{Phase: phase, Row: -1, Err: err}
}
