package types

// ProgressSink receives progress notifications from a running backup or
// restore. Calls arrive synchronously on the goroutine driving the engine,
// possibly a background one; implementations must return quickly and must
// not block, or they degrade only their own observation.
//
// The contract is exactly three events: zero or more OnProgress calls with a
// monotonically increasing percentage, then either one OnComplete or one
// OnError.
type ProgressSink interface {
	// OnProgress reports a phase transition or step. Percent is 0..100 and
	// never decreases within one operation.
	OnProgress(percent int, message string)

	// OnComplete reports terminal success with the operation's result
	// payload (*backup.Result or *backup.RestoreReport).
	OnComplete(result any)

	// OnError reports terminal failure.
	OnError(message string, cause error)
}

// NopProgress is a ProgressSink that discards every notification.
type NopProgress struct{}

func (NopProgress) OnProgress(int, string)   {}
func (NopProgress) OnComplete(any)           {}
func (NopProgress) OnError(string, error)    {}
