package backup

import "github.com/jugglevault/jugglevault/pkg/types"

// notifier wraps a ProgressSink and enforces the monotonic-percentage
// contract: a step that would move the percentage backwards is reported at
// the highest value seen so far. Notifications run synchronously on the
// engine goroutine; a slow sink slows only its own observation.
type notifier struct {
	sink types.ProgressSink
	last int
}

func newNotifier(sink types.ProgressSink) *notifier {
	if sink == nil {
		sink = types.NopProgress{}
	}
	return &notifier{sink: sink}
}

// step reports progress, clamped so the percentage never decreases.
func (n *notifier) step(percent int, message string) {
	if percent < n.last {
		percent = n.last
	}
	if percent > 100 {
		percent = 100
	}
	n.last = percent
	n.sink.OnProgress(percent, message)
}

// complete reports terminal success.
func (n *notifier) complete(result any) {
	n.sink.OnComplete(result)
}

// fail reports terminal failure.
func (n *notifier) fail(message string, cause error) {
	n.sink.OnError(message, cause)
}

// span spreads i of total steps across the percentage range [from, to].
// A zero total lands on from.
func span(from, to, i, total int) int {
	if total <= 0 {
		return from
	}
	return from + (to-from)*i/total
}
