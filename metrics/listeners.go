package metrics

import (
	"github.com/namecoin/bcresolve/evt"
)

// RegisterEventListeners subscribes the metrics collectors to the
// resolver's event bus. Call once at startup.
func RegisterEventListeners() {
	_ = evt.Bus().Subscribe(evt.ResolveFailed, func(name, outcome string) {
		RecordOutcome(outcome)
	})

	_ = evt.Bus().Subscribe(evt.ResolveSucceeded, func(name string, attempts int) {
		RecordOutcome("answer")
		RecordNSAttempts(attempts)
	})
}
