// Package evt provides a package-level event bus used to decouple the
// resolver's core pipeline from observers (metrics, logging) that care
// about the outcome of a resolve() call but must not influence it.
package evt

import (
	"github.com/asaskevich/EventBus"
)

const (
	// ResolveStarted fires when a Resolve call begins. Parameters: query name, query type.
	ResolveStarted = "resolve:started"

	// ResolveSucceeded fires when a Resolve call returns without an error, including the
	// nil-value return when no nameserver recorded a classification error. Parameters: query name, attempt count.
	ResolveSucceeded = "resolve:succeeded"

	// ResolveFailed fires when a Resolve call returns an error. Parameters: query name, outcome kind.
	ResolveFailed = "resolve:failed"

	// ApplicationStarted fires once the query API is listening. Parameters: version, build time.
	ApplicationStarted = "application:started"
)

// nolint:gochecknoglobals
var evtBus = EventBus.New()

// Bus returns the global event bus instance.
func Bus() EventBus.Bus {
	return evtBus
}
