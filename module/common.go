package module

import (
	"github.com/AElfProject/AElf-sub008/module/irrecoverable"
)

// ReadyDoneAware provides an interface to wait for module startup and shutdown.
// Modules implementing it support a single start-stop cycle.
type ReadyDoneAware interface {
	// Ready returns a channel that is closed once startup has completed.
	// Idempotent.
	Ready() <-chan struct{}

	// Done commences shutdown and returns a channel that is closed once
	// shutdown has completed. Idempotent.
	Done() <-chan struct{}
}

// Startable is a module that is started with a context able to receive
// irrecoverable errors. Start must be called exactly once.
type Startable interface {
	Start(irrecoverable.SignalerContext)
}

// Component is a startable module with a ready/done lifecycle.
type Component interface {
	Startable
	ReadyDoneAware
}
