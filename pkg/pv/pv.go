// Package pv defines the boundary to the external process-variable client:
// the capability to obtain a handle on a live, addressable process variable,
// read and write its value, and receive change notifications.
//
// The wire protocol itself is out of scope; adapters over a real client
// implement Client and Conn. Change notifications arrive from the client's
// own execution context, never from the caller's goroutine, and fire for
// self-inflicted writes as well. What happens when a handler fails is the
// adapter's policy to define and document; the bundled Simulator recovers
// handler panics, logs them, and keeps its notification goroutine alive.
package pv

import "context"

// Value is a process-variable value. Concrete types depend on the record
// kind behind the variable.
type Value any

// SubscriptionID identifies one attached change handler so it can be
// detached later. Detaching an unknown ID is a no-op.
type SubscriptionID string

// Handler receives change notifications: the handle that changed and its new
// value.
type Handler func(conn Conn, value Value)

// Conn is a handle on one live process variable. At most one handle exists
// per declared record; handles are never pooled or shared across models.
type Conn interface {
	// Name returns the full process-variable address.
	Name() string

	// Connected reports whether the variable is live. Connection is
	// established asynchronously after Connect returns.
	Connected() bool

	// Get reads the current value.
	Get(ctx context.Context) (Value, error)

	// Put writes a new value. A successful Put triggers a change
	// notification to every subscribed handler.
	Put(ctx context.Context, value Value) error

	// Subscribe attaches a change handler and returns its detach token.
	Subscribe(fn Handler) (SubscriptionID, error)

	// Unsubscribe detaches a handler. Unknown IDs are ignored.
	Unsubscribe(id SubscriptionID)
}

// Client obtains process-variable handles by address.
type Client interface {
	Connect(name string) (Conn, error)
}
