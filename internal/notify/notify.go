// Package notify announces finished job runs so downstream consumers
// (site rebuilds, alerting) can react to fresh snapshots.
package notify

import "context"

// Publisher announces an event payload on a named topic and returns the
// broker-assigned message id.
type Publisher interface {
	Publish(ctx context.Context, payload any) (string, error)
}

// NoOp drops every event. Used when no topic is configured.
type NoOp struct{}

// Publish for NoOp discards the payload.
func (NoOp) Publish(context.Context, any) (string, error) { return "", nil }
