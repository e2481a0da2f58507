// Package messaging defines the event publishing abstraction used by the
// order workflow.
package messaging

import (
	"context"
)

const (
	OrdersCreatedSubject       = "orders.created"
	OrdersStatusChangedSubject = "orders.status_changed"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
