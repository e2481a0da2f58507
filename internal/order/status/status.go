// Package status defines the order lifecycle and its allowed transitions.
package status

import (
	"fmt"

	ordererrors "github.com/skmunene/dukahub/internal/order/errors"
)

// Status is the lifecycle state of an order.
type Status string

const (
	Pending          Status = "pending"
	Paid             Status = "paid"
	ReadyForDelivery Status = "ready_for_delivery"
	Delivered        Status = "delivered"
	// Cancelled is part of the status set but no transition produces it.
	Cancelled Status = "cancelled"
)

// transitions is the fixed table of allowed next states. Delivered and
// Cancelled are terminal.
var transitions = map[Status][]Status{
	Pending:          {Paid},
	Paid:             {ReadyForDelivery},
	ReadyForDelivery: {Delivered},
	Delivered:        {},
	Cancelled:        {},
}

// Parse converts a raw string to a Status.
// Returns ErrUnknownStatus for values outside the status set.
func Parse(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("%q: %w", s, ordererrors.ErrUnknownStatus)
	}
	return st, nil
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a requested move and returns the target status.
// Returns ErrInvalidTransition naming both statuses when the move is not in
// the table.
func Transition(from, to Status) (Status, error) {
	if !CanTransition(from, to) {
		return "", fmt.Errorf("cannot transition from %s to %s: %w", from, to, ordererrors.ErrInvalidTransition)
	}
	return to, nil
}
