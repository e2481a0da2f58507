// Package errors provides custom error types for order-related operations.
package errors

import "errors"

var ErrEmptyOrder = errors.New("order must contain at least one item")
var ErrProductNotFound = errors.New("product not found")
var ErrInsufficientStock = errors.New("insufficient stock")

var ErrOrderNotFound = errors.New("order not found")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrUnknownStatus = errors.New("unknown order status")

var ErrCreateOrder = errors.New("failed to create order")
var ErrCreateOrderItem = errors.New("failed to create order item")
var ErrUpdateOrder = errors.New("failed to update order")
var ErrFailedToFindOrder = errors.New("failed to find order")
var ErrFailedToFindOrderItems = errors.New("failed to find order items")
var ErrFailedToFindUserOrders = errors.New("failed to find user orders")
var ErrFailedToFindOrders = errors.New("failed to find orders")
var ErrFailedToComputeStats = errors.New("failed to compute order stats")

var ErrAccessDenied = errors.New("access denied")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")
