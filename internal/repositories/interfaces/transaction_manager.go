package interfaces

import "context"

// TransactionManager runs a unit of work atomically. Repository calls made
// with the context passed to fn take part in the transaction; a nested call
// joins the transaction that is already open.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// InTransaction reports whether ctx belongs to an open transaction.
	InTransaction(ctx context.Context) bool
}
