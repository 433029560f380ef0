package repository

import "context"

// Transactor runs fn inside a single logical transaction. Repository calls
// made with the context passed to fn join that transaction, so an appointment
// mutation and its history entry commit or roll back together.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
