package services

import "context"

// TxRunner runs a function inside one all-or-nothing store transaction.
// pkg/database.MongoDB satisfies it; tests substitute a runner that
// just invokes the callback.
type TxRunner interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) (interface{}, error)
}
