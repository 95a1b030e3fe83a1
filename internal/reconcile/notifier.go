package reconcile

import (
	"context"

	"github.com/okian/agenda/internal/domain/model"
)

// Rejection describes a mutation the server refused or never received.
type Rejection struct {
	Mutation model.Mutation
	Err      error
}

// Notifier surfaces rejected mutations to the user.
type Notifier interface {
	Notify(ctx context.Context, r Rejection)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, r Rejection)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, r Rejection) { f(ctx, r) }
