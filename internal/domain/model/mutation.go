package model

import "time"

// MutationKind names a custom-event change sent from a client.
type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

// Mutation is one optimistic client change waiting for the server.
// Event is set for creates, Patch for updates. EventID is always set.
type Mutation struct {
	ID         string
	Kind       MutationKind
	EventID    string
	Event      CustomEvent
	Patch      EventPatch
	EnqueuedAt time.Time
}
