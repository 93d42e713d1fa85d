package board

import (
	"context"
	"errors"
)

// ErrBackendNotConfigured is returned when a store is asked to operate
// without the configuration it needs. The selector in main should make this
// unreachable; it exists as a defensive contract.
var ErrBackendNotConfigured = errors.New("backend not configured")

// Store is the capability set both persistence backends implement. The
// implementation is chosen once at startup; callers never branch on it.
type Store interface {
	// ReadAll returns every task. The relational store orders by
	// updatedAt descending; the document store returns file order.
	ReadAll(ctx context.Context) ([]Task, error)
	// Upsert creates the task if the id is unseen, otherwise merges the
	// patch into the stored record. Returns the persisted task.
	Upsert(ctx context.Context, patch TaskPatch) (Task, error)
	// Delete removes a task by id. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error
	// Mode names the backend, "db" or "json".
	Mode() string
}
