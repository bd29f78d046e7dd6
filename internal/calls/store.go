package calls

import "context"

// Store is the persistence surface the orchestrator needs. Implementations
// live in internal/store (memory and postgres); both must behave identically
// for equal inputs so the backend can be swapped at startup.
type Store interface {
	// Kind identifies the active backend ("memory" or "postgres").
	Kind() string

	// CreateContact fails with ErrInvalidArgument when name or phoneNumber
	// is empty.
	CreateContact(ctx context.Context, name, phoneNumber string) (Contact, error)

	// ListContacts returns contacts most-recently-created first.
	ListContacts(ctx context.Context) ([]Contact, error)

	// FindContact fails with ErrNotFound for an unknown id.
	FindContact(ctx context.Context, id string) (Contact, error)

	// CreateCall persists a new call record. The record id is assigned by the
	// store; ExternalCallID must already be set and unique.
	CreateCall(ctx context.Context, call Call) (Call, error)

	// FindCallByExternalID fails with ErrNotFound for an unknown external id.
	FindCallByExternalID(ctx context.Context, externalCallID string) (Call, error)

	// UpdateCallByExternalID applies a shallow merge of the provided fields.
	// ErrNotFound for an unknown external id; webhook callers swallow it
	// (replay and stale ids are expected traffic).
	UpdateCallByExternalID(ctx context.Context, externalCallID string, upd CallUpdate) (Call, error)

	// ListCalls returns calls most-recently-created first. The persistent
	// backend expands the contact reference; the volatile one keeps the raw id.
	ListCalls(ctx context.Context) ([]Call, error)

	Close() error
}
