package dataaccess

import (
	"context"
	"errors"
)

// Names of the persisted documents.
const (
	DocumentConfig      = "ticket_config"
	DocumentTraining    = "ai_training"
	DocumentPermissions = "permissions"
	DocumentTickets     = "tickets"
)

// ErrDocumentNotFound is returned by a Backend when the named document has never been saved.
var ErrDocumentNotFound = errors.New("document not found")

// Backend loads and saves whole documents by name.
type Backend interface {
	// Load decodes the named document into v. It returns ErrDocumentNotFound if the document does not exist.
	Load(ctx context.Context, name string, v any) error

	// Save overwrites the named document with v.
	Save(ctx context.Context, name string, v any) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}
