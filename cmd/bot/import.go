package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
)

// Importer copies the JSON documents into MongoDB.
type Importer struct {
	// l is the logger.
	l *slog.Logger

	source *dataaccess.FileBackend
	target *dataaccess.MongoBackend
}

// NewImporter creates a new importer.
func NewImporter(l *slog.Logger, source *dataaccess.FileBackend, target *dataaccess.MongoBackend) *Importer {
	return &Importer{
		l:      l,
		source: source,
		target: target,
	}
}

// Run loads every document from the files and writes it to MongoDB. Absent files are written as
// empty documents.
func (im *Importer) Run(ctx context.Context) error {
	stores, err := dataaccess.NewStores(ctx, im.l, im.source)
	if err != nil {
		return fmt.Errorf("error reading documents: %w", err)
	}

	if err := stores.CopyTo(ctx, im.target); err != nil {
		return fmt.Errorf("error writing documents: %w", err)
	}

	im.l.Info("Imported documents into MongoDB")
	return nil
}
