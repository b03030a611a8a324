package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
)

// initializer is implemented by documents that need their nil maps filled after decoding.
type initializer interface {
	Init()
}

// Document is a named document held in memory and written back whole on every update.
// Updates are serialized by the document lock, which covers both the mutation and the save.
type Document[T any] struct {
	mu sync.RWMutex

	// name is the document name in the backend.
	name string

	// backend is where the document is persisted.
	backend Backend

	// l is the logger.
	l *slog.Logger

	// data is the in-memory document.
	data *T
}

// NewDocument creates an empty document. Call Load to read the persisted state.
func NewDocument[T any](l *slog.Logger, backend Backend, name string) *Document[T] {
	data := new(T)
	initialise(data)

	return &Document[T]{
		name:    name,
		backend: backend,
		l:       l.With(slog.String(logging.KeyDal, name)),
		data:    data,
	}
}

func initialise(v any) {
	if i, ok := v.(initializer); ok {
		i.Init()
	}
}

// Name returns the document name.
func (d *Document[T]) Name() string {
	return d.name
}

// Load replaces the in-memory document with the persisted one. An absent document loads as the empty shape.
func (d *Document[T]) Load(ctx context.Context) error {
	fresh := new(T)
	err := d.backend.Load(ctx, d.name, fresh)
	if errors.Is(err, ErrDocumentNotFound) {
		d.l.Info("Document not found, starting empty")
		fresh = new(T)
	} else if err != nil {
		return fmt.Errorf("error loading document %s: %w", d.name, err)
	}
	initialise(fresh)

	d.mu.Lock()
	d.data = fresh
	d.mu.Unlock()
	return nil
}

// View runs fn with read access to the document. fn must not keep references past its return.
func (d *Document[T]) View(fn func(doc *T)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.data)
}

// Update runs fn with write access and saves the whole document if fn returns nil.
// fn must validate before mutating: a returned error skips the save but does not roll back changes.
func (d *Document[T]) Update(ctx context.Context, fn func(doc *T) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := fn(d.data); err != nil {
		return err
	}

	if err := d.backend.Save(ctx, d.name, d.data); err != nil {
		monitoring.DocumentSaveErrors.WithLabelValues(d.name).Inc()
		d.l.Error("Error saving document", slog.String(logging.KeyError, err.Error()))
		return fmt.Errorf("%w: %w", errs.ErrDependencyUnavailable, err)
	}
	return nil
}

// SaveTo writes the current document to another backend.
func (d *Document[T]) SaveTo(ctx context.Context, b Backend) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := b.Save(ctx, d.name, d.data); err != nil {
		return fmt.Errorf("error copying document %s: %w", d.name, err)
	}
	return nil
}
